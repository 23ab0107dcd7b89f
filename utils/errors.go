// elasm: read-overlap indexing and scaffold linkage for genome assembly.
// Copyright (c) 2026 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elasm/blob/master/LICENSE.txt>.

package utils

import "errors"

// ErrInternal is the class of all configuration and programming
// errors reported by elasm: invalid filter parameters, identifiers
// that do not belong to a record, exhausted string tables, unknown
// placement schemes, and the like. Such errors are not expected with
// correct upstream logic and should not be retried. Use errors.Is to
// distinguish them from errors caused by malformed input files.
var ErrInternal = errors.New("elasm internal error")
