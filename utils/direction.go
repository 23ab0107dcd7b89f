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

// ReadID is the dense, zero-based identifier of a read in the read
// pool. elasm never allocates read IDs, it only uses them as keys.
type ReadID = int32

// Direction is the orientation of a read, or the side on which
// something is expected, relative to the forward strand of a read or
// contig.
type Direction int8

// Valid directions. The zero value is not a valid Direction.
const (
	Reverse Direction = -1
	Forward Direction = 1
)

// Valid returns true if d is either Forward or Reverse.
func (d Direction) Valid() bool {
	return d == Forward || d == Reverse
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	return -d
}

func (d Direction) String() string {
	switch d {
	case Forward:
		return "+1"
	case Reverse:
		return "-1"
	default:
		return "invalid"
	}
}
