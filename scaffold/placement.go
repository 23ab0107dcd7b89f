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

package scaffold

import (
	"fmt"
	"strings"

	"github.com/exascience/elasm/utils"
)

// Placement describes where the mate of a read is expected, relative
// to the direction of the read itself.
type Placement uint8

// The placement schemes. For a read in forward direction:
//
//	Outward          <-- -->  the mate lies to the left
//	Inward           --> <--  the mate lies to the right
//	SameDirForward   --> -->  right of the first segment, left of the last
//	SameDirBackward  <-- <--  left of the first segment, right of the last
//	DontCare                  the mate may lie on either side
//
// For a read in reverse direction, left and right swap, except for
// DontCare.
const (
	PlacementUnknown Placement = iota
	Outward
	Inward
	SameDirForward
	SameDirBackward
	DontCare
	numPlacements
)

var placementNames = [numPlacements]string{
	"unknown",
	"outward",
	"inward",
	"samedir-forward",
	"samedir-backward",
	"dontcare",
}

var placementAliases = map[string]Placement{
	"rf": Outward,
	"fr": Inward,
	"sf": SameDirForward,
	"sb": SameDirBackward,
	"?":  DontCare,
}

func (p Placement) String() string {
	if p < numPlacements {
		return placementNames[p]
	}
	return fmt.Sprintf("placement(%d)", uint8(p))
}

// ErrPlacement is returned for placement schemes outside the known set.
var ErrPlacement = fmt.Errorf("%w: unknown placement scheme", utils.ErrInternal)

// ErrDirection is returned for reads without a valid direction.
var ErrDirection = fmt.Errorf("%w: invalid read direction", utils.ErrInternal)

// ParsePlacement returns the placement scheme with the given name or
// alias, ignoring case.
func ParsePlacement(name string) (Placement, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for p, pname := range placementNames {
		if name == pname {
			return Placement(p), nil
		}
	}
	if p, ok := placementAliases[name]; ok {
		return p, nil
	}
	return PlacementUnknown, fmt.Errorf("%w: %q", ErrPlacement, name)
}

// Segment tells which end of a template a read represents.
type Segment uint8

// Segments.
const (
	SegmentUnknown Segment = iota
	SegmentFirst
	SegmentLast
)

// Library describes how the reads of a sequencing library are paired.
type Library struct {
	Name string

	// InsertSize is the expected distance spanned by a template. A
	// value <= 0 means unknown.
	InsertSize int32

	Placement Placement
}

// wants returns on which sides of a read its mate may lie.
func wants(p Placement, segment Segment, dir utils.Direction) (left, right bool, err error) {
	if !dir.Valid() {
		return false, false, fmt.Errorf("%w: %v", ErrDirection, int8(dir))
	}
	switch p {
	case Outward:
		left = true
	case Inward:
		right = true
	case SameDirForward:
		right = segment == SegmentFirst
		left = segment == SegmentLast
	case SameDirBackward:
		left = segment == SegmentFirst
		right = segment == SegmentLast
	case DontCare:
		return true, true, nil
	default:
		return false, false, fmt.Errorf("%w: %v", ErrPlacement, p)
	}
	if dir == utils.Reverse {
		left, right = right, left
	}
	return left, right, nil
}
