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

package overlap

import (
	"fmt"
	"math"

	"github.com/exascience/elasm/utils"
)

// Edge is an overlap between two reads that was confirmed by
// alignment and kept for contig building. Apart from the ban flag,
// edges are immutable.
type Edge struct {
	ID1, ID2 utils.ReadID

	// BestWeight is always > 0, so that graph searches can use 0 for
	// "no edge".
	BestWeight uint32

	// Fact is the index of the alignment in the FactStore.
	Fact FactIndex

	// Direction is Forward if both reads align in the same direction,
	// and Reverse otherwise.
	Direction utils.Direction

	Flags  RepeatFlags
	banned bool
}

// NewEdge creates an Edge. Weights above math.MaxUint32 are clamped.
func NewEdge(id1, id2 utils.ReadID, weight int64, fact FactIndex, dir utils.Direction, flags RepeatFlags) (Edge, error) {
	if id1 == id2 {
		return Edge{}, fmt.Errorf("%w: read %v", ErrSameID, id1)
	}
	if weight <= 0 {
		return Edge{}, fmt.Errorf("%w: %v for reads %v and %v", ErrWeight, weight, id1, id2)
	}
	if !dir.Valid() {
		return Edge{}, fmt.Errorf("%w: got %v for reads %v and %v", ErrZeroDirection, int8(dir), id1, id2)
	}
	if weight > math.MaxUint32 {
		weight = math.MaxUint32
	}
	return Edge{
		ID1:        id1,
		ID2:        id2,
		BestWeight: uint32(weight),
		Fact:       fact,
		Direction:  dir,
		Flags:      flags,
	}, nil
}

// Mirror returns the same edge seen from ID2.
func (e Edge) Mirror() Edge {
	e.ID1, e.ID2 = e.ID2, e.ID1
	return e
}

// Ban marks the edge as unusable for graph searches.
func (e *Edge) Ban() { e.banned = true }

// Unban clears the ban flag.
func (e *Edge) Unban() { e.banned = false }

// IsBanned returns the ban flag.
func (e *Edge) IsBanned() bool { return e.banned }

func promote(se *SkimEdge, fact *Fact, index FactIndex) (Edge, error) {
	other, err := fact.OtherID(se.ID1)
	if err != nil {
		return Edge{}, err
	}
	if other != se.ID2 {
		return Edge{}, fmt.Errorf("%w: read %v in alignment of %v and %v", ErrForeignID, se.ID2, fact.id1, fact.id2)
	}
	dir1, _ := fact.Direction(se.ID1)
	dir2, _ := fact.Direction(se.ID2)
	weight := int64(fact.OverlapLen())*int64(fact.ScoreRatio())/100 + int64(se.Weight)
	return NewEdge(se.ID1, se.ID2, weight, index, dir1*dir2, se.Flags)
}

// Promote turns a skim edge into an Edge, using the alignment at the
// given index of the store. The combined weight is the aligned
// overlap length scaled by the score ratio, plus the skim weight;
// edges whose combined weight is not positive are rejected.
func Promote(se *SkimEdge, store *FactStore, index FactIndex) (Edge, error) {
	return promote(se, store.At(index), index)
}
