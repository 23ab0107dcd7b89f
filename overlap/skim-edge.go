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
	"sort"
	"strings"

	psort "github.com/exascience/pargo/sort"

	"github.com/exascience/elasm/utils"
)

// RepeatFlags classify the k-mer frequencies that support an overlap.
// The flags are informative rather than exclusive; Rank orders them
// as a priority ladder.
type RepeatFlags uint8

// Repeat classification flags.
const (
	StrongGood RepeatFlags = 1 << iota
	WeakGood
	BelowAvgFreq
	NonRepetitive
	Repetitive
)

// Has returns true if all of the given flags are set.
func (f RepeatFlags) Has(flags RepeatFlags) bool {
	return f&flags == flags
}

// Rank returns the position of the best flag on the priority ladder:
// 5 for StrongGood down to 1 for Repetitive, and 0 when no flag is set.
func (f RepeatFlags) Rank() int {
	switch {
	case f.Has(StrongGood):
		return 5
	case f.Has(WeakGood):
		return 4
	case f.Has(BelowAvgFreq):
		return 3
	case f.Has(NonRepetitive):
		return 2
	case f.Has(Repetitive):
		return 1
	default:
		return 0
	}
}

func (f RepeatFlags) String() string {
	var names []string
	for _, flag := range []struct {
		flag RepeatFlags
		name string
	}{
		{StrongGood, "strong-good"},
		{WeakGood, "weak-good"},
		{BelowAvgFreq, "below-avg-freq"},
		{NonRepetitive, "non-repetitive"},
		{Repetitive, "repetitive"},
	} {
		if f.Has(flag.flag) {
			names = append(names, flag.name)
		}
	}
	return strings.Join(names, "|")
}

// SkimEdge is a candidate overlap between two reads, found by k-mer
// skimming before any alignment.
type SkimEdge struct {
	ID1, ID2 utils.ReadID

	// EOffset is the estimated offset of read 2 relative to read 1.
	EOffset int32

	// Weight is the skim score, usually the number of shared k-mers.
	Weight int32

	// HitIndex refers back to the raw k-mer hit this edge was derived
	// from.
	HitIndex int64

	Ratio uint8
	Flags RepeatFlags

	// bit 0 set: read 1 forward; bit 1 set: read 2 forward
	dirs uint8
}

func direction(dirs uint8, bit uint) utils.Direction {
	if dirs&(1<<bit) != 0 {
		return utils.Forward
	}
	return utils.Reverse
}

func (e *SkimEdge) setDirection(bit uint, d utils.Direction) error {
	if d == 0 {
		return ErrZeroDirection
	}
	if d > 0 {
		e.dirs |= 1 << bit
	} else {
		e.dirs &^= 1 << bit
	}
	return nil
}

// Direction1 returns the direction of read 1.
func (e *SkimEdge) Direction1() utils.Direction { return direction(e.dirs, 0) }

// Direction2 returns the direction of read 2.
func (e *SkimEdge) Direction2() utils.Direction { return direction(e.dirs, 1) }

// SetDirection1 sets the direction of read 1. Any positive value
// means forward and any negative value reverse; 0 is rejected.
func (e *SkimEdge) SetDirection1(d utils.Direction) error { return e.setDirection(0, d) }

// SetDirection2 sets the direction of read 2, like SetDirection1.
func (e *SkimEdge) SetDirection2(d utils.Direction) error { return e.setDirection(1, d) }

// RelativeDirection returns Forward if both reads have the same
// direction, and Reverse otherwise.
func (e *SkimEdge) RelativeDirection() utils.Direction {
	return e.Direction1() * e.Direction2()
}

func (e SkimEdge) String() string {
	return fmt.Sprintf("%v(%v) %v(%v) offset %v weight %v ratio %v [%v] hit %v",
		e.ID1, e.Direction1(), e.ID2, e.Direction2(), e.EOffset, e.Weight, e.Ratio, e.Flags, e.HitIndex)
}

type skimEdgeSorter struct {
	edges []SkimEdge
	less  func(e1, e2 *SkimEdge) bool
}

func (s skimEdgeSorter) SequentialSort(i, j int) {
	edges, less := s.edges[i:j], s.less
	sort.SliceStable(edges, func(i, j int) bool {
		return less(&edges[i], &edges[j])
	})
}

func (s skimEdgeSorter) NewTemp() psort.StableSorter {
	return skimEdgeSorter{make([]SkimEdge, len(s.edges)), s.less}
}

func (s skimEdgeSorter) Len() int {
	return len(s.edges)
}

func (s skimEdgeSorter) Less(i, j int) bool {
	return s.less(&s.edges[i], &s.edges[j])
}

func (s skimEdgeSorter) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s.edges, source.(skimEdgeSorter).edges
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

func lessID1(e1, e2 *SkimEdge) bool {
	return e1.ID1 < e2.ID1
}

func lessID1Weight(e1, e2 *SkimEdge) bool {
	if e1.ID1 == e2.ID1 {
		return e1.Weight > e2.Weight
	}
	return e1.ID1 < e2.ID1
}

// SortSkimEdgesByID1 sorts edges by ascending ID1 using a parallel
// stable sort.
func SortSkimEdgesByID1(edges []SkimEdge) {
	psort.StableSort(skimEdgeSorter{edges, lessID1})
}

// SortSkimEdgesByID1Weight sorts edges by ascending ID1, and edges
// with the same ID1 by descending weight, using a parallel stable
// sort.
func SortSkimEdgesByID1Weight(edges []SkimEdge) {
	psort.StableSort(skimEdgeSorter{edges, lessID1Weight})
}

// DedupSkimEdges removes edges that link the same two reads in the
// same directions as an earlier edge with the same ID1. edges must be
// sorted by ID1; after SortSkimEdgesByID1Weight the heaviest of each
// set of duplicates is kept. The result shares memory with edges.
func DedupSkimEdges(edges []SkimEdge) []SkimEdge {
	type key struct {
		id2  utils.ReadID
		dirs uint8
	}
	seen := make(map[key]struct{})
	result := edges[:0]
	for i, edge := range edges {
		if i > 0 && edge.ID1 != result[len(result)-1].ID1 {
			clear(seen)
		}
		k := key{edge.ID2, edge.dirs}
		if _, found := seen[k]; found {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, edge)
	}
	return result
}
