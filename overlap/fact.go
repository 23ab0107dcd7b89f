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

// Package overlap stores confirmed pairwise read alignments in a
// compact form, together with the overlap edges that refer to them.
//
// An alignment Fact is an immutable record of the geometry of one
// alignment between two reads. Facts are kept by value in a FactStore
// and referenced by index from promoted Edges. SkimEdges are the raw
// candidate overlaps found by k-mer skimming, before alignment.
//
// None of the types in this package synchronize access. Collections
// must be populated by a single goroutine; read-only access from
// several goroutines is safe.
package overlap

import (
	"fmt"

	"github.com/exascience/elasm/utils"
)

var (
	// ErrForeignID is returned when a read ID is neither of the two
	// reads of a record.
	ErrForeignID = fmt.Errorf("%w: read ID does not belong to record", utils.ErrInternal)

	// ErrSameID is returned when both reads of a record are the same.
	ErrSameID = fmt.Errorf("%w: record links a read to itself", utils.ErrInternal)

	// ErrZeroDirection is returned when a direction is neither
	// forward nor reverse.
	ErrZeroDirection = fmt.Errorf("%w: direction must be forward or reverse", utils.ErrInternal)

	// ErrWeight is returned when an edge would get a weight <= 0.
	ErrWeight = fmt.Errorf("%w: edge weight must be positive", utils.ErrInternal)
)

// Match lengths are stored in units of MatchQuantum bases. Lengths of
// MatchSaturation bases or more are stored as MaxQuantizedMatch.
const (
	MatchQuantum      = 4
	MatchSaturation   = 28
	MaxQuantizedMatch = 7

	matchBits = 3
	matchMask = 1<<matchBits - 1
)

// Indices of the quantized match-length fields.
const (
	match5p1 = iota
	match3p1
	match5p2
	match3p2
)

// QuantizeMatch converts an exact match length to its stored form.
func QuantizeMatch(length uint32) uint8 {
	if length >= MatchSaturation {
		return MaxQuantizedMatch
	}
	return uint8(length / MatchQuantum)
}

// Geometry describes an alignment as computed by the aligner. All
// match lengths are exact base counts.
type Geometry struct {
	ID1, ID2   utils.ReadID
	Dir1, Dir2 utils.Direction

	// Delta is the offset of read 2 relative to read 1.
	Delta int32

	// RightDelta1 and RightDelta2 are the offsets of the right ends of
	// the reads, for overhangs of unequal length.
	RightDelta1, RightDelta2 int32

	OverlapLen, TotalLen uint32
	ScoreRatio           uint8
	Mismatches           uint32

	// Lengths of the contiguous matches at the 5' and 3' ends of the
	// alignment, per read.
	Match5p1, Match3p1, Match5p2, Match3p2 uint32
}

// Fact is a compact, immutable record of one pairwise alignment.
type Fact struct {
	id1, id2                        utils.ReadID
	delta, rightDelta1, rightDelta2 int32
	overlapLen, totalLen            uint32
	mismatches                      uint32
	matches                         uint16
	scoreRatio                      uint8
	dirs                            uint8
}

func packMatches(q [4]uint8) (matches uint16) {
	for i, v := range q {
		matches |= uint16(v&matchMask) << uint(i*matchBits)
	}
	return
}

func packDirections(dir1, dir2 utils.Direction) (dirs uint8, err error) {
	if !dir1.Valid() || !dir2.Valid() {
		return 0, fmt.Errorf("%w: got %v and %v", ErrZeroDirection, int8(dir1), int8(dir2))
	}
	if dir1 == utils.Reverse {
		dirs |= 1
	}
	if dir2 == utils.Reverse {
		dirs |= 2
	}
	return dirs, nil
}

// NewFact creates a Fact from the geometry of an alignment,
// quantizing the match lengths.
func NewFact(g Geometry) (Fact, error) {
	return newFact(g, [4]uint8{
		QuantizeMatch(g.Match5p1),
		QuantizeMatch(g.Match3p1),
		QuantizeMatch(g.Match5p2),
		QuantizeMatch(g.Match3p2),
	})
}

func newFact(g Geometry, quantized [4]uint8) (Fact, error) {
	if g.ID1 == g.ID2 {
		return Fact{}, fmt.Errorf("%w: read %v", ErrSameID, g.ID1)
	}
	dirs, err := packDirections(g.Dir1, g.Dir2)
	if err != nil {
		return Fact{}, err
	}
	return Fact{
		id1:         g.ID1,
		id2:         g.ID2,
		delta:       g.Delta,
		rightDelta1: g.RightDelta1,
		rightDelta2: g.RightDelta2,
		overlapLen:  g.OverlapLen,
		totalLen:    g.TotalLen,
		mismatches:  g.Mismatches,
		matches:     packMatches(quantized),
		scoreRatio:  g.ScoreRatio,
		dirs:        dirs,
	}, nil
}

// ID1 returns the first read of the alignment.
func (f *Fact) ID1() utils.ReadID { return f.id1 }

// ID2 returns the second read of the alignment.
func (f *Fact) ID2() utils.ReadID { return f.id2 }

// Delta returns the offset of read 2 relative to read 1.
func (f *Fact) Delta() int32 { return f.delta }

// OverlapLen returns the length of the overlap.
func (f *Fact) OverlapLen() uint32 { return f.overlapLen }

// TotalLen returns the total length of the alignment.
func (f *Fact) TotalLen() uint32 { return f.totalLen }

// ScoreRatio returns the score ratio of the alignment.
func (f *Fact) ScoreRatio() uint8 { return f.scoreRatio }

// Mismatches returns the total number of mismatches.
func (f *Fact) Mismatches() uint32 { return f.mismatches }

// which returns 0 for id1 and 1 for id2.
func (f *Fact) which(id utils.ReadID) (int, error) {
	switch id {
	case f.id1:
		return 0, nil
	case f.id2:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: read %v in alignment of %v and %v", ErrForeignID, id, f.id1, f.id2)
	}
}

// Direction returns the direction of the given read in the alignment.
func (f *Fact) Direction(id utils.ReadID) (utils.Direction, error) {
	i, err := f.which(id)
	if err != nil {
		return 0, err
	}
	if f.dirs&(1<<uint(i)) != 0 {
		return utils.Reverse, nil
	}
	return utils.Forward, nil
}

// OtherID returns the read aligned to the given one.
func (f *Fact) OtherID(id utils.ReadID) (utils.ReadID, error) {
	i, err := f.which(id)
	if err != nil {
		return 0, err
	}
	if i == 0 {
		return f.id2, nil
	}
	return f.id1, nil
}

// OffsetInAlignment returns the position at which the given read
// starts in the alignment.
func (f *Fact) OffsetInAlignment(id utils.ReadID) (int32, error) {
	i, err := f.which(id)
	if err != nil {
		return 0, err
	}
	offset := f.delta
	if i == 0 {
		offset = -offset
	}
	if offset < 0 {
		return 0, nil
	}
	return offset, nil
}

// RightDelta returns the right-end offset of the given read.
func (f *Fact) RightDelta(id utils.ReadID) (int32, error) {
	i, err := f.which(id)
	if err != nil {
		return 0, err
	}
	if i == 0 {
		return f.rightDelta1, nil
	}
	return f.rightDelta2, nil
}

func (f *Fact) quantizedMatch(field int) uint8 {
	return uint8(f.matches>>uint(field*matchBits)) & matchMask
}

func (f *Fact) match(id utils.ReadID, threePrime bool) (uint32, error) {
	i, err := f.which(id)
	if err != nil {
		return 0, err
	}
	field := match5p1
	if threePrime {
		field = match3p1
	}
	if i == 1 {
		field += match5p2
	}
	return uint32(f.quantizedMatch(field)) * MatchQuantum, nil
}

// Match5 returns the approximate length of the contiguous match at
// the 5' end of the given read. Lengths are multiples of MatchQuantum
// and saturate at MaxQuantizedMatch*MatchQuantum.
func (f *Fact) Match5(id utils.ReadID) (uint32, error) {
	return f.match(id, false)
}

// Match3 returns the approximate length of the contiguous match at
// the 3' end of the given read, like Match5.
func (f *Fact) Match3(id utils.ReadID) (uint32, error) {
	return f.match(id, true)
}
