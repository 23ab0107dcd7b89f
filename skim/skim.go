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

// Package skim finds candidate overlaps between reads from shared
// k-mers, using a membership filter to discard k-mers that occur only
// once before any exact bookkeeping is done.
package skim

import (
	"math"
	"sort"

	"github.com/exascience/pargo/parallel"

	"github.com/exascience/elasm/bloom"
	"github.com/exascience/elasm/overlap"
	"github.com/exascience/elasm/utils"
)

// Options control candidate selection.
type Options struct {
	// KmerSize is the length of the shared k-mers, at most 32.
	KmerSize int

	// MinShared is the minimum number of shared k-mers for a candidate.
	MinShared int

	// MaxMultiplicity drops k-mers that occur in more reads than this.
	// 0 means no limit.
	MaxMultiplicity int
}

type occurrence struct {
	read    utils.ReadID
	pos     int32
	forward bool
}

type kmerOccurrence struct {
	hash uint64
	occurrence
}

type pairKey struct {
	id1, id2 utils.ReadID
	dir      utils.Direction
}

type pairHits struct {
	hits      int
	firstHit  int64
	diagonals map[int32]int
	nonRep    int
	belowAvg  int
}

// repeatedKmers adds all k-mers to the filter and returns those that
// the filter reports as seen more than once.
func repeatedKmers(reads [][]byte, filter bloom.Filter[uint64], k int) (map[uint64]struct{}, error) {
	repeated := make(map[uint64]struct{})
	for _, read := range reads {
		if err := bloom.KmerHashes(read, k, func(_ int, hash uint64, _ bool) {
			if filter.Add(hash) >= bloom.Twice {
				repeated[hash] = struct{}{}
			}
		}); err != nil {
			return nil, err
		}
	}
	return repeated, nil
}

// Skim returns the candidate overlaps between reads, sorted by ID1
// and descending weight. The read ID of a read is its index in reads.
// The filter is used by a single goroutine and is not reset.
func Skim(reads [][]byte, filter bloom.Filter[uint64], opt Options) ([]overlap.SkimEdge, error) {
	k := opt.KmerSize
	if err := bloom.CheckKmerSize(k); err != nil {
		return nil, err
	}
	repeated, err := repeatedKmers(reads, filter, k)
	if err != nil {
		return nil, err
	}

	perRead := make([][]kmerOccurrence, len(reads))
	parallel.Range(0, len(reads), 0, func(low, high int) {
		for i := low; i < high; i++ {
			id := utils.ReadID(i)
			_ = bloom.KmerHashes(reads[i], k, func(pos int, hash uint64, forward bool) {
				if _, ok := repeated[hash]; ok {
					perRead[i] = append(perRead[i], kmerOccurrence{hash, occurrence{id, int32(pos), forward}})
				}
			})
		}
	})

	groups := make(map[uint64][]occurrence)
	for _, occs := range perRead {
		for _, occ := range occs {
			groups[occ.hash] = append(groups[occ.hash], occ.occurrence)
		}
	}
	hashes := make([]uint64, 0, len(groups))
	var totalFreq int
	for hash, occs := range groups {
		freq := distinctReads(occs)
		if freq < 2 || (opt.MaxMultiplicity > 0 && freq > opt.MaxMultiplicity) {
			delete(groups, hash)
			continue
		}
		hashes = append(hashes, hash)
		totalFreq += freq
	}
	if len(hashes) == 0 {
		return nil, nil
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	avgFreq := float64(totalFreq) / float64(len(hashes))

	pairs := make(map[pairKey]*pairHits)
	var hitIndex int64
	for _, hash := range hashes {
		occs := groups[hash]
		freq := distinctReads(occs)
		for i := range occs {
			for j := i + 1; j < len(occs); j++ {
				a, b := occs[i], occs[j]
				if a.read == b.read {
					continue
				}
				if a.read > b.read {
					a, b = b, a
				}
				key, diagonal := hit(a, b, len(reads[b.read]), k)
				p := pairs[key]
				if p == nil {
					p = &pairHits{firstHit: hitIndex, diagonals: make(map[int32]int)}
					pairs[key] = p
				}
				p.hits++
				p.diagonals[diagonal]++
				if freq == 2 {
					p.nonRep++
				}
				if float64(freq) <= avgFreq {
					p.belowAvg++
				}
				hitIndex++
			}
		}
	}

	keys := make([]pairKey, 0, len(pairs))
	for key := range pairs {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		ki, kj := keys[i], keys[j]
		if ki.id1 != kj.id1 {
			return ki.id1 < kj.id1
		}
		if ki.id2 != kj.id2 {
			return ki.id2 < kj.id2
		}
		return ki.dir < kj.dir
	})

	minShared := opt.MinShared
	if minShared < 1 {
		minShared = 1
	}
	var edges []overlap.SkimEdge
	for _, key := range keys {
		p := pairs[key]
		if p.hits < minShared {
			continue
		}
		e := overlap.SkimEdge{
			ID1:      key.id1,
			ID2:      key.id2,
			EOffset:  bestDiagonal(p.diagonals),
			Weight:   clampInt32(p.hits),
			HitIndex: p.firstHit,
			Ratio:    ratio(p.hits, len(reads[key.id1]), len(reads[key.id2]), k),
			Flags:    classify(p),
		}
		if err := e.SetDirection1(utils.Forward); err != nil {
			return nil, err
		}
		if err := e.SetDirection2(key.dir); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	overlap.SortSkimEdgesByID1Weight(edges)
	return overlap.DedupSkimEdges(edges), nil
}

func distinctReads(occs []occurrence) (n int) {
	seen := make(map[utils.ReadID]struct{}, len(occs))
	for _, occ := range occs {
		if _, ok := seen[occ.read]; !ok {
			seen[occ.read] = struct{}{}
			n++
		}
	}
	return
}

// hit returns the pair key and the diagonal, the estimated offset of
// read b relative to read a, for a k-mer shared by a and b. If the
// k-mer lies on opposite strands, read b is taken reverse complemented.
func hit(a, b occurrence, lenB, k int) (pairKey, int32) {
	if a.forward == b.forward {
		return pairKey{a.read, b.read, utils.Forward}, a.pos - b.pos
	}
	return pairKey{a.read, b.read, utils.Reverse}, a.pos - (int32(lenB) - b.pos - int32(k))
}

func bestDiagonal(diagonals map[int32]int) (best int32) {
	count := -1
	for diagonal, n := range diagonals {
		if n > count || (n == count && diagonal < best) {
			best, count = diagonal, n
		}
	}
	return
}

func clampInt32(n int) int32 {
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(n)
}

func ratio(hits, len1, len2, k int) uint8 {
	possible := len1
	if len2 < possible {
		possible = len2
	}
	possible -= k - 1
	if possible <= 0 || hits >= possible {
		return 100
	}
	return uint8(100 * hits / possible)
}

func classify(p *pairHits) overlap.RepeatFlags {
	switch {
	case p.nonRep == p.hits:
		return overlap.StrongGood | overlap.NonRepetitive
	case 2*p.nonRep >= p.hits:
		return overlap.WeakGood | overlap.BelowAvgFreq
	case 2*p.belowAvg >= p.hits:
		return overlap.BelowAvgFreq
	default:
		return overlap.Repetitive
	}
}
