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

package skim

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/elasm/bloom"
	"github.com/exascience/elasm/overlap"
	"github.com/exascience/elasm/utils"
)

func randomSequence(r *rand.Rand, n int) []byte {
	seq := make([]byte, n)
	for i := range seq {
		seq[i] = "ACGT"[r.Intn(4)]
	}
	return seq
}

func reverseComplement(seq []byte) []byte {
	result := make([]byte, len(seq))
	for i, b := range seq {
		var c byte
		switch b {
		case 'A':
			c = 'T'
		case 'C':
			c = 'G'
		case 'G':
			c = 'C'
		case 'T':
			c = 'A'
		}
		result[len(seq)-1-i] = c
	}
	return result
}

// makeReads returns three overlapping reads from one random genome,
// the third one reverse complemented, and one unrelated read.
func makeReads() [][]byte {
	r := rand.New(rand.NewSource(2026))
	genome := randomSequence(r, 300)
	return [][]byte{
		genome[0:120],
		genome[60:180],
		reverseComplement(genome[100:220]),
		randomSequence(r, 120),
	}
}

func newCounting(t *testing.T) bloom.Filter[uint64] {
	f, err := bloom.NewCounting[uint64](16, 3)
	require.NoError(t, err)
	return f
}

func TestSkim(t *testing.T) {
	edges, err := Skim(makeReads(), newCounting(t), Options{KmerSize: 15, MinShared: 1})
	require.NoError(t, err)
	require.Len(t, edges, 3)

	e := edges[0]
	assert.Equal(t, utils.ReadID(0), e.ID1)
	assert.Equal(t, utils.ReadID(1), e.ID2)
	assert.Equal(t, int32(46), e.Weight)
	assert.Equal(t, int32(60), e.EOffset)
	assert.Equal(t, utils.Forward, e.Direction1())
	assert.Equal(t, utils.Forward, e.Direction2())
	assert.Equal(t, uint8(43), e.Ratio)
	assert.True(t, e.Flags.Has(overlap.WeakGood))

	e = edges[1]
	assert.Equal(t, utils.ReadID(0), e.ID1)
	assert.Equal(t, utils.ReadID(2), e.ID2)
	assert.Equal(t, int32(6), e.Weight)
	assert.Equal(t, int32(100), e.EOffset)
	assert.Equal(t, utils.Reverse, e.Direction2())
	assert.Equal(t, overlap.Repetitive, e.Flags, "all shared k-mers occur more often than average")

	e = edges[2]
	assert.Equal(t, utils.ReadID(1), e.ID1)
	assert.Equal(t, utils.ReadID(2), e.ID2)
	assert.Equal(t, int32(66), e.Weight)
	assert.Equal(t, int32(40), e.EOffset)
	assert.Equal(t, utils.Reverse, e.RelativeDirection())
	assert.GreaterOrEqual(t, e.HitIndex, int64(0))
}

func TestSkimMinShared(t *testing.T) {
	edges, err := Skim(makeReads(), newCounting(t), Options{KmerSize: 15, MinShared: 10})
	require.NoError(t, err)
	require.Len(t, edges, 2)
	assert.Equal(t, utils.ReadID(1), edges[0].ID2)
	assert.Equal(t, utils.ReadID(1), edges[1].ID1)
}

func TestSkimMaxMultiplicity(t *testing.T) {
	edges, err := Skim(makeReads(), newCounting(t), Options{KmerSize: 15, MaxMultiplicity: 2})
	require.NoError(t, err)
	require.Len(t, edges, 2)
	assert.Equal(t, int32(40), edges[0].Weight)
	assert.Equal(t, int32(60), edges[1].Weight)
	for _, e := range edges {
		assert.Equal(t, overlap.StrongGood|overlap.NonRepetitive, e.Flags)
	}
}

func TestSkimPresenceFilter(t *testing.T) {
	presence, err := bloom.NewPresence[uint64](18, 3)
	require.NoError(t, err)
	withPresence, err := Skim(makeReads(), presence, Options{KmerSize: 15, MinShared: 1})
	require.NoError(t, err)
	withCounting, err := Skim(makeReads(), newCounting(t), Options{KmerSize: 15, MinShared: 1})
	require.NoError(t, err)
	assert.Equal(t, withCounting, withPresence)
	assert.Greater(t, presence.Counts().Twice, uint64(0))
}

func TestSkimEdgeCases(t *testing.T) {
	_, err := Skim(makeReads(), newCounting(t), Options{KmerSize: 0})
	assert.True(t, errors.Is(err, bloom.ErrConfig))
	edges, err := Skim(nil, newCounting(t), Options{KmerSize: 15})
	require.NoError(t, err)
	assert.Empty(t, edges)
	reads := makeReads()
	edges, err = Skim([][]byte{reads[0], reads[3]}, newCounting(t), Options{KmerSize: 15})
	require.NoError(t, err)
	assert.Empty(t, edges)
}
