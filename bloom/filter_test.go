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

package bloom

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/elasm/utils"
)

func TestConfigValidation(t *testing.T) {
	for _, tc := range []struct {
		bits    uint
		numKeys int
	}{
		{0, 3}, {65, 3}, {16, 0}, {16, 21}, {63, 3},
	} {
		_, err := NewCounting[uint64](tc.bits, tc.numKeys)
		assert.True(t, errors.Is(err, ErrConfig), "counting %v", tc)
		assert.True(t, errors.Is(err, utils.ErrInternal))
		_, err = NewPresence[uint32](tc.bits, tc.numKeys)
		assert.True(t, errors.Is(err, ErrConfig), "presence %v", tc)
		assert.True(t, errors.Is(CheckConfig(tc.bits, tc.numKeys), ErrConfig), "check %v", tc)
	}
	assert.NoError(t, CheckConfig(20, 3))
	f, err := NewCounting[uint32](1, MaxKeys)
	require.NoError(t, err)
	assert.Equal(t, uint(1), f.Bits())
	assert.Equal(t, MaxKeys, f.NumKeys())
}

func TestCountingLadder(t *testing.T) {
	f, err := NewCounting[uint64](16, 4)
	require.NoError(t, err)
	assert.Equal(t, Absent, f.Lookup(7))
	assert.Equal(t, Once, f.Add(7))
	assert.Equal(t, Counts{Added: 1, Unique: 1}, f.Counts())
	assert.Equal(t, Twice, f.Add(7))
	assert.Equal(t, Counts{Added: 2, Twice: 1}, f.Counts())
	assert.Equal(t, Often, f.Add(7))
	assert.Equal(t, Counts{Added: 3, Often: 1}, f.Counts())
	for i := 0; i < 20; i++ {
		assert.Equal(t, Often, f.Add(7))
	}
	assert.Equal(t, uint64(1), f.Counts().Often)
	assert.Equal(t, Once, f.Add(8))
	assert.Equal(t, Once, f.Lookup(8))
	assert.Equal(t, Often, f.Lookup(7))
	assert.Equal(t, uint64(1), f.Counts().Unique)
}

func TestCountingManyKeys(t *testing.T) {
	f, err := NewCounting[uint32](20, 3)
	require.NoError(t, err)
	for key := uint32(0); key < 1000; key++ {
		f.Add(key)
		if key%2 == 0 {
			f.Add(key)
		}
	}
	for key := uint32(0); key < 1000; key++ {
		if key%2 == 0 {
			assert.GreaterOrEqual(t, f.Lookup(key), Twice)
		} else {
			assert.GreaterOrEqual(t, f.Lookup(key), Once)
		}
	}
	counts := f.Counts()
	assert.Equal(t, uint64(1500), counts.Added)
	assert.InDelta(t, 500, counts.Unique, 5)
	assert.InDelta(t, 500, counts.Twice, 5)
}

func TestPresence(t *testing.T) {
	f, err := NewPresence[uint64](12, 2)
	require.NoError(t, err)
	assert.Equal(t, Absent, f.Lookup(99))
	assert.Equal(t, Once, f.Add(99))
	assert.Equal(t, Once, f.Lookup(99))
	assert.Equal(t, Twice, f.Add(99))
	assert.Equal(t, Twice, f.Add(99))
	assert.Equal(t, Counts{Added: 3, Unique: 1, Twice: 2}, f.Counts())
}

func TestReset(t *testing.T) {
	counting, err := NewCounting[uint64](10, 3)
	require.NoError(t, err)
	presence, err := NewPresence[uint64](10, 3)
	require.NoError(t, err)
	for _, f := range []Filter[uint64]{counting, presence} {
		for key := uint64(0); key < 100; key++ {
			f.Add(key * 7919)
			f.Add(key * 7919)
		}
		f.Reset()
		assert.Equal(t, Counts{}, f.Counts())
		for key := uint64(0); key < 100; key++ {
			assert.Equal(t, Absent, f.Lookup(key*7919))
		}
		assert.Equal(t, uint(10), f.Bits())
		assert.Equal(t, 3, f.NumKeys())
	}
}

func revcomp(seq string) string {
	comp := map[byte]byte{'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A'}
	result := make([]byte, len(seq))
	for i := range seq {
		result[len(seq)-1-i] = comp[seq[i]]
	}
	return string(result)
}

func collect(t *testing.T, seq string, k int) (positions []int, hashes map[uint64]int) {
	hashes = make(map[uint64]int)
	require.NoError(t, KmerHashes([]byte(seq), k, func(pos int, hash uint64, _ bool) {
		positions = append(positions, pos)
		hashes[hash]++
	}))
	return
}

func TestKmerHashes(t *testing.T) {
	seq := "ACGTTGCAAGGCTTAACCGGTATATCG"
	positions, fwHashes := collect(t, seq, 5)
	assert.Len(t, positions, len(seq)-4)
	_, rcHashes := collect(t, revcomp(seq), 5)
	assert.Equal(t, fwHashes, rcHashes, "canonical k-mers are strand independent")

	positions, _ = collect(t, "ACGTNACGTAc", 4)
	assert.Equal(t, []int{0, 5, 6, 7}, positions, "windows containing N are skipped")

	var hash uint64
	var forward bool
	require.NoError(t, KmerHashes([]byte("CA"), 2, func(_ int, h uint64, f bool) { hash, forward = h, f }))
	assert.Equal(t, uint64(0x4), hash, "CA = 01 00")
	assert.True(t, forward, "CA < TG")
	require.NoError(t, KmerHashes([]byte("TG"), 2, func(_ int, h uint64, f bool) { hash, forward = h, f }))
	assert.Equal(t, uint64(0x4), hash)
	assert.False(t, forward)

	_, all := collect(t, "ACGTACGTACGTACGTACGTACGTACGTACGTAC", 32)
	assert.Len(t, all, 3)

	assert.True(t, errors.Is(KmerHashes(nil, 0, nil), ErrConfig))
	assert.True(t, errors.Is(KmerHashes(nil, 33, nil), ErrConfig))
	assert.True(t, errors.Is(CheckKmerSize(0), ErrConfig))
	assert.True(t, errors.Is(CheckKmerSize(MaxKmerSize+1), ErrConfig))
	assert.NoError(t, CheckKmerSize(MaxKmerSize))
}

func BenchmarkCountingAdd(b *testing.B) {
	f, err := NewCounting[uint64](24, 3)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Add(uint64(i))
	}
}
