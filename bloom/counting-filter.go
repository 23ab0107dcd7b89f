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

import "github.com/exascience/elasm/utils/nibbles"

// CountingFilter stores a 4-bit saturating counter per slot. The
// multiplicity of a key is the minimum of its counters.
type CountingFilter[K KeyHash] struct {
	config
	counters nibbles.Nibbles
	counts   Counts
}

// NewCounting returns a CountingFilter with 2^bits slots and numKeys
// hash functions per key.
func NewCounting[K KeyHash](bits uint, numKeys int) (*CountingFilter[K], error) {
	c, err := newConfig(bits, numKeys)
	if err != nil {
		return nil, err
	}
	return &CountingFilter[K]{
		config:   c,
		counters: nibbles.Make(c.slots()),
	}, nil
}

func (f *CountingFilter[K]) count(h1, h2 uint64) byte {
	min := byte(nibbles.Max)
	for i := 0; i < f.numKeys; i++ {
		if v := f.counters.Get(f.slot(h1, h2, i)); v < min {
			min = v
		}
	}
	return min
}

// Lookup returns the multiplicity of key.
func (f *CountingFilter[K]) Lookup(key K) Multiplicity {
	h1, h2 := hashes(uint64(key))
	return multiplicity(f.count(h1, h2))
}

// Add inserts key, updates the classification counters, and returns
// the multiplicity of key after insertion.
func (f *CountingFilter[K]) Add(key K) Multiplicity {
	h1, h2 := hashes(uint64(key))
	before := f.count(h1, h2)
	after := byte(nibbles.Max)
	for i := 0; i < f.numKeys; i++ {
		if v := f.counters.Increment(f.slot(h1, h2, i)); v < after {
			after = v
		}
	}
	f.counts.Added++
	if before != after {
		switch after {
		case 1:
			f.counts.Unique++
		case 2:
			if f.counts.Unique > 0 {
				f.counts.Unique--
			}
			f.counts.Twice++
		case 3:
			if f.counts.Twice > 0 {
				f.counts.Twice--
			}
			f.counts.Often++
		}
	}
	return multiplicity(after)
}

// Reset clears all counters without reallocating.
func (f *CountingFilter[K]) Reset() {
	f.counters.Clear()
	f.counts = Counts{}
}

// Counts returns the running classification counters.
func (f *CountingFilter[K]) Counts() Counts {
	return f.counts
}
