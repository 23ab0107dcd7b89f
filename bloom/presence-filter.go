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

import "github.com/bits-and-blooms/bitset"

// PresenceFilter stores a single bit per slot. A key is present if
// all of its bits are set.
type PresenceFilter[K KeyHash] struct {
	config
	set    *bitset.BitSet
	counts Counts
}

// NewPresence returns a PresenceFilter with 2^bits slots and numKeys
// hash functions per key.
func NewPresence[K KeyHash](bits uint, numKeys int) (*PresenceFilter[K], error) {
	c, err := newConfig(bits, numKeys)
	if err != nil {
		return nil, err
	}
	return &PresenceFilter[K]{
		config: c,
		set:    bitset.New(uint(c.slots())),
	}, nil
}

func (f *PresenceFilter[K]) present(h1, h2 uint64) bool {
	for i := 0; i < f.numKeys; i++ {
		if !f.set.Test(uint(f.slot(h1, h2, i))) {
			return false
		}
	}
	return true
}

// Lookup returns Once if key is present, and Absent otherwise.
func (f *PresenceFilter[K]) Lookup(key K) Multiplicity {
	h1, h2 := hashes(uint64(key))
	if f.present(h1, h2) {
		return Once
	}
	return Absent
}

// Add inserts key. It returns Once if key was new, and Twice if it
// was already present.
func (f *PresenceFilter[K]) Add(key K) Multiplicity {
	h1, h2 := hashes(uint64(key))
	f.counts.Added++
	if f.present(h1, h2) {
		f.counts.Twice++
		return Twice
	}
	for i := 0; i < f.numKeys; i++ {
		f.set.Set(uint(f.slot(h1, h2, i)))
	}
	f.counts.Unique++
	return Once
}

// Reset clears all bits without reallocating.
func (f *PresenceFilter[K]) Reset() {
	f.set.ClearAll()
	f.counts = Counts{}
}

// Counts returns the running classification counters.
func (f *PresenceFilter[K]) Counts() Counts {
	return f.counts
}
