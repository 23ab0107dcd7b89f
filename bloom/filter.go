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

// Package bloom implements fixed-size probabilistic membership
// filters over k-mer hash values.
//
// Two variants share the same construction and reset contracts.
// CountingFilter stores a 4-bit saturating counter per slot and
// classifies keys as seen once, twice, or three times or more.
// PresenceFilter stores a single bit per slot, uses a quarter of the
// memory, and can only tell whether a key was seen before.
//
// Filters are not safe for concurrent mutation. Concurrent calls to
// Lookup are safe as long as no goroutine calls Add or Reset.
package bloom

import (
	"fmt"
	"strconv"

	"github.com/exascience/elasm/internal"
	"github.com/exascience/elasm/utils"
)

// KeyHash is the set of hash types that filters accept as keys.
type KeyHash interface {
	~uint32 | ~uint64
}

// Multiplicity classifies how often a key has been added to a filter.
type Multiplicity uint8

// Multiplicity values, in increasing order.
const (
	Absent Multiplicity = iota
	Once
	Twice
	Often
)

func (m Multiplicity) String() string {
	switch m {
	case Absent:
		return "absent"
	case Once:
		return "once"
	case Twice:
		return "twice"
	default:
		return "often"
	}
}

// Counts are the running classification counters of a filter.
//
// For a CountingFilter, Unique is the number of keys currently seen
// exactly once, Twice the number seen exactly twice, and Often the
// number seen three times or more. For a PresenceFilter, Unique is
// the number of keys that were new when added, Twice the number of
// additions of keys that were already present, and Often is always 0.
type Counts struct {
	Added, Unique, Twice, Often uint64
}

func (c Counts) String() string {
	return fmt.Sprintf("added %v, unique %v, twice %v, often %v", c.Added, c.Unique, c.Twice, c.Often)
}

// A Filter is a probabilistic multiplicity filter over keys of type K.
type Filter[K KeyHash] interface {
	// Add inserts key and returns its multiplicity after insertion.
	Add(key K) Multiplicity
	// Lookup returns the multiplicity of key without modifying the filter.
	Lookup(key K) Multiplicity
	// Reset clears all slots and counters, keeping the storage.
	Reset()
	// Counts returns the running classification counters.
	Counts() Counts
	// Bits returns the address width.
	Bits() uint
	// NumKeys returns the number of hash functions per key.
	NumKeys() int
}

const (
	// MaxKeys is the maximum number of hash functions per key.
	MaxKeys = 20

	// MaxBits is the maximum address width.
	MaxBits = 64
)

// ErrConfig is returned for invalid filter parameters.
var ErrConfig = fmt.Errorf("%w: invalid membership filter configuration", utils.ErrInternal)

type config struct {
	bits    uint
	numKeys int
	mask    uint64
}

func newConfig(bits uint, numKeys int) (config, error) {
	if numKeys < 1 || numKeys > MaxKeys {
		return config{}, fmt.Errorf("%w: number of keys %v not in [1,%v]", ErrConfig, numKeys, MaxKeys)
	}
	if bits < 1 || bits > MaxBits {
		return config{}, fmt.Errorf("%w: address width %v not in [1,%v]", ErrConfig, bits, MaxBits)
	}
	if bits > strconv.IntSize-2 {
		return config{}, fmt.Errorf("%w: address width %v not addressable on a %v-bit platform", ErrConfig, bits, strconv.IntSize)
	}
	return config{
		bits:    bits,
		numKeys: numKeys,
		mask:    ^uint64(0) >> (MaxBits - bits),
	}, nil
}

// CheckConfig returns an error if a filter with 2^bits slots and
// numKeys hash functions per key cannot be created on this platform.
func CheckConfig(bits uint, numKeys int) error {
	_, err := newConfig(bits, numKeys)
	return err
}

func (c *config) slots() int {
	return int(c.mask) + 1
}

// Bits returns the address width.
func (c *config) Bits() uint {
	return c.bits
}

// NumKeys returns the number of hash functions per key.
func (c *config) NumKeys() int {
	return c.numKeys
}

// hashes derives the two base hashes for double hashing from a key.
func hashes(key uint64) (h1, h2 uint64) {
	h1 = internal.Mix64(key)
	h2 = internal.Mix64(h1) | 1
	return
}

func (c *config) slot(h1, h2 uint64, i int) int {
	return int((h1 + uint64(i)*h2) & c.mask)
}

func multiplicity(count byte) Multiplicity {
	if count >= byte(Often) {
		return Often
	}
	return Multiplicity(count)
}
