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

// Package strtab implements interned string tables that map repeated
// strings, such as template or strain names, to small integer handles.
//
// A Table keeps every distinct string exactly once. Handles are
// indices into the table's storage and are never renumbered, so they
// can be stored in compact records elsewhere. Lookups use a binary
// search over a permutation of the storage that is kept sorted by
// string value.
//
// A Table is not safe for concurrent mutation. Concurrent calls to
// HasEntry and GetEntry are safe only while the table is sorted, that
// is after a lookup has been performed since the last call to
// AddEntryNoDoubleCheck.
package strtab

import (
	"fmt"
	"sort"

	"github.com/exascience/elasm/utils"
)

// Handle is the set of integer types that can serve as handles. The
// width of the handle type bounds the number of entries in a Table.
type Handle interface {
	~uint8 | ~uint16 | ~uint32
}

var (
	// ErrCapacity is returned when a Table has no room for another
	// entry. It indicates that the handle type is too small for the
	// data set.
	ErrCapacity = fmt.Errorf("%w: string table capacity exceeded", utils.ErrInternal)

	// ErrOutOfRange is returned when a handle was not issued by the
	// Table it is used with.
	ErrOutOfRange = fmt.Errorf("%w: string table handle out of range", utils.ErrInternal)
)

// A Table is an interned string table with handles of type H.
// Handle 0 always denotes the empty string.
type Table[H Handle] struct {
	name     string
	entries  []string
	order    []H
	unsorted bool
	capacity uint64
}

// New returns an empty Table. The name is only used in diagnostics.
func New[H Handle](name string) *Table[H] {
	return &Table[H]{
		name:     name,
		entries:  []string{""},
		capacity: uint64(^H(0)) + 1,
	}
}

// Name returns the name of the table.
func (t *Table[H]) Name() string {
	return t.name
}

// Size returns the number of entries, including the slot reserved
// for the empty string.
func (t *Table[H]) Size() int {
	return len(t.entries)
}

// Capacity returns the maximum number of entries, including the slot
// reserved for the empty string.
func (t *Table[H]) Capacity() uint64 {
	return t.capacity
}

func (t *Table[H]) less(h1, h2 H) bool {
	s1, s2 := t.entries[h1], t.entries[h2]
	if s1 == s2 {
		return h1 < h2
	}
	return s1 < s2
}

func (t *Table[H]) ensureSorted() {
	if t.unsorted {
		sort.Slice(t.order, func(i, j int) bool {
			return t.less(t.order[i], t.order[j])
		})
		t.unsorted = false
	}
}

// search returns the position in t.order of the first entry that is
// not less than s, and whether that entry is equal to s.
func (t *Table[H]) search(s string) (int, bool) {
	t.ensureSorted()
	pos := sort.Search(len(t.order), func(i int) bool {
		return t.entries[t.order[i]] >= s
	})
	return pos, pos < len(t.order) && t.entries[t.order[pos]] == s
}

func (t *Table[H]) checkCapacity() error {
	if uint64(len(t.entries)) >= t.capacity {
		return fmt.Errorf("%w: table %v is full with %v entries", ErrCapacity, t.name, len(t.entries))
	}
	return nil
}

// AddEntry returns the handle of s, adding s to the table if it is
// not present yet. The empty string always yields handle 0.
func (t *Table[H]) AddEntry(s string) (H, error) {
	if s == "" {
		return 0, nil
	}
	pos, found := t.search(s)
	if found {
		return t.order[pos], nil
	}
	if err := t.checkCapacity(); err != nil {
		return 0, err
	}
	h := H(len(t.entries))
	t.entries = append(t.entries, s)
	t.order = append(t.order, 0)
	copy(t.order[pos+1:], t.order[pos:])
	t.order[pos] = h
	return h, nil
}

// AddEntryNoDoubleCheck appends s without checking whether it is
// already present, and marks the table as unsorted. The next lookup
// sorts the table once, which amortizes many appends into a single
// sort. If s was already present, lookups return the older handle.
func (t *Table[H]) AddEntryNoDoubleCheck(s string) (H, error) {
	if s == "" {
		return 0, nil
	}
	if err := t.checkCapacity(); err != nil {
		return 0, err
	}
	h := H(len(t.entries))
	t.entries = append(t.entries, s)
	t.order = append(t.order, h)
	t.unsorted = true
	return h, nil
}

// HasEntry returns the handle of s, or 0 if s is not in the table.
func (t *Table[H]) HasEntry(s string) H {
	if s == "" {
		return 0
	}
	if pos, found := t.search(s); found {
		return t.order[pos]
	}
	return 0
}

// GetEntry returns the string for the given handle.
func (t *Table[H]) GetEntry(h H) (string, error) {
	if uint64(h) >= uint64(len(t.entries)) {
		return "", fmt.Errorf("%w: handle %v not in table %v of size %v", ErrOutOfRange, h, t.name, len(t.entries))
	}
	return t.entries[h], nil
}

// Sorted returns all non-empty entries in lexicographic order.
func (t *Table[H]) Sorted() []string {
	t.ensureSorted()
	result := make([]string, len(t.order))
	for i, h := range t.order {
		result[i] = t.entries[h]
	}
	return result
}

// Trash removes all entries except the empty string. Storage is kept
// for reuse.
func (t *Table[H]) Trash() {
	clear(t.entries[1:])
	t.entries = t.entries[:1]
	t.order = t.order[:0]
	t.unsorted = false
}

// Status returns a one-line summary of the table for diagnostics.
func (t *Table[H]) Status() string {
	var bytes int
	for _, s := range t.entries {
		bytes += len(s)
	}
	return fmt.Sprintf("string table %v: %v of %v entries, %v bytes of text, sorted: %v",
		t.name, len(t.entries), t.capacity, bytes, !t.unsorted)
}
