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

// Package nibbles provides densely packed arrays of 4-bit values.
package nibbles

import (
	"log"
	"strconv"
)

// Max is the largest value a nibble can hold.
const Max = 0xF

// Nibbles is a slice-like data structure for storing
// sequences of 4-bit values. Two nibbles share one byte,
// the one with the even index in the high half.
type Nibbles struct {
	n     int
	bytes []byte
}

// Make creates nibbles of the given length, all set to zero.
func Make(n int) Nibbles {
	return Nibbles{
		n:     n,
		bytes: make([]byte, (n+1)>>1),
	}
}

// Len returns the number of 4-bit values stored in these nibbles.
func (n Nibbles) Len() int {
	return n.n
}

// Bytes returns the number of bytes used for storing these nibbles.
func (n Nibbles) Bytes() int {
	return len(n.bytes)
}

func shift(index int) uint {
	return uint((1 ^ (index & 1)) << 2)
}

// Get returns the nibble at the given index.
func (n Nibbles) Get(index int) byte {
	if uint(index) >= uint(n.n) {
		log.Panic("index out of range")
	}
	return 0xF & (n.bytes[index>>1] >> shift(index))
}

// Set sets the nibble at the given index.
func (n Nibbles) Set(index int, value byte) {
	if uint(index) >= uint(n.n) {
		log.Panic("index out of range")
	}
	i, s := index>>1, shift(index)
	n.bytes[i] = (n.bytes[i] &^ (0xF << s)) | ((0xF & value) << s)
}

// Increment adds one to the nibble at the given index, unless it
// already holds Max, and returns the resulting value.
func (n Nibbles) Increment(index int) byte {
	if uint(index) >= uint(n.n) {
		log.Panic("index out of range")
	}
	i, s := index>>1, shift(index)
	value := 0xF & (n.bytes[i] >> s)
	if value == Max {
		return Max
	}
	value++
	n.bytes[i] = (n.bytes[i] &^ (0xF << s)) | (value << s)
	return value
}

// Clear sets all nibbles to zero without releasing storage.
func (n Nibbles) Clear() {
	for i := range n.bytes {
		n.bytes[i] = 0
	}
}

// String returns a string representation of the given nibbles.
func (n Nibbles) String() string {
	if len := n.Len(); len > 0 {
		b := []byte("[")
		b = strconv.AppendInt(b, int64(n.Get(0)), 10)
		for i := 1; i < len; i++ {
			b = append(b, ' ')
			b = strconv.AppendInt(b, int64(n.Get(i)), 10)
		}
		return string(append(b, ']'))
	}
	return "[]"
}
