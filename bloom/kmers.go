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

import "fmt"

// MaxKmerSize is the largest k-mer that fits a 64-bit hash.
const MaxKmerSize = 32

var baseCodes = func() (codes [256]int8) {
	for i := range codes {
		codes[i] = -1
	}
	for i, b := range []byte("ACGT") {
		codes[b] = int8(i)
		codes[b+'a'-'A'] = int8(i)
	}
	return
}()

// CheckKmerSize returns an error if k-mers of size k cannot be hashed.
func CheckKmerSize(k int) error {
	if k < 1 || k > MaxKmerSize {
		return fmt.Errorf("%w: k-mer size %v not in [1,%v]", ErrConfig, k, MaxKmerSize)
	}
	return nil
}

// KmerHashes calls fn for every k-mer of seq that consists only of
// the bases A, C, G, and T, in either case. The hash is the 2-bit
// encoding of the canonical k-mer, the smaller of the k-mer and its
// reverse complement, so a sequence and its reverse complement yield
// the same hashes. forward is true if the canonical k-mer is the one
// read on the forward strand of seq; pos is the offset of the k-mer
// in seq.
func KmerHashes(seq []byte, k int, fn func(pos int, hash uint64, forward bool)) error {
	if err := CheckKmerSize(k); err != nil {
		return err
	}
	mask := ^uint64(0) >> uint(2*(MaxKmerSize-k))
	shift := uint(2 * (k - 1))
	var fw, rc uint64
	valid := 0
	for i, b := range seq {
		code := baseCodes[b]
		if code < 0 {
			valid = 0
			continue
		}
		fw = ((fw << 2) | uint64(code)) & mask
		rc = (rc >> 2) | (uint64(3-code) << shift)
		if valid++; valid >= k {
			if fw <= rc {
				fn(i-k+1, fw, true)
			} else {
				fn(i-k+1, rc, false)
			}
		}
	}
	return nil
}
