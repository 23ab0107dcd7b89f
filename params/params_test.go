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

package params

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/elasm/bloom"
	"github.com/exascience/elasm/scaffold"
	"github.com/exascience/elasm/utils"
)

const example = `
skim:
  kmer_size: 21
  filter_bits: 20
  counting: false
libraries:
  - name: pe300
    insert_size: 300
    placement: fr
  - name: mp3k
    insert_size: 3000
    placement: outward
`

func TestDefault(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())
	assert.Equal(t, Skim{KmerSize: 17, FilterBits: 24, FilterKeys: 3, Counting: true, MinShared: 2}, p.Skim)
	assert.Empty(t, p.Libraries)

	p, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestParse(t *testing.T) {
	p, err := Parse(strings.NewReader(example))
	require.NoError(t, err)
	assert.Equal(t, 21, p.Skim.KmerSize)
	assert.Equal(t, uint(20), p.Skim.FilterBits)
	assert.Equal(t, 3, p.Skim.FilterKeys, "default kept")
	assert.False(t, p.Skim.Counting)
	assert.Equal(t, 2, p.Skim.MinShared, "default kept")
	require.Len(t, p.Libraries, 2)
	assert.Equal(t, Library{Name: "pe300", InsertSize: 300, Placement: "fr"}, p.Libraries[0])

	f, err := p.NewFilter()
	require.NoError(t, err)
	_, ok := f.(*bloom.PresenceFilter[uint64])
	assert.True(t, ok)
	assert.Equal(t, uint(20), f.Bits())
	assert.Equal(t, 3, f.NumKeys())

	table, err := p.LibraryTable()
	require.NoError(t, err)
	assert.Equal(t, &scaffold.Library{Name: "pe300", InsertSize: 300, Placement: scaffold.Inward}, table["pe300"])
	assert.Equal(t, &scaffold.Library{Name: "mp3k", InsertSize: 3000, Placement: scaffold.Outward}, table["mp3k"])

	opt := p.SkimOptions()
	assert.Equal(t, 21, opt.KmerSize)
	assert.Equal(t, 2, opt.MinShared)
	assert.Equal(t, 0, opt.MaxMultiplicity)
}

func TestCountingFilter(t *testing.T) {
	p := Default()
	p.Skim.FilterBits = 12
	f, err := p.NewFilter()
	require.NoError(t, err)
	_, ok := f.(*bloom.CountingFilter[uint64])
	assert.True(t, ok)

	p.Skim.FilterBits = 64
	f, err = p.NewFilter()
	assert.True(t, errors.Is(err, bloom.ErrConfig))
	assert.Nil(t, f)
}

func TestInvalid(t *testing.T) {
	tests := map[string]string{
		"kmer":         "skim:\n  kmer_size: 33\n",
		"bits":         "skim:\n  filter_bits: 0\n",
		"platform":     "skim:\n  filter_bits: 63\n",
		"keys":         "skim:\n  filter_keys: 21\n",
		"shared":       "skim:\n  min_shared: 0\n",
		"multiplicity": "skim:\n  max_kmer_multiplicity: -1\n",
		"unnamed":      "libraries:\n  - insert_size: 300\n",
		"duplicate":    "libraries:\n  - name: a\n  - name: a\n",
	}
	for name, input := range tests {
		_, err := Parse(strings.NewReader(input))
		assert.True(t, errors.Is(err, ErrInvalid), name)
		assert.True(t, errors.Is(err, utils.ErrInternal), name)
	}

	p := Default()
	p.Skim.FilterBits = 63
	err := p.Validate()
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.True(t, errors.Is(err, bloom.ErrConfig), "validation applies the filter's own limits")

	_, err = Parse(strings.NewReader("libraries:\n  - name: a\n    placement: sideways\n"))
	assert.True(t, errors.Is(err, scaffold.ErrPlacement))

	_, err = Parse(strings.NewReader("skim:\n  kmer_length: 21\n"))
	assert.Error(t, err, "unknown field")
}

func TestLoad(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "elasm.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(example), 0o644))
	p, err := Load(filename)
	require.NoError(t, err)
	assert.Equal(t, 21, p.Skim.KmerSize)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMarshal(t *testing.T) {
	p, err := Parse(strings.NewReader(example))
	require.NoError(t, err)
	data, err := p.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "kmer_size: 21")
	q, err := Parse(strings.NewReader(string(data)))
	require.NoError(t, err)
	assert.Equal(t, p, q)
}
