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

// Package params loads assembly parameters from YAML files.
package params

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/exascience/elasm/bloom"
	"github.com/exascience/elasm/internal"
	"github.com/exascience/elasm/scaffold"
	"github.com/exascience/elasm/skim"
	"github.com/exascience/elasm/utils"
)

// ErrInvalid is returned for parameter values outside their valid range.
var ErrInvalid = fmt.Errorf("%w: invalid parameter", utils.ErrInternal)

// Skim holds the parameters of the candidate stage.
type Skim struct {
	KmerSize            int  `yaml:"kmer_size"`
	FilterBits          uint `yaml:"filter_bits"`
	FilterKeys          int  `yaml:"filter_keys"`
	Counting            bool `yaml:"counting"`
	MinShared           int  `yaml:"min_shared"`
	MaxKmerMultiplicity int  `yaml:"max_kmer_multiplicity"`
}

// Library describes a sequencing library as it appears in a
// parameter file.
type Library struct {
	Name       string `yaml:"name"`
	InsertSize int32  `yaml:"insert_size"`
	Placement  string `yaml:"placement"`
}

// placement returns the placement scheme of the library. An empty
// placement is unknown.
func (lib *Library) placement() (scaffold.Placement, error) {
	if lib.Placement == "" {
		return scaffold.PlacementUnknown, nil
	}
	return scaffold.ParsePlacement(lib.Placement)
}

// Parameters are the parameters of an assembly run.
type Parameters struct {
	Skim      Skim      `yaml:"skim"`
	Libraries []Library `yaml:"libraries"`
}

// Default returns the default parameters.
func Default() *Parameters {
	return &Parameters{
		Skim: Skim{
			KmerSize:   17,
			FilterBits: 24,
			FilterKeys: 3,
			Counting:   true,
			MinShared:  2,
		},
	}
}

// Parse reads YAML parameters from r. Fields missing from the input
// keep their default values.
func Parse(r io.Reader) (*Parameters, error) {
	p := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing parameters: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Load reads YAML parameters from the named file.
func Load(filename string) (p *Parameters, err error) {
	path, err := internal.FullPathname(filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer internal.CloseWith(f, &err)
	p, err = Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return p, nil
}

// Marshal returns the YAML form of p.
func (p *Parameters) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks that all parameters are within range.
func (p *Parameters) Validate() error {
	s := &p.Skim
	if err := bloom.CheckKmerSize(s.KmerSize); err != nil {
		return fmt.Errorf("%w: skim.kmer_size: %w", ErrInvalid, err)
	}
	if err := bloom.CheckConfig(s.FilterBits, s.FilterKeys); err != nil {
		return fmt.Errorf("%w: skim.filter_bits, skim.filter_keys: %w", ErrInvalid, err)
	}
	switch {
	case s.MinShared < 1:
		return fmt.Errorf("%w: skim.min_shared %v < 1", ErrInvalid, s.MinShared)
	case s.MaxKmerMultiplicity < 0:
		return fmt.Errorf("%w: skim.max_kmer_multiplicity %v < 0", ErrInvalid, s.MaxKmerMultiplicity)
	}
	seen := make(map[string]bool, len(p.Libraries))
	for i := range p.Libraries {
		lib := &p.Libraries[i]
		if lib.Name == "" {
			return fmt.Errorf("%w: library without name", ErrInvalid)
		}
		if seen[lib.Name] {
			return fmt.Errorf("%w: duplicate library %v", ErrInvalid, lib.Name)
		}
		seen[lib.Name] = true
		if _, err := lib.placement(); err != nil {
			return fmt.Errorf("library %v: %w", lib.Name, err)
		}
	}
	return nil
}

// NewFilter returns an empty k-mer filter as configured.
func (p *Parameters) NewFilter() (bloom.Filter[uint64], error) {
	if p.Skim.Counting {
		f, err := bloom.NewCounting[uint64](p.Skim.FilterBits, p.Skim.FilterKeys)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	f, err := bloom.NewPresence[uint64](p.Skim.FilterBits, p.Skim.FilterKeys)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// SkimOptions returns the options for skim.Skim.
func (p *Parameters) SkimOptions() skim.Options {
	return skim.Options{
		KmerSize:        p.Skim.KmerSize,
		MinShared:       p.Skim.MinShared,
		MaxMultiplicity: p.Skim.MaxKmerMultiplicity,
	}
}

// LibraryTable returns the configured libraries by name.
func (p *Parameters) LibraryTable() (map[string]*scaffold.Library, error) {
	table := make(map[string]*scaffold.Library, len(p.Libraries))
	for i := range p.Libraries {
		lib := &p.Libraries[i]
		placement, err := lib.placement()
		if err != nil {
			return nil, fmt.Errorf("library %v: %w", lib.Name, err)
		}
		table[lib.Name] = &scaffold.Library{
			Name:       lib.Name,
			InsertSize: lib.InsertSize,
			Placement:  placement,
		}
	}
	return table, nil
}
