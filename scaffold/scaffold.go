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

// Package scaffold derives linkage between contigs from paired reads.
//
// For every finished contig, the Scaffolder looks at the reads that
// belong to a template with a known library layout. A read close
// enough to a contig end that its mate may lie beyond that end yields
// a Link. Links of the same template found on different contigs tie
// those contigs together; Pairs collects them for the scaffold graph.
package scaffold

import (
	"fmt"
	"sort"

	"github.com/exascience/elasm/strtab"
	"github.com/exascience/elasm/utils"
)

// PlacedRead is a read as placed in a contig.
type PlacedRead struct {
	Read utils.ReadID

	// Start is the offset of the read in the contig, Length its
	// length in the contig.
	Start, Length int32

	Direction utils.Direction

	// Template is the name of the template (insert) the read belongs
	// to, or "" if the read is unpaired.
	Template string
	Segment  Segment

	// Library is nil if the library of the read is unknown.
	Library *Library
}

// Contig is a finished contig with its reads.
type Contig struct {
	ID     int32
	Length int32
	Reads  []PlacedRead
}

// Link records that the mate of a read in a contig is expected beyond
// one of the contig's ends.
type Link struct {
	Contig int32

	// Direction is Reverse if the mate is expected beyond the left end
	// of the contig, and Forward for the right end.
	Direction utils.Direction

	// Template is the handle of the template name in the Scaffolder's
	// template table.
	Template uint32

	// Distance is measured from the contig end given by Direction to
	// the far end of the read.
	Distance int32

	InsertSize int32
}

// Scaffolder accumulates links over all contigs of an assembly. It is
// meant to be used by a single goroutine.
type Scaffolder struct {
	templates *strtab.Table[uint32]
	links     []Link
}

// New returns an empty Scaffolder.
func New() *Scaffolder {
	return &Scaffolder{templates: strtab.New[uint32]("templates")}
}

// Links returns all links found so far.
func (s *Scaffolder) Links() []Link {
	return s.links
}

// Templates returns the table of template names.
func (s *Scaffolder) Templates() *strtab.Table[uint32] {
	return s.templates
}

// Reset removes all links and template names.
func (s *Scaffolder) Reset() {
	s.links = s.links[:0]
	s.templates.Trash()
}

// AddContig scans the reads of a contig and appends a link for every
// read whose mate may lie beyond a contig end within the insert size
// of its library. It returns the number of links added. If an error
// is returned, no links of c are added.
func (s *Scaffolder) AddContig(c *Contig) (added int, err error) {
	for i := range c.Reads {
		if err = checkRead(&c.Reads[i]); err != nil {
			return 0, err
		}
	}
	before := len(s.links)
	for i := range c.Reads {
		r := &c.Reads[i]
		if !scaffolds(r) {
			continue
		}
		insert := r.Library.InsertSize
		leftDistance := r.Start + r.Length
		rightDistance := c.Length - r.Start
		if insert > 0 && leftDistance > insert && rightDistance > insert {
			continue
		}
		left, right, err := wants(r.Library.Placement, r.Segment, r.Direction)
		if err != nil {
			s.links = s.links[:before]
			return 0, err
		}
		if insert > 0 {
			left = left && leftDistance <= insert
			right = right && rightDistance <= insert
		}
		if !left && !right {
			continue
		}
		template, err := s.templates.AddEntry(r.Template)
		if err != nil {
			s.links = s.links[:before]
			return 0, err
		}
		if left {
			s.links = append(s.links, Link{
				Contig:     c.ID,
				Direction:  utils.Reverse,
				Template:   template,
				Distance:   leftDistance,
				InsertSize: insert,
			})
			added++
		}
		if right {
			s.links = append(s.links, Link{
				Contig:     c.ID,
				Direction:  utils.Forward,
				Template:   template,
				Distance:   rightDistance,
				InsertSize: insert,
			})
			added++
		}
	}
	return added, nil
}

func scaffolds(r *PlacedRead) bool {
	return r.Template != "" && r.Library != nil && r.Library.Placement != PlacementUnknown
}

// checkRead rejects reads that take part in scaffolding with a
// placement or direction that cannot be interpreted, wherever they
// lie in the contig.
func checkRead(r *PlacedRead) error {
	if !scaffolds(r) {
		return nil
	}
	if r.Library.Placement >= numPlacements {
		return fmt.Errorf("%w: %v for read %v", ErrPlacement, r.Library.Placement, r.Read)
	}
	if !r.Direction.Valid() {
		return fmt.Errorf("%w: %v for read %v", ErrDirection, int8(r.Direction), r.Read)
	}
	return nil
}

// Pair ties two contigs together through a template with links on
// both. ContigA < ContigB.
type Pair struct {
	Template uint32

	ContigA int32
	DirA    utils.Direction
	ContigB int32
	DirB    utils.Direction

	// Gap is the estimated distance between the two contig ends: the
	// insert size minus the link distances. It is 0 if the insert size
	// is unknown.
	Gap int32
}

// Pairs returns, for every template with links on different contigs,
// a Pair for each combination of such links, ordered by template and
// contigs.
func (s *Scaffolder) Pairs() []Pair {
	byTemplate := make(map[uint32][]int)
	for i := range s.links {
		t := s.links[i].Template
		byTemplate[t] = append(byTemplate[t], i)
	}
	var pairs []Pair
	for template, indices := range byTemplate {
		for i, x := range indices {
			for _, y := range indices[i+1:] {
				a, b := &s.links[x], &s.links[y]
				if a.Contig == b.Contig {
					continue
				}
				if a.Contig > b.Contig {
					a, b = b, a
				}
				p := Pair{
					Template: template,
					ContigA:  a.Contig,
					DirA:     a.Direction,
					ContigB:  b.Contig,
					DirB:     b.Direction,
				}
				if insert := a.InsertSize; insert > 0 {
					p.Gap = insert - a.Distance - b.Distance
				}
				pairs = append(pairs, p)
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		pi, pj := &pairs[i], &pairs[j]
		switch {
		case pi.Template != pj.Template:
			return pi.Template < pj.Template
		case pi.ContigA != pj.ContigA:
			return pi.ContigA < pj.ContigA
		case pi.ContigB != pj.ContigB:
			return pi.ContigB < pj.ContigB
		case pi.DirA != pj.DirA:
			return pi.DirA < pj.DirA
		default:
			return pi.DirB < pj.DirB
		}
	})
	return pairs
}
