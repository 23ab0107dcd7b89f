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

package overlap

import (
	"sort"

	"github.com/exascience/pargo/parallel"
	psort "github.com/exascience/pargo/sort"

	"github.com/exascience/elasm/utils"
)

// Graph is the working graph of all confirmed overlaps: the facts and
// the edges that refer to them.
type Graph struct {
	Facts FactStore

	edges   []Edge
	offsets map[utils.ReadID][2]int
	indexed bool
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{}
}

// AddEdge adds an edge. The adjacency index must be rebuilt afterwards.
func (g *Graph) AddEdge(e Edge) {
	g.edges = append(g.edges, e)
	g.indexed = false
}

// PromoteSkimEdge stores the alignment f and adds the edge promoted
// from se in both directions. Nothing is stored if promotion fails.
func (g *Graph) PromoteSkimEdge(se *SkimEdge, f Fact) (Edge, error) {
	index := FactIndex(g.Facts.Len())
	e, err := promote(se, &f, index)
	if err != nil {
		return Edge{}, err
	}
	g.Facts.Add(f)
	g.AddEdge(e)
	g.AddEdge(e.Mirror())
	return e, nil
}

// Len returns the number of edges.
func (g *Graph) Len() int {
	return len(g.edges)
}

type edgeSorter []Edge

func lessEdge(e1, e2 *Edge) bool {
	if e1.ID1 == e2.ID1 {
		return e1.BestWeight > e2.BestWeight
	}
	return e1.ID1 < e2.ID1
}

func (s edgeSorter) SequentialSort(i, j int) {
	edges := s[i:j]
	sort.SliceStable(edges, func(i, j int) bool {
		return lessEdge(&edges[i], &edges[j])
	})
}

func (s edgeSorter) NewTemp() psort.StableSorter {
	return edgeSorter(make([]Edge, len(s)))
}

func (s edgeSorter) Len() int {
	return len(s)
}

func (s edgeSorter) Less(i, j int) bool {
	return lessEdge(&s[i], &s[j])
}

func (s edgeSorter) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s, source.(edgeSorter)
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

// BuildIndex sorts the edges by ID1, heaviest first, and indexes them
// by read. EdgesOf and Ban call it when edges were added since the
// last call, so call it explicitly before sharing the graph between
// goroutines.
func (g *Graph) BuildIndex() {
	psort.StableSort(edgeSorter(g.edges))
	g.offsets = make(map[utils.ReadID][2]int)
	for low := 0; low < len(g.edges); {
		id := g.edges[low].ID1
		high := low + 1
		for high < len(g.edges) && g.edges[high].ID1 == id {
			high++
		}
		g.offsets[id] = [2]int{low, high}
		low = high
	}
	g.indexed = true
}

// EdgesOf returns the edges from the given read, heaviest first. The
// result shares memory with the graph, so bans applied through it are
// visible in the graph.
func (g *Graph) EdgesOf(id utils.ReadID) []Edge {
	if !g.indexed {
		g.BuildIndex()
	}
	if r, ok := g.offsets[id]; ok {
		return g.edges[r[0]:r[1]:r[1]]
	}
	return nil
}

// Ban bans the edges between the two reads in both directions and
// returns how many edges were banned.
func (g *Graph) Ban(id1, id2 utils.ReadID) (banned int) {
	for _, pair := range [2][2]utils.ReadID{{id1, id2}, {id2, id1}} {
		edges := g.EdgesOf(pair[0])
		for i := range edges {
			if edges[i].ID2 == pair[1] && !edges[i].IsBanned() {
				edges[i].Ban()
				banned++
			}
		}
	}
	return
}

// NumBanned returns the number of banned edges.
func (g *Graph) NumBanned() int {
	edges := g.edges
	return parallel.RangeReduceInt(0, len(edges), 0, func(low, high int) (n int) {
		for i := low; i < high; i++ {
			if edges[i].IsBanned() {
				n++
			}
		}
		return
	}, func(x, y int) int {
		return x + y
	})
}
