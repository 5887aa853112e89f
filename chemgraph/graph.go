/*
 * graph.go, part of goifp.
 *
 * Copyright 2024 The goifp authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package chemgraph perceives the graph properties of a topology: rings, aromaticity
// and fragments. It represents molecules as gonum graphs, with atoms as nodes and
// covalent bonds as edges.
package chemgraph

import (
	"sort"

	chem "github.com/rmera/goifp"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Atom is a chem.Atom that can act as a node in a gonum graph.
// Its ID is the index of the atom in its topology.
type Atom struct {
	*chem.Atom
}

// ID returns the index of the atom.
func (A *Atom) ID() int64 {
	return int64(A.Index())
}

// NewGraph returns an undirected graph with the atoms of top with the given indexes
// as nodes, and the bonds among them as edges. If indexes is nil, all atoms are included.
func NewGraph(top *chem.Topology, indexes []int) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	if indexes == nil {
		indexes = make([]int, top.Len())
		for i := range indexes {
			indexes[i] = i
		}
	}
	for _, i := range indexes {
		g.AddNode(&Atom{top.Atom(i)})
	}
	for _, i := range indexes {
		at := top.Atom(i)
		for _, b := range at.Bonds {
			j := int64(b.Cross(at).Index())
			if j <= int64(i) || g.Node(j) == nil {
				continue
			}
			g.SetEdge(g.NewEdge(g.Node(int64(i)), g.Node(j)))
		}
	}
	return g
}

// Fragments returns the covalently connected fragments of top, as sorted slices
// of atom indexes. Fragments are sorted by their first atom.
func Fragments(top *chem.Topology) [][]int {
	comps := topo.ConnectedComponents(NewGraph(top, nil))
	ret := make([][]int, 0, len(comps))
	for _, c := range comps {
		ret = append(ret, nodeIndexes(c))
		sort.Ints(ret[len(ret)-1])
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i][0] < ret[j][0] })
	return ret
}

func nodeIndexes(nodes []graph.Node) []int {
	ret := make([]int, len(nodes))
	for i, n := range nodes {
		ret[i] = int(n.ID())
	}
	return ret
}
