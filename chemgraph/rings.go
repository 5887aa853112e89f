/*
 * rings.go, part of goifp.
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

package chemgraph

import (
	"sort"

	chem "github.com/rmera/goifp"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// MaxRingSize is the size of the largest ring Rings reports.
const MaxRingSize = 8

// Rings returns, for each bond of top, the smallest ring containing it, with each ring
// reported once. Rings are searched within residues, and rings larger than MaxRingSize
// are ignored. Each ring lists its atoms in ring order, starting from the smallest index.
// The rings are sorted by size, then by their atoms.
func Rings(top *chem.Topology) [][]int {
	seen := make(map[string]bool)
	var ret [][]int
	for _, res := range top.Residues() {
		g := NewGraph(top, res.Atoms)
		for _, b := range bondsWithin(top, res.Atoms) {
			r := smallestRing(g, int64(b[0]), int64(b[1]))
			if r == nil {
				continue
			}
			key := ringKey(r)
			if seen[key] {
				continue
			}
			seen[key] = true
			ret = append(ret, r)
		}
	}
	sort.Slice(ret, func(i, j int) bool {
		if len(ret[i]) != len(ret[j]) {
			return len(ret[i]) < len(ret[j])
		}
		for k := range ret[i] {
			if ret[i][k] != ret[j][k] {
				return ret[i][k] < ret[j][k]
			}
		}
		return false
	})
	return ret
}

// bondsWithin returns the pairs of bonded atoms with both atoms in indexes, sorted.
func bondsWithin(top *chem.Topology, indexes []int) [][2]int {
	in := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		in[i] = true
	}
	var ret [][2]int
	for _, i := range indexes {
		at := top.Atom(i)
		for _, b := range at.Bonds {
			j := b.Cross(at).Index()
			if j > i && in[j] {
				ret = append(ret, [2]int{i, j})
			}
		}
	}
	sort.Slice(ret, func(a, b int) bool {
		if ret[a][0] != ret[b][0] {
			return ret[a][0] < ret[b][0]
		}
		return ret[a][1] < ret[b][1]
	})
	return ret
}

// smallestRing removes the u-v edge from g, finds the shortest path between u and v,
// and puts the edge back. The path, if any, is the smallest ring with the u-v bond.
func smallestRing(g *simple.UndirectedGraph, u, v int64) []int {
	e := g.Edge(u, v)
	if e == nil {
		return nil
	}
	g.RemoveEdge(u, v)
	defer g.SetEdge(e)
	p, _ := path.DijkstraFrom(g.Node(u), g).To(v)
	if len(p) < 3 || len(p) > MaxRingSize {
		return nil
	}
	return canonicalRing(nodeIndexes(p))
}

// canonicalRing rotates r so it starts with its smallest atom, and follows the direction
// of the smallest neighbor of that atom.
func canonicalRing(r []int) []int {
	first := 0
	for i, v := range r {
		if v < r[first] {
			first = i
		}
	}
	n := len(r)
	ret := make([]int, n)
	for i := range r {
		ret[i] = r[(first+i)%n]
	}
	if ret[n-1] < ret[1] {
		for i, j := 1, n-1; i < j; i, j = i+1, j-1 {
			ret[i], ret[j] = ret[j], ret[i]
		}
	}
	return ret
}

func ringKey(r []int) string {
	c := append([]int(nil), r...)
	sort.Ints(c)
	b := make([]byte, 0, 4*len(c))
	for _, v := range c {
		b = append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
	return string(b)
}
