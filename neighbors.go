/*
 * neighbors.go, part of goifp.
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

package chem

import (
	"math"
	"sort"

	v3 "github.com/rmera/goifp/v3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// atomPoint is a kdtree.Comparable that remembers the atom it comes from.
type atomPoint struct {
	c     [3]float64
	index int
}

func (p atomPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(atomPoint)
	return p.c[d] - q.c[d]
}

func (p atomPoint) Dims() int { return 3 }

// Distance returns the squared euclidean distance, as kdtree expects.
func (p atomPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(atomPoint)
	var sum float64
	for i := range p.c {
		d := p.c[i] - q.c[i]
		sum += d * d
	}
	return sum
}

// atomPoints implements kdtree.Interface
type atomPoints []atomPoint

func (p atomPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p atomPoints) Len() int                              { return len(p) }
func (p atomPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }
func (p atomPoints) Pivot(d kdtree.Dim) int {
	return atomPlane{points: p, dim: d}.Pivot()
}

// atomPlane implements kdtree.SortSlicer over one dimension.
type atomPlane struct {
	points atomPoints
	dim    kdtree.Dim
}

func (p atomPlane) Len() int           { return len(p.points) }
func (p atomPlane) Less(i, j int) bool { return p.points[i].c[p.dim] < p.points[j].c[p.dim] }
func (p atomPlane) Swap(i, j int)      { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p atomPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
func (p atomPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

// AtomTree answers proximity queries over a set of atoms of one frame.
type AtomTree struct {
	tree *kdtree.Tree
}

// NewAtomTree builds a tree with the atoms whose indexes are given, taking
// the positions from coords. If indexes is nil, all atoms are used.
func NewAtomTree(coords *v3.Matrix, indexes []int) *AtomTree {
	var pts atomPoints
	if indexes == nil {
		pts = make(atomPoints, 0, coords.NVecs())
		for i := 0; i < coords.NVecs(); i++ {
			pts = append(pts, atomPoint{c: [3]float64{coords.At(i, 0), coords.At(i, 1), coords.At(i, 2)}, index: i})
		}
	} else {
		pts = make(atomPoints, 0, len(indexes))
		for _, i := range indexes {
			pts = append(pts, atomPoint{c: [3]float64{coords.At(i, 0), coords.At(i, 1), coords.At(i, 2)}, index: i})
		}
	}
	if len(pts) == 0 {
		return &AtomTree{}
	}
	return &AtomTree{tree: kdtree.New(pts, false)}
}

// Within returns the indexes of the atoms at a distance equal or less than cutoff
// from q, closest first. Atoms at the same distance are sorted by index.
func (T *AtomTree) Within(q r3.Vec, cutoff float64) []int {
	if T.tree == nil {
		return nil
	}
	keep := kdtree.NewDistKeeper(cutoff * cutoff)
	T.tree.NearestSet(keep, atomPoint{c: [3]float64{q.X, q.Y, q.Z}, index: -1})
	found := make([]kdtree.ComparableDist, 0, keep.Len())
	for _, v := range keep.Heap {
		if v.Comparable != nil {
			found = append(found, v)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].Dist != found[j].Dist {
			return found[i].Dist < found[j].Dist
		}
		return found[i].Comparable.(atomPoint).index < found[j].Comparable.(atomPoint).index
	})
	ret := make([]int, len(found))
	for i, v := range found {
		ret[i] = v.Comparable.(atomPoint).index
	}
	return ret
}

// Nearest returns the index of the atom closest to q, and its distance.
// It returns -1 and +Inf for an empty tree.
func (T *AtomTree) Nearest(q r3.Vec) (int, float64) {
	if T.tree == nil {
		return -1, math.Inf(1)
	}
	c, d := T.tree.Nearest(atomPoint{c: [3]float64{q.X, q.Y, q.Z}, index: -1})
	if c == nil {
		return -1, math.Inf(1)
	}
	return c.(atomPoint).index, math.Sqrt(d)
}
