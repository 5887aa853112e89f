/*
 * similarity.go, part of goifp.
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

// Package similarity compares interaction fingerprints and summarizes them.
package similarity

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/rmera/goifp/fingerprint"
	"gonum.org/v1/gonum/mat"
)

// Metric is a similarity between two bit vectors, in [0,1].
type Metric func(a, b *bitset.BitSet) float64

// Tanimoto returns the number of bits set in both a and b, divided by the number of
// bits set in either. Two empty vectors have a similarity of 0.
func Tanimoto(a, b *bitset.BitSet) float64 {
	union := a.UnionCardinality(b)
	if union == 0 {
		return 0
	}
	return float64(a.IntersectionCardinality(b)) / float64(union)
}

// Dice returns twice the number of bits set in both a and b, divided by the sum of
// the bits set in each. Two empty vectors have a similarity of 0.
func Dice(a, b *bitset.BitSet) float64 {
	total := a.Count() + b.Count()
	if total == 0 {
		return 0
	}
	return 2 * float64(a.IntersectionCardinality(b)) / float64(total)
}

// Pairwise returns the similarity between every pair of rows of M.
func Pairwise(M *fingerprint.Matrix, metric Metric) *mat.SymDense {
	n := M.Rows()
	if n == 0 {
		return &mat.SymDense{}
	}
	ret := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			ret.SetSym(i, j, metric(M.Row(i), M.Row(j)))
		}
	}
	return ret
}

// Align returns the rows of A and B expressed over the union of their columns. The
// columns of A come first, in their order, followed by those only present in B.
func Align(A, B *fingerprint.Matrix) (columns []fingerprint.Column, rowsA, rowsB []*bitset.BitSet) {
	columns = append(columns, A.Columns()...)
	perm := make([]uint, B.Cols())
	for j, c := range B.Columns() {
		if p, ok := A.Lookup(c); ok {
			perm[j] = uint(p)
			continue
		}
		perm[j] = uint(len(columns))
		columns = append(columns, c)
	}
	rowsA = make([]*bitset.BitSet, A.Rows())
	for i := range rowsA {
		rowsA[i] = A.Row(i).Clone()
	}
	rowsB = make([]*bitset.BitSet, B.Rows())
	for i := range rowsB {
		b := bitset.New(uint(len(columns)))
		r := B.Row(i)
		for j, ok := r.NextSet(0); ok; j, ok = r.NextSet(j + 1) {
			b.Set(perm[j])
		}
		rowsB[i] = b
	}
	return columns, rowsA, rowsB
}

// CrossSimilarity returns the similarity between each row of A (matrix rows) and each
// row of B (matrix columns). Columns are matched by residue pair and rule, so A and B
// can come from different runs.
func CrossSimilarity(A, B *fingerprint.Matrix, metric Metric) *mat.Dense {
	if A.Rows() == 0 || B.Rows() == 0 {
		return &mat.Dense{}
	}
	_, ra, rb := Align(A, B)
	ret := mat.NewDense(len(ra), len(rb), nil)
	for i, a := range ra {
		for j, b := range rb {
			ret.Set(i, j, metric(a, b))
		}
	}
	return ret
}
