/*
 * aggregate.go, part of goifp.
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

package similarity

import (
	"sort"

	chem "github.com/rmera/goifp"
	"github.com/rmera/goifp/fingerprint"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Occupancy returns, for each column of M, the fraction of frames where it is on.
func Occupancy(M *fingerprint.Matrix) []float64 {
	ret := make([]float64, M.Cols())
	if M.Rows() == 0 || M.Cols() == 0 {
		return ret
	}
	d := M.Dense()
	col := make([]float64, M.Rows())
	for j := range ret {
		mat.Col(col, j, d)
		ret[j] = stat.Mean(col, nil)
	}
	return ret
}

// Frequent returns the columns on in at least the given fraction of the frames,
// with their occupancy, most occupied first.
func Frequent(M *fingerprint.Matrix, min float64) ([]fingerprint.Column, []float64) {
	occ := Occupancy(M)
	idx := make([]int, len(occ))
	floats.Argsort(lo.Map(occ, func(o float64, _ int) float64 { return -o }), idx)
	var cols []fingerprint.Column
	var vals []float64
	for _, j := range idx {
		if occ[j] < min {
			break
		}
		cols = append(cols, M.Columns()[j])
		vals = append(vals, occ[j])
	}
	return cols, vals
}

// CountByInteraction returns, for each frame of M, the number of columns on for
// each rule.
func CountByInteraction(M *fingerprint.Matrix) []map[string]int {
	return countBy(M, func(c fingerprint.Column) string { return c.Rule })
}

// CountByResidue returns, for each frame of M, the number of columns on for each
// target residue.
func CountByResidue(M *fingerprint.Matrix) []map[chem.ResidueID]int {
	return countBy(M, func(c fingerprint.Column) chem.ResidueID { return c.Pair.Target })
}

func countBy[K comparable](M *fingerprint.Matrix, key func(fingerprint.Column) K) []map[K]int {
	cols := M.Columns()
	ret := make([]map[K]int, M.Rows())
	for i := range ret {
		ret[i] = make(map[K]int)
		r := M.Row(i)
		for j, ok := r.NextSet(0); ok; j, ok = r.NextSet(j + 1) {
			ret[i][key(cols[j])]++
		}
	}
	return ret
}

// Residues returns the target residues that appear in the columns of M, sorted.
func Residues(M *fingerprint.Matrix) []chem.ResidueID {
	ret := lo.Uniq(lo.Map(M.Columns(), func(c fingerprint.Column, _ int) chem.ResidueID { return c.Pair.Target }))
	sort.Slice(ret, func(i, j int) bool { return ret[i].Less(ret[j]) })
	return ret
}
