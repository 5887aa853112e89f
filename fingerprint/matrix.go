/*
 * matrix.go, part of goifp.
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

package fingerprint

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
	"github.com/rmera/goifp/rules"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a sealed fingerprint: one bit row per frame, all with the same columns.
type Matrix struct {
	frames  []int
	columns []Column
	rows    []*bitset.BitSet
	hits    map[int]map[Column][]rules.Hit
	index   map[Column]int
}

func columnIndex(columns []Column) map[Column]int {
	ret := make(map[Column]int, len(columns))
	for i, c := range columns {
		ret[c] = i
	}
	return ret
}

// NewMatrix returns a Matrix with the given frames, columns and rows, for instance
// one read from a file. There must be one row per frame.
func NewMatrix(frames []int, columns []Column, rows []*bitset.BitSet) (*Matrix, error) {
	if len(frames) != len(rows) {
		return nil, errors.Newf("fingerprint: %d frames but %d rows", len(frames), len(rows))
	}
	for i, r := range rows {
		if r == nil {
			rows[i] = bitset.New(uint(len(columns)))
			continue
		}
		if last, ok := lastSet(r); ok && last >= uint(len(columns)) {
			return nil, errors.Newf("fingerprint: row %d has bit %d set, but there are %d columns", i, last, len(columns))
		}
	}
	return &Matrix{frames: frames, columns: columns, rows: rows, index: columnIndex(columns)}, nil
}

func lastSet(b *bitset.BitSet) (uint, bool) {
	if b.None() {
		return 0, false
	}
	var last uint
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		last = i
	}
	return last, true
}

// Rows returns the number of frames.
func (M *Matrix) Rows() int { return len(M.rows) }

// Lookup returns the position of c among the columns of the matrix, and false if
// the matrix has no such column.
func (M *Matrix) Lookup(c Column) (int, bool) {
	p, ok := M.index[c]
	return p, ok
}

// Cols returns the number of columns.
func (M *Matrix) Cols() int { return len(M.columns) }

// Row returns the bits of the ith row. It must not be modified.
func (M *Matrix) Row(i int) *bitset.BitSet { return M.rows[i] }

// Bit returns the bit of row i and column j.
func (M *Matrix) Bit(i, j int) bool {
	if j < 0 || j >= len(M.columns) {
		panic("fingerprint: column index out of range")
	}
	return M.rows[i].Test(uint(j))
}

// Frames returns the frame index of each row.
func (M *Matrix) Frames() []int { return M.frames }

// Columns returns the columns, in matrix order.
func (M *Matrix) Columns() []Column { return M.columns }

// Hits returns the hits of a frame, or nil if they were not kept.
func (M *Matrix) Hits(frame int) map[Column][]rules.Hit { return M.hits[frame] }

// Dense returns the matrix as 0s and 1s. An empty matrix gives an empty Dense.
func (M *Matrix) Dense() *mat.Dense {
	if M.Rows() == 0 || M.Cols() == 0 {
		return &mat.Dense{}
	}
	d := mat.NewDense(M.Rows(), M.Cols(), nil)
	for i, r := range M.rows {
		for j, ok := r.NextSet(0); ok && j < uint(M.Cols()); j, ok = r.NextSet(j + 1) {
			d.Set(i, int(j), 1)
		}
	}
	return d
}
