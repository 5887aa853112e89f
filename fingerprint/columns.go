/*
 * columns.go, part of goifp.
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
	"sort"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
	"github.com/rmera/goifp/rules"
)

// ColumnSpace collects frame results and assigns a column to each combination of
// residue pair and rule, the first time it is seen. Columns never move once assigned.
// Rows are kept as the positions of their set bits until the space is sealed and
// the Matrix is built. A ColumnSpace is safe for concurrent use.
type ColumnSpace struct {
	mu        sync.Mutex
	sealed    bool
	canonical bool
	keepHits  bool
	index     map[Column]int
	columns   []Column
	rows      map[int][]uint
	hits      map[int]map[Column][]rules.Hit
}

// NewColumnSpace returns an open ColumnSpace. It uses the CanonicalOrder and KeepHits
// options.
func NewColumnSpace(opts ...Option) *ColumnSpace {
	o := newOptions(opts)
	return &ColumnSpace{
		canonical: o.CanonicalOrder,
		keepHits:  o.KeepHits,
		index:     make(map[Column]int),
		rows:      make(map[int][]uint),
		hits:      make(map[int]map[Column][]rules.Hit),
	}
}

// Ingest adds the row of a frame, assigning positions to its new columns. Within a
// frame, new columns are numbered in canonical order.
func (C *ColumnSpace) Ingest(fr *FrameResult) error {
	cols := make([]Column, 0, len(fr.Hits))
	for c, h := range fr.Hits {
		if len(h) > 0 {
			cols = append(cols, c)
		}
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].Less(cols[j]) })

	C.mu.Lock()
	defer C.mu.Unlock()
	if C.sealed {
		return errors.Mark(&SealedStateError{Frame: fr.Frame}, ErrSealed)
	}
	if _, ok := C.rows[fr.Frame]; ok {
		return errors.Mark(&DuplicateFrameError{Frame: fr.Frame}, ErrDuplicateFrame)
	}
	row := make([]uint, 0, len(cols))
	for _, c := range cols {
		pos, ok := C.index[c]
		if !ok {
			pos = len(C.columns)
			C.index[c] = pos
			C.columns = append(C.columns, c)
		}
		row = append(row, uint(pos))
	}
	sort.Slice(row, func(i, j int) bool { return row[i] < row[j] })
	C.rows[fr.Frame] = row
	if C.keepHits {
		h := make(map[Column][]rules.Hit, len(cols))
		for _, c := range cols {
			h[c] = fr.Hits[c]
		}
		C.hits[fr.Frame] = h
	}
	return nil
}

// Seal closes the space to new frames. It can be called more than once.
func (C *ColumnSpace) Seal() {
	C.mu.Lock()
	C.sealed = true
	C.mu.Unlock()
}

// Sealed returns true if the space has been sealed.
func (C *ColumnSpace) Sealed() bool {
	C.mu.Lock()
	defer C.mu.Unlock()
	return C.sealed
}

// ColumnCount returns the number of columns assigned so far.
func (C *ColumnSpace) ColumnCount() int {
	C.mu.Lock()
	defer C.mu.Unlock()
	return len(C.columns)
}

// Columns returns the columns in order of assignment.
func (C *ColumnSpace) Columns() []Column {
	C.mu.Lock()
	defer C.mu.Unlock()
	ret := make([]Column, len(C.columns))
	copy(ret, C.columns)
	return ret
}

// Lookup returns the position assigned to c, and false if c has not been seen.
// This is the assignment position. With CanonicalOrder the matrix columns are
// reordered, so use Matrix.Lookup to index a built matrix.
func (C *ColumnSpace) Lookup(c Column) (int, bool) {
	C.mu.Lock()
	defer C.mu.Unlock()
	p, ok := C.index[c]
	return p, ok
}

// Frames returns the indexes of the ingested frames, sorted.
func (C *ColumnSpace) Frames() []int {
	C.mu.Lock()
	defer C.mu.Unlock()
	return C.frames()
}

func (C *ColumnSpace) frames() []int {
	ret := make([]int, 0, len(C.rows))
	for f := range C.rows {
		ret = append(ret, f)
	}
	sort.Ints(ret)
	return ret
}

// Hits returns the hits of frame, or nil if the frame was not ingested or hits
// are not kept.
func (C *ColumnSpace) Hits(frame int) map[Column][]rules.Hit {
	C.mu.Lock()
	defer C.mu.Unlock()
	return C.hits[frame]
}

// Matrix builds the fingerprint matrix, with one row per frame, sorted by frame index,
// and one column per assigned column. With the CanonicalOrder option the columns are
// sorted by ligand residue, target residue and rule. The space must be sealed.
func (C *ColumnSpace) Matrix() (*Matrix, error) {
	C.mu.Lock()
	defer C.mu.Unlock()
	if !C.sealed {
		return nil, errors.Mark(&NotSealedError{}, ErrNotSealed)
	}
	n := len(C.columns)
	perm := make([]uint, n)
	columns := make([]Column, n)
	copy(columns, C.columns)
	if C.canonical {
		sort.Slice(columns, func(i, j int) bool { return columns[i].Less(columns[j]) })
	}
	for newpos, c := range columns {
		perm[C.index[c]] = uint(newpos)
	}
	frames := C.frames()
	rows := make([]*bitset.BitSet, len(frames))
	for i, f := range frames {
		b := bitset.New(uint(n))
		for _, pos := range C.rows[f] {
			b.Set(perm[pos])
		}
		rows[i] = b
	}
	var hits map[int]map[Column][]rules.Hit
	if C.keepHits {
		hits = make(map[int]map[Column][]rules.Hit, len(C.hits))
		for f, h := range C.hits {
			hits[f] = h
		}
	}
	return &Matrix{frames: frames, columns: columns, rows: rows, hits: hits, index: columnIndex(columns)}, nil
}
