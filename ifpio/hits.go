/*
 * hits.go, part of goifp.
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

package ifpio

import (
	"io"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/rmera/goifp/fingerprint"
	"github.com/rmera/goifp/rules"
)

// FrameHits is the JSON record for the hits of one frame.
type FrameHits struct {
	Frame        int          `json:"frame"`
	Interactions []ColumnHits `json:"interactions"`
}

// ColumnHits are the hits of one column in one frame.
type ColumnHits struct {
	Ligand string      `json:"ligand"`
	Target string      `json:"target"`
	Rule   string      `json:"interaction"`
	Hits   []rules.Hit `json:"hits"`
}

// HitRecords collects the hits kept in M, frame by frame, with the columns of each
// frame in matrix order. Frames without hits are included with no interactions.
func HitRecords(M *fingerprint.Matrix) []FrameHits {
	pos := make(map[fingerprint.Column]int, M.Cols())
	for j, c := range M.Columns() {
		pos[c] = j
	}
	ret := make([]FrameHits, 0, M.Rows())
	for _, frame := range M.Frames() {
		fh := FrameHits{Frame: frame, Interactions: []ColumnHits{}}
		hits := M.Hits(frame)
		cols := make([]fingerprint.Column, 0, len(hits))
		for c := range hits {
			cols = append(cols, c)
		}
		sort.Slice(cols, func(i, j int) bool { return pos[cols[i]] < pos[cols[j]] })
		for _, c := range cols {
			fh.Interactions = append(fh.Interactions, ColumnHits{
				Ligand: c.Pair.Ligand.String(),
				Target: c.Pair.Target.String(),
				Rule:   c.Rule,
				Hits:   hits[c],
			})
		}
		ret = append(ret, fh)
	}
	return ret
}

// WriteHitsJSON writes the hits kept in M as a JSON array, one element per frame.
func WriteHitsJSON(w io.Writer, M *fingerprint.Matrix) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(HitRecords(M)), "ifpio: encoding hits")
}

// ReadHitsJSON reads what WriteHitsJSON writes.
func ReadHitsJSON(r io.Reader) ([]FrameHits, error) {
	var ret []FrameHits
	if err := json.NewDecoder(r).Decode(&ret); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "ifpio: decoding hits"), ErrFormat)
	}
	return ret, nil
}
