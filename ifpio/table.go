/*
 * table.go, part of goifp.
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

// Package ifpio reads and writes interaction fingerprints.
//
// Tables are tab-separated. The first three rows are a header giving the ligand
// residue, the target residue and the interaction of each column. The first column
// holds the labels of those rows and then, for each data row, the frame index. Data
// cells are 0 or 1.
package ifpio

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
	chem "github.com/rmera/goifp"
	"github.com/rmera/goifp/fingerprint"
)

var headers = [3]string{"ligand", "protein", "interaction"}

// ErrFormat marks errors caused by a malformed table.
var ErrFormat = errors.New("ifpio: malformed table")

func formatError(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf("ifpio: "+format, args...), ErrFormat)
}

// WriteTable writes M to w as a table.
func WriteTable(w io.Writer, M *fingerprint.Matrix) error {
	tw := csv.NewWriter(w)
	tw.Comma = '\t'
	cols := M.Columns()
	head := make([][]string, 3)
	for i := range head {
		head[i] = make([]string, 0, len(cols)+1)
		head[i] = append(head[i], headers[i])
	}
	for _, c := range cols {
		head[0] = append(head[0], c.Pair.Ligand.String())
		head[1] = append(head[1], c.Pair.Target.String())
		head[2] = append(head[2], c.Rule)
	}
	if err := tw.WriteAll(head); err != nil {
		return errors.Wrap(err, "ifpio: writing header")
	}
	rec := make([]string, len(cols)+1)
	for i, frame := range M.Frames() {
		rec[0] = strconv.Itoa(frame)
		for j := range cols {
			rec[j+1] = "0"
			if M.Bit(i, j) {
				rec[j+1] = "1"
			}
		}
		if err := tw.Write(rec); err != nil {
			return errors.Wrapf(err, "ifpio: writing frame %d", frame)
		}
	}
	tw.Flush()
	return errors.Wrap(tw.Error(), "ifpio: flushing table")
}

// ReadTable reads a table written by WriteTable.
func ReadTable(r io.Reader) (*fingerprint.Matrix, error) {
	tr := csv.NewReader(r)
	tr.Comma = '\t'
	var head [3][]string
	for i := range head {
		rec, err := tr.Read()
		if err == io.EOF {
			return nil, formatError("header ends after %d rows", i)
		}
		if err != nil {
			return nil, errors.Wrap(err, "ifpio: reading header")
		}
		if rec[0] != headers[i] {
			return nil, formatError("header row %d is %q, expected %q", i+1, rec[0], headers[i])
		}
		if i > 0 && len(rec) != len(head[0]) {
			return nil, formatError("header row %d has %d fields, expected %d", i+1, len(rec), len(head[0]))
		}
		head[i] = rec
	}
	cols := make([]fingerprint.Column, len(head[0])-1)
	for j := range cols {
		lig, err := chem.ParseResidueID(head[0][j+1])
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "ifpio: column %d", j+1), ErrFormat)
		}
		tgt, err := chem.ParseResidueID(head[1][j+1])
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "ifpio: column %d", j+1), ErrFormat)
		}
		cols[j] = fingerprint.Column{Pair: fingerprint.PairKey{Ligand: lig, Target: tgt}, Rule: head[2][j+1]}
	}
	var frames []int
	var rows []*bitset.BitSet
	for {
		rec, err := tr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "ifpio: reading row %d", len(rows)+1)
		}
		frame, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return nil, formatError("bad frame index %q", rec[0])
		}
		b := bitset.New(uint(len(cols)))
		for j, v := range rec[1:] {
			switch v {
			case "1":
				b.Set(uint(j))
			case "0":
			default:
				return nil, formatError("frame %d column %d: %q is not 0 or 1", frame, j+1, v)
			}
		}
		frames = append(frames, frame)
		rows = append(rows, b)
	}
	return fingerprint.NewMatrix(frames, cols, rows)
}

func compressed(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".zst")
}

// WriteTableFile writes M to the named file. Names ending in .zst are compressed with zstd.
func WriteTableFile(name string, M *fingerprint.Matrix) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "ifpio")
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = errors.Wrap(cerr, "ifpio")
		}
	}()
	bw := bufio.NewWriter(f)
	if compressed(name) {
		zw, err := zstd.NewWriter(bw)
		if err != nil {
			return errors.Wrap(err, "ifpio: zstd")
		}
		if err := WriteTable(zw, M); err != nil {
			zw.Close()
			return err
		}
		if err := zw.Close(); err != nil {
			return errors.Wrap(err, "ifpio: zstd")
		}
	} else if err := WriteTable(bw, M); err != nil {
		return err
	}
	return errors.Wrap(bw.Flush(), "ifpio")
}

// ReadTableFile reads a table from the named file, decompressing it if the name ends in .zst.
func ReadTableFile(name string) (*fingerprint.Matrix, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "ifpio")
	}
	defer f.Close()
	var r io.Reader = bufio.NewReader(f)
	if compressed(name) {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "ifpio: zstd")
		}
		defer zr.Close()
		r = zr
	}
	return ReadTable(r)
}
