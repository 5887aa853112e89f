/*
 * stf.go, part of goifp.
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

package stf

import (
	"bufio"
	"compress/lzw"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	chem "github.com/rmera/goifp"
	v3 "github.com/rmera/goifp/v3"
)

// DefaultPrec is the precision used when the header doesn't give a valid one.
const DefaultPrec = 2

const lzwLitwidth = 8

type codec struct {
	writer func(w io.Writer, level int) (io.WriteCloser, error)
	reader func(r io.Reader) (io.ReadCloser, error)
}

// zstdReadCloser adapts a zstd decoder, whose Close returns nothing, to io.ReadCloser.
type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

var zstdCodec = codec{
	writer: func(w io.Writer, level int) (io.WriteCloser, error) {
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	},
	reader: func(r io.Reader) (io.ReadCloser, error) {
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdReadCloser{d}, nil
	},
}

var codecs = map[byte]codec{
	'l': {
		writer: func(w io.Writer, _ int) (io.WriteCloser, error) { return lzw.NewWriter(w, lzw.MSB, lzwLitwidth), nil },
		reader: func(r io.Reader) (io.ReadCloser, error) { return lzw.NewReader(r, lzw.MSB, lzwLitwidth), nil },
	},
	'z': {
		writer: func(w io.Writer, level int) (io.WriteCloser, error) { return gzip.NewWriterLevel(w, clampLevel(level)) },
		reader: func(r io.Reader) (io.ReadCloser, error) { return gzip.NewReader(r) },
	},
	'r': {
		writer: func(w io.Writer, level int) (io.WriteCloser, error) { return flate.NewWriter(w, clampLevel(level)) },
		reader: func(r io.Reader) (io.ReadCloser, error) { return flate.NewReader(r), nil },
	},
}

func clampLevel(level int) int {
	if level > flate.BestCompression {
		return flate.BestCompression
	}
	if level < flate.HuffmanOnly {
		return flate.DefaultCompression
	}
	return level
}

func codecFor(name string) codec {
	if name == "" {
		return zstdCodec
	}
	if c, ok := codecs[strings.ToLower(name)[len(name)-1]]; ok {
		return c
	}
	return zstdCodec
}

func scale(prec int) float64 {
	return math.Pow(10, float64(prec))
}

func parsePrec(header map[string]string, filename string) int {
	p, ok := header["prec"]
	if !ok {
		return DefaultPrec
	}
	prec, err := strconv.Atoi(strings.TrimSpace(p))
	if err != nil || prec < 0 {
		log.Printf("Invalid precision %q for trajectory %s. Will use the default", p, filename)
		return DefaultPrec
	}
	return prec
}

// Writer writes an STF trajectory.
type Writer struct {
	f         *os.File
	z         io.WriteCloser
	w         *bufio.Writer
	natoms    int
	filename  string
	writeable bool
	mult      float64
}

// NewWriter creates the named file and writes the header for a trajectory with natoms
// atoms per frame. The "prec" key of the header sets the precision. An optional level
// sets the compression level, in the scale of the chosen compressor.
func NewWriter(name string, natoms int, header map[string]string, level ...int) (*Writer, error) {
	lev := 11
	if len(level) > 0 {
		lev = level[0]
	}
	h := make(map[string]string, len(header)+1)
	for k, v := range header {
		h[k] = v
	}
	prec := parsePrec(h, name)
	h["prec"] = strconv.Itoa(prec)

	f, err := os.Create(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	z, err := codecFor(name).writer(f, lev)
	if err != nil {
		f.Close()
		return nil, Error{"Can't start compressor: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	S := &Writer{f: f, z: z, w: bufio.NewWriter(z), natoms: natoms, filename: name, writeable: true, mult: scale(prec)}
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(S.w, "%s=%s\n", k, h[k])
	}
	fmt.Fprintf(S.w, "** %d\n", natoms)
	return S, nil
}

// Len returns the number of atoms per frame.
func (S *Writer) Len() int {
	return S.natoms
}

// WNext writes a frame. If box is given and has at least 9 elements, the box vectors
// are written too.
func (S *Writer) WNext(coord *v3.Matrix, box ...[]float64) error {
	if !S.writeable {
		return Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, S.filename, []string{"WNext"}, true}
	}
	if v := coord.NVecs(); v != S.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, S.natoms), S.filename, []string{"WNext"}, true}
	}
	for i := 0; i < S.natoms; i++ {
		fmt.Fprintf(S.w, "%d %d %d\n", S.encode(coord.At(i, 0)), S.encode(coord.At(i, 1)), S.encode(coord.At(i, 2)))
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		b := box[0]
		fmt.Fprintf(S.w, "* %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f %4.2f\n", b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7], b[8])
	} else {
		S.w.WriteString("*\n")
	}
	return nil
}

func (S *Writer) encode(x float64) int64 {
	return int64(math.RoundToEven(x * S.mult))
}

// Close flushes and closes the trajectory. It can't be written after this.
func (S *Writer) Close() error {
	if S == nil || !S.writeable {
		return nil
	}
	S.writeable = false
	err := S.w.Flush()
	if zerr := S.z.Close(); err == nil {
		err = zerr
	}
	if ferr := S.f.Close(); err == nil {
		err = ferr
	}
	if err != nil {
		return Error{err.Error(), S.filename, []string{"Close"}, true}
	}
	return nil
}

// Reader reads an STF trajectory. It implements chem.Traj.
type Reader struct {
	f        *os.File
	z        io.ReadCloser
	r        *bufio.Reader
	natoms   int
	filename string
	div      float64
	readable bool
}

// New opens an STF trajectory for reading, and returns it with the header
// key/value pairs.
func New(name string) (*Reader, map[string]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, Error{err.Error(), name, []string{"New"}, true}
	}
	S, header, err := NewFromReader(f, name)
	if err != nil {
		f.Close()
		return nil, nil, errDecorate(err, "New")
	}
	S.f = f
	return S, header, nil
}

// NewFromReader reads an STF trajectory from r. The name is only used to choose the
// compression and in error messages.
func NewFromReader(in io.Reader, name string) (*Reader, map[string]string, error) {
	z, err := codecFor(name).reader(bufio.NewReader(in))
	if err != nil {
		return nil, nil, Error{"Can't read header: " + err.Error(), name, []string{"NewFromReader"}, true}
	}
	S := &Reader{z: z, r: bufio.NewReader(z), natoms: -1, filename: name}
	header := make(map[string]string)
	for {
		str, err := S.r.ReadString('\n')
		if err != nil {
			z.Close()
			return nil, nil, Error{"Can't read header: " + err.Error(), name, []string{"NewFromReader"}, true}
		}
		str = strings.TrimRight(str, "\r\n")
		if strings.HasPrefix(str, "**") {
			fields := strings.Fields(str)
			if len(fields) < 2 {
				z.Close()
				return nil, nil, Error{fmt.Sprintf("No atom number in '%s'", str), name, []string{"NewFromReader"}, true}
			}
			S.natoms, err = strconv.Atoi(fields[1])
			if err != nil || S.natoms < 0 {
				z.Close()
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s'", fields[1]), name, []string{"NewFromReader"}, true}
			}
			break
		}
		k, v, ok := strings.Cut(str, "=")
		if !ok {
			z.Close()
			return nil, nil, Error{fmt.Sprintf("%s: '%s'", WrongFormat, str), name, []string{"NewFromReader"}, true}
		}
		header[k] = v
	}
	S.div = scale(parsePrec(header, name))
	S.readable = true
	return S, header, nil
}

// Readable returns true if Next can be called on the trajectory.
func (S *Reader) Readable() bool {
	return S.readable
}

// Len returns the number of atoms per frame.
func (S *Reader) Len() int {
	return S.natoms
}

func (S *Reader) decode(line string, c *v3.Matrix, i int) error {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return fmt.Errorf("%s: expected 3 coordinates, got '%s'", WrongFormat, line)
	}
	for j, v := range fields {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: can't parse coordinate %d (%s)", WrongFormat, j, v)
		}
		if c != nil {
			c.Set(i, j, float64(n)/S.div)
		}
	}
	return nil
}

// Next reads the next frame into c, or discards it if c is nil. If box is given, has
// at least 9 elements, and the frame has box information, it is read into box. At the
// end of the trajectory Next closes it and returns an error that implements
// chem.LastFrameError.
func (S *Reader) Next(c *v3.Matrix, box ...[]float64) error {
	if !S.readable {
		return Error{TrajUnIniRead, S.filename, []string{"Next"}, true}
	}
	if c != nil && c.NVecs() != S.natoms {
		return Error{fmt.Sprintf("%d coordinates requested, but the trajectory has %d", c.NVecs(), S.natoms), S.filename, []string{"Next"}, true}
	}
	for i := 0; i < S.natoms; i++ {
		line, err := S.r.ReadString('\n')
		if err == io.EOF && i == 0 && line == "" {
			S.Close()
			return newLastFrameError(S.filename, "Next")
		}
		if err != nil {
			return Error{ReadError + ": " + err.Error(), S.filename, []string{"Next"}, true}
		}
		if err := S.decode(line, c, i); err != nil {
			return Error{err.Error(), S.filename, []string{"Next"}, true}
		}
	}
	s, err := S.r.ReadString('\n')
	if err != nil && !(err == io.EOF && s != "") {
		if S.natoms == 0 && err == io.EOF {
			S.Close()
			return newLastFrameError(S.filename, "Next")
		}
		return Error{"Can't read the frame termination mark: " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if s[0] != '*' {
		return Error{"Wrong number of atoms in frame", S.filename, []string{"Next"}, true}
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		S.readBox(s, box[0])
	}
	return nil
}

// readBox puts the box vectors of the frame terminator s in box. Missing or
// malformed boxes are only logged.
func (S *Reader) readBox(s string, box []float64) {
	fields := strings.Fields(s)
	if len(fields) < 10 {
		log.Printf("Trajectory file %s does not contain (correct) box information: %s", S.filename, fields)
		return
	}
	for j, v := range fields[1:10] {
		b, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Printf("Failed to read box in a frame from %s", S.filename)
			for i := range box {
				box[i] = 0
			}
			return
		}
		box[j] = b
	}
}

// Close closes the trajectory. It can't be read after this.
func (S *Reader) Close() {
	if !S.readable {
		return
	}
	S.readable = false
	S.z.Close()
	if S.f != nil {
		S.f.Close()
	}
}

//Errors

// errDecorate decorates err with the caller's name, if it implements chem.Error.
func errDecorate(err error, caller string) error {
	if e, ok := err.(chem.Error); ok {
		e.Decorate(caller)
		return e
	}
	return err
}

// Error is the error type for STF trajectories. It implements chem.TrajError.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("stf file %s error: %s", err.filename, err.message)
}

// Decorate adds deco to the error, and returns the decorations.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// FileName returns the file the error is associated to.
func (err Error) FileName() string { return err.filename }

// Format returns "stf".
func (err Error) Format() string { return "stf" }

// Critical returns true if the error is critical.
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	ReadError      = "Error reading frame"
	NilCoordinates = "Given nil coordinates"
	WrongFormat    = "Wrong format in the STF file or frame"
)

// lastFrameError implements chem.LastFrameError.
type lastFrameError struct {
	deco     []string
	fileName string
}

func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return "stf" }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newLastFrameError(filename string, caller string) *lastFrameError {
	return &lastFrameError{fileName: filename, deco: []string{caller}}
}
