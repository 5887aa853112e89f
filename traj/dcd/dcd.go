/*
 * dcd.go, part of goifp.
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

// Package dcd reads and writes CHARMM/NAMD binary (DCD) trajectories with no fixed
// atoms. Both byte orders are read. Files are written little-endian.
package dcd

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	chem "github.com/rmera/goifp"
	v3 "github.com/rmera/goifp/v3"
)

const (
	titleLen       = 80
	headerLen      = 84
	charmmVersion  = 24
	unitCellLength = 48
)

// Reader reads a DCD trajectory. It implements chem.Traj.
type Reader struct {
	f          *os.File
	r          *bufio.Reader
	endian     binary.ByteOrder
	natoms     int32
	frames     int32
	extrablock bool
	fourdim    bool
	readable   bool
	filename   string
	fields     [3][]float32
}

// New opens a DCD trajectory for reading.
func New(name string) (*Reader, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"New"}, true}
	}
	D, err := NewFromReader(f, name)
	if err != nil {
		f.Close()
		return nil, errDecorate(err, "New")
	}
	D.f = f
	return D, nil
}

// NewFromReader reads a DCD trajectory from in. The name is only used in errors.
func NewFromReader(in io.Reader, name string) (*Reader, error) {
	D := &Reader{r: bufio.NewReader(in), filename: name, endian: binary.LittleEndian}
	if err := D.readHeader(); err != nil {
		return nil, errDecorate(err, "NewFromReader")
	}
	for i := range D.fields {
		D.fields[i] = make([]float32, D.natoms)
	}
	D.readable = true
	return D, nil
}

func (D *Reader) read(data interface{}) error {
	return binary.Read(D.r, D.endian, data)
}

func (D *Reader) fail(msg string, caller string) error {
	return Error{msg, D.filename, []string{caller}, true}
}

func (D *Reader) readHeader() error {
	var check int32
	if err := D.read(&check); err != nil {
		return D.fail(err.Error(), "readHeader")
	}
	if check != headerLen {
		//an 84 that doesn't read as such is the other byte order.
		D.endian = binary.BigEndian
		var raw [4]byte
		binary.LittleEndian.PutUint32(raw[:], uint32(check))
		if int32(binary.BigEndian.Uint32(raw[:])) != headerLen {
			return D.fail(WrongFormat+": bad header size", "readHeader")
		}
	}
	buf := make([]byte, headerLen)
	if err := D.read(buf); err != nil {
		return D.fail(err.Error(), "readHeader")
	}
	if string(buf[:4]) != "CORD" {
		return D.fail(WrongFormat+": wrong magic number", "readHeader")
	}
	field := func(off int) int32 { return int32(D.endian.Uint32(buf[4+off:])) }
	if field(76) == 0 {
		return D.fail("X-PLOR DCD files are not supported", "readHeader")
	}
	D.frames = field(0)
	if field(32) != 0 {
		return D.fail("fixed atoms are not supported", "readHeader")
	}
	D.extrablock = field(40) != 0
	D.fourdim = field(44) == 1
	if err := D.read(&check); err != nil || check != headerLen {
		return D.fail(WrongFormat+": bad header end", "readHeader")
	}
	//title block: size, number of 80-character lines, the lines, size.
	var size, ntitle int32
	if err := D.read(&size); err != nil {
		return D.fail(err.Error(), "readHeader")
	}
	if err := D.read(&ntitle); err != nil {
		return D.fail(err.Error(), "readHeader")
	}
	if ntitle < 0 {
		return D.fail(WrongFormat+": negative title length", "readHeader")
	}
	if _, err := io.CopyN(io.Discard, D.r, int64(ntitle)*titleLen); err != nil {
		return D.fail(err.Error(), "readHeader")
	}
	if err := D.read(&check); err != nil || check != size {
		return D.fail(WrongFormat+": bad title block", "readHeader")
	}
	var natoms [3]int32
	if err := D.read(&natoms); err != nil {
		return D.fail(err.Error(), "readHeader")
	}
	if natoms[0] != 4 || natoms[2] != 4 || natoms[1] < 0 {
		return D.fail(WrongFormat+": bad atom number block", "readHeader")
	}
	D.natoms = natoms[1]
	return nil
}

// Readable returns true if Next can be called on the trajectory.
func (D *Reader) Readable() bool {
	return D.readable
}

// Len returns the number of atoms per frame.
func (D *Reader) Len() int {
	return int(D.natoms)
}

// Frames returns the number of frames the header announces.
func (D *Reader) Frames() int {
	return int(D.frames)
}

// Next reads the next frame into c, or discards it if c is nil. The unit cell, if
// present, is skipped, so box is never filled. At the end of the trajectory Next closes
// it and returns an error that implements chem.LastFrameError.
func (D *Reader) Next(c *v3.Matrix, box ...[]float64) error {
	if !D.readable {
		return Error{TrajUnIniRead, D.filename, []string{"Next"}, true}
	}
	if c != nil && c.NVecs() != int(D.natoms) {
		return D.fail(fmt.Sprintf("%d coordinates requested, but the trajectory has %d", c.NVecs(), D.natoms), "Next")
	}
	first := true
	if D.extrablock {
		if err := D.skipBlock(unitCellLength); err != nil {
			return D.endOrFail(err, first)
		}
		first = false
	}
	for i := range D.fields {
		if err := D.readCoords(D.fields[i]); err != nil {
			return D.endOrFail(err, first)
		}
		first = false
	}
	if D.fourdim {
		if err := D.skipBlock(-1); err != nil {
			return D.endOrFail(err, false)
		}
	}
	if c == nil {
		return nil
	}
	for i := 0; i < int(D.natoms); i++ {
		c.Set(i, 0, float64(D.fields[0][i]))
		c.Set(i, 1, float64(D.fields[1][i]))
		c.Set(i, 2, float64(D.fields[2][i]))
	}
	return nil
}

// endOrFail turns a clean EOF at the start of a frame into the last frame error.
func (D *Reader) endOrFail(err error, first bool) error {
	if first && err == io.EOF {
		D.Close()
		return newLastFrameError(D.filename, "Next")
	}
	if _, ok := err.(Error); ok {
		return errDecorate(err, "Next")
	}
	return D.fail(ReadError+": "+err.Error(), "Next")
}

// skipBlock discards a record. If size is not negative, the record must have that size.
func (D *Reader) skipBlock(size int32) error {
	var got, check int32
	if err := D.read(&got); err != nil {
		return err
	}
	if size >= 0 && got != size {
		return D.fail(fmt.Sprintf("%s: record of %d bytes, expected %d", WrongFormat, got, size), "skipBlock")
	}
	if _, err := io.CopyN(io.Discard, D.r, int64(got)); err != nil {
		return err
	}
	if err := D.read(&check); err != nil {
		return err
	}
	if check != got {
		return D.fail(WrongFormat+": record size mismatch", "skipBlock")
	}
	return nil
}

func (D *Reader) readCoords(block []float32) error {
	var size, check int32
	if err := D.read(&size); err != nil {
		return err
	}
	if size != 4*D.natoms {
		return D.fail(fmt.Sprintf("%s: coordinate record of %d bytes, expected %d", WrongFormat, size, 4*D.natoms), "readCoords")
	}
	if err := D.read(block); err != nil {
		return err
	}
	if err := D.read(&check); err != nil {
		return err
	}
	if check != size {
		return D.fail(WrongFormat+": record size mismatch", "readCoords")
	}
	return nil
}

// Close closes the trajectory. It can't be read after this.
func (D *Reader) Close() {
	if !D.readable {
		return
	}
	D.readable = false
	if D.f != nil {
		D.f.Close()
	}
}

// Writer writes a DCD trajectory.
type Writer struct {
	f        *os.File
	w        *bufio.Writer
	natoms   int32
	frames   int32
	writable bool
	filename string
	fields   [3][]float32
}

// NewWriter creates the named file and writes the header of a trajectory with natoms
// atoms per frame.
func NewWriter(name string, natoms int) (*Writer, error) {
	if natoms <= 0 {
		return nil, Error{"the number of atoms must be positive", name, []string{"NewWriter"}, true}
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	D := &Writer{f: f, w: bufio.NewWriter(f), natoms: int32(natoms), filename: name, writable: true}
	for i := range D.fields {
		D.fields[i] = make([]float32, natoms)
	}
	if _, err := D.w.Write(header(0, D.natoms)); err != nil {
		f.Close()
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	return D, nil
}

// header returns the header of a CHARMM DCD file with the given frames and atoms.
func header(frames, natoms int32) []byte {
	var b bytes.Buffer
	le := binary.LittleEndian
	w := func(data interface{}) { binary.Write(&b, le, data) }
	var ints [20]int32
	ints[0] = frames
	ints[2] = 1 //steps between frames
	ints[19] = charmmVersion
	w(int32(headerLen))
	b.WriteString("CORD")
	w(ints[:9])
	w(float32(1)) //timestep
	w(ints[10:])
	w(int32(headerLen))

	title := make([]byte, titleLen)
	copy(title, "goifp")
	for i := len("goifp"); i < titleLen; i++ {
		title[i] = ' '
	}
	w(int32(4 + titleLen))
	w(int32(1))
	b.Write(title)
	w(int32(4 + titleLen))
	w([3]int32{4, natoms, 4})
	return b.Bytes()
}

// Len returns the number of atoms per frame.
func (D *Writer) Len() int {
	return int(D.natoms)
}

// WNext writes a frame. The box is ignored.
func (D *Writer) WNext(coords *v3.Matrix, box ...[]float64) error {
	if !D.writable {
		return Error{TrajUnIniWrite, D.filename, []string{"WNext"}, true}
	}
	if coords == nil {
		return Error{NilCoordinates, D.filename, []string{"WNext"}, true}
	}
	if coords.NVecs() != int(D.natoms) {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", coords.NVecs(), D.natoms), D.filename, []string{"WNext"}, true}
	}
	for i := 0; i < int(D.natoms); i++ {
		for j := range D.fields {
			D.fields[j][i] = float32(coords.At(i, j))
		}
	}
	size := 4 * D.natoms
	for _, block := range D.fields {
		for _, data := range []interface{}{size, block, size} {
			if err := binary.Write(D.w, binary.LittleEndian, data); err != nil {
				return Error{err.Error(), D.filename, []string{"WNext"}, true}
			}
		}
	}
	D.frames++
	return nil
}

// Close writes the number of frames in the header and closes the file.
func (D *Writer) Close() error {
	if !D.writable {
		return nil
	}
	D.writable = false
	err := D.w.Flush()
	if err == nil {
		//the frame count is the first field after the magic number.
		var n [4]byte
		binary.LittleEndian.PutUint32(n[:], uint32(D.frames))
		_, err = D.f.WriteAt(n[:], 8)
	}
	if cerr := D.f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Error{err.Error(), D.filename, []string{"Close"}, true}
	}
	return nil
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

// Error is the error type for DCD trajectories. It implements chem.TrajError.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("dcd file %s error: %s", err.filename, err.message)
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

// Format returns "dcd".
func (err Error) Format() string { return "dcd" }

// Critical returns true if the error is critical.
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	ReadError      = "Error reading frame"
	NilCoordinates = "Given nil coordinates"
	WrongFormat    = "Wrong format in the DCD file or frame"
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

func (E *lastFrameError) Format() string { return "dcd" }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newLastFrameError(filename string, caller string) *lastFrameError {
	return &lastFrameError{fileName: filename, deco: []string{caller}}
}
