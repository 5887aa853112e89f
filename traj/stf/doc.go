/*
 * doc.go, part of goifp.
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

// Package stf reads and writes the simple trajectory format (STF), a compressed
// plain-text trajectory format that is easy to implement in other languages.
//
// An STF file is ASCII text, compressed as a whole. It starts with a header of
// key=value lines, which must include the precision, for instance
//
//	prec=2
//
// The header ends with a line with the characters "**", one or more spaces and the
// number of atoms per frame. After the header comes one line per atom per frame, with
// the x, y and z coordinates in Angstrom, multiplied by 10 to the power of the
// precision and rounded to integers. Each frame ends with a line starting with "*",
// optionally followed by the 9 components of the box vectors. The sequence "**" can
// only appear as the header terminator.
//
// The compression is chosen from the file name: names ending in "l" use LZW, in "z"
// gzip and in "r" DEFLATE. Anything else, including the usual .stf, uses zstd.
package stf
