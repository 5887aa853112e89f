/*
 * errors.go, part of goifp.
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
	"fmt"

	"github.com/cockroachdb/errors"
)

// CError is the general error type of the chem package. It fulfills chem.Error.
type CError struct {
	msg      string
	deco     []string
	critical bool
}

func (err *CError) Error() string { return err.msg }

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err *CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored
func (err *CError) Critical() bool { return err.critical }

func newCError(critical bool, caller, format string, args ...interface{}) *CError {
	return &CError{msg: fmt.Sprintf(format, args...), deco: []string{caller}, critical: critical}
}

// errDecorate decorates err with the caller's name if err implements chem.Error,
// and returns it.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if err2, ok := err.(Error); ok {
		err2.Decorate(caller)
		return err2
	}
	return err
}

// GeometryError is returned by the geometric functions when given degenerate input,
// such as a zero-length vector. It is never critical: the interaction rules treat it
// as "this geometry doesn't count".
type GeometryError struct {
	msg  string
	deco []string
}

func (err *GeometryError) Error() string { return "degenerate geometry: " + err.msg }

// Decorate adds dec to the decoration of the error and returns the decoration.
func (err *GeometryError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

func (err *GeometryError) Critical() bool { return false }

func newGeometryError(caller, msg string) *GeometryError {
	return &GeometryError{msg: msg, deco: []string{caller}}
}

// IsGeometryError returns true if err is, or wraps, a *GeometryError.
func IsGeometryError(err error) bool {
	var g *GeometryError
	return errors.As(err, &g)
}
