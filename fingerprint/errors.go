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

package fingerprint

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error categories, to be matched with errors.Is.
var (
	ErrSealed         = errors.New("column space is sealed")
	ErrNotSealed      = errors.New("column space is not sealed")
	ErrDuplicateFrame = errors.New("frame already ingested")
	ErrConfig         = errors.New("invalid fingerprint configuration")
)

// SealedStateError is returned when a frame is ingested into a sealed ColumnSpace.
type SealedStateError struct {
	Frame int
}

func (e *SealedStateError) Error() string {
	return fmt.Sprintf("fingerprint: can't ingest frame %d, the column space is sealed", e.Frame)
}

func (e *SealedStateError) Critical() bool { return true }

// NotSealedError is returned when the matrix of an open ColumnSpace is requested.
type NotSealedError struct{}

func (e *NotSealedError) Error() string {
	return "fingerprint: the column space must be sealed before building the matrix"
}

func (e *NotSealedError) Critical() bool { return true }

// DuplicateFrameError is returned when a frame index is ingested twice.
type DuplicateFrameError struct {
	Frame int
}

func (e *DuplicateFrameError) Error() string {
	return fmt.Sprintf("fingerprint: frame %d was already ingested", e.Frame)
}

func (e *DuplicateFrameError) Critical() bool { return false }

// ConfigError is returned for invalid pipeline or prefilter settings.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "fingerprint: " + e.Msg }

func (e *ConfigError) Critical() bool { return true }

func configError(format string, args ...interface{}) error {
	return errors.Mark(&ConfigError{Msg: fmt.Sprintf(format, args...)}, ErrConfig)
}

// FrameError is a failure to process one frame. Other frames are not affected.
type FrameError struct {
	Frame int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("fingerprint: frame %d: %v", e.Frame, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

func (e *FrameError) Critical() bool { return false }
