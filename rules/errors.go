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

package rules

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrUnknownRule marks errors caused by a rule name that is not registered.
var ErrUnknownRule = errors.New("unknown interaction rule")

// UnknownRuleError is returned when a rule name is not known.
type UnknownRuleError struct {
	Name string
}

func (e *UnknownRuleError) Error() string {
	return fmt.Sprintf("rules: unknown interaction rule %q", e.Name)
}

// Critical returns true. An unknown rule is always a configuration mistake.
func (e *UnknownRuleError) Critical() bool { return true }

func unknownRule(name string) error {
	return errors.Mark(&UnknownRuleError{Name: name}, ErrUnknownRule)
}
