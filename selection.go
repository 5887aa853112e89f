/*
 * selection.go, part of goifp.
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
	"strconv"
	"strings"
)

//A small atom selection language, in the spirit of those of MDAnalysis and VMD.
//
//	all | none | protein | water | hetero | ligand
//	resname NAME...   resid N... (also N-M ranges)   chain C...
//	name NAME...      element SYMBOL...              index N... (0-based, also N-M)
//	not S | S and S | S or S | ( S )
//
//"and" binds tighter than "or". "ligand" means hetero atoms that are not water.

// Select returns the sorted indexes of the atoms that match the selection sel.
func (T *Topology) Select(sel string) ([]int, error) {
	p := &selParser{toks: tokenizeSel(sel), top: T}
	if len(p.toks) == 0 {
		return nil, newCError(true, "Select", "empty selection")
	}
	f, err := p.or()
	if err != nil {
		return nil, errDecorate(err, "Select")
	}
	if p.pos < len(p.toks) {
		return nil, newCError(true, "Select", "unexpected %q in selection %q", p.toks[p.pos], sel)
	}
	ret := make([]int, 0, T.Len())
	for i, at := range T.Atoms {
		if f(i, at) {
			ret = append(ret, i)
		}
	}
	return ret, nil
}

func tokenizeSel(s string) []string {
	s = strings.ReplaceAll(s, "(", " ( ")
	s = strings.ReplaceAll(s, ")", " ) ")
	return strings.Fields(s)
}

type atomFilter func(i int, at *Atom) bool

type selParser struct {
	toks []string
	pos  int
	top  *Topology
}

func (p *selParser) peek() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos]
}

func (p *selParser) or() (atomFilter, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for strings.ToLower(p.peek()) == "or" {
		p.pos++
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(i int, at *Atom) bool { return l(i, at) || right(i, at) }
	}
	return left, nil
}

func (p *selParser) and() (atomFilter, error) {
	left, err := p.not()
	if err != nil {
		return nil, err
	}
	for strings.ToLower(p.peek()) == "and" {
		p.pos++
		right, err := p.not()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(i int, at *Atom) bool { return l(i, at) && right(i, at) }
	}
	return left, nil
}

func (p *selParser) not() (atomFilter, error) {
	if strings.ToLower(p.peek()) == "not" {
		p.pos++
		f, err := p.not()
		if err != nil {
			return nil, err
		}
		return func(i int, at *Atom) bool { return !f(i, at) }, nil
	}
	return p.primary()
}

var selReserved = map[string]bool{"and": true, "or": true, "not": true, "(": true, ")": true}

// args consumes and returns the arguments of a keyword.
func (p *selParser) args(keyword string) ([]string, error) {
	var ret []string
	for p.pos < len(p.toks) && !selReserved[strings.ToLower(p.toks[p.pos])] {
		ret = append(ret, p.toks[p.pos])
		p.pos++
	}
	if len(ret) == 0 {
		return nil, newCError(true, "selParser.args", "keyword %q needs at least one argument", keyword)
	}
	return ret, nil
}

// ranges parses arguments like 12, 12-20 or 12:20.
func ranges(args []string) ([][2]int, error) {
	ret := make([][2]int, 0, len(args))
	for _, a := range args {
		from, to, found := strings.Cut(a, ":")
		if !found {
			//negative numbers are allowed
			if k := strings.Index(a[1:], "-"); k >= 0 {
				from, to, found = a[:k+1], a[k+2:], true
			}
		}
		f, err := strconv.Atoi(from)
		if err != nil {
			return nil, newCError(true, "ranges", "bad number in %q", a)
		}
		t := f
		if found {
			t, err = strconv.Atoi(to)
			if err != nil {
				return nil, newCError(true, "ranges", "bad number in %q", a)
			}
		}
		ret = append(ret, [2]int{f, t})
	}
	return ret, nil
}

func inRanges(r [][2]int, n int) bool {
	for _, v := range r {
		if n >= v[0] && n <= v[1] {
			return true
		}
	}
	return false
}

func stringSet(args []string, upper bool) map[string]bool {
	ret := make(map[string]bool, len(args))
	for _, v := range args {
		if upper {
			v = strings.ToUpper(v)
		}
		ret[v] = true
	}
	return ret
}

func (p *selParser) primary() (atomFilter, error) {
	tok := p.peek()
	if tok == "" {
		return nil, newCError(true, "selParser.primary", "unexpected end of selection")
	}
	p.pos++
	switch kw := strings.ToLower(tok); kw {
	case "(":
		f, err := p.or()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, newCError(true, "selParser.primary", "missing )")
		}
		p.pos++
		return f, nil
	case "all":
		return func(int, *Atom) bool { return true }, nil
	case "none":
		return func(int, *Atom) bool { return false }, nil
	case "protein":
		return func(_ int, at *Atom) bool { return ResidueIDOf(at).IsAminoacid() }, nil
	case "water":
		return func(_ int, at *Atom) bool { return ResidueIDOf(at).IsWater() }, nil
	case "hetero":
		return func(_ int, at *Atom) bool { return at.Het }, nil
	case "ligand":
		return func(_ int, at *Atom) bool {
			id := ResidueIDOf(at)
			return at.Het && !id.IsWater() && !id.IsAminoacid()
		}, nil
	case "resname", "name", "chain", "element":
		args, err := p.args(kw)
		if err != nil {
			return nil, err
		}
		set := stringSet(args, kw != "chain")
		switch kw {
		case "resname":
			return func(_ int, at *Atom) bool { return set[strings.ToUpper(at.MolName)] }, nil
		case "name":
			return func(_ int, at *Atom) bool { return set[strings.ToUpper(at.Name)] }, nil
		case "chain":
			return func(_ int, at *Atom) bool { return set[at.Chain] }, nil
		default:
			return func(_ int, at *Atom) bool { return set[strings.ToUpper(at.Symbol)] }, nil
		}
	case "resid", "index":
		args, err := p.args(kw)
		if err != nil {
			return nil, err
		}
		r, err := ranges(args)
		if err != nil {
			return nil, err
		}
		if kw == "resid" {
			return func(_ int, at *Atom) bool { return inRanges(r, at.MolID) }, nil
		}
		return func(i int, _ *Atom) bool { return inRanges(r, i) }, nil
	}
	return nil, newCError(true, "selParser.primary", "unknown selection keyword %q", tok)
}
