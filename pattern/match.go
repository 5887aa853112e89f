/*
 * match.go, part of goifp.
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

package pattern

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Matches returns true if the ith atom of g satisfies q.
func (q *AtomQuery) Matches(g Graph, i int) bool {
	el := g.Element(i)
	if len(q.Elements) > 0 && !contains(q.Elements, el) {
		return false
	}
	if contains(q.NotElements, el) {
		return false
	}
	if !q.Aromatic.ok(g.Aromatic(i)) || !q.InRing.ok(g.InRing(i)) || !q.Charge.ok(g.Charge(i)) {
		return false
	}
	if q.H != nil || q.Degree != nil || len(q.NoNeighbors) > 0 {
		neighbors := g.Neighbors(i)
		h := 0
		for _, n := range neighbors {
			ne := g.Element(n)
			if ne == "H" {
				h++
			}
			if contains(q.NoNeighbors, ne) {
				return false
			}
		}
		if !q.H.ok(h) || !q.Degree.ok(len(neighbors)) {
			return false
		}
	}
	if q.Func != nil && !q.Func(g, i) {
		return false
	}
	if len(q.Or) == 0 {
		return true
	}
	for k := range q.Or {
		if q.Or[k].Matches(g, i) {
			return true
		}
	}
	return false
}

func contains(s []string, e string) bool {
	for _, v := range s {
		if v == e {
			return true
		}
	}
	return false
}

// Find returns the groups of atoms of g that match p, considering only the atoms
// with indexes in within (all atoms, if within is nil). Each group is returned once,
// even if the pattern can map onto the same set of atoms in more than one way.
// Groups are sorted by their first atom, and the result is the same for the same input.
func Find(g Graph, p *Pattern, within []int) [][]int {
	if p == nil {
		return nil
	}
	m := &matcher{g: g, p: p}
	if within == nil {
		m.order = make([]int, g.Len())
		for i := range m.order {
			m.order[i] = i
		}
	} else {
		m.order = append([]int(nil), within...)
		sort.Ints(m.order)
	}
	m.allowed = make(map[int]bool, len(m.order))
	for _, v := range m.order {
		m.allowed[v] = true
	}
	if p.Ring != nil {
		return m.rings()
	}
	if len(p.Atoms) == 0 {
		return nil
	}
	m.mapping = make([]int, len(p.Atoms))
	m.used = make(map[int]bool)
	m.seen = make(map[string]bool)
	m.extend(0)
	return m.out
}

type matcher struct {
	g       Graph
	p       *Pattern
	order   []int
	allowed map[int]bool
	mapping []int
	used    map[int]bool
	seen    map[string]bool
	out     [][]int
}

func (m *matcher) rings() [][]int {
	var out [][]int
	q := m.p.Ring
rings:
	for _, r := range m.g.Rings() {
		if len(q.Sizes) > 0 && !containsInt(q.Sizes, len(r)) {
			continue
		}
		arom := true
		for _, v := range r {
			if !m.allowed[v] {
				continue rings
			}
			arom = arom && m.g.Aromatic(v)
		}
		if !q.Aromatic.ok(arom) {
			continue
		}
		out = append(out, append([]int(nil), r...))
	}
	return out
}

func containsInt(s []int, e int) bool {
	for _, v := range s {
		if v == e {
			return true
		}
	}
	return false
}

func (m *matcher) extend(k int) {
	if k == len(m.p.Atoms) {
		key := setKey(m.mapping)
		if m.seen[key] {
			return
		}
		m.seen[key] = true
		m.out = append(m.out, append([]int(nil), m.mapping...))
		return
	}
	for _, c := range m.candidates(k) {
		if m.used[c] || !m.allowed[c] || !m.p.Atoms[k].Matches(m.g, c) || !m.bondsOK(k, c) {
			continue
		}
		m.mapping[k] = c
		m.used[c] = true
		m.extend(k + 1)
		m.used[c] = false
	}
}

// candidates returns the neighbors of an already mapped atom bonded to the kth
// pattern atom, if there is one, or all the allowed atoms.
func (m *matcher) candidates(k int) []int {
	for _, b := range m.p.Bonds {
		other := -1
		if b.From == k && b.To < k {
			other = b.To
		} else if b.To == k && b.From < k {
			other = b.From
		}
		if other < 0 {
			continue
		}
		n := append([]int(nil), m.g.Neighbors(m.mapping[other])...)
		sort.Ints(n)
		return n
	}
	return m.order
}

func (m *matcher) bondsOK(k, c int) bool {
	for _, b := range m.p.Bonds {
		var other int
		switch {
		case b.From == k && b.To < k:
			other = m.mapping[b.To]
		case b.To == k && b.From < k:
			other = m.mapping[b.From]
		default:
			continue
		}
		order := m.g.BondOrder(other, c)
		if order == 0 {
			return false
		}
		if b.Order > 0 && math.Abs(order-b.Order) > 0.01 {
			return false
		}
	}
	return true
}

func setKey(s []int) string {
	c := append([]int(nil), s...)
	sort.Ints(c)
	strs := make([]string, len(c))
	for i, v := range c {
		strs[i] = strconv.Itoa(v)
	}
	return strings.Join(strs, ",")
}
