/*
 * builtins.go, part of goifp.
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

//The built-in patterns are those the interaction rules use by default. They expect
//explicit hydrogens and perceived bond orders, formal charges and aromaticity.

var halogens = []string{"F", "Cl", "Br", "I"}

// AnyAtom matches every atom.
var AnyAtom = Atom("AnyAtom", AtomQuery{})

// Hydrophobic matches aromatic carbons and sulfurs, Br and I, thioether sulfurs and
// carbons with 3 or 4 neighbors not bonded to N, O or F, excluding quaternary carbons.
var Hydrophobic = Atom("Hydrophobic", AtomQuery{
	Charge: Neutral,
	Or: []AtomQuery{
		{Elements: []string{"C", "S"}, Aromatic: Yes},
		{Elements: []string{"Br", "I"}},
		{Elements: []string{"S"}, H: Exactly(0), Degree: Exactly(2)},
		{Elements: []string{"C"}, Degree: Between(3, 4), NoNeighbors: []string{"N", "O", "F"}, Func: notQuaternary},
	},
})

// HBondDonor matches a donor heavy atom and one of its hydrogens, in that order.
var HBondDonor = &Pattern{
	Name: "HBondDonor",
	Atoms: []AtomQuery{
		{Or: []AtomQuery{
			{Elements: []string{"O", "S"}, Charge: Neutral},
			{Elements: []string{"N"}, Charge: Neutral},
			{Elements: []string{"N"}, Charge: Positive, Aromatic: No, Degree: Exactly(4)},
		}},
		{Elements: []string{"H"}},
	},
	Bonds: []BondQuery{{From: 0, To: 1, Order: 1}},
}

// HBondAcceptor matches N, O and F acceptors, excluding amide, aniline and charged
// nitrogens, ester and diaryl ether oxygens, nitro oxygens and fluorines on
// polyhalogenated carbons.
var HBondAcceptor = Atom("HBondAcceptor", AtomQuery{
	Or: []AtomQuery{
		{Elements: []string{"N"}, Aromatic: No, Charge: NotPositive, Func: acceptorN},
		{Elements: []string{"N"}, Aromatic: Yes, Charge: Neutral, Func: func(g Graph, i int) bool { return len(g.Neighbors(i)) != 3 }},
		{Elements: []string{"O"}, Aromatic: No, Func: acceptorO},
		{Elements: []string{"O"}, Aromatic: Yes, Charge: Neutral},
		{Elements: []string{"F"}, Func: acceptorF},
	},
})

// Cation matches positively charged atoms and the neutral nitrogen of an amidinium.
var Cation = Atom("Cation", AtomQuery{
	Or: []AtomQuery{
		{Charge: Positive},
		{Elements: []string{"N"}, Charge: Neutral, Degree: Exactly(3), NoNeighbors: []string{"O"}, Func: amidiniumN},
	},
})

// Anion matches negatively charged atoms and the neutral oxygen of a carboxylate,
// sulfonate or phosphate.
var Anion = Atom("Anion", AtomQuery{
	Or: []AtomQuery{
		{Charge: Negative},
		{Elements: []string{"O"}, Charge: Neutral, Func: oxoanionO},
	},
})

// AromaticRing matches 5 and 6 membered aromatic rings.
var AromaticRing = Rings("AromaticRing", Yes, 5, 6)

// XBondDonor matches an atom bonded to a halogen, and the halogen, in that order.
var XBondDonor = &Pattern{
	Name: "XBondDonor",
	Atoms: []AtomQuery{
		{Elements: []string{"C", "N", "Si", "F", "Cl", "Br", "I"}},
		{Elements: []string{"Cl", "Br", "I"}},
	},
	Bonds: []BondQuery{{From: 0, To: 1, Order: 1}},
}

// XBondAcceptor matches an acceptor atom and one of its neighbors, in that order.
var XBondAcceptor = &Pattern{
	Name: "XBondAcceptor",
	Atoms: []AtomQuery{
		{Charge: NotPositive, Or: []AtomQuery{
			{Elements: []string{"N", "O", "P", "S", "Se", "Sn"}},
			{Aromatic: Yes},
		}},
		{},
	},
	Bonds: []BondQuery{{From: 0, To: 1}},
}

// Metal matches the metal ions usually found coordinated in proteins.
var Metal = Atom("Metal", AtomQuery{Elements: []string{"Ca", "Cd", "Co", "Cu", "Fe", "Mg", "Mn", "Ni", "Zn"}})

// Chelating matches atoms that can coordinate a metal.
var Chelating = Atom("Chelating", AtomQuery{
	Charge: NotPositive,
	Or: []AtomQuery{
		{Elements: []string{"O", "S"}},
		{Elements: []string{"N"}, Func: chelatingN},
		{Charge: Negative},
	},
})

// Builtins returns the built-in patterns, by name.
func Builtins() map[string]*Pattern {
	ret := make(map[string]*Pattern)
	for _, p := range []*Pattern{AnyAtom, Hydrophobic, HBondDonor, HBondAcceptor, Cation, Anion, AromaticRing, XBondDonor, XBondAcceptor, Metal, Chelating} {
		ret[p.Name] = p
	}
	return ret
}

func notQuaternary(g Graph, i int) bool {
	return !(len(g.Neighbors(i)) == 4 && hCount(g, i) == 0)
}

func hCount(g Graph, i int) int {
	h := 0
	for _, n := range g.Neighbors(i) {
		if g.Element(n) == "H" {
			h++
		}
	}
	return h
}

// doubleTo returns true if i has a double bond to an atom of one of the elements
// given, other than exclude.
func doubleTo(g Graph, i, exclude int, elements ...string) bool {
	for _, n := range g.Neighbors(i) {
		if n == exclude || g.BondOrder(i, n) != 2 {
			continue
		}
		if contains(elements, g.Element(n)) {
			return true
		}
	}
	return false
}

// amideLike is true for a 3-connected N bonded to an atom that is double-bonded
// to a heteroatom.
func amideLike(g Graph, i int, hetero ...string) bool {
	n := g.Neighbors(i)
	if len(n) != 3 {
		return false
	}
	for _, v := range n {
		if doubleTo(g, v, i, hetero...) {
			return true
		}
	}
	return false
}

func aniline(g Graph, i int) bool {
	n := g.Neighbors(i)
	if len(n) != 3 {
		return false
	}
	for _, v := range n {
		if g.Aromatic(v) {
			return true
		}
	}
	return false
}

// N=C(-[C,N])-N
func amidineImine(g Graph, i int) bool {
	for _, c := range g.Neighbors(i) {
		if g.Element(c) != "C" || g.BondOrder(i, c) != 2 {
			continue
		}
		var cn, n int
		for _, v := range g.Neighbors(c) {
			if v == i || g.BondOrder(c, v) != 1 {
				continue
			}
			switch g.Element(v) {
			case "N":
				n++
				cn++
			case "C":
				cn++
			}
		}
		if n >= 1 && cn >= 2 {
			return true
		}
	}
	return false
}

func acceptorN(g Graph, i int) bool {
	return !amideLike(g, i, "O", "N", "P", "S") && !aniline(g, i) && !amidineImine(g, i)
}

func acceptorO(g Graph, i int) bool {
	n := g.Neighbors(i)
	if len(n) == 2 {
		//esters
		if g.Element(n[0]) == "C" && g.Element(n[1]) == "C" && (doubleTo(g, n[0], i, "O") || doubleTo(g, n[1], i, "O")) {
			return false
		}
		if g.Aromatic(n[0]) && g.Aromatic(n[1]) {
			return false
		}
	}
	for _, v := range n {
		if g.Element(v) != "N" {
			continue
		}
		//nitro and N-oxides
		if g.BondOrder(i, v) == 2 || (g.Charge(i) < 0 && doubleTo(g, v, i, "O")) {
			return false
		}
	}
	return true
}

func acceptorF(g Graph, i int) bool {
	for _, c := range g.Neighbors(i) {
		if g.Element(c) != "C" {
			continue
		}
		for _, v := range g.Neighbors(c) {
			if v != i && contains(halogens, g.Element(v)) {
				return false
			}
		}
		return true
	}
	return false
}

// NX3-C=[NX3+]
func amidiniumN(g Graph, i int) bool {
	for _, c := range g.Neighbors(i) {
		if g.Element(c) != "C" || g.BondOrder(i, c) != 1 {
			continue
		}
		for _, v := range g.Neighbors(c) {
			if v != i && g.Element(v) == "N" && g.Charge(v) > 0 && g.BondOrder(c, v) == 2 && len(g.Neighbors(v)) == 3 {
				return true
			}
		}
	}
	return false
}

// O=[C,S,P]-[O-]
func oxoanionO(g Graph, i int) bool {
	for _, c := range g.Neighbors(i) {
		if g.BondOrder(i, c) != 2 || !contains([]string{"C", "S", "P"}, g.Element(c)) {
			continue
		}
		for _, v := range g.Neighbors(c) {
			if v != i && g.Element(v) == "O" && g.Charge(v) < 0 && g.BondOrder(c, v) == 1 {
				return true
			}
		}
	}
	return false
}

func chelatingN(g Graph, i int) bool {
	deg := len(g.Neighbors(i))
	if deg == 4 || (g.Aromatic(i) && deg == 3) {
		return false
	}
	if amideLike(g, i, "O", "N", "P", "S", "F", "Cl", "Br", "I", "Se") {
		return false
	}
	return !aniline(g, i)
}
