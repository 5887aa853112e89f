/*
 * atomicdata.go, part of goifp.
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

// A map for assigning covalent radii to elements
// Values from Cordero et al., 2008 (DOI:10.1039/B801115J)
// Note that just common "bio-elements" are present
var symbolCovrad = map[string]float64{
	"H":  0.4,  // 0.31. H always has only one bond, so a longer radius doesn't hurt, the extra bonds get eliminated later.
	"C":  0.76, //the sp3 radius
	"O":  0.66,
	"N":  0.71,
	"P":  1.07,
	"S":  1.05,
	"Se": 1.2,
	"K":  2.03,
	"Ca": 1.76,
	"Mg": 1.41,
	"Cl": 1.02,
	"Na": 1.66,
	"Cu": 1.32,
	"Zn": 1.22,
	"Co": 1.5,  // hs
	"Fe": 1.52, //hs
	"Mn": 1.61, //hs
	"Ni": 1.24,
	"Cd": 1.44,
	"Cr": 1.39,
	"Si": 1.11,
	"Be": 0.96,
	"B":  0.84,
	"F":  0.57,
	"Br": 1.2,
	"I":  1.39,
}

// A map for assigning van der Waals radii to elements
// Values from 10.1021/j100785a001 and 10.1021/jp8111556
// metal radii from 10.1023/A:1011625728803
// Note that just common "bio-elements" are present
var symbolVdwrad = map[string]float64{
	"H":  1.10,
	"C":  1.70,
	"O":  1.52,
	"N":  1.55,
	"P":  1.80,
	"S":  1.80,
	"Se": 1.90,
	"K":  2.75,
	"Ca": 2.31,
	"Mg": 1.73,
	"Cl": 1.75,
	"Na": 2.27,
	"Cu": 2.00,
	"Zn": 2.02,
	"Co": 1.95,
	"Fe": 1.96,
	"Mn": 1.96,
	"Ni": 1.97,
	"Cd": 2.18,
	"Cr": 1.97,
	"Si": 2.10,
	"Be": 1.53,
	"B":  1.92,
	"F":  1.47,
	"Br": 1.83,
	"I":  1.98,
}

// A map for checking that atoms don't
// have too many bonds. A value of 0 means
// undefined, i.e. that this atom shouldn't
// be checked for max bonds.
var symbolMaxBonds = map[string]int{
	"H":  1, //this is the only one truly important.
	"C":  4,
	"O":  2,
	"N":  4,
	"P":  0,
	"S":  0,
	"Se": 0,
	"Be": 0,
	"F":  1,
	"Cl": 1,
	"Br": 1,
	"I":  1,
}

// Allowed valences for each element, lowest first. Used to infer
// bond orders and formal charges in structures with explicit hydrogens.
var symbolValences = map[string][]int{
	"H":  {1},
	"B":  {3},
	"C":  {4},
	"N":  {3},
	"O":  {2},
	"F":  {1},
	"Si": {4},
	"P":  {3, 5, 7},
	"S":  {2, 4, 6},
	"Cl": {1},
	"Se": {2, 4, 6},
	"Br": {1},
	"I":  {1, 3, 5},
}

var metals = map[string]bool{
	"Na": true, "K": true, "Mg": true, "Ca": true, "Mn": true, "Fe": true, "Co": true,
	"Ni": true, "Cu": true, "Zn": true, "Cd": true, "Cr": true,
}

// VdWRadius returns the van der Waals radius of the element, in A, and false
// if the element is not in the table.
func VdWRadius(symbol string) (float64, bool) {
	r, ok := symbolVdwrad[symbol]
	return r, ok
}

// CovalentRadius returns the covalent radius of the element, in A, and false
// if the element is not in the table.
func CovalentRadius(symbol string) (float64, bool) {
	r, ok := symbolCovrad[symbol]
	return r, ok
}

// IsMetal returns true for the metal ions commonly found in biomolecular structures.
func IsMetal(symbol string) bool {
	return metals[symbol]
}

// MaxVdWRadius returns the largest van der Waals radius in the table.
func MaxVdWRadius() float64 {
	max := 0.0
	for _, r := range symbolVdwrad {
		if r > max {
			max = r
		}
	}
	return max
}
