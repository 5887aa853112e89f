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

/*
Package chem is the base package of goifp. It provides atom, residue and topology
structures, readers for the molecular formats the fingerprint tools consume, and the
geometric primitives the interaction rules are built on.

	**Capabilities**

	Reads PDB files (multi-MODEL aware) and writes them.

	Reads V2000 SD files with one or many records.

	Assigns bonds from distances, and bond orders and formal charges from valences,
	so that structures without explicit connectivity can be fingerprinted.

	Groups atoms into residues and selects atoms with a small query language
	("protein and not water", "resname LIG", "resid 120-130 and chain A").

	Matches declarative substructure patterns (see the pattern package) against a topology.

	Distances, angles and angles between planes on gonum's r3 vectors, with degenerate
	inputs reported as GeometryError instead of NaN.

Coordinates are kept apart from the topology, in v3.Matrix objects, one per frame.
*/
package chem
