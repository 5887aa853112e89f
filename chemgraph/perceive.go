/*
 * perceive.go, part of goifp.
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

package chemgraph

import (
	"fmt"
	"log"

	chem "github.com/rmera/goifp"
	v3 "github.com/rmera/goifp/v3"
)

// Perceive completes the topology information the interaction patterns need.
// If top has no bonds, they are assigned from the distances in coords. If any bond has
// undetermined order, bond orders and formal charges are inferred from valences,
// which requires explicit hydrogens. Finally, rings and aromaticity are perceived.
func Perceive(top *chem.Topology, coords *v3.Matrix) error {
	if len(top.Bonds()) == 0 {
		if coords == nil {
			return fmt.Errorf("Perceive: %s has no bonds, and no coordinates were given to assign them", top.Name())
		}
		if err := chem.AssignBonds(coords, top); err != nil {
			return fmt.Errorf("Perceive: %w", err)
		}
	}
	infer := false
	for _, b := range top.Bonds() {
		if b.Order <= 0 {
			infer = true
			break
		}
	}
	if infer {
		if !hasHydrogens(top) {
			log.Printf("Perceive: %s has no hydrogens, bond orders and charges will be wrong", top.Name())
		}
		chem.AssignBondOrders(top)
	}
	top.SetRings(Rings(top))
	Aromaticity(top)
	return nil
}

func hasHydrogens(top *chem.Topology) bool {
	for _, at := range top.Atoms {
		if at.Symbol == "H" {
			return true
		}
	}
	return false
}
