/*
 * hbond.go, part of goifp.
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
	chem "github.com/rmera/goifp"
)

type hbMatch struct {
	donor, acceptor AtomGroup
	dist, angle     float64
}

// hbondPredicate returns the hydrogen bonds from the donor groups [D,H] of donor to
// the acceptor groups [A] of acceptor, i.e. those with D...A at most p.Distance apart
// and a D-H...A angle within the range in p.
func hbondPredicate(donor, acceptor *Side, p HBondParams) []hbMatch {
	var ret []hbMatch
	for _, dg := range donor.Groups[HBondDonor] {
		d, h := donor.Pos(dg[0]), donor.Pos(dg[1])
		for _, ag := range acceptor.Groups[HBondAcceptor] {
			a := acceptor.Pos(ag[0])
			dist := chem.Distance(d, a)
			if dist > p.Distance {
				continue
			}
			angle, err := chem.Angle(d, h, a)
			if err != nil || !inRange(angle, p.DHAMin, p.DHAMax) {
				continue
			}
			ret = append(ret, hbMatch{donor: dg, acceptor: ag, dist: dist, angle: angle})
		}
	}
	return ret
}

// HBondRule detects hydrogen bonds in one direction: from a ligand donor to a target
// acceptor (HBDonor) or the reverse (HBAcceptor).
type HBondRule struct {
	name          string
	donorIsLigand bool
	params        HBondParams
}

// NewHBDonor returns the HBDonor rule, where the ligand donates the hydrogen bond.
func NewHBDonor(p HBondParams) *HBondRule {
	return &HBondRule{name: "HBDonor", donorIsLigand: true, params: p}
}

// NewHBAcceptor returns the HBAcceptor rule, where the ligand accepts the hydrogen bond.
func NewHBAcceptor(p HBondParams) *HBondRule {
	return &HBondRule{name: "HBAcceptor", params: p}
}

func (r *HBondRule) Name() string         { return r.name }
func (r *HBondRule) MaxDistance() float64 { return r.params.Distance }
func (r *HBondRule) Params() interface{}  { return r.params }
func (r *HBondRule) Validate() error      { return r.params.Validate(r.name) }

func (r *HBondRule) LigandPatterns() []Role {
	if r.donorIsLigand {
		return []Role{HBondDonor}
	}
	return []Role{HBondAcceptor}
}

func (r *HBondRule) TargetPatterns() []Role {
	if r.donorIsLigand {
		return []Role{HBondAcceptor}
	}
	return []Role{HBondDonor}
}

func (r *HBondRule) Detect(lig, tgt *Side) []Hit {
	donor, acceptor := lig, tgt
	if !r.donorIsLigand {
		donor, acceptor = tgt, lig
	}
	var hits hitSet
	for _, m := range hbondPredicate(donor, acceptor, r.params) {
		hit := Hit{Rule: r.name, Distance: m.dist, Angles: map[string]float64{"DHA": m.angle}}
		if r.donorIsLigand {
			hit.LigandAtoms, hit.TargetAtoms = m.donor, m.acceptor
		} else {
			hit.LigandAtoms, hit.TargetAtoms = m.acceptor, m.donor
		}
		hits.add(hit)
	}
	return hits.hits
}

type xbMatch struct {
	donor, acceptor AtomGroup
	dist, cxa, xar  float64
}

// xbondPredicate returns the halogen bonds from the donor groups [C,X] of donor to
// the acceptor groups [A,R] of acceptor.
func xbondPredicate(donor, acceptor *Side, p XBondParams) []xbMatch {
	var ret []xbMatch
	for _, dg := range donor.Groups[XBondDonor] {
		c, x := donor.Pos(dg[0]), donor.Pos(dg[1])
		for _, ag := range acceptor.Groups[XBondAcceptor] {
			a, r := acceptor.Pos(ag[0]), acceptor.Pos(ag[1])
			dist := chem.Distance(x, a)
			if dist > p.Distance {
				continue
			}
			cxa, err := chem.Angle(c, x, a)
			if err != nil || !inRange(cxa, p.CXAMin, p.CXAMax) {
				continue
			}
			xar, err := chem.Angle(x, a, r)
			if err != nil || !inRange(xar, p.XARMin, p.XARMax) {
				continue
			}
			ret = append(ret, xbMatch{donor: dg, acceptor: ag, dist: dist, cxa: cxa, xar: xar})
		}
	}
	return ret
}

// XBondRule detects halogen bonds in one direction: from a ligand halogen to a target
// acceptor (XBDonor) or the reverse (XBAcceptor).
type XBondRule struct {
	name          string
	donorIsLigand bool
	params        XBondParams
}

// NewXBDonor returns the XBDonor rule, where the ligand has the halogen.
func NewXBDonor(p XBondParams) *XBondRule {
	return &XBondRule{name: "XBDonor", donorIsLigand: true, params: p}
}

// NewXBAcceptor returns the XBAcceptor rule, where the target has the halogen.
func NewXBAcceptor(p XBondParams) *XBondRule {
	return &XBondRule{name: "XBAcceptor", params: p}
}

func (r *XBondRule) Name() string         { return r.name }
func (r *XBondRule) MaxDistance() float64 { return r.params.Distance }
func (r *XBondRule) Params() interface{}  { return r.params }
func (r *XBondRule) Validate() error      { return r.params.Validate(r.name) }

func (r *XBondRule) LigandPatterns() []Role {
	if r.donorIsLigand {
		return []Role{XBondDonor}
	}
	return []Role{XBondAcceptor}
}

func (r *XBondRule) TargetPatterns() []Role {
	if r.donorIsLigand {
		return []Role{XBondAcceptor}
	}
	return []Role{XBondDonor}
}

func (r *XBondRule) Detect(lig, tgt *Side) []Hit {
	donor, acceptor := lig, tgt
	if !r.donorIsLigand {
		donor, acceptor = tgt, lig
	}
	var hits hitSet
	for _, m := range xbondPredicate(donor, acceptor, r.params) {
		hit := Hit{Rule: r.name, Distance: m.dist, Angles: map[string]float64{"CXA": m.cxa, "XAR": m.xar}}
		if r.donorIsLigand {
			hit.LigandAtoms, hit.TargetAtoms = m.donor, m.acceptor
		} else {
			hit.LigandAtoms, hit.TargetAtoms = m.acceptor, m.donor
		}
		hits.add(hit)
	}
	return hits.hits
}

// WaterBridgeRule detects a water molecule hydrogen-bonded to both the ligand and the
// target in the same frame. Each of the two hydrogen bonds can go in either direction.
type WaterBridgeRule struct {
	params HBondParams
}

// NewWaterBridge returns the WaterBridge rule, which uses the given hydrogen bond parameters
// for both hydrogen bonds.
func NewWaterBridge(p HBondParams) *WaterBridgeRule {
	return &WaterBridgeRule{params: p}
}

var hbondRoles = []Role{HBondDonor, HBondAcceptor}

func (r *WaterBridgeRule) Name() string           { return "WaterBridge" }
func (r *WaterBridgeRule) LigandPatterns() []Role { return hbondRoles }
func (r *WaterBridgeRule) TargetPatterns() []Role { return hbondRoles }
func (r *WaterBridgeRule) WaterPatterns() []Role  { return hbondRoles }
func (r *WaterBridgeRule) MaxDistance() float64   { return 2 * r.params.Distance }
func (r *WaterBridgeRule) Params() interface{}    { return r.params }
func (r *WaterBridgeRule) Validate() error        { return r.params.Validate(r.Name()) }

// leg is a hydrogen bond between a residue and a water.
type leg struct {
	atoms       AtomGroup //atoms of the residue
	dist, angle float64
}

func waterLegs(s, water *Side, p HBondParams) []leg {
	var ret []leg
	for _, m := range hbondPredicate(s, water, p) {
		ret = append(ret, leg{atoms: m.donor, dist: m.dist, angle: m.angle})
	}
	for _, m := range hbondPredicate(water, s, p) {
		ret = append(ret, leg{atoms: m.acceptor, dist: m.dist, angle: m.angle})
	}
	return ret
}

// Detect reports one hit per ligand leg, target leg and water. The distance of the
// hit is the sum of the donor-acceptor distances of both legs.
func (r *WaterBridgeRule) Detect(lig, tgt *Side) []Hit {
	var hits hitSet
	for _, w := range lig.Waters {
		if w.Residue == lig.Residue || w.Residue == tgt.Residue {
			continue
		}
		ligLegs := waterLegs(lig, w, r.params)
		if len(ligLegs) == 0 {
			continue
		}
		tgtLegs := waterLegs(tgt, w, r.params)
		for _, a := range ligLegs {
			for _, b := range tgtLegs {
				hits.add(Hit{
					Rule:        r.Name(),
					LigandAtoms: a.atoms,
					TargetAtoms: b.atoms,
					Water:       w.Atoms,
					Distance:    a.dist + b.dist,
					Angles:      map[string]float64{"DHA_ligand_water": a.angle, "DHA_water_target": b.angle},
				})
			}
		}
	}
	return hits.hits
}
