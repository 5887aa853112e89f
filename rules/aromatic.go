/*
 * aromatic.go, part of goifp.
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
	"math"

	chem "github.com/rmera/goifp"
	"gonum.org/v1/gonum/spatial/r3"
)

// ring is an aromatic ring with its geometry in one frame.
type ring struct {
	atoms    AtomGroup
	centroid r3.Vec
	normal   r3.Vec
}

func rings(s *Side) []ring {
	groups := s.Groups[AromaticRing]
	ret := make([]ring, 0, len(groups))
	for _, g := range groups {
		points := s.Positions(g)
		c, err := chem.Centroid(points)
		if err != nil {
			continue
		}
		n, err := chem.RingNormal(points)
		if err != nil {
			continue
		}
		ret = append(ret, ring{atoms: g, centroid: c, normal: n})
	}
	return ret
}

// stacking holds the measures common to both stacking geometries.
type stacking struct {
	dist, plane float64
}

// stackingBase checks the centroid distance and the angle between the ring planes.
func stackingBase(l, t ring, p StackingParams) (stacking, bool) {
	dist := chem.Distance(l.centroid, t.centroid)
	if dist > p.Distance {
		return stacking{}, false
	}
	plane, err := chem.PlaneAngle(l.normal, t.normal)
	if err != nil || !inRange(plane, p.PlaneAngleMin, p.PlaneAngleMax) {
		return stacking{}, false
	}
	return stacking{dist: dist, plane: plane}, true
}

// normalToCentroid returns the angle between the normal of from and the vector joining
// the centroids of both rings, and whether it is within the limits in p.
func normalToCentroid(from, to ring, p StackingParams) (float64, bool) {
	angle, err := chem.VecAngle(from.normal, r3.Sub(to.centroid, from.centroid))
	if err != nil {
		return 0, false
	}
	return angle, chem.InAngleLimits(angle, p.NormalToCentroidAngleMin, p.NormalToCentroidAngleMax)
}

func stackingHit(name string, l, t ring, s stacking, ncc float64) Hit {
	return Hit{
		Rule:        name,
		LigandAtoms: l.atoms,
		TargetAtoms: t.atoms,
		Distance:    s.dist,
		Angles:      map[string]float64{"plane": s.plane, "normal_to_centroid": ncc},
	}
}

// FaceToFaceRule detects parallel (sandwich or displaced) pi-stacking.
type FaceToFaceRule struct {
	params StackingParams
}

func NewFaceToFace(p StackingParams) *FaceToFaceRule { return &FaceToFaceRule{params: p} }

func (r *FaceToFaceRule) Name() string           { return "FaceToFace" }
func (r *FaceToFaceRule) LigandPatterns() []Role { return []Role{AromaticRing} }
func (r *FaceToFaceRule) TargetPatterns() []Role { return []Role{AromaticRing} }
func (r *FaceToFaceRule) MaxDistance() float64   { return r.params.Distance }
func (r *FaceToFaceRule) Params() interface{}    { return r.params }
func (r *FaceToFaceRule) Validate() error        { return r.params.Validate(r.Name()) }

func (r *FaceToFaceRule) Detect(lig, tgt *Side) []Hit {
	var hits hitSet
	trings := rings(tgt)
	for _, l := range rings(lig) {
		for _, t := range trings {
			s, ok := stackingBase(l, t, r.params)
			if !ok {
				continue
			}
			ncc, ok := normalToCentroid(l, t, r.params)
			if !ok {
				ncc, ok = normalToCentroid(t, l, r.params)
			}
			if !ok {
				continue
			}
			hits.add(stackingHit(r.Name(), l, t, s, ncc))
		}
	}
	return hits.hits
}

// EdgeToFaceRule detects T-shaped pi-stacking. Besides the distance and angle
// conditions, the line where the plane of the face ring meets the plane of the
// edge ring must pass within IntersectRadius of the face ring centroid. The point
// of the line considered is the one closest to the edge ring centroid.
type EdgeToFaceRule struct {
	params StackingParams
}

func NewEdgeToFace(p StackingParams) *EdgeToFaceRule { return &EdgeToFaceRule{params: p} }

func (r *EdgeToFaceRule) Name() string           { return "EdgeToFace" }
func (r *EdgeToFaceRule) LigandPatterns() []Role { return []Role{AromaticRing} }
func (r *EdgeToFaceRule) TargetPatterns() []Role { return []Role{AromaticRing} }
func (r *EdgeToFaceRule) MaxDistance() float64   { return r.params.Distance }
func (r *EdgeToFaceRule) Params() interface{}    { return r.params }
func (r *EdgeToFaceRule) Validate() error        { return r.params.Validate(r.Name()) }

func (r *EdgeToFaceRule) Detect(lig, tgt *Side) []Hit {
	var hits hitSet
	trings := rings(tgt)
	for _, l := range rings(lig) {
		for _, t := range trings {
			s, ok := stackingBase(l, t, r.params)
			if !ok {
				continue
			}
			for _, pair := range [2][2]ring{{l, t}, {t, l}} {
				face, edge := pair[0], pair[1]
				ncc, ok := normalToCentroid(face, edge, r.params)
				if !ok {
					continue
				}
				x, ok := planesIntersect(face, edge)
				if !ok || chem.Distance(x, face.centroid) > r.params.IntersectRadius {
					continue
				}
				hits.add(stackingHit(r.Name(), l, t, s, ncc))
				break
			}
		}
	}
	return hits.hits
}

// planesIntersect returns the point of the line where the planes of both rings meet that
// is closest to the centroid of edge. It solves, by Cramer's rule, the system formed by
// the two plane equations and the plane through the edge centroid perpendicular to the line.
// It returns false if the planes are parallel.
func planesIntersect(face, edge ring) (r3.Vec, bool) {
	a, b := face.normal, edge.normal
	c := r3.Cross(a, b)
	det := r3.Dot(a, r3.Cross(b, c))
	if math.Abs(det) < 1e-6 {
		return r3.Vec{}, false
	}
	d1 := r3.Dot(a, face.centroid)
	d2 := r3.Dot(b, edge.centroid)
	d3 := r3.Dot(c, edge.centroid)
	x := r3.Add(r3.Add(r3.Scale(d1, r3.Cross(b, c)), r3.Scale(d2, r3.Cross(c, a))), r3.Scale(d3, r3.Cross(a, b)))
	return r3.Scale(1/det, x), true
}

// PiStackingRule is FaceToFace or EdgeToFace. A pair of rings produces at most one
// hit, which keeps the name of the geometry that produced it in Via. FaceToFace is
// tried first.
type PiStackingRule struct {
	params PiStackingParams
	f2f    *FaceToFaceRule
	e2f    *EdgeToFaceRule
}

func NewPiStacking(p PiStackingParams) *PiStackingRule {
	return &PiStackingRule{params: p, f2f: NewFaceToFace(p.FaceToFace), e2f: NewEdgeToFace(p.EdgeToFace)}
}

func (r *PiStackingRule) Name() string           { return "PiStacking" }
func (r *PiStackingRule) LigandPatterns() []Role { return []Role{AromaticRing} }
func (r *PiStackingRule) TargetPatterns() []Role { return []Role{AromaticRing} }
func (r *PiStackingRule) Params() interface{}    { return r.params }
func (r *PiStackingRule) Validate() error        { return r.params.Validate(r.Name()) }

func (r *PiStackingRule) MaxDistance() float64 {
	return math.Max(r.f2f.MaxDistance(), r.e2f.MaxDistance())
}

func (r *PiStackingRule) Detect(lig, tgt *Side) []Hit {
	var hits hitSet
	for _, sub := range []Rule{r.f2f, r.e2f} {
		for _, h := range sub.Detect(lig, tgt) {
			h.Rule = r.Name()
			h.Via = sub.Name()
			hits.add(h)
		}
	}
	return hits.hits
}

type piCationMatch struct {
	cation, ring AtomGroup
	dist, angle  float64
}

// piCationPredicate returns the cation groups of cations above the face of an
// aromatic ring of rings.
func piCationPredicate(cations, rs *Side, p PiCationParams) []piCationMatch {
	var ret []piCationMatch
	for _, r := range rings(rs) {
		for _, cg := range cations.Groups[Cation] {
			cat, err := chem.Centroid(cations.Positions(cg))
			if err != nil {
				continue
			}
			dist := chem.Distance(cat, r.centroid)
			if dist > p.Distance {
				continue
			}
			angle, err := chem.VecAngle(r.normal, r3.Sub(cat, r.centroid))
			if err != nil || !chem.InAngleLimits(angle, p.AngleMin, p.AngleMax) {
				continue
			}
			ret = append(ret, piCationMatch{cation: cg, ring: r.atoms, dist: dist, angle: angle})
		}
	}
	return ret
}

// PiCationRule detects cation-pi interactions, with the cation in the ligand (CationPi)
// or in the target (PiCation).
type PiCationRule struct {
	name           string
	cationIsLigand bool
	params         PiCationParams
}

// NewCationPi returns the CationPi rule: ligand cation, target ring.
func NewCationPi(p PiCationParams) *PiCationRule {
	return &PiCationRule{name: "CationPi", cationIsLigand: true, params: p}
}

// NewPiCation returns the PiCation rule: ligand ring, target cation.
func NewPiCation(p PiCationParams) *PiCationRule {
	return &PiCationRule{name: "PiCation", params: p}
}

func (r *PiCationRule) Name() string         { return r.name }
func (r *PiCationRule) MaxDistance() float64 { return r.params.Distance }
func (r *PiCationRule) Params() interface{}  { return r.params }
func (r *PiCationRule) Validate() error      { return r.params.Validate(r.name) }

func (r *PiCationRule) LigandPatterns() []Role {
	if r.cationIsLigand {
		return []Role{Cation}
	}
	return []Role{AromaticRing}
}

func (r *PiCationRule) TargetPatterns() []Role {
	if r.cationIsLigand {
		return []Role{AromaticRing}
	}
	return []Role{Cation}
}

func (r *PiCationRule) Detect(lig, tgt *Side) []Hit {
	cations, rs := lig, tgt
	if !r.cationIsLigand {
		cations, rs = tgt, lig
	}
	var hits hitSet
	for _, m := range piCationPredicate(cations, rs, r.params) {
		hit := Hit{Rule: r.name, Distance: m.dist, Angles: map[string]float64{"normal_to_cation": m.angle}}
		if r.cationIsLigand {
			hit.LigandAtoms, hit.TargetAtoms = m.cation, m.ring
		} else {
			hit.LigandAtoms, hit.TargetAtoms = m.ring, m.cation
		}
		hits.add(hit)
	}
	return hits.hits
}
