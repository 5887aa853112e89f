/*
 * params.go, part of goifp.
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
	"github.com/cockroachdb/errors"
)

// ErrInvalidParams marks errors from invalid rule parameters.
var ErrInvalidParams = errors.New("invalid interaction rule parameters")

func invalid(rule, format string, args ...interface{}) error {
	return errors.Mark(errors.Newf("%s: "+format, append([]interface{}{rule}, args...)...), ErrInvalidParams)
}

func checkDistance(rule string, d float64) error {
	if d <= 0 {
		return invalid(rule, "distance must be positive, got %g", d)
	}
	return nil
}

func checkAngles(rule, name string, min, max, limit float64) error {
	if min < 0 || max > limit || min > max {
		return invalid(rule, "%s range [%g,%g] not within [0,%g]", name, min, max, limit)
	}
	return nil
}

// DistanceParams is for rules that only check a distance.
type DistanceParams struct {
	Distance float64 `mapstructure:"distance" json:"distance"`
}

// Validate returns an error if the distance is not positive.
func (p DistanceParams) Validate(rule string) error {
	return checkDistance(rule, p.Distance)
}

// DefaultHydrophobicParams returns the default parameters for Hydrophobic.
func DefaultHydrophobicParams() DistanceParams { return DistanceParams{Distance: 4.5} }

// DefaultIonicParams returns the default parameters for Cationic and Anionic.
func DefaultIonicParams() DistanceParams { return DistanceParams{Distance: 4.5} }

// DefaultMetalParams returns the default parameters for MetalDonor and MetalAcceptor.
func DefaultMetalParams() DistanceParams { return DistanceParams{Distance: 2.8} }

// HBondParams are the parameters of hydrogen bonds: the maximum donor-acceptor distance,
// and the range of the donor-hydrogen-acceptor angle.
type HBondParams struct {
	Distance float64 `mapstructure:"distance" json:"distance"`
	DHAMin   float64 `mapstructure:"dha_angle_min" json:"dha_angle_min"`
	DHAMax   float64 `mapstructure:"dha_angle_max" json:"dha_angle_max"`
}

// DefaultHBondParams returns 3.5 A and [130,180] degrees.
func DefaultHBondParams() HBondParams {
	return HBondParams{Distance: 3.5, DHAMin: 130, DHAMax: 180}
}

func (p HBondParams) Validate(rule string) error {
	if err := checkDistance(rule, p.Distance); err != nil {
		return err
	}
	return checkAngles(rule, "DHA angle", p.DHAMin, p.DHAMax, 180)
}

// XBondParams are the parameters of halogen bonds: the maximum halogen-acceptor
// distance, and the ranges of the C-X...A and X...A-R angles.
type XBondParams struct {
	Distance float64 `mapstructure:"distance" json:"distance"`
	CXAMin   float64 `mapstructure:"cxa_angle_min" json:"cxa_angle_min"`
	CXAMax   float64 `mapstructure:"cxa_angle_max" json:"cxa_angle_max"`
	XARMin   float64 `mapstructure:"xar_angle_min" json:"xar_angle_min"`
	XARMax   float64 `mapstructure:"xar_angle_max" json:"xar_angle_max"`
}

// DefaultXBondParams returns 3.5 A, C-X...A in [130,180] and X...A-R in [80,140].
func DefaultXBondParams() XBondParams {
	return XBondParams{Distance: 3.5, CXAMin: 130, CXAMax: 180, XARMin: 80, XARMax: 140}
}

func (p XBondParams) Validate(rule string) error {
	if err := checkDistance(rule, p.Distance); err != nil {
		return err
	}
	if err := checkAngles(rule, "C-X...A angle", p.CXAMin, p.CXAMax, 180); err != nil {
		return err
	}
	return checkAngles(rule, "X...A-R angle", p.XARMin, p.XARMax, 180)
}

// PiCationParams are the parameters of cation-pi interactions. The angle is that between
// the ring normal and the vector from the ring centroid to the cation.
type PiCationParams struct {
	Distance float64 `mapstructure:"distance" json:"distance"`
	AngleMin float64 `mapstructure:"angle_min" json:"angle_min"`
	AngleMax float64 `mapstructure:"angle_max" json:"angle_max"`
}

// DefaultPiCationParams returns 4.5 A and [0,30] degrees.
func DefaultPiCationParams() PiCationParams {
	return PiCationParams{Distance: 4.5, AngleMin: 0, AngleMax: 30}
}

func (p PiCationParams) Validate(rule string) error {
	if err := checkDistance(rule, p.Distance); err != nil {
		return err
	}
	return checkAngles(rule, "normal to cation angle", p.AngleMin, p.AngleMax, 90)
}

// StackingParams are the parameters of pi-stacking geometries: the maximum centroid
// distance, the range of the angle between the ring planes, and the range of the angle
// between a ring normal and the vector joining the centroids. IntersectRadius is only
// used for edge-to-face stacking. See EdgeToFaceRule.
type StackingParams struct {
	Distance                 float64 `mapstructure:"distance" json:"distance"`
	PlaneAngleMin            float64 `mapstructure:"plane_angle_min" json:"plane_angle_min"`
	PlaneAngleMax            float64 `mapstructure:"plane_angle_max" json:"plane_angle_max"`
	NormalToCentroidAngleMin float64 `mapstructure:"normal_to_centroid_angle_min" json:"normal_to_centroid_angle_min"`
	NormalToCentroidAngleMax float64 `mapstructure:"normal_to_centroid_angle_max" json:"normal_to_centroid_angle_max"`
	IntersectRadius          float64 `mapstructure:"intersect_radius" json:"intersect_radius,omitempty"`
}

// DefaultFaceToFaceParams returns 5.5 A, plane angle in [0,35] and normal to centroid
// angle in [0,33] degrees.
func DefaultFaceToFaceParams() StackingParams {
	return StackingParams{Distance: 5.5, PlaneAngleMin: 0, PlaneAngleMax: 35, NormalToCentroidAngleMin: 0, NormalToCentroidAngleMax: 33}
}

// DefaultEdgeToFaceParams returns 6.5 A, plane angle in [50,90], normal to centroid
// angle in [0,30] degrees and intersect radius of 1.5 A.
func DefaultEdgeToFaceParams() StackingParams {
	return StackingParams{Distance: 6.5, PlaneAngleMin: 50, PlaneAngleMax: 90, NormalToCentroidAngleMin: 0, NormalToCentroidAngleMax: 30, IntersectRadius: 1.5}
}

func (p StackingParams) Validate(rule string) error {
	if err := checkDistance(rule, p.Distance); err != nil {
		return err
	}
	if err := checkAngles(rule, "plane angle", p.PlaneAngleMin, p.PlaneAngleMax, 90); err != nil {
		return err
	}
	if err := checkAngles(rule, "normal to centroid angle", p.NormalToCentroidAngleMin, p.NormalToCentroidAngleMax, 90); err != nil {
		return err
	}
	if p.IntersectRadius < 0 {
		return invalid(rule, "negative intersect radius %g", p.IntersectRadius)
	}
	return nil
}

// VdWParams has the tolerance added to the sum of van der Waals radii.
type VdWParams struct {
	Tolerance float64 `mapstructure:"tolerance" json:"tolerance"`
}

// DefaultVdWParams returns a tolerance of 0.
func DefaultVdWParams() VdWParams { return VdWParams{} }

func (p VdWParams) Validate(rule string) error {
	if p.Tolerance < 0 {
		return invalid(rule, "negative tolerance %g", p.Tolerance)
	}
	return nil
}

// PiStackingParams holds the parameters of both stacking geometries.
type PiStackingParams struct {
	FaceToFace StackingParams `mapstructure:"face_to_face" json:"face_to_face"`
	EdgeToFace StackingParams `mapstructure:"edge_to_face" json:"edge_to_face"`
}

// DefaultPiStackingParams returns the defaults of each geometry.
func DefaultPiStackingParams() PiStackingParams {
	return PiStackingParams{FaceToFace: DefaultFaceToFaceParams(), EdgeToFace: DefaultEdgeToFaceParams()}
}

func (p PiStackingParams) Validate(rule string) error {
	if err := p.FaceToFace.Validate(rule); err != nil {
		return err
	}
	return p.EdgeToFace.Validate(rule)
}
