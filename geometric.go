/*
 * geometric.go, part of goifp.
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
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	Deg2Rad = math.Pi / 180.0
	Rad2Deg = 180.0 / math.Pi
)

// Vectors with a norm at or below this are considered zero-length.
const appzero float64 = 1e-10

// Distance returns the euclidean distance between p and q.
func Distance(p, q r3.Vec) float64 {
	return r3.Norm(r3.Sub(p, q))
}

// VecAngle returns the angle between the vectors a and b, in degrees, in [0,180].
func VecAngle(a, b r3.Vec) (float64, error) {
	na := r3.Norm(a)
	nb := r3.Norm(b)
	if na <= appzero || nb <= appzero {
		return 0, newGeometryError("VecAngle", "zero-length vector")
	}
	argument := r3.Dot(a, b) / (na * nb)
	//Take care of floating point math errors
	if argument > 1 {
		argument = 1
	} else if argument < -1 {
		argument = -1
	}
	angle := math.Acos(argument) * Rad2Deg
	if math.Abs(angle) <= appzero {
		return 0, nil
	}
	return math.Min(angle, 180), nil
}

// Angle returns the angle p-vertex-q, in degrees, in [0,180].
func Angle(p, vertex, q r3.Vec) (float64, error) {
	a, err := VecAngle(r3.Sub(p, vertex), r3.Sub(q, vertex))
	if err != nil {
		return 0, errDecorate(err, "Angle")
	}
	return a, nil
}

// PlaneAngle returns the acute angle, in degrees, between the planes with
// normals n1 and n2. The result is in [0,90].
func PlaneAngle(n1, n2 r3.Vec) (float64, error) {
	a, err := VecAngle(n1, n2)
	if err != nil {
		return 0, errDecorate(err, "PlaneAngle")
	}
	if a > 90 {
		a = 180 - a
	}
	return a, nil
}

// InAngleLimits returns true if angle, or its supplement, is within [min,max].
// It is meant for angles involving plane normals, which have no intrinsic orientation.
func InAngleLimits(angle, min, max float64) bool {
	if angle >= min && angle <= max {
		return true
	}
	s := 180 - angle
	return s >= min && s <= max
}

// Centroid returns the geometric center of points.
func Centroid(points []r3.Vec) (r3.Vec, error) {
	if len(points) == 0 {
		return r3.Vec{}, newGeometryError("Centroid", "no points given")
	}
	var c r3.Vec
	for _, p := range points {
		c = r3.Add(c, p)
	}
	return r3.Scale(1/float64(len(points)), c), nil
}

// RingNormal returns a unit vector normal to the (mean) plane of points, which are
// expected to be the atoms of a ring. The normal is the cross product of two
// vectors going from the centroid to ring atoms. If the first pair is collinear with
// the centroid, other pairs are tried.
func RingNormal(points []r3.Vec) (r3.Vec, error) {
	if len(points) < 3 {
		return r3.Vec{}, newGeometryError("RingNormal", "at least 3 points needed for a plane")
	}
	c, err := Centroid(points)
	if err != nil {
		return r3.Vec{}, errDecorate(err, "RingNormal")
	}
	//atoms about a third of the ring apart give the best conditioned product.
	step := len(points) / 3
	for i := range points {
		for _, j := range []int{(i + step) % len(points), (i + 1) % len(points)} {
			if j == i {
				continue
			}
			n := r3.Cross(r3.Sub(points[i], c), r3.Sub(points[j], c))
			if r3.Norm(n) > appzero {
				return r3.Unit(n), nil
			}
		}
	}
	return r3.Vec{}, newGeometryError("RingNormal", "all points are collinear")
}
