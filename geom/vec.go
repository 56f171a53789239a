package geom

import (
	"math"
)

// Vec is a three-dimensional vector. Positions and velocities of particles
// are both stored as Vecs.
type Vec [3]float64

// Dot returns the dot product of v1 and v2.
func (v1 *Vec) Dot(v2 *Vec) float64 {
	return v1[0]*v2[0] + v1[1]*v2[1] + v1[2]*v2[2]
}

// Norm returns the Euclidean length of v.
func (v *Vec) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// AddSelf adds v2 to v1 in place and returns v1 to allow chaining.
func (v1 *Vec) AddSelf(v2 *Vec) *Vec {
	v1[0] += v2[0]
	v1[1] += v2[1]
	v1[2] += v2[2]
	return v1
}

// SubAt writes v1 - v2 to out and returns out.
func (v1 *Vec) SubAt(v2, out *Vec) *Vec {
	out[0] = v1[0] - v2[0]
	out[1] = v1[1] - v2[1]
	out[2] = v1[2] - v2[2]
	return out
}

// ScaleSelf multiplies every component of v by a in place.
func (v *Vec) ScaleSelf(a float64) *Vec {
	v[0] *= a
	v[1] *= a
	v[2] *= a
	return v
}

// Dist2 returns the squared distance between v1 and v2.
func (v1 *Vec) Dist2(v2 *Vec) float64 {
	buf := Vec{}
	v1.SubAt(v2, &buf)
	return buf.Dot(&buf)
}
