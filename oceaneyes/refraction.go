package oceaneyes

import "math"

// RefractionInput bundles the per-photon geometry spec §4.E's
// refraction step needs.
type RefractionInput struct {
	SurfaceH float64
	OrthoH   float64
	RefElev  float64 // radians
	RefAz    float64 // radians
	Easting  float64
	Northing float64
}

// RefractionResult carries the corrected 3-D position. Easting/
// Northing/OrthoH replace the input photon's UTM position and height;
// callers re-derive geodetic (lat, lon) from the corrected UTM pair.
type RefractionResult struct {
	OrthoH   float64
	Easting  float64
	Northing float64
	Applied  bool
}

// Refract applies Parrish et al. 2019 Snell-law repositioning (spec
// §4.E "Refraction correction"). Photons at or above the surface are
// returned unmodified with Applied=false.
func Refract(in RefractionInput, riAir, riWater float64) RefractionResult {
	depth := in.SurfaceH - in.OrthoH
	if depth <= 0 {
		return RefractionResult{OrthoH: in.OrthoH, Easting: in.Easting, Northing: in.Northing}
	}

	theta1 := math.Pi/2 - in.RefElev
	theta2 := math.Asin(riAir * math.Sin(theta1) / riWater)

	s := depth / math.Cos(theta1)
	r := s * riAir / riWater
	p := math.Sqrt(r*r + s*s - 2*r*s*math.Cos(theta1-theta2))

	gamma := math.Pi/2 - theta1
	alpha := math.Asin(r * math.Sin(theta1-theta2) / p)
	beta := gamma - alpha

	dz := p * math.Sin(beta)
	dy := p * math.Cos(beta)

	dEast := dy * math.Sin(in.RefAz)
	dNorth := dy * math.Cos(in.RefAz)

	return RefractionResult{
		OrthoH:   in.OrthoH + dz,
		Easting:  in.Easting + dEast,
		Northing: in.Northing + dNorth,
		Applied:  true,
	}
}

// Depth returns the positive subsurface depth for a photon under the
// found surface, or 0 if the photon is at/above it. Used by the
// uncertainty stage's sensor-depth-exceeded check.
func Depth(surfaceH, orthoH float64) float64 {
	d := surfaceH - orthoH
	if d < 0 {
		return 0
	}
	return d
}
