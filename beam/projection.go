package beam

import "math"

// Projector is the external spatial-projection collaborator named in
// spec §1 Non-goals ("the spatial-projection and in-polygon
// primitives"). A deployment can plug in whatever projection library
// it prefers; SimpleTransverseMercator below is the built-in default.
type Projector interface {
	// Zone fixes a UTM zone from the beam's first included photon, per
	// spec §4.C step 6 ("Zone is fixed for the lifetime of the
	// worker").
	Zone(lat, lon float64) int
	// Project converts geodetic (lat, lon) to the fixed zone's UTM
	// easting/northing.
	Project(zone int, lat, lon float64) (easting, northing float64)
	// Unproject is the inverse, used after refraction repositions a
	// photon's UTM coordinates (spec §4.E refraction correction).
	Unproject(zone int, easting, northing float64) (lat, lon float64)
}

// SimpleTransverseMercator is a standalone ellipsoidal transverse
// Mercator projector (WGS84), used as the default when no external
// projection service is wired in. No third-party UTM/proj library
// appears in the retrieved corpus (see DESIGN.md), so this is built
// directly on math, the same way the teacher's own geo.go computes
// spherical distances with stdlib trig rather than a library.
type SimpleTransverseMercator struct{}

const (
	wgs84A = 6378137.0
	wgs84F = 1 / 298.257223563
)

// Zone implements the standard 6-degree UTM zone rule.
func (SimpleTransverseMercator) Zone(lat, lon float64) int {
	zone := int(math.Floor((lon+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	return zone
}

// Project implements a standard ellipsoidal transverse Mercator
// forward projection with the UTM false easting/northing convention.
func (SimpleTransverseMercator) Project(zone int, lat, lon float64) (float64, float64) {
	const k0 = 0.9996
	a := wgs84A
	f := wgs84F
	e2 := f * (2 - f)
	ep2 := e2 / (1 - e2)

	lonOrigin := float64(zone-1)*6 - 180 + 3
	latR := lat * math.Pi / 180
	lonR := lon * math.Pi / 180
	lonOriginR := lonOrigin * math.Pi / 180

	n := a / math.Sqrt(1-e2*math.Sin(latR)*math.Sin(latR))
	t := math.Tan(latR) * math.Tan(latR)
	c := ep2 * math.Cos(latR) * math.Cos(latR)
	aCoef := math.Cos(latR) * (lonR - lonOriginR)

	m := a * ((1-e2/4-3*e2*e2/64-5*e2*e2*e2/256)*latR -
		(3*e2/8+3*e2*e2/32+45*e2*e2*e2/1024)*math.Sin(2*latR) +
		(15*e2*e2/256+45*e2*e2*e2/1024)*math.Sin(4*latR) -
		(35*e2*e2*e2/3072)*math.Sin(6*latR))

	easting := k0*n*(aCoef+(1-t+c)*math.Pow(aCoef, 3)/6+
		(5-18*t+t*t+72*c-58*ep2)*math.Pow(aCoef, 5)/120) + 500000

	northing := k0 * (m + n*math.Tan(latR)*(aCoef*aCoef/2+
		(5-t+9*c+4*c*c)*math.Pow(aCoef, 4)/24+
		(61-58*t+t*t+600*c-330*ep2)*math.Pow(aCoef, 6)/720))

	if lat < 0 {
		northing += 10000000
	}
	return easting, northing
}

// Unproject inverts Project by fixed-point iteration on the forward
// transform (at most 20 steps, each correcting lat/lon by the residual
// over a constant 111320 m/degree scale) rather than the closed-form
// inverse series, trading a handful of extra iterations for one
// formula instead of two.
func (p SimpleTransverseMercator) Unproject(zone int, easting, northing float64) (float64, float64) {
	lonOrigin := float64(zone-1)*6 - 180 + 3

	lat, lon := 0.0, lonOrigin
	if northing > 5000000 {
		lat = -1
	}
	for i := 0; i < 20; i++ {
		e, n := p.Project(zone, lat, lon)
		dEast := easting - e
		dNorth := northing - n
		if math.Abs(dEast) < 1e-4 && math.Abs(dNorth) < 1e-4 {
			break
		}
		lat += dNorth / 111320.0
		lon += dEast / (111320.0 * math.Cos(lat*math.Pi/180))
	}
	return lat, lon
}
