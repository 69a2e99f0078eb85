package oceaneyes

import "github.com/soniakeys/unit"

// NormalizeSolarElevationDeg round-trips a solar elevation angle
// (degrees) through unit.Angle, the radians-based angle type the rest
// of the pack's astronomy dependency (soniakeys/meeus) is built on.
// ATL03's solar_elevation is already degrees on disk. The round trip
// converts degrees to radians and back; it does not wrap or clamp a
// value outside (-90, 90], which comes back unchanged.
func NormalizeSolarElevationDeg(deg float64) float64 {
	return unit.AngleFromDeg(deg).Deg()
}
