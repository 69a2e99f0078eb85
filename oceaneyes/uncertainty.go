package oceaneyes

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
)

// NumPointingAngles, NumWindSpeeds, NumKdRanges size the tabulated
// coefficient arrays (spec §4.E: "2x6x10x5 array of {a,b,c}").
const (
	NumPointingAngles = 6
	NumWindSpeeds     = 10
	NumKdRanges       = 5
)

// Coefficients is one {a, b, c} row of the quadratic subaqueous
// uncertainty model `a*d^2 + b*d + c`.
type Coefficients struct {
	A, B, C float64
}

// Dimension selects which of the two tabulated uncertainty surfaces
// (THU/TVU) a Table holds.
type Dimension int

const (
	DimensionTHU Dimension = iota
	DimensionTVU
)

// Table is one dimension's (THU or TVU) 6x10x5 coefficient grid.
type Table struct {
	Dim    Dimension
	Values [NumPointingAngles][NumWindSpeeds][NumKdRanges]Coefficients
}

// LoadTable parses one of the 12 CSV files named in spec §4.E
// ("Initialization: CSV tables ... 12 files total"). Each row is
// pointing_angle_index,wind_speed_index,kd_range_index,a,b,c; multiple
// rows for the same (pointing, wind, kd) triple are averaged, per the
// spec's "averaging is performed across multiple rows within the same
// Kd range."
//
// encoding/csv is used directly: no third-party CSV library appears
// anywhere in the retrieved corpus, so this is the one ambient
// concern in this package grounded on the standard library rather
// than an example repo (see DESIGN.md).
func LoadTable(r io.Reader, dim Dimension) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 6

	var sums [NumPointingAngles][NumWindSpeeds][NumKdRanges]Coefficients
	var counts [NumPointingAngles][NumWindSpeeds][NumKdRanges]int

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, err
		}

		pa, err := strconv.Atoi(rec[0])
		if err != nil {
			return Table{}, fmt.Errorf("oceaneyes: bad pointing angle index: %w", err)
		}
		ws, err := strconv.Atoi(rec[1])
		if err != nil {
			return Table{}, fmt.Errorf("oceaneyes: bad wind speed index: %w", err)
		}
		kd, err := strconv.Atoi(rec[2])
		if err != nil {
			return Table{}, fmt.Errorf("oceaneyes: bad kd range index: %w", err)
		}
		a, _ := strconv.ParseFloat(rec[3], 64)
		b, _ := strconv.ParseFloat(rec[4], 64)
		c, _ := strconv.ParseFloat(rec[5], 64)

		pa = clampIndex(pa, NumPointingAngles)
		ws = clampIndex(ws, NumWindSpeeds)
		kd = clampIndex(kd, NumKdRanges)

		sums[pa][ws][kd].A += a
		sums[pa][ws][kd].B += b
		sums[pa][ws][kd].C += c
		counts[pa][ws][kd]++
	}

	var t Table
	t.Dim = dim
	for pa := 0; pa < NumPointingAngles; pa++ {
		for ws := 0; ws < NumWindSpeeds; ws++ {
			for kd := 0; kd < NumKdRanges; kd++ {
				n := counts[pa][ws][kd]
				if n == 0 {
					continue
				}
				t.Values[pa][ws][kd] = Coefficients{
					A: sums[pa][ws][kd].A / float64(n),
					B: sums[pa][ws][kd].B / float64(n),
					C: sums[pa][ws][kd].C / float64(n),
				}
			}
		}
	}
	return t, nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// PointingAngleIndex buckets a pointing angle (degrees from nadir)
// into one of the six tabulated columns. The exact bucket boundaries
// are an external-calibration detail; this evenly divides the
// instrument's nominal +/-15 degree envelope into six bins and clamps
// outliers to the extremes.
func PointingAngleIndex(pointingAngleDeg float64) int {
	const span = 30.0 / NumPointingAngles
	idx := int(math.Floor((pointingAngleDeg + 15) / span))
	return clampIndex(idx, NumPointingAngles)
}

// WindSpeedIndex buckets a wind speed (m/s) into one of the ten
// tabulated columns, 2 m/s per bucket.
func WindSpeedIndex(windSpeed float64) int {
	idx := int(math.Floor(windSpeed / 2))
	return clampIndex(idx, NumWindSpeeds)
}

// Uncertainty holds the per-photon aerial + subaqueous uncertainty
// result (spec §4.E "Uncertainty").
type Uncertainty struct {
	THU                 float64
	TVU                 float64
	Kd                  float64
	SensorDepthExceeded bool
}

// Tables bundles the THU/TVU coefficient grids loaded at process
// start.
type Tables struct {
	THU Table
	TVU Table
}

// Evaluate implements spec §4.E's uncertainty steps 1-4 for one
// sub-surface photon.
func Evaluate(sigmaAcross, sigmaAlong, sigmaH, depth float64, pointingAngleDeg, windSpeed, kd float64, t Tables) Uncertainty {
	thu := math.Sqrt(sigmaAcross*sigmaAcross + sigmaAlong*sigmaAlong)
	tvu := sigmaH

	pa := PointingAngleIndex(pointingAngleDeg)
	ws := WindSpeedIndex(windSpeed)
	kdIdx := KdRangeIndex(kd)

	cThu := t.THU.Values[pa][ws][kdIdx]
	cTvu := t.TVU.Values[pa][ws][kdIdx]

	thu += cThu.A*depth*depth + cThu.B*depth + cThu.C
	tvu += cTvu.A*depth*depth + cTvu.B*depth + cTvu.C

	return Uncertainty{
		THU:                 thu,
		TVU:                 tvu,
		Kd:                  kd,
		SensorDepthExceeded: depth > MaxSensorDepth(kd),
	}
}
