package oceaneyes

import (
	"math"
	"testing"

	"github.com/SlideRuleEarth/sliderule-sub005/config"
	"github.com/stretchr/testify/require"
)

func syntheticSurface(t *testing.T, trueHeight float64, n int) []Candidate {
	t.Helper()
	cands := make([]Candidate, 0, n)
	for i := 0; i < n; i++ {
		offset := float64(i%7-3) * 0.1
		cands = append(cands, Candidate{OrthoH: trueHeight + offset, TimeS: float64(i) * 1e-4})
	}
	// background noise scattered well below the surface cluster.
	for i := 0; i < n/4; i++ {
		cands = append(cands, Candidate{OrthoH: trueHeight - 10 - float64(i%5), TimeS: float64(i) * 1e-4})
	}
	return cands
}

func TestFindSurfaceLocatesKnownHeight(t *testing.T) {
	p := config.DefaultOceanEyesParams()
	p.ModelAsPoisson = false

	cands := syntheticSurface(t, 0.0, 400)

	s, err := FindSurface(cands, 0.0, 1.0, p)
	require.NoError(t, err)
	require.InDelta(t, 0.0, s.HeightM, 1.0)
	require.Greater(t, s.StdDevM, 0.0)
}

func TestFindSurfaceNoCandidatesWithinDemBuffer(t *testing.T) {
	p := config.DefaultOceanEyesParams()
	p.DEMBuffer = 1

	cands := []Candidate{{OrthoH: 100, TimeS: 0}, {OrthoH: 102, TimeS: 1e-4}}

	_, err := FindSurface(cands, 0.0, 1.0, p)
	require.ErrorIs(t, err, ErrNoCandidates)
}

func TestIsSeaSurfaceRelabel(t *testing.T) {
	s := Surface{HeightM: 10, StdDevM: 0.2}
	require.True(t, s.IsSeaSurface(10.1, 3.0))
	require.False(t, s.IsSeaSurface(15.0, 3.0))
}

func TestRefractSubSurfacePhotonBendsTowardNadir(t *testing.T) {
	in := RefractionInput{
		SurfaceH: 0,
		OrthoH:   -5,
		RefElev:  80 * math.Pi / 180,
		RefAz:    0,
		Easting:  500000,
		Northing: 4000000,
	}
	out := Refract(in, 1.00029, 1.34116)

	require.True(t, out.Applied)
	require.Greater(t, out.OrthoH, in.OrthoH)
	require.NotEqual(t, in.Northing, out.Northing)
}

func TestRefractAboveSurfaceIsNoop(t *testing.T) {
	in := RefractionInput{SurfaceH: 0, OrthoH: 5, RefElev: 1.3, Easting: 1, Northing: 1}
	out := Refract(in, 1.00029, 1.34116)
	require.False(t, out.Applied)
	require.Equal(t, in.OrthoH, out.OrthoH)
}

func TestKdGridSampleClampsAndScales(t *testing.T) {
	g := NewKdGrid(2, 2, []uint16{100, 200, 300, 400})
	v := g.Sample(0, 0)
	require.Greater(t, v, 0.0)

	// far outside the grid still returns a clamped sample, not a panic.
	require.NotPanics(t, func() { g.Sample(89.9, 179.9) })
}

func TestEvaluateFlagsSensorDepthExceeded(t *testing.T) {
	var tables Tables
	for pa := 0; pa < NumPointingAngles; pa++ {
		for ws := 0; ws < NumWindSpeeds; ws++ {
			for kd := 0; kd < NumKdRanges; kd++ {
				tables.THU.Values[pa][ws][kd] = Coefficients{A: 0.01, B: 0.1, C: 0.05}
				tables.TVU.Values[pa][ws][kd] = Coefficients{A: 0.02, B: 0.1, C: 0.05}
			}
		}
	}

	u := Evaluate(0.5, 0.5, 0.1, 50, 0, 2, 0.5, tables)
	require.True(t, u.SensorDepthExceeded)

	u2 := Evaluate(0.5, 0.5, 0.1, 0.5, 0, 2, 0.08, tables)
	require.False(t, u2.SensorDepthExceeded)
}
