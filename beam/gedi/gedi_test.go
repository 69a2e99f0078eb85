package gedi

import (
	"context"
	"testing"
	"time"

	"github.com/SlideRuleEarth/sliderule-sub005/fetch"
	"github.com/stretchr/testify/require"
)

func TestSourceOpenAndBuild(t *testing.T) {
	m := fetch.NewMemory()
	prefix := "/BEAM0101"
	m.Set(prefix+"/lat_lowestmode", []float64{1, 2})
	m.Set(prefix+"/lon_lowestmode", []float64{3, 4})
	m.Set(prefix+"/elev_lowestmode", []float64{500, 510})
	m.Set(prefix+"/elevation_bin0_error", []float64{0.3, 0.4})
	m.Set(prefix+"/l2a_quality_flag", []int8{1, 0})
	m.Set(prefix+"/degrade_flag", []int8{0, 1})
	m.Set(prefix+"/sensitivity", []float64{0.9, 0.95})
	m.Set(prefix+"/shot_number", []int64{111, 222})
	m.Set(prefix+"/delta_time", []int64{10, 20})

	s := &Source{GroupPrefix: prefix, IsPower: true}
	lat, lon, err := s.Open(context.Background(), m, time.Second)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2}, lat)
	require.Equal(t, []float64{3, 4}, lon)

	e := s.Build(1)
	require.Equal(t, 510.0, e.Height)
	require.Equal(t, 0.4, e.HeightSigma)
	require.Equal(t, int8(0), e.L2QualityFlag)
	require.Equal(t, int8(1), e.DegradeFlag)
	require.Equal(t, 0.95, e.Sensitivity)
	require.Equal(t, int64(222), e.SegmentID)
	require.Equal(t, int64(20), e.TimeNs)
	require.True(t, e.BeamIsPower)
}
