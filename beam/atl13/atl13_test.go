package atl13

import (
	"context"
	"testing"
	"time"

	"github.com/SlideRuleEarth/sliderule-sub005/fetch"
	"github.com/stretchr/testify/require"
)

func TestSourceOpenAndBuild(t *testing.T) {
	m := fetch.NewMemory()
	prefix := "/gt2r"
	m.Set(prefix+"/segment_lat", []float64{10, 11})
	m.Set(prefix+"/segment_lon", []float64{20, 21})
	m.Set(prefix+"/ht_ortho", []float64{5, 6})
	m.Set(prefix+"/water_depth", []float64{1, 2})
	m.Set(prefix+"/segment_slope_trk_bdy", []float64{0.01, 0.02})
	m.Set(prefix+"/qf_cloud", []int8{0, 1})
	m.Set(prefix+"/snow_ice_atl09", []int8{0, 0})
	m.Set(prefix+"/segment_id_beg", []int64{500, 501})
	m.Set(prefix+"/delta_time", []int64{10, 20})

	s := &Source{GroupPrefix: prefix}
	lat, lon, err := s.Open(context.Background(), m, time.Second)
	require.NoError(t, err)
	require.Equal(t, []float64{10, 11}, lat)
	require.Equal(t, []float64{20, 21}, lon)

	e := s.Build(1)
	require.Equal(t, 6.0, e.WaterSurfaceHeight)
	require.Equal(t, 6.0, e.Height)
	require.Equal(t, 2.0, e.WaterDepth)
	require.Equal(t, 0.02, e.SegmentSlope)
	require.Equal(t, int8(1), e.CloudFlag)
	require.Equal(t, int64(501), e.SegmentID)
	require.Equal(t, int64(20), e.TimeNs)
}
