package atl24

import (
	"context"
	"testing"
	"time"

	"github.com/SlideRuleEarth/sliderule-sub005/fetch"
	"github.com/stretchr/testify/require"
)

func TestSourceOpenAndBuild(t *testing.T) {
	m := fetch.NewMemory()
	prefix := "/gt3l"
	m.Set(prefix+"/lat_ph", []float64{30, 31})
	m.Set(prefix+"/lon_ph", []float64{40, 41})
	m.Set(prefix+"/ortho_h", []float64{-1.5, -2.5})
	m.Set(prefix+"/class_ph", []int8{40, 41})
	m.Set(prefix+"/confidence", []int8{80, 90})
	m.Set(prefix+"/index_ph", []int64{7, 8})
	m.Set(prefix+"/delta_time", []int64{100, 200})

	s := &Source{GroupPrefix: prefix}
	lat, lon, err := s.Open(context.Background(), m, time.Second)
	require.NoError(t, err)
	require.Equal(t, []float64{30, 31}, lat)
	require.Equal(t, []float64{40, 41}, lon)

	e := s.Build(1)
	require.Equal(t, -2.5, e.Height)
	require.Equal(t, int32(41), e.QualitySummary)
	require.Equal(t, 90.0, e.HeightSigma)
	require.Equal(t, int64(8), e.SegmentID)
	require.Equal(t, int64(200), e.TimeNs)
}
