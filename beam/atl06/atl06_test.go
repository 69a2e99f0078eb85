package atl06

import (
	"context"
	"testing"
	"time"

	"github.com/SlideRuleEarth/sliderule-sub005/fetch"
	"github.com/stretchr/testify/require"
)

func TestSourceOpenAndBuild(t *testing.T) {
	m := fetch.NewMemory()
	prefix := "/gt1l/land_ice_segments"
	m.Set(prefix+"/latitude", []float64{1, 2})
	m.Set(prefix+"/longitude", []float64{3, 4})
	m.Set(prefix+"/h_li", []float64{100, 200})
	m.Set(prefix+"/h_li_sigma", []float64{0.1, 0.2})
	m.Set(prefix+"/sigma_geo_h", []float64{0.5, 0.6})
	m.Set(prefix+"/fit_statistics/n_fit_photons", []int64{10, 20})
	m.Set(prefix+"/segment_id", []int64{100, 101})
	m.Set(prefix+"/delta_time", []int64{1000, 2000})
	m.Set(prefix+"/atl06_quality_summary", []int64{0, 1})

	s := &Source{GroupPrefix: "/gt1l"}
	lat, lon, err := s.Open(context.Background(), m, time.Second)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2}, lat)
	require.Equal(t, []float64{3, 4}, lon)

	e := s.Build(1)
	require.Equal(t, 200.0, e.Height)
	require.Equal(t, 0.2, e.HeightSigma)
	require.Equal(t, 0.6, e.SigmaGeoH)
	require.Equal(t, int32(20), e.NumFitPhotons)
	require.Equal(t, int64(101), e.SegmentID)
	require.Equal(t, int64(2000), e.TimeNs)
	require.Equal(t, int32(1), e.QualitySummary)
}
