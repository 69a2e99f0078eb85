package reader

import (
	"context"
	"testing"
	"time"

	"github.com/SlideRuleEarth/sliderule-sub005/config"
	"github.com/SlideRuleEarth/sliderule-sub005/fetch"
	"github.com/SlideRuleEarth/sliderule-sub005/record"
	"github.com/SlideRuleEarth/sliderule-sub005/region"
	"github.com/stretchr/testify/require"
)

func seedATL06(m *fetch.Memory, group string, n int) {
	lat := make([]float64, n)
	lon := make([]float64, n)
	h := make([]float64, n)
	sigma := make([]float64, n)
	spread := make([]float64, n)
	nfit := make([]int64, n)
	segID := make([]int64, n)
	delta := make([]int64, n)
	quality := make([]int64, n)
	for i := 0; i < n; i++ {
		lat[i] = float64(i)
		lon[i] = float64(i)
		h[i] = 100 + float64(i)
		nfit[i] = 10
		segID[i] = int64(i)
	}
	prefix := group + "/land_ice_segments"
	m.Set(prefix+"/latitude", lat)
	m.Set(prefix+"/longitude", lon)
	m.Set(prefix+"/h_li", h)
	m.Set(prefix+"/h_li_sigma", sigma)
	m.Set(prefix+"/sigma_geo_h", spread)
	m.Set(prefix+"/fit_statistics/n_fit_photons", nfit)
	m.Set(prefix+"/segment_id", segID)
	m.Set(prefix+"/delta_time", delta)
	m.Set(prefix+"/atl06_quality_summary", quality)
}

func TestRunATL06SpawnsEnabledBeamsAndTerminates(t *testing.T) {
	m := fetch.NewMemory()
	m.Set("/orbit_info/sc_orient", []int64{0})

	groups := []string{"/gt1l", "/gt1r", "/gt2l", "/gt2r", "/gt3l", "/gt3r"}
	for _, g := range groups {
		seedATL06(m, g, 5)
	}

	p := config.DefaultParameters()
	pub := record.NewChannelPublisher(64)

	done := make(chan error, 1)
	go func() {
		done <- Run(context.Background(), m, "ATL06_20200101000000_00010101_006_01.h5",
			region.NoConstraint{}, p, Resources{}, pub)
	}()

	var batches int
	var sawTerminator bool
	timeout := time.After(2 * time.Second)
loop:
	for {
		select {
		case f := <-pub.Frames():
			if f.IsTerminator() {
				sawTerminator = true
				break loop
			}
			batches++
		case err := <-done:
			require.NoError(t, err)
		case <-timeout:
			t.Fatal("timed out waiting for terminator")
		}
	}

	require.True(t, sawTerminator)
	require.Equal(t, 6, batches)
}

func TestRunRejectsUnparsableFilename(t *testing.T) {
	m := fetch.NewMemory()
	pub := record.NewChannelPublisher(1)
	err := Run(context.Background(), m, "not-a-granule.h5", region.NoConstraint{}, config.DefaultParameters(), Resources{}, pub)
	require.Error(t, err)
}

func TestRunNoBeamsEnabledFails(t *testing.T) {
	m := fetch.NewMemory()
	m.Set("/orbit_info/sc_orient", []int64{0})
	p := config.DefaultParameters()
	p.BeamsICESat2 = [6]bool{}
	pub := record.NewChannelPublisher(1)
	err := Run(context.Background(), m, "ATL06_20200101000000_00010101_006_01.h5", region.NoConstraint{}, p, Resources{}, pub)
	require.ErrorIs(t, err, ErrNoBeams)
}
