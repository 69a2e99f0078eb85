package atl03

import (
	"context"
	"testing"

	"github.com/SlideRuleEarth/sliderule-sub005/beam"
	"github.com/SlideRuleEarth/sliderule-sub005/config"
	"github.com/SlideRuleEarth/sliderule-sub005/fetch"
	"github.com/SlideRuleEarth/sliderule-sub005/granule"
	"github.com/SlideRuleEarth/sliderule-sub005/record"
	"github.com/SlideRuleEarth/sliderule-sub005/region"
	"github.com/stretchr/testify/require"
)

type fakeCoordinator struct{}

func (fakeCoordinator) MergeStats(record.Counters)  {}
func (fakeCoordinator) Complete(granule.Descriptor) {}
func (fakeCoordinator) Active() bool                { return true }
func (fakeCoordinator) PostAlert(context.Context, record.Severity, string, string) {
}

// seedWorkerMemory builds one ATL03 segment of 5 photons: index 2
// carries a YAPC weight below the configured threshold, the other
// four carry distinct delta_time values so TimeNs stamping can be
// checked per photon.
func seedWorkerMemory(m *fetch.Memory, prefix string) {
	m.Set(prefix+"/"+varSegmentLat, []float64{10.0})
	m.Set(prefix+"/"+varSegmentLon, []float64{20.0})
	m.Set(prefix+"/"+varSegmentPhCnt, []int64{5})
	m.Set(prefix+"/"+varSegmentDeltaTime, []float64{0.0})
	m.Set(prefix+"/"+varSegmentDistX, []float64{0.0})
	m.Set(prefix+"/"+varSolarElevation, []float64{45.0})
	m.Set(prefix+"/"+varSigmaH, []float64{0.1})
	m.Set(prefix+"/"+varSigmaAlong, []float64{0.1})
	m.Set(prefix+"/"+varSigmaAcross, []float64{0.1})
	m.Set(prefix+"/"+varRefAzimuth, []float64{0.0})
	m.Set(prefix+"/"+varRefElevation, []float64{1.0})
	m.Set(prefix+"/"+varGeoid, []float64{0.0})
	m.Set(prefix+"/"+varDEMHeight, []float64{0.0})

	m.Set(prefix+"/"+varDistPhAlong, []float64{0, 1, 2, 3, 4})
	m.Set(prefix+"/"+varDistPhAcross, []float64{0, 0, 0, 0, 0})
	m.Set(prefix+"/"+varHeightPh, []float64{1000, 1000, 1000, 1000, 1000})
	m.Set(prefix+"/"+varSignalConf, []int8{4, 4, 4, 4, 4})
	m.Set(prefix+"/"+varQualityPh, []int8{0, 0, 0, 0, 0})
	m.Set(prefix+"/"+varLatPh, []float64{10, 10, 10, 10, 10})
	m.Set(prefix+"/"+varLonPh, []float64{20, 20, 20, 20, 20})
	m.Set(prefix+"/"+varDeltaTimePh, []float64{10, 20, 30, 40, 50})
	m.Set(prefix+"/"+varWeightPh, []int8{100, 100, 5, 100, 100})

	m.Set(varBckgrdDeltaTime, []float64{0.0})
	m.Set(varBckgrdRate, []float64{5.0})
	m.Set(varMetU10m, []float64{1.0})
	m.Set(varMetV10m, []float64{1.0})
}

func TestWorkerRunStampsTimeNsAndAppliesYAPCFilter(t *testing.T) {
	m := fetch.NewMemory()
	prefix := "/gt1l"
	seedWorkerMemory(m, prefix)

	descriptor := granule.NewICESat2Descriptor(granule.MissionATL03, granule.Track(1), granule.PairLeft, granule.OrientationBackward)
	require.Equal(t, prefix, descriptor.GroupPrefix)

	p := config.DefaultParameters()
	p.YAPCScoreThreshold = 50 // drops photon index 2 (weight_ph=5)
	p.MaxDEMDelta = 2000      // keep the rest past the fixed-filter DEM check

	pub := record.NewChannelPublisher(1)
	ctx := &beam.Context{
		Client:      m,
		Identity:    granule.Identity{RGT: 1, Cycle: 1, Region: 1},
		Descriptor:  descriptor,
		Selector:    region.NoConstraint{},
		Params:      p,
		Publisher:   pub,
		Coordinator: fakeCoordinator{},
	}
	w := &Worker{Ctx: ctx, Resources: Resources{Projector: beam.SimpleTransverseMercator{}}, SDPVersion: 6}

	require.NoError(t, w.Run(context.Background()))

	frame := <-pub.Frames()
	require.Equal(t, record.TypeExtent, frame.Type)
	ext, ok := frame.Body.(*record.Extent)
	require.True(t, ok)

	require.Len(t, ext.Photons, 4)
	want := []int64{10e9, 20e9, 40e9, 50e9}
	for i, ph := range ext.Photons {
		require.Equal(t, want[i], ph.TimeNs, "photon %d", i)
	}

	// h_ph=1000 sits far outside the default DEM buffer around demH=0,
	// so OceanEyes finds no candidates and the header carries a zero surface.
	require.Equal(t, 0.0, ext.Header.SurfaceH)

	require.EqualValues(t, 5, ctx.Counters.Read)
	require.EqualValues(t, 1, ctx.Counters.Filtered)
	require.EqualValues(t, 1, ctx.Counters.Sent)
}

func TestRunOceanEyesReturnsLocatedSurface(t *testing.T) {
	w := &Worker{Ctx: &beam.Context{Params: config.Parameters{OceanEyes: config.DefaultOceanEyesParams()}}}

	photons := []record.Photon{
		{OrthometricHeight: 1.0},
		{OrthometricHeight: 1.0},
		{OrthometricHeight: 1.0},
		{OrthometricHeight: 1.4},
	}

	surf := w.runOceanEyes(photons, 1.0, 0)

	require.InDelta(t, 1.25, surf.HeightM, 1e-9)
	for i, p := range photons {
		require.NotZero(t, p.Flags&record.FlagSeaSurface, "photon %d", i)
		require.Equal(t, record.ClassSeaSurface, p.Classification)
	}
}
