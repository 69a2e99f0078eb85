package beam

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SlideRuleEarth/sliderule-sub005/config"
	"github.com/SlideRuleEarth/sliderule-sub005/fetch"
	"github.com/SlideRuleEarth/sliderule-sub005/granule"
	"github.com/SlideRuleEarth/sliderule-sub005/record"
	"github.com/SlideRuleEarth/sliderule-sub005/region"
	"github.com/stretchr/testify/require"
)

type fakeCoordinator struct {
	mu        sync.Mutex
	merged    record.Counters
	completed bool
}

func (f *fakeCoordinator) MergeStats(c record.Counters) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.merged.Add(c)
}

func (f *fakeCoordinator) Complete(d granule.Descriptor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = true
}

func (f *fakeCoordinator) Active() bool { return true }

func (f *fakeCoordinator) PostAlert(ctx context.Context, severity record.Severity, code, message string) {}

type fakeElevationSource struct {
	lat, lon []float64
}

func (s *fakeElevationSource) Open(ctx context.Context, c fetch.Client, timeout time.Duration) ([]float64, []float64, error) {
	return s.lat, s.lon, nil
}

func (s *fakeElevationSource) Build(i int) record.Elevation {
	return record.Elevation{Latitude: s.lat[i], Longitude: s.lon[i], Height: float64(i)}
}

func TestElevationWorkerPublishesBatches(t *testing.T) {
	n := 10
	lat := make([]float64, n)
	lon := make([]float64, n)
	for i := range lat {
		lat[i] = float64(i)
		lon[i] = float64(i)
	}

	pub := record.NewChannelPublisher(4)
	coord := &fakeCoordinator{}

	ctx := &Context{
		Client:      fetch.NewMemory(),
		Selector:    region.NoConstraint{},
		Params:      config.DefaultParameters(),
		Publisher:   pub,
		Coordinator: coord,
	}

	w := &ElevationWorker{Ctx: ctx, Source: &fakeElevationSource{lat: lat, lon: lon}}

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	var total int
	timeout := time.After(time.Second)
	for {
		select {
		case f := <-pub.Frames():
			b, ok := f.Body.(*record.ElevationBatch)
			require.True(t, ok)
			total += len(b.Elevations)
		case err := <-done:
			require.NoError(t, err)
			goto drained
		case <-timeout:
			t.Fatal("timed out waiting for batches")
		}
	}
drained:
	// drain any frame still sitting in the channel buffer after Run returned.
	for {
		select {
		case f := <-pub.Frames():
			b, ok := f.Body.(*record.ElevationBatch)
			require.True(t, ok)
			total += len(b.Elevations)
		default:
			require.Equal(t, n, total)
			require.True(t, coord.completed)
			return
		}
	}
}

func TestElevationWorkerEmptySubsetIsNotError(t *testing.T) {
	pub := record.NewChannelPublisher(1)
	coord := &fakeCoordinator{}
	ctx := &Context{
		Client:      fetch.NewMemory(),
		Selector:    region.NoConstraint{},
		Params:      config.DefaultParameters(),
		Publisher:   pub,
		Coordinator: coord,
	}
	w := &ElevationWorker{Ctx: ctx, Source: &fakeElevationSource{lat: nil, lon: nil}}

	err := w.Run(context.Background())
	require.NoError(t, err)
	require.True(t, coord.completed)
}
