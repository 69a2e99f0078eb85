package beam

import (
	"context"
	"time"

	"github.com/SlideRuleEarth/sliderule-sub005/fetch"
	"github.com/SlideRuleEarth/sliderule-sub005/record"
	"github.com/SlideRuleEarth/sliderule-sub005/region"
)

// ElevationSource adapts one mission's footprint-rate variables into
// the generic elevation worker below. Every non-ATL03 reader named in
// spec §3 ("other missions define analogous but smaller records") is
// a footprint==segment==photon reader, differing only in which
// variables it reads and how it builds one record.Elevation per
// footprint.
type ElevationSource interface {
	// Open retrieves and joins every variable this mission needs, over
	// the full granule (pre-narrowing), returning at least latitude and
	// longitude so region.Narrow can run. Implementations own the
	// open-then-join pipelining internally.
	Open(ctx context.Context, c fetch.Client, timeout time.Duration) (lat, lon []float64, err error)
	// Build constructs one elevation record for footprint i (already
	// inside the narrowed window).
	Build(i int) record.Elevation
}

// ElevationWorker runs the generic per-footprint pipeline shared by
// ATL06, ATL13, ATL24, and GEDI L2A/L4A: narrow, walk, batch at
// record.BatchSize, publish.
type ElevationWorker struct {
	Ctx    *Context
	Source ElevationSource
}

var _ Worker = (*ElevationWorker)(nil)

// Run implements the non-ATL03 specialization of spec §4.C: no
// per-photon/per-segment distinction, no mask/OceanEyes pass, fixed
// BatchSize batching instead of ph_in_extent.
func (w *ElevationWorker) Run(ctx context.Context) error {
	defer w.Ctx.Finalize()

	lat, lon, err := w.Source.Open(ctx, w.Ctx.Client, w.Ctx.Params.Timeouts.Read)
	if err != nil {
		return err
	}

	win, err := region.Narrow(region.Input{Lat: lat, Lon: lon}, w.Ctx.Selector)
	if err != nil {
		if err == region.ErrEmptySubset {
			return nil
		}
		return err
	}

	idCounter := record.NewIDCounter(record.ExtentIDFields{
		RGT: w.Ctx.Identity.RGT, Cycle: w.Ctx.Identity.Cycle,
		Region: w.Ctx.Identity.Region, Track: int(w.Ctx.Descriptor.Track),
		Pair: int(w.Ctx.Descriptor.Pair),
	})

	var batch record.ElevationBatch
	batch.Header = record.ExtentHeader{
		ID:     idCounter.Next(record.KindElevation),
		Region: w.Ctx.Identity.Region,
		Track:  int(w.Ctx.Descriptor.Track),
		Pair:   int(w.Ctx.Descriptor.Pair),
		Spot:   w.Ctx.Descriptor.Spot,
		RGT:    w.Ctx.Identity.RGT,
		Cycle:  w.Ctx.Identity.Cycle,
	}

	flush := func() error {
		if len(batch.Elevations) == 0 {
			return nil
		}
		batch.Header.PhotonCount = len(batch.Elevations)
		f := record.Frame{Type: record.TypeElevationBatch, Body: &batch}
		if err := record.PostWithRetry(ctx, w.Ctx.Publisher, f, w.Ctx.Params.Timeouts.Request,
			w.Ctx.Coordinator.Active, &w.Ctx.Counters); err != nil {
			return err
		}
		batch = record.ElevationBatch{Header: batch.Header}
		batch.Header.ID = idCounter.Next(record.KindElevation)
		return nil
	}

	first := int(win.FirstSegment)
	last := first + int(win.SegmentCount)
	for i := first; i < last; i++ {
		if !w.Ctx.Coordinator.Active() {
			break
		}
		if win.InclusionMask != nil {
			idx := i - first
			if idx >= 0 && idx < len(win.InclusionMask) && !win.InclusionMask[idx] {
				w.Ctx.Counters.Filtered++
				continue
			}
		}

		w.Ctx.Counters.Read++
		batch.Elevations = append(batch.Elevations, w.Source.Build(i))

		if batch.Full() {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}
