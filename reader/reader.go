// Package reader implements the per-granule coordinator of spec §5:
// parse the filename, fetch the orbit orientation once, spawn one
// worker per enabled beam, fan out, and join.
package reader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/SlideRuleEarth/sliderule-sub005/beam"
	"github.com/SlideRuleEarth/sliderule-sub005/beam/atl03"
	"github.com/SlideRuleEarth/sliderule-sub005/beam/atl06"
	"github.com/SlideRuleEarth/sliderule-sub005/beam/atl13"
	"github.com/SlideRuleEarth/sliderule-sub005/beam/atl24"
	"github.com/SlideRuleEarth/sliderule-sub005/beam/gedi"
	"github.com/SlideRuleEarth/sliderule-sub005/config"
	"github.com/SlideRuleEarth/sliderule-sub005/fetch"
	"github.com/SlideRuleEarth/sliderule-sub005/granule"
	"github.com/SlideRuleEarth/sliderule-sub005/record"
	"github.com/SlideRuleEarth/sliderule-sub005/region"
	"golang.org/x/sync/errgroup"
)

// orbitOrientationVar is the scalar ICESat-2 variable that resolves
// spot/ground-track for every beam in the granule (spec §4.C step 1).
const orbitOrientationVar = "/orbit_info/sc_orient"

// Coordinator owns the shared reader-level state described in spec
// §5: a single mutex-guarded statistics aggregate, a completion count
// against the number of beams spawned, and a liveness flag each
// worker polls while retrying a full output queue.
type Coordinator struct {
	publisher record.Publisher
	runID     uuid.UUID

	mu          sync.Mutex
	totalBeams  int
	numComplete int

	stats record.Aggregate

	active atomic.Bool
}

var _ beam.Coordinator = (*Coordinator)(nil)

// NewCoordinator constructs a coordinator for a run that will spawn
// totalBeams workers publishing through pub. It mints one correlation
// id (RunID) for the run, logged on every alert record so an operator
// can grep a single granule's run out of interleaved beam logs.
func NewCoordinator(pub record.Publisher, totalBeams int) *Coordinator {
	c := &Coordinator{publisher: pub, totalBeams: totalBeams, runID: uuid.New()}
	c.active.Store(true)
	return c
}

// RunID returns this run's correlation id.
func (c *Coordinator) RunID() uuid.UUID { return c.runID }

// PostAlert implements beam.Coordinator: it tags the alert with this
// run's correlation id and posts it as a best-effort, fire-and-forget
// frame (a dropped alert is not itself worth retrying or failing the
// run over).
func (c *Coordinator) PostAlert(ctx context.Context, severity record.Severity, code, message string) {
	alert := record.Alert{Severity: severity, Code: code, Message: message, RunID: c.runID.String()}
	if _, err := c.publisher.PostCopy(ctx, record.Frame{Type: record.TypeAlert, Body: alert}, time.Second); err != nil {
		log.Printf("[%s] alert dropped (%s): %s", c.runID, code, message)
	}
}

// MergeStats implements beam.Coordinator.
func (c *Coordinator) MergeStats(s record.Counters) { c.stats.Merge(s) }

// Active implements beam.Coordinator.
func (c *Coordinator) Active() bool { return c.active.Load() }

// Shutdown marks the run inactive; every worker's retry loop observes
// this on its next PostWithRetry iteration and drops in flight rather
// than blocking further.
func (c *Coordinator) Shutdown() { c.active.Store(false) }

// Complete implements beam.Coordinator: once every spawned beam has
// reported completion, the terminator frame is posted and the
// publisher is closed, per spec §5's "last worker out posts the
// terminator."
func (c *Coordinator) Complete(d granule.Descriptor) {
	c.mu.Lock()
	c.numComplete++
	done := c.numComplete >= c.totalBeams
	c.mu.Unlock()

	if !done {
		return
	}
	_, _ = c.publisher.PostCopy(context.Background(), record.Terminator(), time.Second)
	_ = c.publisher.Close()
}

// Stats returns a snapshot of the merged counters collected so far.
func (c *Coordinator) Stats() record.Counters { return c.stats.Snapshot() }

// Resources bundles the process-start auxiliary resources a run may
// need, indexed by mission so a single coordinator invocation can
// serve any granule type handed to it.
type Resources struct {
	ATL03 atl03.Resources
}

// ErrUnsupportedMission is returned for any mission ParseFilename can
// recognize but this reader has no worker for yet.
type ErrUnsupportedMission struct {
	Mission granule.Mission
}

func (e *ErrUnsupportedMission) Error() string {
	return fmt.Sprintf("reader: unsupported mission %s", e.Mission)
}

// ErrNoBeams is returned when a granule's configuration (track filter,
// per-beam enable flags) leaves zero workers to spawn, per spec §4.D:
// the coordinator fails rather than silently reporting success over
// nothing.
var ErrNoBeams = errors.New("reader: no valid beams")

// Run parses filename, builds one worker per enabled beam, and runs
// them to completion against client, publishing through pub.
// Selector narrows every beam identically (spec §4.B: the subsetting
// strategy is granule-wide, not per-beam). Run blocks until every
// worker has finished or the context is canceled.
func Run(ctx context.Context, client fetch.Client, filename string, sel region.Selector, p config.Parameters, res Resources, pub record.Publisher) error {
	identity, err := granule.ParseFilename(filename)
	if err != nil {
		return err
	}

	switch identity.Mission {
	case granule.MissionATL03:
		return runICESat2(ctx, client, identity, sel, p, pub, func(ctx *beam.Context) beam.Worker {
			return &atl03.Worker{Ctx: ctx, Resources: res.ATL03, SDPVersion: 6}
		})
	case granule.MissionATL06:
		return runICESat2(ctx, client, identity, sel, p, pub, func(ctx *beam.Context) beam.Worker {
			return &beam.ElevationWorker{Ctx: ctx, Source: &atl06.Source{GroupPrefix: ctx.Descriptor.GroupPrefix}}
		})
	case granule.MissionATL13:
		return runICESat2(ctx, client, identity, sel, p, pub, func(ctx *beam.Context) beam.Worker {
			return &beam.ElevationWorker{Ctx: ctx, Source: &atl13.Source{GroupPrefix: ctx.Descriptor.GroupPrefix}}
		})
	case granule.MissionATL24:
		return runICESat2(ctx, client, identity, sel, p, pub, func(ctx *beam.Context) beam.Worker {
			return &beam.ElevationWorker{Ctx: ctx, Source: &atl24.Source{GroupPrefix: ctx.Descriptor.GroupPrefix}}
		})
	case granule.MissionGEDI01B, granule.MissionGEDI02A, granule.MissionGEDI04A:
		return runGEDI(ctx, client, identity, sel, p, pub)
	default:
		return &ErrUnsupportedMission{Mission: identity.Mission}
	}
}

// readOrientation fetches the scalar spacecraft-orientation variable
// needed to resolve spot/ground-track for every ICESat-2 beam.
func readOrientation(ctx context.Context, client fetch.Client, timeout time.Duration) (granule.Orientation, error) {
	h, err := client.Open(ctx, orbitOrientationVar, fetch.AllCols, 0, 1)
	if err != nil {
		return 0, err
	}
	if err := client.Join(ctx, h, timeout, true); err != nil {
		return 0, err
	}
	vals := fetch.ToInt64(h)
	if len(vals) == 0 {
		return 0, fmt.Errorf("reader: %s returned no rows", orbitOrientationVar)
	}
	return granule.Orientation(vals[0]), nil
}

func trackFilter(m map[int]bool) map[granule.Track]bool {
	if len(m) == 0 {
		return nil
	}
	out := make(map[granule.Track]bool, len(m))
	for k, v := range m {
		out[granule.Track(k)] = v
	}
	return out
}

// runICESat2 spawns one worker per enabled (track, pair) for any
// ICESat-2 mission (ATL03/06/13/24), sharing the orientation lookup
// and fan-out/join plumbing across all four.
func runICESat2(ctx context.Context, client fetch.Client, identity granule.Identity, sel region.Selector, p config.Parameters, pub record.Publisher, newWorker func(*beam.Context) beam.Worker) error {
	orient, err := readOrientation(ctx, client, p.Timeouts.Read)
	if err != nil {
		return err
	}

	beams := granule.EnabledICESat2Beams(p.BeamsICESat2, trackFilter(p.TrackFilter))
	if len(beams) == 0 {
		return ErrNoBeams
	}

	coord := NewCoordinator(pub, len(beams))
	log.Printf("[%s] %s: %d beams enabled", coord.RunID(), identity.Mission, len(beams))
	g, gctx := errgroup.WithContext(ctx)

	for _, b := range beams {
		descriptor := granule.NewICESat2Descriptor(identity.Mission, b.Track, b.Pair, orient)
		beamCtx := &beam.Context{
			Client:      client,
			Identity:    identity,
			Descriptor:  descriptor,
			Selector:    sel,
			Params:      p,
			Publisher:   pub,
			Coordinator: coord,
		}
		w := newWorker(beamCtx)
		g.Go(func() error { return w.Run(gctx) })
	}

	return g.Wait()
}

// gediPowerBeam reports whether GEDI beam index i is one of the four
// high-power beams (4..7), per the BEAM0101.. naming in granule.beam.go.
func gediPowerBeam(i int) bool { return i >= 4 }

func runGEDI(ctx context.Context, client fetch.Client, identity granule.Identity, sel region.Selector, p config.Parameters, pub record.Publisher) error {
	beams := granule.EnabledGEDIBeams(p.BeamsGEDI)
	if len(beams) == 0 {
		return ErrNoBeams
	}

	mission := identity.Mission
	coord := NewCoordinator(pub, len(beams))
	log.Printf("[%s] %s: %d beams enabled", coord.RunID(), mission, len(beams))
	g, gctx := errgroup.WithContext(ctx)

	for _, idx := range beams {
		descriptor := granule.NewGEDIDescriptor(mission, idx)
		beamCtx := &beam.Context{
			Client:      client,
			Identity:    identity,
			Descriptor:  descriptor,
			Selector:    sel,
			Params:      p,
			Publisher:   pub,
			Coordinator: coord,
		}
		source := &gedi.Source{GroupPrefix: descriptor.GroupPrefix, IsPower: gediPowerBeam(idx)}
		w := &beam.ElevationWorker{Ctx: beamCtx, Source: source}
		g.Go(func() error { return w.Run(gctx) })
	}

	return g.Wait()
}
