// Package beam implements the per-beam worker of spec §4.C: one
// worker runs to completion per enabled beam, pulling variable
// handles through fetch.Client, narrowing through region.Narrow,
// walking photons/footprints, filtering, batching, and publishing
// through record.Publisher.
package beam

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/SlideRuleEarth/sliderule-sub005/config"
	"github.com/SlideRuleEarth/sliderule-sub005/fetch"
	"github.com/SlideRuleEarth/sliderule-sub005/granule"
	"github.com/SlideRuleEarth/sliderule-sub005/record"
	"github.com/SlideRuleEarth/sliderule-sub005/region"
)

// FilterResult is the outcome of running a photon through the fixed
// filter chain (spec §4.C step 5 and REDESIGN FLAGS: the original's
// one-iteration break construct is replaced with an explicit return
// value rather than a goto-style loop).
type FilterResult int

const (
	// Keep means the photon/footprint survives every filter.
	Keep FilterResult = iota
	// Drop means this one unit was rejected; iteration continues.
	Drop
	// Stop means a fatal condition was hit; the worker must drain and
	// exit without completing iteration.
	Stop
)

// Coordinator is the subset of the reader coordinator a worker needs:
// completion signaling and shared statistics merge (spec §5's single
// mutex-guarded reader state).
type Coordinator interface {
	MergeStats(c record.Counters)
	Complete(desc granule.Descriptor)
	Active() bool
	// PostAlert emits an out-of-band diagnostic record (§7), tagged
	// with the run's correlation id, interleaved with the data frames
	// already in flight.
	PostAlert(ctx context.Context, severity record.Severity, code, message string)
}

// Worker is the public contract of spec §4.C: constructed once per
// enabled beam, run to completion, never returning a value through a
// function boundary.
type Worker interface {
	Run(ctx context.Context) error
}

// Context bundles what every mission's worker needs to do its job:
// the fetcher, the beam identity, the narrowing selector, output
// config, and the shared publisher/coordinator.
type Context struct {
	Client      fetch.Client
	Identity    granule.Identity
	Descriptor  granule.Descriptor
	Selector    region.Selector
	Params      config.Parameters
	Publisher   record.Publisher
	Coordinator Coordinator
	Counters    record.Counters
}

// Finalize merges this worker's tallied counters into the
// coordinator and signals completion, mirroring spec §5's "each
// worker accumulates into a stack-local struct, then merges once
// under the mutex at completion."
func (c *Context) Finalize() {
	c.Coordinator.MergeStats(c.Counters)
	c.Coordinator.Complete(c.Descriptor)
	if c.Counters.Dropped > 0 || c.Counters.Retried > 0 {
		log.Printf("beam %s: read=%d filtered=%d sent=%d dropped=%d retried=%d",
			c.Descriptor.GroupPrefix, c.Counters.Read, c.Counters.Filtered,
			c.Counters.Sent, c.Counters.Dropped, c.Counters.Retried)
		c.Coordinator.PostAlert(context.Background(), record.SeverityWarning, "beam_degraded",
			fmt.Sprintf("%s: dropped=%d retried=%d", c.Descriptor.GroupPrefix, c.Counters.Dropped, c.Counters.Retried))
	}
}

// PostExtent publishes one finished extent using the retry-on-timeout
// contract of spec §4.F, updating Sent/Dropped/Retried.
func (c *Context) PostExtent(ctx context.Context, e *record.Extent, timeout time.Duration) error {
	f := record.Frame{Type: record.TypeExtent, Body: e}
	return record.PostWithRetry(ctx, c.Publisher, f, timeout, c.Coordinator.Active, &c.Counters)
}
