// Package region implements the two-strategy subsetting algorithm
// (spec §4.B) that narrows a granule's geolocated segment sequence to
// a contiguous [first_index, count) window, plus, for the raster
// strategy, a per-segment inclusion mask.
package region

import (
	"errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ErrEmptySubset is returned when a selector yields count<=0. Per
// spec §4.B this is non-fatal and surfaced as a debug-level alert; the
// calling worker finishes early without error.
var ErrEmptySubset = errors.New("region: empty subset")

// ZeroSegmentPolicy resolves the Open Question in spec §9 about how a
// zero-photon-count segment participates in photon indexing during
// polygon subsetting.
type ZeroSegmentPolicy int

const (
	// ZeroSegmentAccumulate keeps accumulating first_photon across
	// zero-count segments while searching (the default: adding zero
	// is a no-op, so this matches the common reading of §4.B step 2).
	ZeroSegmentAccumulate ZeroSegmentPolicy = iota
	// ZeroSegmentIgnore skips zero-count segments entirely for index
	// accumulation, for readers that need that behavior.
	ZeroSegmentIgnore
)

// Window is the per-beam region result (spec §3).
type Window struct {
	FirstSegment  int64
	SegmentCount  int64
	FirstPhoton   int64
	PhotonCount   int64
	InclusionMask []bool // nil unless the raster strategy was used
}

// Empty reports the count<=0 condition from spec §3's window
// invariant.
func (w Window) Empty() bool {
	if w.SegmentCount <= 0 {
		return true
	}
	return false
}

// Selector is exactly one of NoConstraint, Polygon, or Raster.
type Selector interface {
	isSelector()
}

// NoConstraint selects every segment/photon in the granule.
type NoConstraint struct{}

func (NoConstraint) isSelector() {}

// Polygon selects by point-in-polygon containment of each segment's
// (lon, lat) against a pre-projected ring, per spec §4.B. The ring's
// coordinates are assumed already projected into the same planar
// space as lat/lon by the external collaborator named in spec §1; the
// point-in-polygon test itself is the real primitive from
// github.com/paulmach/orb, not a stub.
type Polygon struct {
	Ring orb.Ring
}

func (Polygon) isSelector() {}

// Contains reports whether (lon, lat) lies inside the polygon ring.
func (p Polygon) Contains(lon, lat float64) bool {
	return planar.RingContains(p.Ring, orb.Point{lon, lat})
}

// RasterMask selects by an opaque contains(lon, lat) predicate,
// typically backed by a sampled raster (see package mask).
type RasterMask struct {
	Contains func(lon, lat float64) bool
}

func (RasterMask) isSelector() {}

// Input bundles the per-segment views the narrower walks. SegPhCnt is
// nil for missions where photon==segment==footprint (everything but
// ATL03).
type Input struct {
	Lat      []float64
	Lon      []float64
	SegPhCnt []int64 // ATL03 only
	Policy   ZeroSegmentPolicy
}

func sumSegPhCnt(segPhCnt []int64) int64 {
	var total int64
	for _, c := range segPhCnt {
		total += c
	}
	return total
}

// Narrow runs the region-narrowing algorithm described in spec §4.B
// and returns the resulting window. A count<=0 result is reported via
// ErrEmptySubset rather than returned as a zero Window, so callers
// can't accidentally treat an empty subset as valid.
func Narrow(in Input, sel Selector) (Window, error) {
	switch s := sel.(type) {
	case NoConstraint:
		return narrowNoConstraint(in)
	case Polygon:
		return narrowPolygon(in, s)
	case RasterMask:
		return narrowRaster(in, s)
	default:
		return Window{}, errors.New("region: unknown selector type")
	}
}

func narrowNoConstraint(in Input) (Window, error) {
	n := int64(len(in.Lat))
	if n <= 0 {
		return Window{}, ErrEmptySubset
	}
	w := Window{FirstSegment: 0, SegmentCount: n}
	if in.SegPhCnt != nil {
		w.FirstPhoton = 0
		w.PhotonCount = sumSegPhCnt(in.SegPhCnt)
	} else {
		w.FirstPhoton = 0
		w.PhotonCount = n
	}
	return w, nil
}

// narrowPolygon implements the "searching" then "tracking" state
// machine of spec §4.B. It assumes (per the spec's documented design
// decision) that the polygon produces a single contiguous run of
// inclusion; it does not attempt to re-enter after the first
// exclusion following a tracked run.
func narrowPolygon(in Input, sel Polygon) (Window, error) {
	const (
		stateSearching = iota
		stateTracking
		stateDone
	)

	hasPhotons := in.SegPhCnt != nil
	state := stateSearching

	var firstSegment, firstPhoton, photonCount, lastSegment int64
	var runningPhoton int64

	for i := 0; i < len(in.Lat); i++ {
		seg := int64(i)
		included := sel.Contains(in.Lon[i], in.Lat[i])

		var phCnt int64 = 1
		if hasPhotons {
			phCnt = in.SegPhCnt[i]
		}

		switch state {
		case stateSearching:
			if hasPhotons && phCnt == 0 {
				if in.Policy == ZeroSegmentAccumulate {
					runningPhoton += phCnt
				}
				continue
			}
			if !included {
				runningPhoton += phCnt
				continue
			}
			firstSegment = seg
			firstPhoton = runningPhoton
			photonCount = phCnt
			lastSegment = seg
			state = stateTracking
		case stateTracking:
			if hasPhotons && phCnt == 0 {
				continue
			}
			if included {
				photonCount += phCnt
				lastSegment = seg
				continue
			}
			state = stateDone
		}

		if state == stateDone {
			break
		}
	}

	if state == stateSearching {
		// never found an included segment
		return Window{}, ErrEmptySubset
	}

	w := Window{
		FirstSegment: firstSegment,
		SegmentCount: lastSegment - firstSegment + 1,
		FirstPhoton:  firstPhoton,
		PhotonCount:  photonCount,
	}
	if w.Empty() {
		return Window{}, ErrEmptySubset
	}
	return w, nil
}

// narrowRaster implements the raster-mask strategy of spec §4.B: an
// inclusion mask over every segment, with the window spanning
// [first_segment, last_segment] inclusive of any excluded segments in
// between (so the worker can skip them individually without
// re-evaluating the raster).
func narrowRaster(in Input, sel RasterMask) (Window, error) {
	hasPhotons := in.SegPhCnt != nil

	n := len(in.Lat)
	mask := make([]bool, n)

	firstSegment := int64(-1)
	lastSegment := int64(-1)

	for i := 0; i < n; i++ {
		if hasPhotons && in.SegPhCnt[i] == 0 {
			continue
		}
		included := sel.Contains(in.Lon[i], in.Lat[i])
		mask[i] = included
		if included {
			if firstSegment < 0 {
				firstSegment = int64(i)
			}
			lastSegment = int64(i)
		}
	}

	if firstSegment < 0 {
		return Window{}, ErrEmptySubset
	}

	segCount := lastSegment - firstSegment + 1
	w := Window{
		FirstSegment:  firstSegment,
		SegmentCount:  segCount,
		InclusionMask: mask[firstSegment : lastSegment+1],
	}

	if hasPhotons {
		var firstPhoton, photonCount int64
		for i := int64(0); i < firstSegment; i++ {
			firstPhoton += in.SegPhCnt[i]
		}
		for i := firstSegment; i <= lastSegment; i++ {
			photonCount += in.SegPhCnt[i]
		}
		w.FirstPhoton = firstPhoton
		w.PhotonCount = photonCount
	} else {
		w.FirstPhoton = firstSegment
		w.PhotonCount = segCount
	}

	if w.Empty() {
		return Window{}, ErrEmptySubset
	}
	return w, nil
}
