package atl03

import "github.com/SlideRuleEarth/sliderule-sub005/config"

// ExtentBoundary decides when an in-progress extent accumulation
// should close, the supplemented dist_in_seg feature from
// Atl03Reader.cpp: extents can be bounded either by a fixed photon
// count (ph_in_extent) or by a fixed along-track span, expressed in
// meters or in segments depending on config.Parameters.DistInSeg.
type ExtentBoundary interface {
	// Reset anchors a new extent at the given along-track distance
	// (meters) and segment index.
	Reset(alongTrack float64, segment int)
	// Done reports whether the extent holding count photons, whose
	// most recently appended photon sits at alongTrack/segment, should
	// close now.
	Done(count int, alongTrack float64, segment int) bool
}

// ByPhotonCount closes an extent once it holds PhInExtent photons.
type ByPhotonCount struct {
	PhInExtent int
}

func (ByPhotonCount) Reset(float64, int) {}

func (b ByPhotonCount) Done(count int, _ float64, _ int) bool {
	return count >= b.PhInExtent
}

// ByDistance closes an extent once its along-track span reaches
// Length, measured in meters or in whole segments per DistInSeg.
type ByDistance struct {
	Length    float64
	DistInSeg bool

	startAlong   float64
	startSegment int
	started      bool
}

func (b *ByDistance) Reset(alongTrack float64, segment int) {
	b.startAlong = alongTrack
	b.startSegment = segment
	b.started = true
}

func (b *ByDistance) Done(count int, alongTrack float64, segment int) bool {
	if !b.started || count == 0 {
		return false
	}
	if b.DistInSeg {
		return float64(segment-b.startSegment) >= b.Length
	}
	return alongTrack-b.startAlong >= b.Length
}

// NewExtentBoundary builds the boundary strategy selected by params.
// Non-overlapping: this repeats extent_length for extent_step, i.e.
// one extent begins exactly where the previous one closed, rather
// than the original's overlapping step-less-than-length windows.
func NewExtentBoundary(params config.Parameters) ExtentBoundary {
	if params.ExtentBoundary == config.ExtentByDistance {
		return &ByDistance{Length: params.ExtentLength, DistInSeg: params.DistInSeg}
	}
	return ByPhotonCount{PhInExtent: params.PhInExtent}
}
