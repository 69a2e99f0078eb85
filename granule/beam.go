package granule

import "fmt"

// Descriptor is the per-beam identity constructed once by the reader
// coordinator and owned exclusively by its worker for its lifetime.
type Descriptor struct {
	Mission     Mission
	Track       Track // 1..3 for ICESat-2, 0..7 (beam index) for GEDI
	Pair        Pair  // left/right, ICESat-2 only
	GroupPrefix string
	Spot        int
	GT          int
}

// icesat2GroupPrefix returns the HDF5 group prefix, e.g. "/gt2l".
func icesat2GroupPrefix(track Track, pair Pair) string {
	side := "l"
	if pair == PairRight {
		side = "r"
	}
	return fmt.Sprintf("/gt%d%s", track, side)
}

// gediBeamNames maps a GEDI beam index to its group name, e.g.
// "BEAM0010" for beam index 2, matching the GEDI naming convention (coverage beams 0000,0001,0010,0011,
// power beams 0101,0110,1000,1011).
var gediBeamNames = [8]string{
	"BEAM0000", "BEAM0001", "BEAM0010", "BEAM0011",
	"BEAM0101", "BEAM0110", "BEAM1000", "BEAM1011",
}

// NewICESat2Descriptor builds a beam descriptor for one ICESat-2
// ground track/pair, resolving spot and ground-track id from the
// spacecraft orientation.
func NewICESat2Descriptor(mission Mission, track Track, pair Pair, orient Orientation) Descriptor {
	spot, gt := SpotAndGroundTrack(orient, track, pair)
	return Descriptor{
		Mission:     mission,
		Track:       track,
		Pair:        pair,
		GroupPrefix: icesat2GroupPrefix(track, pair),
		Spot:        spot,
		GT:          gt,
	}
}

// NewGEDIDescriptor builds a beam descriptor for one GEDI beam index
// (0..7).
func NewGEDIDescriptor(mission Mission, beamIndex int) Descriptor {
	name := "BEAM_UNKNOWN"
	if beamIndex >= 0 && beamIndex < len(gediBeamNames) {
		name = gediBeamNames[beamIndex]
	}
	return Descriptor{
		Mission:     mission,
		Track:       Track(beamIndex),
		GroupPrefix: name,
	}
}

// EnabledICESat2Beams returns the (track, pair) combinations selected by the
// beam-enable bitmap, in the fixed iteration order gt1l, gt1r, gt2l,
// gt2r, gt3l, gt3r.
func EnabledICESat2Beams(enabled [6]bool, trackFilter map[Track]bool) []struct {
	Track Track
	Pair  Pair
} {
	order := []struct {
		Track Track
		Pair  Pair
	}{
		{1, PairLeft}, {1, PairRight},
		{2, PairLeft}, {2, PairRight},
		{3, PairLeft}, {3, PairRight},
	}

	out := make([]struct {
		Track Track
		Pair  Pair
	}, 0, 6)

	for i, o := range order {
		if !enabled[i] {
			continue
		}
		if trackFilter != nil && len(trackFilter) > 0 && !trackFilter[o.Track] {
			continue
		}
		out = append(out, o)
	}
	return out
}

// EnabledGEDIBeams returns the beam indices selected by the GEDI
// beam-enable bitmap.
func EnabledGEDIBeams(enabled [8]bool) []int {
	out := make([]int, 0, 8)
	for i, on := range enabled {
		if on {
			out = append(out, i)
		}
	}
	return out
}
