package region

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func squareRing(cx, cy, half float64) orb.Ring {
	return orb.Ring{
		{cx - half, cy - half},
		{cx + half, cy - half},
		{cx + half, cy + half},
		{cx - half, cy + half},
		{cx - half, cy - half},
	}
}

func TestNarrowPolygonContiguousRun(t *testing.T) {
	// segments 0,1 outside; 2,3,4 inside; 5,6 outside again.
	lon := []float64{-118, -117.5, -117.05, -117.0, -116.95, -116.5, -116}
	lat := []float64{32.1, 32.1, 32.1, 32.1, 32.1, 32.1, 32.1}
	segPhCnt := []int64{10, 10, 5, 7, 3, 10, 10}

	sel := Polygon{Ring: squareRing(-117.0, 32.1, 0.1)}

	w, err := Narrow(Input{Lat: lat, Lon: lon, SegPhCnt: segPhCnt}, sel)
	require.NoError(t, err)
	require.Equal(t, int64(2), w.FirstSegment)
	require.Equal(t, int64(3), w.SegmentCount)

	// Testable property (spec §8): summed seg_ph_cnt over the window
	// equals the emitted (pre-filter) photon count.
	var sum int64
	for i := w.FirstSegment; i < w.FirstSegment+w.SegmentCount; i++ {
		sum += segPhCnt[i]
	}
	require.Equal(t, sum, w.PhotonCount)
}

func TestNarrowPolygonEmptyIntersection(t *testing.T) {
	lon := []float64{10, 11, 12}
	lat := []float64{10, 11, 12}
	sel := Polygon{Ring: squareRing(-117.0, 32.1, 0.1)}

	_, err := Narrow(Input{Lat: lat, Lon: lon}, sel)
	require.ErrorIs(t, err, ErrEmptySubset)
}

func TestNarrowRasterFirstExcludedLastIncluded(t *testing.T) {
	// First segment excluded, last included: window lands on the last
	// segment only (spec §8 boundary behavior).
	lon := []float64{0, 1, 2}
	lat := []float64{0, 1, 2}

	included := map[int]bool{2: true}
	sel := RasterMask{Contains: func(lon, lat float64) bool {
		return included[int(lon)]
	}}

	w, err := Narrow(Input{Lat: lat, Lon: lon}, sel)
	require.NoError(t, err)
	require.Equal(t, int64(2), w.FirstSegment)
	require.Equal(t, int64(1), w.SegmentCount)
	require.Len(t, w.InclusionMask, 1)
	require.True(t, w.InclusionMask[0])
}

func TestNarrowRasterMaskAlignsWithWindow(t *testing.T) {
	lon := []float64{0, 1, 2, 3, 4}
	lat := []float64{0, 0, 0, 0, 0}
	included := map[int]bool{1: true, 3: true}
	sel := RasterMask{Contains: func(lon, lat float64) bool {
		return included[int(lon)]
	}}

	w, err := Narrow(Input{Lat: lat, Lon: lon}, sel)
	require.NoError(t, err)
	require.Equal(t, int64(1), w.FirstSegment)
	require.Equal(t, int64(3), w.SegmentCount)

	// Testable property (spec §8): a segment is only emitted if its
	// mask entry is true.
	for i, seg := range []int64{1, 2, 3} {
		want := included[int(seg)]
		require.Equal(t, want, w.InclusionMask[i])
	}
}

func TestNarrowNoConstraintSumsSegPhCnt(t *testing.T) {
	lat := []float64{1, 2, 3}
	lon := []float64{1, 2, 3}
	segPhCnt := []int64{4, 5, 6}

	w, err := Narrow(Input{Lat: lat, Lon: lon, SegPhCnt: segPhCnt}, NoConstraint{})
	require.NoError(t, err)
	require.Equal(t, int64(0), w.FirstSegment)
	require.Equal(t, int64(3), w.SegmentCount)
	require.Equal(t, int64(15), w.PhotonCount)
}
