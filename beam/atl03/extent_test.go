package atl03

import (
	"testing"

	"github.com/SlideRuleEarth/sliderule-sub005/config"
	"github.com/stretchr/testify/require"
)

func TestByPhotonCountDone(t *testing.T) {
	b := ByPhotonCount{PhInExtent: 3}
	require.False(t, b.Done(2, 0, 0))
	require.True(t, b.Done(3, 0, 0))
	require.True(t, b.Done(4, 0, 0))
}

func TestByDistanceMeters(t *testing.T) {
	b := &ByDistance{Length: 40}
	b.Reset(100, 0)
	require.False(t, b.Done(1, 110, 0))
	require.True(t, b.Done(2, 140, 0))
}

func TestByDistanceSegments(t *testing.T) {
	b := &ByDistance{Length: 2, DistInSeg: true}
	b.Reset(0, 5)
	require.False(t, b.Done(1, 0, 6))
	require.True(t, b.Done(2, 0, 7))
}

func TestNewExtentBoundarySelectsMode(t *testing.T) {
	p := config.DefaultParameters()
	p.ExtentBoundary = config.ExtentByPhotonCount
	p.PhInExtent = 5
	if _, ok := NewExtentBoundary(p).(ByPhotonCount); !ok {
		t.Fatal("expected ByPhotonCount")
	}

	p.ExtentBoundary = config.ExtentByDistance
	p.ExtentLength = 40
	if _, ok := NewExtentBoundary(p).(*ByDistance); !ok {
		t.Fatal("expected *ByDistance")
	}
}
