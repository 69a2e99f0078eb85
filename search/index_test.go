package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndexQueryIntersects(t *testing.T) {
	entries := []Entry{
		{URI: "a", MinLon: -10, MinLat: -10, MaxLon: -5, MaxLat: -5},
		{URI: "b", MinLon: 10, MinLat: 10, MaxLon: 15, MaxLat: 15},
		{URI: "c", MinLon: -1, MinLat: -1, MaxLon: 1, MaxLat: 1},
	}
	idx := NewIndex(entries)
	require.Equal(t, 3, idx.Len())

	hits, err := idx.Query(-2, -2, 2, 2)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "c", hits[0].URI)
}

func TestIndexQueryNoIntersection(t *testing.T) {
	entries := []Entry{
		{URI: "a", MinLon: -10, MinLat: -10, MaxLon: -5, MaxLat: -5},
	}
	idx := NewIndex(entries)
	hits, err := idx.Query(50, 50, 60, 60)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestMatchesAnyGranulePatterns(t *testing.T) {
	require.True(t, matchesAny("ATL03_20200101000000_00010101_006_01.h5"))
	require.True(t, matchesAny("GEDI02_A_2019123142021_O01959_03_T02527_02_003_01_V002.h5"))
	require.False(t, matchesAny("readme.txt"))
}
