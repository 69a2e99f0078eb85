package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtentIDRoundTrip(t *testing.T) {
	cases := []ExtentIDFields{
		{RGT: 1234, Cycle: 20, Region: 3, Track: 2, Counter: 42, Kind: KindPhoton, Pair: 1},
		{RGT: 1, Cycle: 1, Region: 1, Track: 1, Counter: 0, Kind: KindElevation, Pair: 0},
		{RGT: 4095, Cycle: 65535, Region: 15, Track: 3, Counter: MaxCounter, Kind: KindPhoton, Pair: 1},
	}

	for _, c := range cases {
		id := EncodeExtentID(c)
		got := id.Decode()
		require.Equal(t, c, got)
	}
}

// Per §8 scenario 5, the worked example (RGT=1234, cycle=20, region=3,
// track=2, pair=1, counter=42) must round-trip identically through
// the packed layout. The test checks the round trip only; it does not
// assert a specific packed literal.
func TestExtentIDScenario5RoundTrip(t *testing.T) {
	fields := ExtentIDFields{RGT: 1234, Cycle: 20, Region: 3, Track: 2, Counter: 42, Kind: KindElevation, Pair: 1}
	id := EncodeExtentID(fields)
	require.Equal(t, fields, id.Decode())
}

func TestIDCounterMonotonic(t *testing.T) {
	c := NewIDCounter(ExtentIDFields{RGT: 10, Cycle: 1, Region: 1, Track: 1, Pair: 0})

	prev := ExtentID(0)
	for i := 0; i < 5; i++ {
		id := c.Next(KindPhoton)
		require.Greater(t, uint64(id), uint64(prev))
		require.Equal(t, i, id.Decode().Counter)
		prev = id
	}
}
