package granule

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFilenameATL03(t *testing.T) {
	id, err := ParseFilename("ATL03_20200101000000_00010101_006_01.h5")
	require.NoError(t, err)
	require.Equal(t, MissionATL03, id.Mission)
	require.Equal(t, 2020, id.Acquired.Year())
	require.Equal(t, 1, id.RGT)
	require.Equal(t, 1, id.Cycle)
	require.Equal(t, 1, id.Region)
	require.Equal(t, 6, id.Version)
}

func TestParseFilenameRejectsUnknownPrefix(t *testing.T) {
	_, err := ParseFilename("XYZ03_20200101000000_00010101_006_01.h5")
	require.Error(t, err)
}

func TestParseFilenameRejectsShortName(t *testing.T) {
	_, err := ParseFilename("ATL03_short.h5")
	require.Error(t, err)
}

func TestParseFilenameGEDI02A(t *testing.T) {
	id, err := ParseFilename("GEDI02_A_2019123142021_O01959_03_T02527_02_003_01_V002.h5")
	require.NoError(t, err)
	require.Equal(t, MissionGEDI02A, id.Mission)
	require.Equal(t, 2019, id.Acquired.Year())
	require.Equal(t, 1959, id.RGT)
	require.Equal(t, 3, id.Cycle)
	require.Equal(t, 2527, id.Region)
}

func TestATL08Companion(t *testing.T) {
	require.Equal(t, "ATL08_20200101000000_00010101_006_01.h5", ATL08Companion("ATL03_20200101000000_00010101_006_01.h5"))
}

func TestSpotAndGroundTrackTransitionIsInvalid(t *testing.T) {
	spot, gt := SpotAndGroundTrack(OrientationTransition, 2, PairLeft)
	require.Equal(t, InvalidSpot, spot)
	require.Equal(t, InvalidGT, gt)
}

func TestSpotAndGroundTrackBackward(t *testing.T) {
	spot, gt := SpotAndGroundTrack(OrientationBackward, 2, PairRight)
	require.Equal(t, 4, spot)
	require.Equal(t, 40, gt)
}

func TestEnabledICESat2BeamsHonorsTrackFilter(t *testing.T) {
	enabled := [6]bool{true, true, true, true, true, true}
	beams := EnabledICESat2Beams(enabled, map[Track]bool{2: true})
	require.Len(t, beams, 2)
	for _, b := range beams {
		require.Equal(t, Track(2), b.Track)
	}
}

func TestEnabledGEDIBeams(t *testing.T) {
	enabled := [8]bool{true, false, true, false, false, false, false, false}
	require.Equal(t, []int{0, 2}, EnabledGEDIBeams(enabled))
}
