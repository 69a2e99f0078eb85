package beam

import (
	"testing"

	"github.com/SlideRuleEarth/sliderule-sub005/config"
	"github.com/stretchr/testify/require"
)

func TestSignalConfDynamicTakesMax(t *testing.T) {
	in := PhotonInput{SignalConf: [5]int8{-1, 0, 2, 4, 1}}
	conf, err := SignalConf(in, config.SurfaceDynamic)
	require.NoError(t, err)
	require.Equal(t, int8(4), conf)
}

func TestSignalConfRangeError(t *testing.T) {
	in := PhotonInput{SignalConf: [5]int8{-5, 0, 0, 0, 0}}
	_, err := SignalConf(in, config.SurfaceDynamic)
	require.ErrorIs(t, err, ErrSignalConfRange)
}

func TestApplyFixedFiltersDropsOnDemDelta(t *testing.T) {
	p := config.DefaultParameters()
	in := PhotonInput{
		SignalConf: [5]int8{4, 4, 4, 4, 4},
		Quality:    config.QualityNominal,
		DEMHeight:  100,
		OrthoH:     0,
	}
	result, err := ApplyFixedFilters(in, p)
	require.NoError(t, err)
	require.Equal(t, Drop, result)
}

func TestApplyFixedFiltersKeepsWithinTolerance(t *testing.T) {
	p := config.DefaultParameters()
	in := PhotonInput{
		SignalConf: [5]int8{4, 4, 4, 4, 4},
		Quality:    config.QualityNominal,
		DEMHeight:  10,
		OrthoH:     10.5,
	}
	result, err := ApplyFixedFilters(in, p)
	require.NoError(t, err)
	require.Equal(t, Keep, result)
}

func TestApplyFixedFiltersQualityOutOfRangeIsFatal(t *testing.T) {
	p := config.DefaultParameters()
	in := PhotonInput{
		SignalConf: [5]int8{4, 4, 4, 4, 4},
		Quality:    99,
	}
	_, err := ApplyFixedFilters(in, p)
	require.ErrorIs(t, err, ErrQualityRange)
}
