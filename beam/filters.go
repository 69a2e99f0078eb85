package beam

import (
	"errors"
	"math"

	"github.com/SlideRuleEarth/sliderule-sub005/config"
)

// ErrSignalConfRange and ErrQualityRange are the fatal range-check
// failures of spec §4.C step 5.
var (
	ErrSignalConfRange = errors.New("beam: signal_conf_ph out of range")
	ErrQualityRange    = errors.New("beam: quality_ph out of range")
)

// PhotonInput is the per-photon slice of fields the fixed filter
// chain (spec §4.C step 5) needs. Mask and region checks are applied
// by the caller before/around this, since they depend on the current
// segment rather than the photon alone.
type PhotonInput struct {
	SignalConf [5]int8 // indexed by surface type; SRT_DYNAMIC takes the max
	Quality    int8
	YAPCWeight uint8
	DEMHeight  float64
	OrthoH     float64
}

// SignalConf resolves the effective confidence for the configured
// surface type, per spec §4.C step 5.
func SignalConf(in PhotonInput, surface config.SurfaceType) (int8, error) {
	var c int8
	if surface == config.SurfaceDynamic {
		c = in.SignalConf[0]
		for _, v := range in.SignalConf[1:] {
			if v > c {
				c = v
			}
		}
	} else {
		idx := int(surface)
		if idx < 0 || idx >= len(in.SignalConf) {
			return 0, ErrSignalConfRange
		}
		c = in.SignalConf[idx]
	}
	if c < config.ConfPossibleTEP || c > config.ConfSurfaceHigh {
		return 0, ErrSignalConfRange
	}
	return c, nil
}

// ApplyFixedFilters runs spec §4.C step 5's fixed-order filter chain
// (confidence, quality, YAPC, DEM delta) over one photon, given the
// beam's configured enable bitmaps. Mask/region checks are the
// caller's responsibility since they operate per-segment.
func ApplyFixedFilters(in PhotonInput, p config.Parameters) (FilterResult, error) {
	conf, err := SignalConf(in, p.SurfaceType)
	if err != nil {
		return Stop, err
	}
	if confIdx := conf + 2; confIdx < 0 || int(confIdx) >= len(p.ATL03Conf) || !p.ATL03Conf[confIdx] {
		return Drop, nil
	}

	if in.Quality < config.QualityNominal || in.Quality > config.QualityPossibleTEP {
		return Stop, ErrQualityRange
	}
	if int(in.Quality) >= len(p.QualityPh) || !p.QualityPh[in.Quality] {
		return Drop, nil
	}

	if p.YAPCScoreThreshold > 0 && float64(in.YAPCWeight) < p.YAPCScoreThreshold {
		return Drop, nil
	}

	if math.Abs(in.DEMHeight-in.OrthoH) > p.MaxDEMDelta {
		return Drop, nil
	}

	return Keep, nil
}
