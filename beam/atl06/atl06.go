// Package atl06 implements the ATL06 land-ice height source consumed
// by beam.ElevationWorker (spec §3: "other missions define analogous
// but smaller records").
package atl06

import (
	"context"
	"time"

	"github.com/SlideRuleEarth/sliderule-sub005/beam"
	"github.com/SlideRuleEarth/sliderule-sub005/fetch"
	"github.com/SlideRuleEarth/sliderule-sub005/record"
)

const (
	varLatitude      = "land_ice_segments/latitude"
	varLongitude     = "land_ice_segments/longitude"
	varHeight        = "land_ice_segments/h_li"
	varHeightSigma   = "land_ice_segments/h_li_sigma"
	varSigmaGeoH     = "land_ice_segments/sigma_geo_h"
	varNumFitPhotons = "land_ice_segments/fit_statistics/n_fit_photons"
	varSegmentID     = "land_ice_segments/segment_id"
	varDeltaTime     = "land_ice_segments/delta_time"
	varAtlQuality    = "land_ice_segments/atl06_quality_summary"
)

// Source implements beam.ElevationSource for one ATL06 ground track.
type Source struct {
	GroupPrefix string

	lat, lon       []float64
	height         []float64
	heightSigma    []float64
	sigmaGeoH      []float64
	numFitPhotons  []int64
	segmentID      []int64
	deltaTime      []int64
	qualitySummary []int64
}

var _ beam.ElevationSource = (*Source)(nil)

func (s *Source) groupVar(name string) string { return s.GroupPrefix + "/" + name }

// Open implements beam.ElevationSource.
func (s *Source) Open(ctx context.Context, c fetch.Client, timeout time.Duration) ([]float64, []float64, error) {
	vars := []string{
		varLatitude, varLongitude, varHeight, varHeightSigma, varSigmaGeoH,
		varNumFitPhotons, varSegmentID, varDeltaTime, varAtlQuality,
	}
	for i, v := range vars {
		vars[i] = s.groupVar(v)
	}

	handles, err := fetch.OpenAll(ctx, c, vars, 0, fetch.AllRows)
	if err != nil {
		return nil, nil, err
	}
	if err := fetch.JoinAll(ctx, c, handles, timeout); err != nil {
		return nil, nil, err
	}

	s.lat = fetch.ToFloat64(handles[s.groupVar(varLatitude)])
	s.lon = fetch.ToFloat64(handles[s.groupVar(varLongitude)])
	s.height = fetch.ToFloat64(handles[s.groupVar(varHeight)])
	s.heightSigma = fetch.ToFloat64(handles[s.groupVar(varHeightSigma)])
	s.sigmaGeoH = fetch.ToFloat64(handles[s.groupVar(varSigmaGeoH)])
	s.numFitPhotons = fetch.ToInt64(handles[s.groupVar(varNumFitPhotons)])
	s.segmentID = fetch.ToInt64(handles[s.groupVar(varSegmentID)])
	s.deltaTime = fetch.ToInt64(handles[s.groupVar(varDeltaTime)])
	s.qualitySummary = fetch.ToInt64(handles[s.groupVar(varAtlQuality)])

	return s.lat, s.lon, nil
}

// Build implements beam.ElevationSource.
func (s *Source) Build(i int) record.Elevation {
	e := record.Elevation{
		Latitude:    s.lat[i],
		Longitude:   s.lon[i],
		Height:      s.height[i],
		HeightSigma: s.heightSigma[i],
	}
	if i < len(s.sigmaGeoH) {
		e.SigmaGeoH = s.sigmaGeoH[i]
	}
	if i < len(s.numFitPhotons) {
		e.NumFitPhotons = int32(s.numFitPhotons[i])
	}
	if i < len(s.segmentID) {
		e.SegmentID = s.segmentID[i]
	}
	if i < len(s.deltaTime) {
		e.TimeNs = s.deltaTime[i]
	}
	if i < len(s.qualitySummary) {
		e.QualitySummary = int32(s.qualitySummary[i])
	}
	return e
}
