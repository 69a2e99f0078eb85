// Package gedi implements the GEDI L2A/L4A footprint-height source
// consumed by beam.ElevationWorker.
package gedi

import (
	"context"
	"time"

	"github.com/SlideRuleEarth/sliderule-sub005/beam"
	"github.com/SlideRuleEarth/sliderule-sub005/fetch"
	"github.com/SlideRuleEarth/sliderule-sub005/record"
)

const (
	varLatitude     = "lat_lowestmode"
	varLongitude    = "lon_lowestmode"
	varElevation    = "elev_lowestmode"
	varElevationSigma = "elevation_bin0_error"
	varQualityFlag  = "l2a_quality_flag"
	varDegradeFlag  = "degrade_flag"
	varSensitivity  = "sensitivity"
	varShotNumber   = "shot_number"
	varDeltaTime    = "delta_time"
)

// Source implements beam.ElevationSource for one GEDI beam.
type Source struct {
	GroupPrefix string
	IsPower     bool

	lat, lon      []float64
	elevation     []float64
	elevationSigma []float64
	qualityFlag   []int8
	degradeFlag   []int8
	sensitivity   []float64
	shotNumber    []int64
	deltaTime     []int64
}

var _ beam.ElevationSource = (*Source)(nil)

func (s *Source) groupVar(name string) string { return s.GroupPrefix + "/" + name }

// Open implements beam.ElevationSource.
func (s *Source) Open(ctx context.Context, c fetch.Client, timeout time.Duration) ([]float64, []float64, error) {
	vars := []string{
		varLatitude, varLongitude, varElevation, varElevationSigma,
		varQualityFlag, varDegradeFlag, varSensitivity, varShotNumber, varDeltaTime,
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
	s.elevation = fetch.ToFloat64(handles[s.groupVar(varElevation)])
	s.elevationSigma = fetch.ToFloat64(handles[s.groupVar(varElevationSigma)])
	s.qualityFlag = fetch.ToInt8(handles[s.groupVar(varQualityFlag)])
	s.degradeFlag = fetch.ToInt8(handles[s.groupVar(varDegradeFlag)])
	s.sensitivity = fetch.ToFloat64(handles[s.groupVar(varSensitivity)])
	s.shotNumber = fetch.ToInt64(handles[s.groupVar(varShotNumber)])
	s.deltaTime = fetch.ToInt64(handles[s.groupVar(varDeltaTime)])

	return s.lat, s.lon, nil
}

// Build implements beam.ElevationSource.
func (s *Source) Build(i int) record.Elevation {
	e := record.Elevation{
		Latitude:    s.lat[i],
		Longitude:   s.lon[i],
		Height:      s.elevation[i],
		BeamIsPower: s.IsPower,
	}
	if i < len(s.elevationSigma) {
		e.HeightSigma = s.elevationSigma[i]
	}
	if i < len(s.qualityFlag) {
		e.L2QualityFlag = s.qualityFlag[i]
	}
	if i < len(s.degradeFlag) {
		e.DegradeFlag = s.degradeFlag[i]
	}
	if i < len(s.sensitivity) {
		e.Sensitivity = s.sensitivity[i]
	}
	if i < len(s.shotNumber) {
		e.SegmentID = s.shotNumber[i]
	}
	if i < len(s.deltaTime) {
		e.TimeNs = s.deltaTime[i]
	}
	return e
}
