// Package atl24 implements a companion-product source that reads the
// already-classified ATL24 bathymetry elevation records, for callers
// that want ATL24's own per-photon classification rather than running
// OceanEyes themselves (spec §3's "other missions" passthrough case).
package atl24

import (
	"context"
	"time"

	"github.com/SlideRuleEarth/sliderule-sub005/beam"
	"github.com/SlideRuleEarth/sliderule-sub005/fetch"
	"github.com/SlideRuleEarth/sliderule-sub005/record"
)

const (
	varLatitude      = "lat_ph"
	varLongitude     = "lon_ph"
	varOrthoHeight   = "ortho_h"
	varClassPh       = "class_ph"
	varConfidencePh  = "confidence"
	varIndexPh       = "index_ph"
	varDeltaTime     = "delta_time"
)

// Source implements beam.ElevationSource for one ATL24 ground track,
// treating each already-classified photon as an elevation record.
type Source struct {
	GroupPrefix string

	lat, lon     []float64
	orthoHeight  []float64
	classPh      []int8
	confidencePh []int8
	indexPh      []int64
	deltaTime    []int64
}

var _ beam.ElevationSource = (*Source)(nil)

func (s *Source) groupVar(name string) string { return s.GroupPrefix + "/" + name }

// Open implements beam.ElevationSource.
func (s *Source) Open(ctx context.Context, c fetch.Client, timeout time.Duration) ([]float64, []float64, error) {
	vars := []string{
		varLatitude, varLongitude, varOrthoHeight, varClassPh,
		varConfidencePh, varIndexPh, varDeltaTime,
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
	s.orthoHeight = fetch.ToFloat64(handles[s.groupVar(varOrthoHeight)])
	s.classPh = fetch.ToInt8(handles[s.groupVar(varClassPh)])
	s.confidencePh = fetch.ToInt8(handles[s.groupVar(varConfidencePh)])
	s.indexPh = fetch.ToInt64(handles[s.groupVar(varIndexPh)])
	s.deltaTime = fetch.ToInt64(handles[s.groupVar(varDeltaTime)])

	return s.lat, s.lon, nil
}

// Build implements beam.ElevationSource.
func (s *Source) Build(i int) record.Elevation {
	e := record.Elevation{
		Latitude:  s.lat[i],
		Longitude: s.lon[i],
		Height:    s.orthoHeight[i],
	}
	if i < len(s.classPh) {
		e.QualitySummary = int32(s.classPh[i])
	}
	if i < len(s.confidencePh) {
		e.HeightSigma = float64(s.confidencePh[i])
	}
	if i < len(s.indexPh) {
		e.SegmentID = s.indexPh[i]
	}
	if i < len(s.deltaTime) {
		e.TimeNs = s.deltaTime[i]
	}
	return e
}
