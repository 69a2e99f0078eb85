// Package atl13 implements the ATL13 inland-water height source
// consumed by beam.ElevationWorker.
package atl13

import (
	"context"
	"time"

	"github.com/SlideRuleEarth/sliderule-sub005/beam"
	"github.com/SlideRuleEarth/sliderule-sub005/fetch"
	"github.com/SlideRuleEarth/sliderule-sub005/record"
)

const (
	varLatitude    = "segment_lat"
	varLongitude   = "segment_lon"
	varWaterHeight = "ht_ortho"
	varWaterDepth  = "water_depth"
	varSlope       = "segment_slope_trk_bdy"
	varCloudFlag   = "qf_cloud"
	varSnowIce     = "snow_ice_atl09"
	varSegmentID   = "segment_id_beg"
	varDeltaTime   = "delta_time"
)

// Source implements beam.ElevationSource for one ATL13 ground track.
type Source struct {
	GroupPrefix string

	lat, lon    []float64
	waterHeight []float64
	waterDepth  []float64
	slope       []float64
	cloudFlag   []int8
	snowIce     []int8
	segmentID   []int64
	deltaTime   []int64
}

var _ beam.ElevationSource = (*Source)(nil)

func (s *Source) groupVar(name string) string { return s.GroupPrefix + "/" + name }

// Open implements beam.ElevationSource.
func (s *Source) Open(ctx context.Context, c fetch.Client, timeout time.Duration) ([]float64, []float64, error) {
	vars := []string{
		varLatitude, varLongitude, varWaterHeight, varWaterDepth, varSlope,
		varCloudFlag, varSnowIce, varSegmentID, varDeltaTime,
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
	s.waterHeight = fetch.ToFloat64(handles[s.groupVar(varWaterHeight)])
	s.waterDepth = fetch.ToFloat64(handles[s.groupVar(varWaterDepth)])
	s.slope = fetch.ToFloat64(handles[s.groupVar(varSlope)])
	s.cloudFlag = fetch.ToInt8(handles[s.groupVar(varCloudFlag)])
	s.snowIce = fetch.ToInt8(handles[s.groupVar(varSnowIce)])
	s.segmentID = fetch.ToInt64(handles[s.groupVar(varSegmentID)])
	s.deltaTime = fetch.ToInt64(handles[s.groupVar(varDeltaTime)])

	return s.lat, s.lon, nil
}

// Build implements beam.ElevationSource.
func (s *Source) Build(i int) record.Elevation {
	e := record.Elevation{
		Latitude:           s.lat[i],
		Longitude:          s.lon[i],
		WaterSurfaceHeight: s.waterHeight[i],
	}
	e.Height = e.WaterSurfaceHeight
	if i < len(s.waterDepth) {
		e.WaterDepth = s.waterDepth[i]
	}
	if i < len(s.slope) {
		e.SegmentSlope = s.slope[i]
	}
	if i < len(s.cloudFlag) {
		e.CloudFlag = s.cloudFlag[i]
	}
	if i < len(s.snowIce) {
		e.SnowIce = s.snowIce[i]
	}
	if i < len(s.segmentID) {
		e.SegmentID = s.segmentID[i]
	}
	if i < len(s.deltaTime) {
		e.TimeNs = s.deltaTime[i]
	}
	return e
}
