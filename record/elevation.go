package record

// Elevation is the published unit for the non-ATL03 readers
// (ATL06/13/24, GEDI), one per footprint/segment. Missions that don't
// populate a given field simply leave it at its zero value; this
// mirrors spec §3's "other missions define analogous but smaller
// records".
type Elevation struct {
	ID             ExtentID
	TimeNs         int64
	SegmentID      int64
	Latitude       float64
	Longitude      float64
	Height         float64 // h_li / ht_ortho / elevation, mission-dependent
	HeightSigma    float64
	QualitySummary int32

	// ATL06 fit-statistics passthrough (supplemented feature, see
	// SPEC_FULL.md).
	SigmaGeoH    float64
	NumFitPhotons int32

	// ATL13 fields.
	WaterSurfaceHeight float64
	WaterDepth         float64
	SegmentSlope       float64
	CloudFlag          int8
	SnowIce            int8

	// GEDI fields (supplemented: degrade/quality/sensitivity).
	DegradeFlag    int8
	L2QualityFlag  int8
	Sensitivity    float64
	BeamIsPower    bool
}

// ElevationExtent groups a run of elevation records under one extent
// header, analogous to Extent for ATL03.
type ElevationExtent struct {
	Header     ExtentHeader
	Elevations []Elevation
}
