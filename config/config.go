// Package config holds the enumerated §6 configuration surface as a
// flat Parameters struct. cmd/subsetter uses DefaultParameters as is;
// no command-line flag sets a Parameters field.
package config

import "time"

// SurfaceType selects which confidence column drives atl03_cnf
// filtering.
type SurfaceType int

const (
	SurfaceDynamic SurfaceType = -1
	SurfaceLand    SurfaceType = 0
	SurfaceOcean   SurfaceType = 1
	SurfaceSeaIce  SurfaceType = 2
	SurfaceLandIce SurfaceType = 3
	SurfaceInland  SurfaceType = 4
)

// Confidence levels indexing atl03_cnf, per spec §4.C / §6.
const (
	ConfPossibleTEP = -2
	ConfNotConsidered = -1
	ConfBackground  = 0
	ConfLow         = 1
	ConfMedium      = 2
	ConfHigh        = 3
	ConfSurfaceHigh = 4
)

// Quality levels for quality_ph.
const (
	QualityNominal = iota
	QualityAfterglow
	QualityImpulseResponse
	QualityPossibleTEP
)

// YAPCVersion selects the YAPC scoring variant.
type YAPCVersion int

const (
	YAPCv0 YAPCVersion = iota
	YAPCv1
	YAPCv2
	YAPCv3
)

// YAPCParams configures the YAPC classifier interface stub (the
// classifier body itself is out of scope per spec §1).
type YAPCParams struct {
	Score   float64
	Version YAPCVersion
	KNN     int
	MinKNN  int
	WinH    float64
	WinX    float64
}

// Geolocation selects how PhoREAL computes a bin's representative
// location.
type Geolocation int

const (
	GeolocMean Geolocation = iota
	GeolocMedian
	GeolocCenter
)

// PhoREALParams configures the PhoREAL interface stub.
type PhoREALParams struct {
	BinSize         float64
	Geoloc          Geolocation
	UseAbsH         bool
	SendWaveform    bool
	AboveClassifier bool
}

// ExtentBoundaryMode selects whether extents are bounded by photon
// count (ph_in_extent) or by along-track distance (supplemented
// feature from original_source/, see SPEC_FULL.md).
type ExtentBoundaryMode int

const (
	ExtentByPhotonCount ExtentBoundaryMode = iota
	ExtentByDistance
)

// OceanEyesParams configures the sea-surface finder, refraction, and
// uncertainty engine (spec §4.E).
type OceanEyesParams struct {
	RIAir              float64
	RIWater            float64
	DEMBuffer          float64
	BinSize            float64
	MaxRange           float64
	MaxBins            int
	SignalThreshold    float64
	MinPeakSeparation  float64
	HighestPeakRatio   float64
	SurfaceWidth       float64
	ModelAsPoisson     bool
}

// DefaultOceanEyesParams reproduces the defaults enumerated in spec
// §4.E.
func DefaultOceanEyesParams() OceanEyesParams {
	return OceanEyesParams{
		RIAir:             1.00029,
		RIWater:           1.34116,
		DEMBuffer:         50,
		BinSize:           0.5,
		MaxRange:          1000,
		MaxBins:           10000,
		SignalThreshold:   3.0,
		MinPeakSeparation: 0.5,
		HighestPeakRatio:  0.1,
		SurfaceWidth:      3.0,
		ModelAsPoisson:    true,
	}
}

// Timeouts, in seconds per spec §6, expressed as time.Duration.
type Timeouts struct {
	Request time.Duration
	Node    time.Duration
	Read    time.Duration
}

// DefaultTimeouts matches typical SlideRule node defaults.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Request: 600 * time.Second,
		Node:    600 * time.Second,
		Read:    60 * time.Second,
	}
}

// Parameters is the full enumerated configuration surface of spec §6.
type Parameters struct {
	SurfaceType SurfaceType
	ATL03Conf   [7]bool
	QualityPh   [4]bool
	ATL08Class  [5]bool

	BeamsICESat2 [6]bool
	BeamsGEDI    [8]bool
	TrackFilter  map[int]bool

	YAPC     YAPCParams
	PhoREAL  PhoREALParams
	OceanEyes OceanEyesParams

	ExtentBoundary    ExtentBoundaryMode
	ExtentLength      float64 // meters or segments, per DistInSeg
	ExtentStep        float64
	DistInSeg         bool
	PhInExtent        int
	MinPhotonCount    int
	AlongTrackSpread  float64
	MaxIterations     int
	MinWindow         float64
	MaxRobustDispersion float64

	YAPCScoreThreshold float64
	MaxDEMDelta        float64

	Timeouts Timeouts
}

// DefaultParameters mirrors the teacher's pattern of a single
// sensible zero-config starting point (cmd/main.go builds its
// *cli.Command flags against similarly flat defaults).
func DefaultParameters() Parameters {
	return Parameters{
		SurfaceType:    SurfaceDynamic,
		ATL03Conf:      [7]bool{false, false, false, false, false, true, true},
		QualityPh:      [4]bool{true, false, false, false},
		BeamsICESat2:   [6]bool{true, true, true, true, true, true},
		BeamsGEDI:      [8]bool{true, true, true, true, true, true, true, true},
		OceanEyes:      DefaultOceanEyesParams(),
		ExtentBoundary: ExtentByPhotonCount,
		ExtentLength:   40.0,
		ExtentStep:     20.0,
		PhInExtent:     500,
		MaxDEMDelta:    50,
		Timeouts:       DefaultTimeouts(),
	}
}
