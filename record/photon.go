package record

// ProcessingFlag is a bitfield capturing per-photon derived state
// (e.g. refraction applied, sensor-depth exceeded) alongside
// classification.
type ProcessingFlag uint32

const (
	FlagSeaSurface ProcessingFlag = 1 << iota
	FlagRefractionCorrected
	FlagSensorDepthExceeded
	FlagBathymetryCandidate
)

// ClassificationCode mirrors the ATL24 photon classification values
// assigned after OceanEyes / downstream classifiers run.
type ClassificationCode uint8

const (
	ClassUnclassified ClassificationCode = iota
	ClassBathymetry
	ClassSeaSurface
	ClassWaterColumn
	ClassOther
)

// Photon is the published unit for ATL03 bathymetry extents, carrying
// every field enumerated in spec §3.
type Photon struct {
	TimeNs            int64 // GPS-epoch time, nanoseconds
	Index             int64 // granule-photon index
	SegmentIndex      int64
	Latitude          float64
	Longitude         float64
	Easting           float64 // UTM
	Northing          float64 // UTM
	AlongTrack        float64
	AcrossTrack       float64
	BackgroundRate    float64
	GeoidUndulation   float64
	OrthometricHeight float64
	DEMHeight         float64
	SigmaH            float64 // aerial
	SigmaAlong        float64
	SigmaAcross       float64
	SolarElevation    float64
	THU               float64
	TVU               float64
	RefAzimuth        float64
	RefElevation      float64
	WindSpeed         float64
	PointingAngle     float64
	NDWI              float64
	Flags             ProcessingFlag
	YAPCWeight        uint8
	MaxSignalConf     int8
	Quality           int8
	Classification    ClassificationCode
}

// SeaSurface reports whether the photon has been relabeled as the
// water surface by OceanEyes.
func (p *Photon) SeaSurface() bool { return p.Flags&FlagSeaSurface != 0 }

// ExtentHeader precedes the inline photon array in a published
// extent.
type ExtentHeader struct {
	ID          ExtentID
	Region      int
	Track       int
	Pair        int
	Spot        int
	RGT         int
	Cycle       int
	UTMZone     int
	SurfaceH    float64
	PhotonCount int
}

// Extent is a header plus its inline photon array. Invariant (§8):
// len(Photons) == Header.PhotonCount.
type Extent struct {
	Header  ExtentHeader
	Photons []Photon
}

// ByteSize reproduces the source's "offsetof(extent, photons) +
// N*sizeof(photon)" invariant for testable-properties purposes: a
// fixed per-extent overhead plus a fixed per-photon stride.
const (
	extentHeaderBytes = 96 // sizeof(ExtentHeader), padded/aligned
	photonBytes       = 176
)

func (e *Extent) ByteSize() int {
	return extentHeaderBytes + len(e.Photons)*photonBytes
}

// NewExtent builds an extent from a finished photon slice, stamping
// the header's PhotonCount to keep the invariant true by
// construction.
func NewExtent(id ExtentID, region, track, pair, spot, rgt, cycle, utmZone int, surfaceH float64, photons []Photon) Extent {
	return Extent{
		Header: ExtentHeader{
			ID:          id,
			Region:      region,
			Track:       track,
			Pair:        pair,
			Spot:        spot,
			RGT:         rgt,
			Cycle:       cycle,
			UTMZone:     utmZone,
			SurfaceH:    surfaceH,
			PhotonCount: len(photons),
		},
		Photons: photons,
	}
}
