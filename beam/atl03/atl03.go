// Package atl03 implements the full bathymetry per-beam worker of
// spec §4.C over ATL03 photon-rate data, including the OceanEyes
// sea-surface/refraction/uncertainty pass (§4.E) and the ATL24
// bathymetry-mask filter.
package atl03

import (
	"context"
	"math"

	"github.com/SlideRuleEarth/sliderule-sub005/beam"
	"github.com/SlideRuleEarth/sliderule-sub005/fetch"
	"github.com/SlideRuleEarth/sliderule-sub005/mask"
	"github.com/SlideRuleEarth/sliderule-sub005/oceaneyes"
	"github.com/SlideRuleEarth/sliderule-sub005/record"
	"github.com/SlideRuleEarth/sliderule-sub005/region"
)

// Variable paths read per-segment and per-photon, relative to the
// beam's group prefix (spec §4.C step 1).
const (
	varSegmentLat       = "geolocation/reference_photon_lat"
	varSegmentLon       = "geolocation/reference_photon_lon"
	varSegmentPhCnt     = "geolocation/segment_ph_cnt"
	varSegmentDeltaTime = "geolocation/delta_time"
	varSegmentDistX     = "geolocation/segment_dist_x"
	varSolarElevation   = "geolocation/solar_elevation"
	varSigmaH           = "geolocation/sigma_h"
	varSigmaAlong       = "geolocation/sigma_along"
	varSigmaAcross      = "geolocation/sigma_across"
	varRefAzimuth       = "geolocation/ref_azimuth"
	varRefElevation     = "geolocation/ref_elev"
	varGeoid            = "geophys_corr/geoid"
	varDEMHeight        = "geophys_corr/dem_h"

	varDistPhAlong = "heights/dist_ph_along"
	varDistPhAcross = "heights/dist_ph_across"
	varHeightPh    = "heights/h_ph"
	varSignalConf  = "heights/signal_conf_ph"
	varQualityPh   = "heights/quality_ph"
	varWeightPh    = "heights/weight_ph"
	varLatPh       = "heights/lat_ph"
	varLonPh       = "heights/lon_ph"
	varDeltaTimePh = "heights/delta_time"

	varBckgrdDeltaTime = "bckgrd_atlas/delta_time"
	varBckgrdRate      = "bckgrd_atlas/bckgrd_rate"

	varMetU10m = "met_u10m"
	varMetV10m = "met_v10m"
)

// Resources bundles the process-start auxiliary resources spec §3
// names for the bathymetry pipeline: the bathymetry mask and the
// OceanEyes Kd/coefficient tables.
type Resources struct {
	BathyMask *mask.Raster
	KdGrid    oceaneyes.KdGrid
	Tables    oceaneyes.Tables
	NDWI      mask.NDWISampler
	Projector beam.Projector
}

// Worker implements beam.Worker for one ATL03 bathymetry beam.
type Worker struct {
	Ctx       *beam.Context
	Resources Resources
	SDPVersion int // weight_ph present only when >= 6, per spec §4.C step 1
}

var _ beam.Worker = (*Worker)(nil)

func (w *Worker) groupVar(name string) string {
	return w.Ctx.Descriptor.GroupPrefix + "/" + name
}

// Run executes the full per-iteration algorithm of spec §4.C over
// this beam.
func (w *Worker) Run(ctx context.Context) error {
	defer w.Ctx.Finalize()

	client := w.Ctx.Client
	timeout := w.Ctx.Params.Timeouts.Read

	segVars := []string{
		varSegmentLat, varSegmentLon, varSegmentPhCnt, varSegmentDeltaTime,
		varSegmentDistX, varSolarElevation, varSigmaH, varSigmaAlong,
		varSigmaAcross, varRefAzimuth, varRefElevation, varGeoid, varDEMHeight,
	}
	for i, v := range segVars {
		segVars[i] = w.groupVar(v)
	}
	globalVars := []string{varBckgrdDeltaTime, varBckgrdRate, varMetU10m, varMetV10m}

	segHandles, err := fetch.OpenAll(ctx, client, segVars, 0, fetch.AllRows)
	if err != nil {
		return err
	}
	bgHandles, err := fetch.OpenAll(ctx, client, globalVars, 0, fetch.AllRows)
	if err != nil {
		return err
	}
	if err := fetch.JoinAll(ctx, client, segHandles, timeout); err != nil {
		w.Ctx.Counters.Dropped++
		return err
	}
	if err := fetch.JoinAll(ctx, client, bgHandles, timeout); err != nil {
		w.Ctx.Counters.Dropped++
		return err
	}

	bckgrdDeltaTime := fetch.ToFloat64(bgHandles[varBckgrdDeltaTime])
	bckgrdRate := fetch.ToFloat64(bgHandles[varBckgrdRate])
	metU10m := fetch.ToFloat64(bgHandles[varMetU10m])
	metV10m := fetch.ToFloat64(bgHandles[varMetV10m])

	lat := fetch.ToFloat64(segHandles[w.groupVar(varSegmentLat)])
	lon := fetch.ToFloat64(segHandles[w.groupVar(varSegmentLon)])
	segPhCnt := fetch.ToInt64(segHandles[w.groupVar(varSegmentPhCnt)])

	win, err := region.Narrow(region.Input{
		Lat: lat, Lon: lon, SegPhCnt: segPhCnt, Policy: region.ZeroSegmentAccumulate,
	}, w.Ctx.Selector)
	if err != nil {
		if err == region.ErrEmptySubset {
			return nil
		}
		return err
	}

	for _, h := range segHandles {
		h.Trim(win.FirstSegment)
	}
	segPhCntWindow := segPhCnt[win.FirstSegment:]

	photonVars := []string{
		varDistPhAlong, varDistPhAcross, varHeightPh, varSignalConf,
		varQualityPh, varLatPh, varLonPh, varDeltaTimePh,
	}
	if w.SDPVersion >= 6 {
		photonVars = append(photonVars, varWeightPh)
	}
	for i, v := range photonVars {
		photonVars[i] = w.groupVar(v)
	}
	photonHandles, err := fetch.OpenAll(ctx, client, photonVars, win.FirstPhoton, win.PhotonCount)
	if err != nil {
		return err
	}
	if err := fetch.JoinAll(ctx, client, photonHandles, timeout); err != nil {
		w.Ctx.Counters.Dropped++
		return err
	}

	distAlong := fetch.ToFloat64(photonHandles[w.groupVar(varDistPhAlong)])
	distAcross := fetch.ToFloat64(photonHandles[w.groupVar(varDistPhAcross)])
	heightPh := fetch.ToFloat64(photonHandles[w.groupVar(varHeightPh)])
	latPh := fetch.ToFloat64(photonHandles[w.groupVar(varLatPh)])
	lonPh := fetch.ToFloat64(photonHandles[w.groupVar(varLonPh)])
	signalConfPh := fetch.ToInt8(photonHandles[w.groupVar(varSignalConf)])
	qualityPh := fetch.ToInt8(photonHandles[w.groupVar(varQualityPh)])
	deltaTimePh := fetch.ToFloat64(photonHandles[w.groupVar(varDeltaTimePh)])
	var weightPh []int8
	if w.SDPVersion >= 6 {
		weightPh = fetch.ToInt8(photonHandles[w.groupVar(varWeightPh)])
	}

	sigmaH := fetch.ToFloat64(segHandles[w.groupVar(varSigmaH)])
	sigmaAlong := fetch.ToFloat64(segHandles[w.groupVar(varSigmaAlong)])
	sigmaAcross := fetch.ToFloat64(segHandles[w.groupVar(varSigmaAcross)])
	refAz := fetch.ToFloat64(segHandles[w.groupVar(varRefAzimuth)])
	refElev := fetch.ToFloat64(segHandles[w.groupVar(varRefElevation)])
	geoid := fetch.ToFloat64(segHandles[w.groupVar(varGeoid)])
	demH := fetch.ToFloat64(segHandles[w.groupVar(varDEMHeight)])
	solarElev := fetch.ToFloat64(segHandles[w.groupVar(varSolarElevation)])
	segDeltaTime := fetch.ToFloat64(segHandles[w.groupVar(varSegmentDeltaTime)])

	bgIndex := 0
	windIndex := 0

	var zone int
	var zoneSet bool
	var extentPhotons []record.Photon
	var idCounter *record.IDCounter

	boundary := NewExtentBoundary(w.Ctx.Params)
	boundarySet := false

	currentSegment := 0
	photonInSegment := int64(0)

	for i := 0; i < len(heightPh); i++ {
		if !w.Ctx.Coordinator.Active() {
			break
		}

		photonInSegment++
		for currentSegment < len(segPhCntWindow)-1 && photonInSegment > segPhCntWindow[currentSegment] {
			currentSegment++
			photonInSegment = 1
		}

		w.Ctx.Counters.Read++

		if w.Resources.BathyMask != nil && !w.Resources.BathyMask.Passes(lonPh[i], latPh[i]) {
			w.Ctx.Counters.Filtered++
			continue
		}
		if win.InclusionMask != nil && currentSegment < len(win.InclusionMask) && !win.InclusionMask[currentSegment] {
			w.Ctx.Counters.Filtered++
			continue
		}

		conf := int8(0)
		if i < len(signalConfPh) {
			conf = signalConfPh[i]
		}
		quality := int8(0)
		if i < len(qualityPh) {
			quality = qualityPh[i]
		}
		yapcWeight := uint8(0)
		if i < len(weightPh) {
			yapcWeight = uint8(weightPh[i])
		}

		in := beam.PhotonInput{
			SignalConf: [5]int8{conf, conf, conf, conf, conf},
			Quality:    quality,
			YAPCWeight: yapcWeight,
			DEMHeight:  demH[minInt(currentSegment, len(demH)-1)],
			OrthoH:     heightPh[i] - geoid[minInt(currentSegment, len(geoid)-1)],
		}
		result, ferr := beam.ApplyFixedFilters(in, w.Ctx.Params)
		if ferr != nil {
			return ferr
		}
		if result == beam.Drop {
			w.Ctx.Counters.Filtered++
			continue
		}

		if !zoneSet {
			zone = w.Resources.Projector.Zone(latPh[i], lonPh[i])
			zoneSet = true
			idCounter = record.NewIDCounter(record.ExtentIDFields{
				RGT: w.Ctx.Identity.RGT, Cycle: w.Ctx.Identity.Cycle,
				Region: w.Ctx.Identity.Region, Track: int(w.Ctx.Descriptor.Track),
				Pair: int(w.Ctx.Descriptor.Pair),
			})
		}
		easting, northing := w.Resources.Projector.Project(zone, latPh[i], lonPh[i])

		segT := 0.0
		if currentSegment < len(segDeltaTime) {
			segT = segDeltaTime[currentSegment]
		}
		for windIndex < len(metU10m)-1 && float64(windIndex) < segT {
			windIndex++
		}
		windSpeed := 0.0
		if windIndex < len(metU10m) && windIndex < len(metV10m) {
			windSpeed = math.Sqrt(metU10m[windIndex]*metU10m[windIndex] + metV10m[windIndex]*metV10m[windIndex])
		}

		backgroundRate := interpolateBackgroundRate(bckgrdDeltaTime, bckgrdRate, segT, &bgIndex)

		pointingAngle := 90 - (180/math.Pi)*refElev[minInt(currentSegment, len(refElev)-1)]

		ndwi := 0.0
		if w.Resources.NDWI != nil {
			v, err := w.Resources.NDWI.Sample(lonPh[i], latPh[i], 0)
			if err == nil {
				ndwi = v
			}
		}

		p := record.Photon{
			TimeNs:          int64(deltaTimePh[i] * 1e9),
			Index:           int64(i),
			SegmentIndex:    int64(currentSegment),
			Latitude:        latPh[i],
			Longitude:       lonPh[i],
			Easting:         easting,
			Northing:        northing,
			AlongTrack:      distAlong[i],
			AcrossTrack:     distAcross[i],
			BackgroundRate:  backgroundRate,
			GeoidUndulation: geoid[minInt(currentSegment, len(geoid)-1)],
			OrthometricHeight: in.OrthoH,
			DEMHeight:       in.DEMHeight,
			SigmaH:          sigmaH[minInt(currentSegment, len(sigmaH)-1)],
			SigmaAlong:      sigmaAlong[minInt(currentSegment, len(sigmaAlong)-1)],
			SigmaAcross:     sigmaAcross[minInt(currentSegment, len(sigmaAcross)-1)],
			SolarElevation:  oceaneyes.NormalizeSolarElevationDeg(solarElev[minInt(currentSegment, len(solarElev)-1)]),
			RefAzimuth:      refAz[minInt(currentSegment, len(refAz)-1)],
			RefElevation:    refElev[minInt(currentSegment, len(refElev)-1)],
			WindSpeed:       windSpeed,
			PointingAngle:   pointingAngle,
			NDWI:            ndwi,
		}

		if !boundarySet {
			boundary.Reset(distAlong[i], currentSegment)
			boundarySet = true
		}
		extentPhotons = append(extentPhotons, p)

		last := i == len(heightPh)-1
		if boundary.Done(len(extentPhotons), distAlong[i], currentSegment) || last {
			surf := w.runOceanEyes(extentPhotons, demH[minInt(currentSegment, len(demH)-1)], zone)
			id := idCounter.Next(record.KindPhoton)
			ext := record.NewExtent(id, w.Ctx.Identity.Region, int(w.Ctx.Descriptor.Track),
				int(w.Ctx.Descriptor.Pair), w.Ctx.Descriptor.Spot, w.Ctx.Identity.RGT,
				w.Ctx.Identity.Cycle, zone, surf.HeightM, extentPhotons)

			if perr := w.Ctx.PostExtent(ctx, &ext, w.Ctx.Params.Timeouts.Request); perr != nil {
				return perr
			}
			extentPhotons = nil
			boundarySet = false
		}
	}

	return nil
}

// runOceanEyes invokes spec §4.E over one assembled extent's photons
// in place: it locates the sea surface, relabels sea-surface photons,
// applies refraction to sub-surface photons, and attaches uncertainty.
// It returns the located Surface so the caller can stamp surface_h
// into the extent header; a zero Surface means none was found.
func (w *Worker) runOceanEyes(photons []record.Photon, demH float64, zone int) oceaneyes.Surface {
	cands := make([]oceaneyes.Candidate, len(photons))
	var bgSum float64
	for i, p := range photons {
		cands[i] = oceaneyes.Candidate{OrthoH: p.OrthometricHeight, TimeS: float64(p.TimeNs) * 1e-9}
		bgSum += p.BackgroundRate
	}
	avgBackgroundRate := 0.0
	if len(photons) > 0 {
		avgBackgroundRate = bgSum / float64(len(photons))
	}

	surf, err := oceaneyes.FindSurface(cands, demH, avgBackgroundRate, w.Ctx.Params.OceanEyes)
	if err != nil {
		return oceaneyes.Surface{}
	}

	for i := range photons {
		p := &photons[i]
		if surf.IsSeaSurface(p.OrthometricHeight, w.Ctx.Params.OceanEyes.SurfaceWidth) {
			p.Flags |= record.FlagSeaSurface
			p.Classification = record.ClassSeaSurface
			continue
		}

		depth := oceaneyes.Depth(surf.HeightM, p.OrthometricHeight)
		if depth <= 0 {
			continue
		}

		refr := oceaneyes.Refract(oceaneyes.RefractionInput{
			SurfaceH: surf.HeightM,
			OrthoH:   p.OrthometricHeight,
			RefElev:  p.RefElevation,
			RefAz:    p.RefAzimuth,
			Easting:  p.Easting,
			Northing: p.Northing,
		}, w.Ctx.Params.OceanEyes.RIAir, w.Ctx.Params.OceanEyes.RIWater)

		if refr.Applied {
			p.OrthometricHeight = refr.OrthoH
			p.Easting = refr.Easting
			p.Northing = refr.Northing
			p.Flags |= record.FlagRefractionCorrected
			lat, lon := w.Resources.Projector.Unproject(zone, refr.Easting, refr.Northing)
			p.Latitude, p.Longitude = lat, lon
		}

		kd := w.Resources.KdGrid.Sample(p.Latitude, p.Longitude)
		u := oceaneyes.Evaluate(p.SigmaAcross, p.SigmaAlong, p.SigmaH, depth,
			p.PointingAngle, p.WindSpeed, kd, w.Resources.Tables)

		p.THU = u.THU
		p.TVU = u.TVU
		if u.SensorDepthExceeded {
			p.Flags |= record.FlagSensorDepthExceeded
		}
		p.Flags |= record.FlagBathymetryCandidate
	}

	return surf
}

// interpolateBackgroundRate implements spec §4.C step 8: linearly
// interpolate bckgrd_rate in bckgrd_delta_time, advancing idx
// monotonically as segT increases so repeated calls across an
// along-track walk never re-scan from the start.
func interpolateBackgroundRate(deltaTime, rate []float64, segT float64, idx *int) float64 {
	if len(deltaTime) == 0 || len(rate) == 0 {
		return 0
	}
	for *idx < len(deltaTime)-2 && deltaTime[*idx+1] < segT {
		*idx++
	}
	i := *idx
	if i >= len(deltaTime)-1 || i >= len(rate)-1 {
		return rate[len(rate)-1]
	}
	t0, t1 := deltaTime[i], deltaTime[i+1]
	if t1 == t0 {
		return rate[i]
	}
	frac := (segT - t0) / (t1 - t0)
	return rate[i] + frac*(rate[i+1]-rate[i])
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

