// Package oceaneyes implements the sea-surface finder, Snell
// refraction correction, and subaqueous uncertainty lookup described
// in spec §4.E. The histogram mean/variance use gonum's
// stat.MeanVariance, mirroring the statistical helpers the rest of the
// pack reaches for (banshee-data-velocity.report's gonum/stat usage);
// histogram binning and Gaussian smoothing are hand-written loops.
package oceaneyes

import (
	"errors"
	"math"

	"github.com/SlideRuleEarth/sliderule-sub005/config"
	"gonum.org/v1/gonum/stat"
)

// ErrNoCandidates is the info-level condition from spec §4.E step 1:
// no photon survives the |h - dem_h| <= dem_buffer filter.
var ErrNoCandidates = errors.New("oceaneyes: no sea-surface candidates within dem buffer")

// ErrRangeOutOfBounds covers spec §4.E step 2's range validation.
var ErrRangeOutOfBounds = errors.New("oceaneyes: height range out of bounds")

// ErrTooManyBins covers spec §4.E step 3's bin-count validation.
var ErrTooManyBins = errors.New("oceaneyes: bin count exceeds max_bins")

// Candidate is one photon's height and time, trimmed to what the
// sea-surface finder needs.
type Candidate struct {
	OrthoH float64
	TimeS  float64
}

// Surface is the sea-surface finder's result for one extent.
type Surface struct {
	HeightM    float64
	StdDevM    float64 // peak_stddev, for the |ortho_h - surface_h| relabel test
}

// Histogram is a fixed-resolution count histogram over [minH, maxH].
type Histogram struct {
	BinSize float64
	MinH    float64
	Counts  []float64
}

func buildHistogram(cands []Candidate, p config.OceanEyesParams) (Histogram, float64, float64, error) {
	minH, maxH := cands[0].OrthoH, cands[0].OrthoH
	minT, maxT := cands[0].TimeS, cands[0].TimeS
	for _, c := range cands {
		if c.OrthoH < minH {
			minH = c.OrthoH
		}
		if c.OrthoH > maxH {
			maxH = c.OrthoH
		}
		if c.TimeS < minT {
			minT = c.TimeS
		}
		if c.TimeS > maxT {
			maxT = c.TimeS
		}
	}

	rng := maxH - minH
	if rng <= 0 || rng > p.MaxRange {
		return Histogram{}, 0, 0, ErrRangeOutOfBounds
	}

	numBins := int(math.Ceil(rng/p.BinSize)) + 1
	if numBins > p.MaxBins {
		return Histogram{}, 0, 0, ErrTooManyBins
	}

	counts := make([]float64, numBins)
	for _, c := range cands {
		bin := int((c.OrthoH - minH) / p.BinSize)
		if bin < 0 {
			bin = 0
		}
		if bin >= numBins {
			bin = numBins - 1
		}
		counts[bin]++
	}

	return Histogram{BinSize: p.BinSize, MinH: minH, Counts: counts}, minT, maxT, nil
}

// noiseStddev implements spec §4.E step 4: either the Poisson model
// driven by shot rate, or the histogram's own variance via
// gonum/stat.
func noiseStddev(h Histogram, minT, maxT, avgBackgroundRate float64, p config.OceanEyesParams) float64 {
	if p.ModelAsPoisson {
		binT := p.BinSize * 2e-8 / 3
		numShots := math.Round((maxT - minT) / 1e-4)
		binPE := binT * numShots * avgBackgroundRate
		return math.Sqrt(binPE)
	}
	_, variance := stat.MeanVariance(h.Counts, nil)
	return math.Sqrt(variance)
}

// smoothGaussian applies spec §4.E step 5's symmetric, energy-
// preserving Gaussian smoothing kernel.
func smoothGaussian(counts []float64, binSize, stddev float64) []float64 {
	if stddev <= 0 {
		out := make([]float64, len(counts))
		copy(out, counts)
		return out
	}

	halfWidth := roundUpToOdd(6*stddev/binSize) / 2
	kernel := make([]float64, 2*halfWidth+1)
	sum := 0.0
	for i := range kernel {
		x := float64(i - halfWidth)
		kernel[i] = math.Exp(-0.5 * (x / stddev) * (x / stddev))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	out := make([]float64, len(counts))
	for i := range counts {
		var acc, wsum float64
		for k := -halfWidth; k <= halfWidth; k++ {
			j := i + k
			if j < 0 || j >= len(counts) {
				continue
			}
			w := kernel[k+halfWidth]
			acc += counts[j] * w
			wsum += w
		}
		if wsum > 0 {
			out[i] = acc / wsum
		}
	}
	return out
}

func roundUpToOdd(x float64) int {
	n := int(math.Ceil(x))
	if n%2 == 0 {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}

// findPeaks implements spec §4.E step 6: locate the highest peak, and
// the next-highest peak separated by at least minPeakSeparation bins,
// promoting whichever is higher in elevation when the second peak is
// at least highestPeakRatio of the first.
func findPeaks(smoothed []float64, binSize float64, p config.OceanEyesParams) (peakBin int, ok bool) {
	if len(smoothed) == 0 {
		return 0, false
	}

	first := argmax(smoothed)
	minSep := int(math.Round(p.MinPeakSeparation / binSize))

	second := -1
	secondVal := -1.0
	for i, v := range smoothed {
		if abs(i-first) < minSep {
			continue
		}
		if v > secondVal {
			secondVal = v
			second = i
		}
	}

	peak := first
	if second >= 0 && smoothed[first] > 0 && secondVal >= p.HighestPeakRatio*smoothed[first] {
		if second > peak {
			peak = second
		}
	}
	return peak, true
}

func argmax(xs []float64) int {
	best, bestV := 0, xs[0]
	for i, v := range xs {
		if v > bestV {
			best, bestV = i, v
		}
	}
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// peakWidthAt40Percent implements spec §4.E step 8: walk outward from
// peakBin until the smoothed histogram drops to 40% of (peak -
// background) above background, on each side.
func peakWidthAt40Percent(smoothed []float64, peakBin int, background float64) float64 {
	peakVal := smoothed[peakBin]
	threshold := background + 0.4*(peakVal-background)

	left := peakBin
	for left > 0 && smoothed[left] > threshold {
		left--
	}
	right := peakBin
	for right < len(smoothed)-1 && smoothed[right] > threshold {
		right++
	}
	return float64(right - left)
}

// FindSurface runs the full sea-surface finder of spec §4.E steps 1-9
// over one extent's candidate photons.
func FindSurface(photons []Candidate, demH, avgBackgroundRate float64, p config.OceanEyesParams) (Surface, error) {
	var cands []Candidate
	for _, c := range photons {
		if math.Abs(c.OrthoH-demH) <= p.DEMBuffer {
			cands = append(cands, c)
		}
	}
	if len(cands) == 0 {
		return Surface{}, ErrNoCandidates
	}

	hist, minT, maxT, err := buildHistogram(cands, p)
	if err != nil {
		return Surface{}, err
	}

	stddev := noiseStddev(hist, minT, maxT, avgBackgroundRate, p)
	smoothed := smoothGaussian(hist.Counts, hist.BinSize, stddev)

	background, _ := stat.MeanVariance(smoothed, nil)

	peakBin, ok := findPeaks(smoothed, hist.BinSize, p)
	if !ok {
		return Surface{}, ErrNoCandidates
	}

	if smoothed[peakBin] < background+p.SignalThreshold*stddev {
		return Surface{}, ErrNoCandidates
	}

	width := peakWidthAt40Percent(smoothed, peakBin, background)
	peakStddev := (width * hist.BinSize) / 2.35

	surfaceH := hist.MinH + (float64(peakBin)+0.5)*hist.BinSize

	return Surface{HeightM: surfaceH, StdDevM: peakStddev}, nil
}

// IsSeaSurface implements spec §4.E step 9's relabeling test.
func (s Surface) IsSeaSurface(orthoH float64, surfaceWidth float64) bool {
	return math.Abs(orthoH-s.HeightM) <= surfaceWidth*s.StdDevM
}
