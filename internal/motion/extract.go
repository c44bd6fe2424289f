// Package motion derives displayable motion signals from raw tri-axial
// accelerometer samples.
package motion

import (
	"math"
	"sort"

	"github.com/chrissnell/motionsync/internal/constants"
	"github.com/chrissnell/motionsync/internal/syncerr"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DetrendMethod selects how the baseline is removed from a magnitude signal.
type DetrendMethod string

const (
	// MedianSubtract removes the median of the signal. It is the default.
	MedianSubtract DetrendMethod = "median-subtract"

	// GravitySubtract removes standard gravity from every sample.
	GravitySubtract DetrendMethod = "fixed-gravity-subtract"
)

// ParseDetrendMethod maps free text to a method. Anything unrecognized,
// including the empty string, is MedianSubtract.
func ParseDetrendMethod(s string) DetrendMethod {
	if DetrendMethod(s) == GravitySubtract {
		return GravitySubtract
	}
	return MedianSubtract
}

// Magnitude returns the Euclidean norm of each sample.
func Magnitude(samples [][3]float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = math.Sqrt(s[0]*s[0] + s[1]*s[1] + s[2]*s[2])
	}
	return out
}

// Detrend returns a baseline-removed copy of signal. The input is not
// modified.
func Detrend(signal []float64, method DetrendMethod) []float64 {
	out := make([]float64, len(signal))
	copy(out, signal)
	if len(out) == 0 {
		return out
	}

	switch method {
	case GravitySubtract:
		floats.AddConst(-constants.StandardGravity, out)
	default:
		floats.AddConst(-Median(signal), out)
	}
	return out
}

// Median returns the middle value of data, averaging the two middle values
// for even lengths. It returns NaN for empty input.
func Median(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Extractor turns raw samples into a detrended magnitude signal. It holds no
// state besides its configuration, so Extract may be called again whenever
// the start index changes.
type Extractor struct {
	Method DetrendMethod
}

// NewExtractor returns an Extractor for the named method.
func NewExtractor(method string) Extractor {
	return Extractor{Method: ParseDetrendMethod(method)}
}

// Extract computes the detrended magnitude of raw[start:].
func (e Extractor) Extract(raw [][3]float64, start int) ([]float64, error) {
	if start < 0 || start > len(raw) {
		return nil, syncerr.OutOfRange("sample", start, len(raw)+1)
	}
	return Detrend(Magnitude(raw[start:]), e.Method), nil
}

// Stats summarizes a derived signal for numeric readouts.
type Stats struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Describe computes summary statistics. An empty signal yields a zero Stats.
func Describe(signal []float64) Stats {
	if len(signal) == 0 {
		return Stats{}
	}
	mean, std := stat.MeanStdDev(signal, nil)
	if len(signal) == 1 {
		std = 0
	}
	return Stats{
		Count:  len(signal),
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(signal),
		Max:    floats.Max(signal),
	}
}
