package motion

import (
	"errors"
	"math"
	"testing"

	"github.com/chrissnell/motionsync/internal/syncerr"
	"gonum.org/v1/gonum/floats"
)

func TestMagnitude(t *testing.T) {
	got := Magnitude([][3]float64{{3.0, 4.0, 0.0}})
	if len(got) != 1 || got[0] != 5.0 {
		t.Fatalf("Magnitude(3,4,0) = %v, expected [5]", got)
	}

	got = Magnitude([][3]float64{{0, 0, 9.80665}, {-1, -2, 2}, {0, 0, 0}})
	expected := []float64{9.80665, 3, 0}
	if !floats.EqualApprox(got, expected, 1e-12) {
		t.Errorf("Magnitude = %v, expected %v", got, expected)
	}
}

func TestDetrendMedianIsZero(t *testing.T) {
	tests := []struct {
		name   string
		signal []float64
	}{
		{"single", []float64{9.7}},
		{"odd", []float64{9.9, 10.4, 9.6, 12.0, 9.8}},
		{"even", []float64{1, 2, 3, 4}},
		{"constant", []float64{9.81, 9.81, 9.81}},
		{"negative", []float64{-3.5, 0.25, -1, 7.75, 2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Detrend(tt.signal, MedianSubtract)
			if len(out) != len(tt.signal) {
				t.Fatalf("length = %d, expected %d", len(out), len(tt.signal))
			}
			if m := Median(out); math.Abs(m) > 1e-9 {
				t.Errorf("median after detrend = %v, expected 0", m)
			}
		})
	}
}

func TestDetrendGravity(t *testing.T) {
	out := Detrend([]float64{9.8, 9.8, 9.8}, GravitySubtract)
	for i, v := range out {
		if math.Abs(v-(-0.00665)) > 1e-9 {
			t.Errorf("out[%d] = %v, expected -0.00665", i, v)
		}
	}
}

func TestDetrendDoesNotMutateInput(t *testing.T) {
	in := []float64{1, 5, 3}
	Detrend(in, MedianSubtract)
	if !floats.Equal(in, []float64{1, 5, 3}) {
		t.Errorf("input modified: %v", in)
	}
}

func TestUnknownMethodFallsBackToMedian(t *testing.T) {
	signal := []float64{10.2, 9.1, 9.9, 11.4}
	expected := Detrend(signal, MedianSubtract)

	for _, method := range []string{"", "bandpass", "MEDIAN-SUBTRACT"} {
		got := Detrend(signal, DetrendMethod(method))
		if !floats.Equal(got, expected) {
			t.Errorf("method %q = %v, expected %v", method, got, expected)
		}
		if ParseDetrendMethod(method) != MedianSubtract {
			t.Errorf("ParseDetrendMethod(%q) did not fall back", method)
		}
	}
}

func TestExtract(t *testing.T) {
	raw := [][3]float64{{0, 0, 9.8}, {3, 4, 0}, {0, 6, 8}, {0, 0, 1}}
	e := NewExtractor("median-subtract")

	got, err := e.Extract(raw, 1)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	// magnitudes 5, 10, 1 -> median 5
	expected := []float64{0, 5, -4}
	if !floats.EqualApprox(got, expected, 1e-12) {
		t.Errorf("Extract = %v, expected %v", got, expected)
	}

	again, _ := e.Extract(raw, 1)
	if !floats.Equal(got, again) {
		t.Errorf("second Extract differs: %v vs %v", got, again)
	}

	all, _ := e.Extract(raw, len(raw))
	if len(all) != 0 {
		t.Errorf("Extract at end length = %d, expected 0", len(all))
	}
}

func TestExtractOutOfRange(t *testing.T) {
	e := NewExtractor("")
	for _, start := range []int{-1, 5} {
		_, err := e.Extract(make([][3]float64, 4), start)
		var oor *syncerr.OutOfRangeError
		if !errors.As(err, &oor) {
			t.Errorf("start %d: expected OutOfRangeError, got %v", start, err)
		}
	}
}

func TestDescribe(t *testing.T) {
	s := Describe([]float64{1, 2, 3, 4})
	if s.Count != 4 || s.Min != 1 || s.Max != 4 || math.Abs(s.Mean-2.5) > 1e-12 {
		t.Errorf("Describe = %+v", s)
	}
	if (Describe(nil) != Stats{}) {
		t.Errorf("Describe(nil) should be zero")
	}
	if one := Describe([]float64{7}); one.StdDev != 0 || one.Mean != 7 {
		t.Errorf("Describe single = %+v", one)
	}
}
