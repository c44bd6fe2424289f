// Package capture opens wearable sensor captures and normalizes their
// on-disk layouts into labelled tri-axial sample streams that share one
// timestamp sequence.
package capture

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/chrissnell/motionsync/internal/syncerr"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// Reader opens capture files.
type Reader struct {
	rightMarkers []string
	logger       *zap.SugaredLogger
}

// NewReader creates a Reader that recognizes the given right-side markers in
// legacy captures.
func NewReader(rightMarkers []string, logger *zap.SugaredLogger) *Reader {
	return &Reader{
		rightMarkers: append([]string(nil), rightMarkers...),
		logger:       logger,
	}
}

// Session is an opened, immutable capture. Accessors return copies.
type Session struct {
	ID         uuid.UUID
	Path       string
	Container  ContainerKind
	Convention Convention

	labels     []string
	timestamps []int64
	raw        map[string][][3]float64
}

// Open reads path and resolves its layout. rightLabel, when not empty, is an
// extra right-side marker supplied for this capture only.
func (r *Reader) Open(ctx context.Context, path, rightLabel string) (*Session, error) {
	doc, kind, err := ReadDocument(ctx, path)
	if err != nil {
		return nil, err
	}

	markers := r.rightMarkers
	if rightLabel != "" {
		markers = append([]string{rightLabel}, markers...)
	}

	lay := detectLayout(doc, markers)
	labels, groups, err := lay.resolve(doc)
	if err != nil {
		return nil, syncerr.FileFormat(path, fmt.Sprintf("%s layout", lay.convention()), err)
	}

	s := &Session{
		ID:         uuid.New(),
		Path:       path,
		Container:  kind,
		Convention: lay.convention(),
		labels:     labels,
		timestamps: groups[0].Time,
		raw:        make(map[string][][3]float64, len(labels)),
	}

	if err := s.validate(groups); err != nil {
		return nil, syncerr.FileFormat(path, "invalid sensor data", err)
	}
	for i, label := range labels {
		s.raw[label] = groups[i].Accelerometer
	}

	r.logger.Infow("opened sensor capture",
		"session", s.ID,
		"path", path,
		"container", kind,
		"convention", s.Convention,
		"labels", labels,
		"samples", len(s.timestamps))

	return s, nil
}

func (s *Session) validate(groups []*Group) error {
	if len(s.timestamps) == 0 {
		return fmt.Errorf("label %q has no time array", s.labels[0])
	}
	for i := 1; i < len(s.timestamps); i++ {
		if s.timestamps[i] < s.timestamps[i-1] {
			return fmt.Errorf("timestamps decrease at sample %d", i)
		}
	}
	for i, g := range groups {
		label := s.labels[i]
		if len(g.Accelerometer) == 0 {
			return fmt.Errorf("label %q has no accelerometer array", label)
		}
		if len(g.Time) != len(g.Accelerometer) {
			return fmt.Errorf("label %q has %d timestamps but %d samples", label, len(g.Time), len(g.Accelerometer))
		}
		if len(g.Accelerometer) != len(s.timestamps) {
			return fmt.Errorf("label %q has %d samples, expected %d", label, len(g.Accelerometer), len(s.timestamps))
		}
	}
	return nil
}

// Labels returns the sensor labels in canonical order.
func (s *Session) Labels() []string {
	return append([]string(nil), s.labels...)
}

// Timestamps returns the shared epoch-microsecond timestamp sequence.
func (s *Session) Timestamps() []int64 {
	return append([]int64(nil), s.timestamps...)
}

// Raw returns the tri-axial samples recorded under label.
func (s *Session) Raw(label string) ([][3]float64, error) {
	raw, ok := s.raw[label]
	if !ok {
		return nil, fmt.Errorf("capture has no sensor labelled %q", label)
	}
	return append([][3]float64(nil), raw...), nil
}

// Len returns the number of samples per label.
func (s *Session) Len() int {
	return len(s.timestamps)
}

// Summary describes the extent of a capture.
type Summary struct {
	Samples    int
	Start      time.Time
	End        time.Time
	Duration   time.Duration
	SampleRate float64 // Hz, from the median inter-sample interval
}

// Summary reports the capture's extent and estimated sampling rate.
func (s *Session) Summary() Summary {
	sum := Summary{
		Samples: len(s.timestamps),
		Start:   time.UnixMicro(s.timestamps[0]).UTC(),
		End:     time.UnixMicro(s.timestamps[len(s.timestamps)-1]).UTC(),
	}
	sum.Duration = sum.End.Sub(sum.Start)

	if len(s.timestamps) < 2 {
		return sum
	}
	diffs := make([]float64, len(s.timestamps)-1)
	for i := range diffs {
		diffs[i] = float64(s.timestamps[i+1] - s.timestamps[i])
	}
	sort.Float64s(diffs)
	if median := stat.Quantile(0.5, stat.Empirical, diffs, nil); median > 0 {
		sum.SampleRate = 1e6 / median
	}
	return sum
}
