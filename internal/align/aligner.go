// Package align maps a video and an independently clocked sensor capture
// onto one time origin and publishes the aligned motion signals.
package align

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chrissnell/motionsync/internal/capture"
	"github.com/chrissnell/motionsync/internal/motion"
	"github.com/chrissnell/motionsync/internal/syncerr"
	"github.com/chrissnell/motionsync/internal/video"
	"go.uber.org/zap"
)

// State is the lifecycle of an alignment.
type State int

const (
	// Unresolved alignments accept input edits.
	Unresolved State = iota
	// Locked alignments have published signals and reject input edits.
	Locked
)

func (s State) String() string {
	if s == Locked {
		return "locked"
	}
	return "unresolved"
}

// Inputs is the user's declaration of one shared moment: a point in the
// video and the wall-clock time at which it happened.
type Inputs struct {
	VideoReference string // 1-based frame number or MM:SS
	Date           string // YYYY/MM/DD, local to Timezone
	Time           string // HH:MM:SS, local to Timezone
	Timezone       string // IANA zone name
}

// Alignment is a published result.
type Alignment struct {
	Instant        time.Time
	Index          int
	ReferenceFrame int
	Labels         []string
	signals        map[string][]float64
}

// Signal returns the aligned signal for label. Index 0 corresponds to the
// alignment index.
func (a *Alignment) Signal(label string) ([]float64, bool) {
	s, ok := a.signals[label]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), s...), true
}

// Config wires an Aligner to its collaborators.
type Config struct {
	Captures  *capture.Reader
	Prober    video.Prober
	Decoder   video.Decoder
	Scheduler video.Scheduler
	Extractor motion.Extractor

	// Defaults are the inputs restored by Reset.
	Defaults Inputs

	// NavigatorOptions are applied to the navigator of every opened video.
	NavigatorOptions []video.NavigatorOption

	Logger *zap.SugaredLogger
}

// Aligner owns at most one video session and one capture session and the
// alignment derived from them. It is not safe for concurrent use; run it on
// one event loop.
type Aligner struct {
	cfg    Config
	logger *zap.SugaredLogger

	state     State
	inputs    Inputs
	store     *video.Store
	nav       *video.Navigator
	sensor    *capture.Session
	published *Alignment
}

// New creates an Aligner with the configured default inputs.
func New(cfg Config) *Aligner {
	return &Aligner{
		cfg:    cfg,
		logger: cfg.Logger,
		inputs: cfg.Defaults,
	}
}

// State returns the current lifecycle state.
func (a *Aligner) State() State { return a.state }

// Inputs returns the current inputs.
func (a *Aligner) Inputs() Inputs { return a.inputs }

// Video returns the open video session, or nil.
func (a *Aligner) Video() *video.Store { return a.store }

// Capture returns the open capture session, or nil.
func (a *Aligner) Capture() *capture.Session { return a.sensor }

// Navigator returns the frame cursor of the open video.
func (a *Aligner) Navigator() (*video.Navigator, error) {
	if a.nav == nil {
		return nil, errors.New("no video is open")
	}
	return a.nav, nil
}

// OpenVideo replaces the video session. The previous session and any
// alignment derived from it are discarded only once the new video has opened
// and its first frame decoded.
func (a *Aligner) OpenVideo(ctx context.Context, path string) error {
	store, err := video.Open(ctx, path, a.cfg.Prober, a.cfg.Decoder, a.logger)
	if err != nil {
		a.logger.Warnw("video open failed", "path", path, "error", err)
		return syncerr.TryAgain("open the video", err)
	}

	nav := video.NewNavigator(store, a.cfg.Scheduler, a.logger, a.cfg.NavigatorOptions...)
	if store.FrameCount() > 0 {
		if _, err := nav.Jump(ctx, 0); err != nil {
			a.logger.Warnw("first frame decode failed", "path", path, "error", err)
			return syncerr.TryAgain("open the video", err)
		}
	}

	a.releaseVideo()
	a.store = store
	a.nav = nav
	a.discardAlignment("video replaced")
	return nil
}

// OpenCapture replaces the capture session. rightLabel is an optional
// right-side marker for legacy captures.
func (a *Aligner) OpenCapture(ctx context.Context, path, rightLabel string) error {
	sensor, err := a.cfg.Captures.Open(ctx, path, rightLabel)
	if err != nil {
		a.logger.Warnw("capture open failed", "path", path, "error", err)
		return syncerr.TryAgain("open the sensor capture", err)
	}

	a.sensor = sensor
	a.discardAlignment("capture replaced")
	return nil
}

// releaseVideo closes the current navigator so pending steps on it never
// decode again.
func (a *Aligner) releaseVideo() {
	if a.nav != nil {
		a.nav.Close()
	}
}

func (a *Aligner) discardAlignment(reason string) {
	if a.published != nil || a.state == Locked {
		a.logger.Infow("discarding alignment", "reason", reason)
	}
	a.published = nil
	a.state = Unresolved
}

// SetInputs replaces the inputs. It fails while the alignment is locked.
func (a *Aligner) SetInputs(in Inputs) error {
	if a.state == Locked {
		return syncerr.ErrLocked
	}
	a.inputs = in
	return nil
}

// Apply resolves the inputs against the open sessions, positions the video
// on the reference frame, extracts every label's signal from the alignment
// index, publishes the result and locks. Any failure leaves every piece of
// state as it was.
func (a *Aligner) Apply(ctx context.Context) error {
	if a.state == Locked {
		return syncerr.ErrLocked
	}
	if a.store == nil || a.sensor == nil {
		return syncerr.TryAgain("apply the alignment", errors.New("open both a video and a sensor capture first"))
	}

	result, err := a.resolve()
	if err != nil {
		a.logger.Warnw("alignment failed", "inputs", a.inputs, "error", err)
		return syncerr.TryAgain("apply the alignment", err)
	}

	frame, err := a.nav.JumpAbsolute(ctx, result.ReferenceFrame)
	if err != nil {
		a.logger.Warnw("reference frame decode failed", "frame", result.ReferenceFrame, "error", err)
		return syncerr.TryAgain("apply the alignment", err)
	}
	// the navigator clamps references past the last frame
	result.ReferenceFrame = frame.Index

	a.published = result
	a.state = Locked

	a.logger.Infow("alignment locked",
		"instant", result.Instant.Format(time.RFC3339),
		"alignment_index", result.Index,
		"reference_frame", result.ReferenceFrame,
		"video", a.store.ID,
		"capture", a.sensor.ID)
	return nil
}

func (a *Aligner) resolve() (*Alignment, error) {
	instant, err := ResolveInstant(a.inputs.Date, a.inputs.Time, a.inputs.Timezone)
	if err != nil {
		return nil, err
	}

	index, err := FindAlignmentIndex(a.sensor.Timestamps(), instant)
	if err != nil {
		return nil, err
	}

	ref, err := ResolveVideoReference(a.inputs.VideoReference, a.store.FPS())
	if err != nil {
		return nil, err
	}

	result := &Alignment{
		Instant:        instant,
		Index:          index,
		ReferenceFrame: ref,
		Labels:         a.sensor.Labels(),
		signals:        make(map[string][]float64),
	}
	for _, label := range result.Labels {
		raw, err := a.sensor.Raw(label)
		if err != nil {
			return nil, err
		}
		sig, err := a.cfg.Extractor.Extract(raw, index)
		if err != nil {
			return nil, fmt.Errorf("extracting %s: %w", label, err)
		}
		result.signals[label] = sig
	}
	return result, nil
}

// Modify unlocks the inputs for editing. The published alignment stays
// available until the next successful Apply.
func (a *Aligner) Modify() {
	if a.state != Locked {
		return
	}
	a.state = Unresolved
	a.logger.Info("alignment unlocked for editing")
}

// Reset restores the default inputs and releases both sessions and the
// published alignment.
func (a *Aligner) Reset() {
	a.inputs = a.cfg.Defaults
	a.releaseVideo()
	a.store = nil
	a.nav = nil
	a.sensor = nil
	a.published = nil
	a.state = Unresolved
	a.logger.Info("alignment reset")
}

// Alignment returns the published alignment.
func (a *Aligner) Alignment() (*Alignment, error) {
	if a.published == nil {
		return nil, &syncerr.AlignmentUnresolvedError{What: "alignment"}
	}
	return a.published, nil
}

// Signals returns the aligned signal of every label in canonical order.
func (a *Aligner) Signals() ([]LabeledSignal, error) {
	if a.published == nil {
		return nil, &syncerr.AlignmentUnresolvedError{What: "signals"}
	}
	out := make([]LabeledSignal, 0, len(a.published.Labels))
	for _, label := range a.published.Labels {
		sig, _ := a.published.Signal(label)
		out = append(out, LabeledSignal{Label: label, Values: sig})
	}
	return out, nil
}

// ReferenceFrame returns the published 0-based reference frame.
func (a *Aligner) ReferenceFrame() (int, error) {
	if a.published == nil {
		return 0, &syncerr.AlignmentUnresolvedError{What: "reference frame"}
	}
	return a.published.ReferenceFrame, nil
}

// LabeledSignal pairs a sensor label with its aligned signal.
type LabeledSignal struct {
	Label  string
	Values []float64
}
