package align

import (
	"errors"
	"fmt"
	"time"

	"github.com/chrissnell/motionsync/internal/video"
)

// Readout is the numeric state shown next to the current frame.
type Readout struct {
	FPS         float64
	FrameNumber int // 1-based
	FrameCount  int
	Elapsed     time.Duration
}

// FPSText renders the frame rate with two decimals.
func (r Readout) FPSText() string { return fmt.Sprintf("%.2f", r.FPS) }

// FrameText renders the 1-based frame number.
func (r Readout) FrameText() string { return fmt.Sprintf("%d", r.FrameNumber) }

// ElapsedText renders the elapsed video time as MM:SS.mmm.
func (r Readout) ElapsedText() string { return video.FormatElapsed(r.Elapsed) }

// Readout reports the video readouts for the current frame.
func (a *Aligner) Readout() (Readout, error) {
	if a.store == nil || a.nav == nil {
		return Readout{}, errors.New("no video is open")
	}
	fps := a.store.FPS()
	cur := a.nav.Current()
	return Readout{
		FPS:         fps,
		FrameNumber: cur + 1,
		FrameCount:  a.store.FrameCount(),
		Elapsed:     video.Elapsed(cur, fps),
	}, nil
}
