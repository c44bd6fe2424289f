package align

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/motionsync/internal/constants"
	"github.com/chrissnell/motionsync/internal/syncerr"
)

// FindAlignmentIndex returns the index of the last timestamp at or before
// instant, clamped to 0 for instants before the first sample. Timestamps are
// epoch microseconds in non-decreasing order. An instant after the last
// sample, or an empty sequence, fails with syncerr.ErrOutsideRecording.
func FindAlignmentIndex(timestamps []int64, instant time.Time) (int, error) {
	if len(timestamps) == 0 {
		return 0, fmt.Errorf("%w: capture has no samples", syncerr.ErrOutsideRecording)
	}

	us := instant.UnixMicro()
	last := timestamps[len(timestamps)-1]
	if us > last {
		return 0, fmt.Errorf("%w: %s is after the last sample at %s", syncerr.ErrOutsideRecording,
			instant.UTC().Format(time.RFC3339Nano), time.UnixMicro(last).UTC().Format(time.RFC3339Nano))
	}

	// first timestamp strictly after the instant
	after := sort.Search(len(timestamps), func(i int) bool { return timestamps[i] > us })
	if after == 0 {
		return 0, nil
	}
	return after - 1, nil
}

// ResolveVideoReference turns the video-side reference text into a 0-based
// frame index. The text is either a 1-based frame number or an elapsed time
// "MM:SS"; elapsed time covers round(seconds × fps) frames, the last of which
// is the reference.
func ResolveVideoReference(text string, fps float64) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, syncerr.Parse("video reference", text, errors.New("empty"))
	}

	if !strings.Contains(text, ":") {
		n, err := strconv.Atoi(text)
		if err != nil {
			return 0, syncerr.Parse("video reference", text, errors.New("expected a frame number or MM:SS"))
		}
		if n < 1 {
			return 0, syncerr.Parse("video reference", text, errors.New("frame numbers start at 1"))
		}
		return n - 1, nil
	}

	minText, secText, _ := strings.Cut(text, ":")
	minutes, err := parseDigits(minText)
	if err != nil {
		return 0, syncerr.Parse("video reference", text, fmt.Errorf("minutes: %w", err))
	}
	seconds, err := parseDigits(secText)
	if err != nil {
		return 0, syncerr.Parse("video reference", text, fmt.Errorf("seconds: %w", err))
	}
	if seconds > 59 {
		return 0, syncerr.Parse("video reference", text, errors.New("seconds must be below 60"))
	}
	if fps <= 0 {
		return 0, syncerr.Parse("video reference", text, fmt.Errorf("frame rate %v cannot convert elapsed time", fps))
	}

	frames := int(math.Round(float64(minutes*60+seconds) * fps))
	if frames < 1 {
		return 0, nil
	}
	return frames - 1, nil
}

func parseDigits(s string) (int, error) {
	if s == "" {
		return 0, errors.New("missing")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%q is not a number", s)
		}
	}
	return strconv.Atoi(s)
}

// ResolveInstant combines a local calendar date (YYYY/MM/DD) and time
// (HH:MM:SS) in the named IANA zone into a UTC instant.
func ResolveInstant(date, clock, zone string) (time.Time, error) {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return time.Time{}, syncerr.Parse("timezone", zone, errors.New("no timezone selected"))
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, syncerr.Parse("timezone", zone, err)
	}

	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if _, err := time.Parse(constants.DateLayout, date); err != nil {
		return time.Time{}, syncerr.Parse("date", date, errors.New("expected YYYY/MM/DD"))
	}
	if _, err := time.Parse(constants.TimeLayout, clock); err != nil {
		return time.Time{}, syncerr.Parse("time", clock, errors.New("expected HH:MM:SS"))
	}

	t, err := time.ParseInLocation(constants.DateLayout+" "+constants.TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, syncerr.Parse("date and time", date+" "+clock, err)
	}
	return t.UTC(), nil
}
