package align

import (
	"errors"
	"math/rand"
	"sort"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/chrissnell/motionsync/internal/syncerr"
)

func TestFindAlignmentIndex(t *testing.T) {
	base := time.Date(2023, 3, 24, 21, 30, 0, 0, time.UTC)
	stamps := []int64{
		base.UnixMicro(),
		base.UnixMicro() + 1000,
		base.UnixMicro() + 2000,
		base.UnixMicro() + 3000,
	}

	tests := []struct {
		name     string
		offset   time.Duration
		expected int
		outside  bool
	}{
		{"between samples", 1500 * time.Microsecond, 1, false},
		{"on a sample", 2000 * time.Microsecond, 2, false},
		{"first sample", 0, 0, false},
		{"before the recording", -time.Hour, 0, false},
		{"last sample", 3000 * time.Microsecond, 3, false},
		{"after the recording", 3001 * time.Microsecond, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := FindAlignmentIndex(stamps, base.Add(tt.offset))
			if tt.outside {
				if !errors.Is(err, syncerr.ErrOutsideRecording) {
					t.Fatalf("expected ErrOutsideRecording, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindAlignmentIndex: %v", err)
			}
			if idx != tt.expected {
				t.Errorf("index = %d, expected %d", idx, tt.expected)
			}
		})
	}

	if _, err := FindAlignmentIndex(nil, base); !errors.Is(err, syncerr.ErrOutsideRecording) {
		t.Errorf("empty timestamps: expected ErrOutsideRecording, got %v", err)
	}
}

// linearIndex is the forward scan FindAlignmentIndex must agree with.
func linearIndex(stamps []int64, us int64) int {
	idx := 0
	for i, s := range stamps {
		if s <= us {
			idx = i
		}
	}
	return idx
}

func TestFindAlignmentIndexIsMonotone(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	stamps := make([]int64, 300)
	var ts int64 = 1_679_693_400_000_000
	for i := range stamps {
		// repeated timestamps are legal
		ts += int64(rng.Intn(3)) * 25_000
		stamps[i] = ts
	}
	if !sort.SliceIsSorted(stamps, func(i, j int) bool { return stamps[i] < stamps[j] }) {
		t.Fatal("fixture not sorted")
	}

	prev := -1
	for us := stamps[0] - 100_000; us <= stamps[len(stamps)-1]; us += 7_000 {
		idx, err := FindAlignmentIndex(stamps, time.UnixMicro(us))
		if err != nil {
			t.Fatalf("FindAlignmentIndex(%d): %v", us, err)
		}
		if idx < prev {
			t.Fatalf("index went backwards at %d: %d < %d", us, idx, prev)
		}
		if want := linearIndex(stamps, us); idx != want {
			t.Fatalf("index at %d = %d, forward scan gives %d", us, idx, want)
		}
		prev = idx
	}
}

func TestResolveVideoReference(t *testing.T) {
	tests := []struct {
		text     string
		fps      float64
		expected int
		wantErr  bool
	}{
		{"00:10", 30, 299, false},
		{"01:30", 25, 2249, false},
		{"00:00", 30, 0, false},
		{"1", 30, 0, false},
		{"120", 30, 119, false},
		{" 42 ", 30, 41, false},
		{"00:01", 29.97, 29, false},
		{"", 30, 0, true},
		{"abc", 30, 0, true},
		{"0", 30, 0, true},
		{"-3", 30, 0, true},
		{"1:75", 30, 0, true},
		{"a:10", 30, 0, true},
		{"10:", 30, 0, true},
		{"00:05", 0, 0, true},
	}

	for _, tt := range tests {
		idx, err := ResolveVideoReference(tt.text, tt.fps)
		if tt.wantErr {
			var pe *syncerr.ParseError
			if !errors.As(err, &pe) {
				t.Errorf("ResolveVideoReference(%q, %v): expected ParseError, got %v", tt.text, tt.fps, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ResolveVideoReference(%q, %v): %v", tt.text, tt.fps, err)
			continue
		}
		if idx != tt.expected {
			t.Errorf("ResolveVideoReference(%q, %v) = %d, expected %d", tt.text, tt.fps, idx, tt.expected)
		}
	}
}

func TestResolveInstant(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		clock    string
		zone     string
		expected time.Time
		field    string
	}{
		{
			name:     "daylight saving",
			date:     "2023/03/24",
			clock:    "14:30:00",
			zone:     "America/Los_Angeles",
			expected: time.Date(2023, 3, 24, 21, 30, 0, 0, time.UTC),
		},
		{
			name:     "standard time",
			date:     "2023/01/10",
			clock:    "08:00:05",
			zone:     "Europe/Paris",
			expected: time.Date(2023, 1, 10, 7, 0, 5, 0, time.UTC),
		},
		{
			name:     "utc",
			date:     "2024/02/29",
			clock:    "23:59:59",
			zone:     "UTC",
			expected: time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
		},
		{name: "dashed date", date: "2023-03-24", clock: "14:30:00", zone: "UTC", field: "date"},
		{name: "impossible date", date: "2023/02/30", clock: "14:30:00", zone: "UTC", field: "date"},
		{name: "short time", date: "2023/03/24", clock: "14:30", zone: "UTC", field: "time"},
		{name: "unknown zone", date: "2023/03/24", clock: "14:30:00", zone: "Mars/Olympus_Mons", field: "timezone"},
		{name: "no zone", date: "2023/03/24", clock: "14:30:00", zone: "", field: "timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveInstant(tt.date, tt.clock, tt.zone)
			if tt.field != "" {
				var pe *syncerr.ParseError
				if !errors.As(err, &pe) {
					t.Fatalf("expected ParseError, got %v", err)
				}
				if pe.Field != tt.field {
					t.Errorf("ParseError field = %q, expected %q", pe.Field, tt.field)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveInstant: %v", err)
			}
			if !got.Equal(tt.expected) || got.Location() != time.UTC {
				t.Errorf("ResolveInstant = %v, expected %v", got, tt.expected)
			}
		})
	}
}
