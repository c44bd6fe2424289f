package capture

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/chrissnell/motionsync/internal/constants"
	"github.com/chrissnell/motionsync/internal/syncerr"
	"go.uber.org/zap"
)

func testReader() *Reader {
	return NewReader(constants.DefaultRightMarkers, zap.NewNop().Sugar())
}

// sensorGroup builds a group of n samples at 20 Hz starting at start µs.
func sensorGroup(name string, start int64, n int, base float64, attrs map[string]string) Group {
	g := Group{Name: name, Attributes: attrs}
	for i := 0; i < n; i++ {
		g.Time = append(g.Time, start+int64(i)*50000)
		g.Accelerometer = append(g.Accelerometer, [3]float64{base, float64(i), 9.8})
	}
	return g
}

func modernDoc(labelList string) *Document {
	return &Document{
		Attributes: map[string]string{AttrLabelList: labelList},
		Groups: []Group{
			sensorGroup("LEFT", 1_000_000, 5, 1, nil),
			sensorGroup("RIGHT", 2_000_000, 5, 2, nil),
		},
	}
}

func legacyDoc(firstCfg, secondCfg string) *Document {
	return &Document{
		Groups: []Group{
			sensorGroup("SI-000123", 1_000_000, 4, 1, map[string]string{AttrConfiguration: firstCfg}),
			sensorGroup("SI-000456", 2_000_000, 4, 2, map[string]string{AttrConfiguration: secondCfg}),
		},
	}
}

func writeMsgpack(t *testing.T, doc *Document) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.msgpack")
	if err := WriteMsgpack(path, doc); err != nil {
		t.Fatalf("WriteMsgpack: %v", err)
	}
	return path
}

func writeSQLite(t *testing.T, doc *Document) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.db")
	if err := WriteSQLite(context.Background(), path, doc); err != nil {
		t.Fatalf("WriteSQLite: %v", err)
	}
	return path
}

func TestOpenLayouts(t *testing.T) {
	tests := []struct {
		name           string
		doc            *Document
		rightLabel     string
		convention     Convention
		expectedLabels []string
		firstTime      int64   // first shared timestamp
		firstBase      float64 // x component of the first label's samples
	}{
		{
			name:           "modern declared order",
			doc:            modernDoc("LEFT, RIGHT"),
			convention:     ConventionModern,
			expectedLabels: []string{"LEFT", "RIGHT"},
			firstTime:      1_000_000,
			firstBase:      1,
		},
		{
			name:           "modern reversed order takes timestamps from first declared",
			doc:            modernDoc("RIGHT,LEFT"),
			convention:     ConventionModern,
			expectedLabels: []string{"RIGHT", "LEFT"},
			firstTime:      2_000_000,
			firstBase:      2,
		},
		{
			name:           "legacy marker on second group",
			doc:            legacyDoc("Left ankle", "Right ankle"),
			convention:     ConventionLegacy,
			expectedLabels: []string{constants.LabelLeft, constants.LabelRight},
			firstTime:      1_000_000,
			firstBase:      1,
		},
		{
			name:           "legacy marker on first group",
			doc:            legacyDoc("RIGHT wrist", "left wrist"),
			convention:     ConventionLegacy,
			expectedLabels: []string{constants.LabelLeft, constants.LabelRight},
			firstTime:      2_000_000,
			firstBase:      2,
		},
		{
			name:           "legacy localized marker",
			doc:            legacyDoc("Pie izquierdo", "Pie DERECHO"),
			convention:     ConventionLegacy,
			expectedLabels: []string{constants.LabelLeft, constants.LabelRight},
			firstTime:      1_000_000,
			firstBase:      1,
		},
		{
			name:           "legacy marker on both groups",
			doc:            legacyDoc("Pie derecho - left hand", "right ankle"),
			convention:     ConventionLegacy,
			expectedLabels: []string{constants.LabelLeft, constants.LabelRight},
			firstTime:      1_000_000,
			firstBase:      1,
		},
		{
			name:           "legacy per-capture marker",
			doc:            legacyDoc("sensor D", "sensor B"),
			rightLabel:     "sensor b",
			convention:     ConventionLegacy,
			expectedLabels: []string{constants.LabelLeft, constants.LabelRight},
			firstTime:      1_000_000,
			firstBase:      1,
		},
	}

	writers := map[ContainerKind]func(*testing.T, *Document) string{
		ContainerMsgpack: writeMsgpack,
		ContainerSQLite:  writeSQLite,
	}

	for _, tt := range tests {
		for kind, write := range writers {
			t.Run(tt.name+"/"+string(kind), func(t *testing.T) {
				path := write(t, tt.doc)
				s, err := testReader().Open(context.Background(), path, tt.rightLabel)
				if err != nil {
					t.Fatalf("Open: %v", err)
				}

				if s.Container != kind {
					t.Errorf("Container = %s, expected %s", s.Container, kind)
				}
				if s.Convention != tt.convention {
					t.Errorf("Convention = %s, expected %s", s.Convention, tt.convention)
				}
				if !reflect.DeepEqual(s.Labels(), tt.expectedLabels) {
					t.Errorf("Labels = %v, expected %v", s.Labels(), tt.expectedLabels)
				}
				if ts := s.Timestamps(); ts[0] != tt.firstTime {
					t.Errorf("Timestamps[0] = %d, expected %d", ts[0], tt.firstTime)
				}
				raw, err := s.Raw(tt.expectedLabels[0])
				if err != nil {
					t.Fatalf("Raw: %v", err)
				}
				if raw[0][0] != tt.firstBase {
					t.Errorf("first label samples x = %v, expected %v", raw[0][0], tt.firstBase)
				}
			})
		}
	}
}

func TestOpenRejectsBadLayouts(t *testing.T) {
	short := modernDoc("LEFT,RIGHT")
	short.Groups[1].Accelerometer = short.Groups[1].Accelerometer[:3]

	noAccel := modernDoc("LEFT,RIGHT")
	noAccel.Groups[0].Accelerometer = nil
	noAccel.Groups[0].Time = nil

	decreasing := modernDoc("LEFT,RIGHT")
	decreasing.Groups[0].Time[3] = 0

	threeGroups := legacyDoc("left", "right")
	threeGroups.Groups = append(threeGroups.Groups, sensorGroup("extra", 0, 4, 0, nil))

	tests := []struct {
		name string
		doc  *Document
	}{
		{"legacy without marker", legacyDoc("sensor 1", "sensor 2")},
		{"legacy three groups", threeGroups},
		{"no groups", &Document{}},
		{"empty label list", &Document{Attributes: map[string]string{AttrLabelList: " , "}}},
		{"label without group", modernDoc("LEFT,RIGHT,TRUNK")},
		{"duplicate label", modernDoc("LEFT,LEFT")},
		{"sample count mismatch", short},
		{"missing arrays", noAccel},
		{"decreasing timestamps", decreasing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeMsgpack(t, tt.doc)
			_, err := testReader().Open(context.Background(), path, "")
			var ffe *syncerr.FileFormatError
			if !errors.As(err, &ffe) {
				t.Fatalf("expected FileFormatError, got %v", err)
			}
		})
	}
}

func TestProbe(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, data, 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name    string
		path    string
		kind    ContainerKind
		wantErr bool
	}{
		{"hdf5", write("a.h5", []byte("\x89HDF\r\n\x1a\n\x00\x00\x00")), "", true},
		{"empty", write("empty", nil), "", true},
		{"text", write("notes.txt", []byte("timestamp,x,y,z\n")), "", true},
		{"missing", filepath.Join(dir, "nope"), "", true},
		{"msgpack", writeMsgpack(t, modernDoc("LEFT")), ContainerMsgpack, false},
		{"sqlite", writeSQLite(t, modernDoc("LEFT")), ContainerSQLite, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := Probe(tt.path)
			if tt.wantErr {
				var ffe *syncerr.FileFormatError
				if !errors.As(err, &ffe) {
					t.Fatalf("expected FileFormatError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Probe: %v", err)
			}
			if kind != tt.kind {
				t.Errorf("kind = %s, expected %s", kind, tt.kind)
			}
		})
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	s, err := testReader().Open(context.Background(), writeMsgpack(t, modernDoc("LEFT,RIGHT")), "")
	if err != nil {
		t.Fatal(err)
	}

	raw, _ := s.Raw("LEFT")
	raw[0] = [3]float64{100, 100, 100}
	ts := s.Timestamps()
	ts[0] = -1
	labels := s.Labels()
	labels[0] = "X"

	again, _ := s.Raw("LEFT")
	if again[0][0] == 100 {
		t.Errorf("Raw exposed internal storage")
	}
	if s.Timestamps()[0] == -1 {
		t.Errorf("Timestamps exposed internal storage")
	}
	if s.Labels()[0] == "X" {
		t.Errorf("Labels exposed internal storage")
	}
	if _, err := s.Raw("TRUNK"); err == nil {
		t.Errorf("expected error for unknown label")
	}
}

func TestSummary(t *testing.T) {
	s, err := testReader().Open(context.Background(), writeMsgpack(t, modernDoc("LEFT,RIGHT")), "")
	if err != nil {
		t.Fatal(err)
	}

	sum := s.Summary()
	if sum.Samples != 5 {
		t.Errorf("Samples = %d, expected 5", sum.Samples)
	}
	if sum.Duration != 200*time.Millisecond {
		t.Errorf("Duration = %v, expected 200ms", sum.Duration)
	}
	if math.Abs(sum.SampleRate-20) > 1e-9 {
		t.Errorf("SampleRate = %v, expected 20", sum.SampleRate)
	}
}

func TestWriteDocumentRoundTripAcrossContainers(t *testing.T) {
	ctx := context.Background()
	src := legacyDoc("left", "right")
	srcPath := writeSQLite(t, src)

	doc, kind, err := ReadDocument(ctx, srcPath)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if kind != ContainerSQLite {
		t.Fatalf("kind = %s", kind)
	}

	dst := filepath.Join(t.TempDir(), "converted.msgpack")
	if err := WriteDocument(ctx, dst, ContainerMsgpack, doc); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}

	back, _, err := ReadDocument(ctx, dst)
	if err != nil {
		t.Fatalf("ReadDocument converted: %v", err)
	}
	if !reflect.DeepEqual(back.Groups[1].Accelerometer, src.Groups[1].Accelerometer) {
		t.Errorf("samples changed across conversion")
	}
	if back.Groups[0].Attributes[AttrConfiguration] != "left" {
		t.Errorf("group attribute lost: %v", back.Groups[0].Attributes)
	}
}
