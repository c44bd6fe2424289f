package main

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/chrissnell/motionsync/internal/capture"
	"github.com/chrissnell/motionsync/internal/constants"
	"go.uber.org/zap"
)

func TestTargetKind(t *testing.T) {
	tests := []struct {
		format   string
		out      string
		expected capture.ContainerKind
		wantErr  bool
	}{
		{"", "run.db", capture.ContainerSQLite, false},
		{"", "run.SQLITE", capture.ContainerSQLite, false},
		{"", "run.msgpack", capture.ContainerMsgpack, false},
		{"", "run", capture.ContainerMsgpack, false},
		{"sqlite", "run.msgpack", capture.ContainerSQLite, false},
		{"", "run.h5", "", true},
		{"hdf5", "run.db", "", true},
	}

	for _, tt := range tests {
		kind, err := targetKind(tt.format, tt.out)
		if tt.wantErr {
			if err == nil {
				t.Errorf("targetKind(%q, %q): expected error", tt.format, tt.out)
			}
			continue
		}
		if err != nil || kind != tt.expected {
			t.Errorf("targetKind(%q, %q) = %q, %v, expected %q", tt.format, tt.out, kind, err, tt.expected)
		}
	}
}

func TestCaptureConfig(t *testing.T) {
	defaults, err := captureConfig("")
	if err != nil {
		t.Fatalf("captureConfig without a file: %v", err)
	}
	if !reflect.DeepEqual(defaults.RightMarkers, constants.DefaultRightMarkers) {
		t.Errorf("default markers = %v", defaults.RightMarkers)
	}

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "motionsync.yaml")
	if err := os.WriteFile(cfgPath, []byte("capture:\n  right_markers: [dx]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	capCfg, err := captureConfig(cfgPath)
	if err != nil {
		t.Fatalf("captureConfig: %v", err)
	}
	if !reflect.DeepEqual(capCfg.RightMarkers, []string{"dx"}) {
		t.Errorf("markers = %v", capCfg.RightMarkers)
	}

	// a legacy capture marked only with the configured marker
	doc := &capture.Document{}
	for i, cfg := range []string{"sx polso", "dx polso"} {
		g := capture.Group{Name: cfg, Attributes: map[string]string{capture.AttrConfiguration: cfg}}
		for j := 0; j < 3; j++ {
			g.Time = append(g.Time, int64(j)*50_000)
			g.Accelerometer = append(g.Accelerometer, [3]float64{float64(i), 0, 9.8})
		}
		doc.Groups = append(doc.Groups, g)
	}
	src := filepath.Join(dir, "legacy.msgpack")
	if err := capture.WriteMsgpack(src, doc); err != nil {
		t.Fatalf("WriteMsgpack: %v", err)
	}

	logger := zap.NewNop().Sugar()
	if _, err := capture.NewReader(defaults.RightMarkers, logger).Open(context.Background(), src, ""); err == nil {
		t.Errorf("default markers should not resolve %q", src)
	}
	s, err := capture.NewReader(capCfg.RightMarkers, logger).Open(context.Background(), src, "")
	if err != nil {
		t.Fatalf("Open with configured markers: %v", err)
	}
	raw, err := s.Raw(constants.LabelRight)
	if err != nil || raw[0][0] != 1 {
		t.Errorf("RIGHT = %v, %v, expected the dx group", raw, err)
	}
}

func TestCaptureConfigMissingFile(t *testing.T) {
	if _, err := captureConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for missing config file")
	}
}
