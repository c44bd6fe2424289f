package config

import (
	"github.com/chrissnell/motionsync/internal/constants"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetCaptureConfig() (*CaptureData, error)

	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Video     VideoData     `json:"video"`
	Capture   CaptureData   `json:"capture"`
	Signal    SignalData    `json:"signal"`
	Alignment AlignmentData `json:"alignment"`
	Shell     ShellData     `json:"shell"`
}

// VideoData holds the paths of the ffmpeg tools used to probe and decode video
type VideoData struct {
	FFmpegPath  string `json:"ffmpeg"`
	FFprobePath string `json:"ffprobe"`
}

// CaptureData holds sensor capture settings
type CaptureData struct {
	// RightMarkers are matched case-insensitively against the Configuration
	// attribute of legacy captures to find the right-side sensor.
	RightMarkers []string `json:"right_markers,omitempty"`
}

// SignalData holds signal extraction settings
type SignalData struct {
	Detrend string `json:"detrend"`
}

// AlignmentData holds the inputs an alignment starts from and returns to on reset
type AlignmentData struct {
	VideoReference string `json:"video_reference,omitempty"`
	Date           string `json:"date,omitempty"`
	Time           string `json:"time,omitempty"`
	Timezone       string `json:"timezone"`
}

// ShellData holds interactive shell settings
type ShellData struct {
	Prompt      string `json:"prompt"`
	HistoryFile string `json:"history_file,omitempty"`
	OutputDir   string `json:"output_dir"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *ConfigData {
	c := &ConfigData{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills every unset field with its default
func (c *ConfigData) ApplyDefaults() {
	if c.Video.FFmpegPath == "" {
		c.Video.FFmpegPath = "ffmpeg"
	}
	if c.Video.FFprobePath == "" {
		c.Video.FFprobePath = "ffprobe"
	}
	if len(c.Capture.RightMarkers) == 0 {
		c.Capture.RightMarkers = append([]string(nil), constants.DefaultRightMarkers...)
	}
	if c.Signal.Detrend == "" {
		c.Signal.Detrend = constants.DefaultDetrend
	}
	if c.Alignment.Timezone == "" {
		c.Alignment.Timezone = "UTC"
	}
	if c.Shell.Prompt == "" {
		c.Shell.Prompt = "motionsync> "
	}
	if c.Shell.OutputDir == "" {
		c.Shell.OutputDir = "."
	}
}
