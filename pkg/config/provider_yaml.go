package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Video     VideoYAML     `yaml:"video,omitempty"`
		Capture   CaptureYAML   `yaml:"capture,omitempty"`
		Signal    SignalYAML    `yaml:"signal,omitempty"`
		Alignment AlignmentYAML `yaml:"alignment,omitempty"`
		Shell     ShellYAML     `yaml:"shell,omitempty"`
	}

	err = yaml.UnmarshalStrict(cfgFile, &yamlConfig)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", y.filename, err)
	}

	// Convert to our internal format
	config := &ConfigData{
		Video: VideoData{
			FFmpegPath:  yamlConfig.Video.FFmpegPath,
			FFprobePath: yamlConfig.Video.FFprobePath,
		},
		Capture: CaptureData{
			RightMarkers: yamlConfig.Capture.RightMarkers,
		},
		Signal: SignalData{
			Detrend: yamlConfig.Signal.Detrend,
		},
		Alignment: AlignmentData{
			VideoReference: yamlConfig.Alignment.VideoReference,
			Date:           yamlConfig.Alignment.Date,
			Time:           yamlConfig.Alignment.Time,
			Timezone:       yamlConfig.Alignment.Timezone,
		},
		Shell: ShellData{
			Prompt:      yamlConfig.Shell.Prompt,
			HistoryFile: yamlConfig.Shell.HistoryFile,
			OutputDir:   yamlConfig.Shell.OutputDir,
		},
	}
	config.ApplyDefaults()

	// A bad zone would only surface on the first apply
	if _, err := time.LoadLocation(config.Alignment.Timezone); err != nil {
		return nil, fmt.Errorf("alignment timezone %q: %w", config.Alignment.Timezone, err)
	}

	y.config = config
	return config, nil
}

// GetCaptureConfig returns the sensor capture configuration
func (y *YAMLProvider) GetCaptureConfig() (*CaptureData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Capture, nil
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with YAML tags

type VideoYAML struct {
	FFmpegPath  string `yaml:"ffmpeg,omitempty"`
	FFprobePath string `yaml:"ffprobe,omitempty"`
}

type CaptureYAML struct {
	RightMarkers []string `yaml:"right_markers,omitempty"`
}

type SignalYAML struct {
	Detrend string `yaml:"detrend,omitempty"`
}

type AlignmentYAML struct {
	VideoReference string `yaml:"video_reference,omitempty"`
	Date           string `yaml:"date,omitempty"`
	Time           string `yaml:"time,omitempty"`
	Timezone       string `yaml:"timezone,omitempty"`
}

type ShellYAML struct {
	Prompt      string `yaml:"prompt,omitempty"`
	HistoryFile string `yaml:"history_file,omitempty"`
	OutputDir   string `yaml:"output_dir,omitempty"`
}
