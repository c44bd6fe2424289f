package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Info is what a probe learns about a video's first video stream.
type Info struct {
	Codec      string
	Width      int
	Height     int
	FPS        float64
	FrameCount int
	Duration   time.Duration
}

// Prober reads stream metadata from a video file.
type Prober interface {
	Probe(ctx context.Context, path string) (Info, error)
}

// Decoder decodes a single frame to packed RGB24.
type Decoder interface {
	Decode(ctx context.Context, path string, info Info, index int) ([]byte, error)
}

// FFmpeg probes with ffprobe and decodes with ffmpeg.
type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
	logger      *zap.SugaredLogger
}

// NewFFmpeg creates an FFmpeg backend. Empty paths fall back to the binaries
// on $PATH.
func NewFFmpeg(ffmpegPath, ffprobePath string, logger *zap.SugaredLogger) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpeg{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath, logger: logger}
}

// probeOutput is the subset of `ffprobe -of json` output we read.
type probeOutput struct {
	Streams []struct {
		CodecName     string `json:"codec_name"`
		Width         int    `json:"width"`
		Height        int    `json:"height"`
		RFrameRate    string `json:"r_frame_rate"`
		AvgFrameRate  string `json:"avg_frame_rate"`
		NbFrames      string `json:"nb_frames"`
		NbReadPackets string `json:"nb_read_packets"`
		Duration      string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe runs ffprobe against the first video stream. Packets are counted so
// the frame count is exact even when the container header omits it.
func (f *FFmpeg) Probe(ctx context.Context, path string) (Info, error) {
	cmd := exec.CommandContext(ctx, f.FFprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-count_packets",
		"-show_entries", "stream=codec_name,width,height,r_frame_rate,avg_frame_rate,nb_frames,nb_read_packets,duration:format=duration",
		"-of", "json",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return parseProbeOutput(output)
}

func parseProbeOutput(output []byte) (Info, error) {
	var result probeOutput
	if err := json.Unmarshal(output, &result); err != nil {
		return Info{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(result.Streams) == 0 {
		return Info{}, fmt.Errorf("no video stream found")
	}
	s := result.Streams[0]

	info := Info{Codec: s.CodecName, Width: s.Width, Height: s.Height}

	info.FPS = parseRational(s.RFrameRate)
	if info.FPS <= 0 {
		info.FPS = parseRational(s.AvgFrameRate)
	}

	seconds := parseFloat(s.Duration)
	if seconds <= 0 {
		seconds = parseFloat(result.Format.Duration)
	}
	info.Duration = time.Duration(seconds * float64(time.Second))

	switch {
	case parseInt(s.NbReadPackets) > 0:
		info.FrameCount = parseInt(s.NbReadPackets)
	case parseInt(s.NbFrames) > 0:
		info.FrameCount = parseInt(s.NbFrames)
	case seconds > 0 && info.FPS > 0:
		info.FrameCount = int(math.Round(seconds * info.FPS))
	}

	return info, nil
}

// Decode extracts frame index as raw RGB24 at native resolution.
func (f *FFmpeg) Decode(ctx context.Context, path string, info Info, index int) ([]byte, error) {
	cmd := exec.CommandContext(ctx, f.FFmpegPath,
		"-v", "error",
		"-i", path,
		"-vf", fmt.Sprintf("select=eq(n\\,%d)", index),
		"-vsync", "0",
		"-frames:v", "1",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	expected := info.Width * info.Height * 3
	if len(output) != expected {
		return nil, fmt.Errorf("decoded %d bytes for frame %d, expected %d", len(output), index, expected)
	}

	f.logger.Debugw("decoded frame", "path", path, "index", index, "elapsed", time.Since(start))
	return output, nil
}

// parseRational parses ffprobe rates such as "30000/1001". Unknown rates
// ("0/0", "") yield 0.
func parseRational(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	if !found {
		return parseFloat(s)
	}
	n, d := parseFloat(num), parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseInt(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}
