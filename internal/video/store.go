// Package video opens frame-indexed video files, decodes frames by index and
// navigates between them.
package video

import (
	"context"
	"fmt"

	"github.com/chrissnell/motionsync/internal/syncerr"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is an opened video. Frame rate and frame count are read once at open.
type Store struct {
	ID   uuid.UUID
	Path string

	info    Info
	decoder Decoder
	logger  *zap.SugaredLogger
}

// Open probes path and returns a Store that decodes through decoder.
func Open(ctx context.Context, path string, prober Prober, decoder Decoder, logger *zap.SugaredLogger) (*Store, error) {
	info, err := prober.Probe(ctx, path)
	if err != nil {
		return nil, syncerr.FileFormat(path, "cannot read video container", err)
	}
	if info.FPS <= 0 {
		return nil, syncerr.FileFormat(path, "video stream has no usable frame rate", nil)
	}
	if info.FrameCount < 0 {
		return nil, syncerr.FileFormat(path, fmt.Sprintf("invalid frame count %d", info.FrameCount), nil)
	}
	if info.FrameCount > 0 && (info.Width <= 0 || info.Height <= 0) {
		return nil, syncerr.FileFormat(path, fmt.Sprintf("invalid frame size %dx%d", info.Width, info.Height), nil)
	}

	s := &Store{
		ID:      uuid.New(),
		Path:    path,
		info:    info,
		decoder: decoder,
		logger:  logger,
	}

	logger.Infow("opened video",
		"session", s.ID,
		"path", path,
		"codec", info.Codec,
		"fps", info.FPS,
		"frames", info.FrameCount,
		"size", fmt.Sprintf("%dx%d", info.Width, info.Height))

	return s, nil
}

// FPS returns the frame rate cached at open.
func (s *Store) FPS() float64 { return s.info.FPS }

// FrameCount returns the number of frames cached at open.
func (s *Store) FrameCount() int { return s.info.FrameCount }

// Info returns the probe result cached at open.
func (s *Store) Info() Info { return s.info }

// Seek decodes frame index. Every call decodes again; nothing is cached.
func (s *Store) Seek(ctx context.Context, index int) (*Frame, error) {
	if index < 0 || index >= s.info.FrameCount {
		return nil, syncerr.OutOfRange("frame", index, s.info.FrameCount)
	}

	pix, err := s.decoder.Decode(ctx, s.Path, s.info, index)
	if err != nil {
		return nil, syncerr.FileFormat(s.Path, fmt.Sprintf("cannot decode frame %d", index), err)
	}

	return &Frame{
		Index:  index,
		Width:  s.info.Width,
		Height: s.info.Height,
		Pix:    pix,
	}, nil
}
