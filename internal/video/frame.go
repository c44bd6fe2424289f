package video

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"time"
)

// Frame is a decoded video frame in packed RGB24, row-major, at native
// resolution.
type Frame struct {
	Index  int
	Width  int
	Height int
	Pix    []byte
}

// Image converts the frame to an image.NRGBA.
func (f *Frame) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, j := 0, 0; i+2 < len(f.Pix) && j+3 < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j] = f.Pix[i]
		img.Pix[j+1] = f.Pix[i+1]
		img.Pix[j+2] = f.Pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// WritePNG encodes the frame as PNG.
func (f *Frame) WritePNG(w io.Writer) error {
	if err := png.Encode(w, f.Image()); err != nil {
		return fmt.Errorf("failed to encode frame %d: %w", f.Index, err)
	}
	return nil
}

// Elapsed is the presentation time of a 0-based frame index.
func Elapsed(index int, fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(index) / fps * float64(time.Second))
}

// FormatElapsed renders d as MM:SS.mmm from its minute, second and
// millisecond remainders.
func FormatElapsed(d time.Duration) string {
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d.%03d", ms/60000, (ms/1000)%60, ms%1000)
}
