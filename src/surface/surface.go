package surface

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"math"
)

// Format selects the encoder a surface renders through.
type Format int

const (
	PNG Format = iota
	SVG
)

func (f Format) String() string {
	if f == SVG {
		return "svg"
	}
	return "png"
}

// ContentType returns the MIME type of the encoded bitmap.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// ParseFormat accepts "png" or "svg"; anything else falls back to PNG.
func ParseFormat(s string) Format {
	if s == "svg" {
		return SVG
	}
	return PNG
}

// Default bitmap size of a canvas that has no explicit attributes.
const (
	DefaultWidth  = 300
	DefaultHeight = 150
)

// Surface is a drawable chart element: a CSS box plus a backing bitmap whose size
// is kept in sync with the box times the device pixel ratio.
type Surface struct {
	ID string
	// CSSWidth is the laid out width in CSS pixels; zero means "not laid out yet".
	CSSWidth float64
	// Width and Height are the bitmap attributes in device pixels.
	Width  int
	Height int
	Format Format

	resizes int
	data    []byte
}

// New returns a surface with the given bitmap attributes.
func New(id string, width, height int) *Surface {
	return &Surface{ID: id, Width: width, Height: height}
}

// Resizes counts how many times Prepare had to change the bitmap size.
func (s *Surface) Resizes() int { return s.resizes }

// Bytes returns the last encoded frame (PNG or SVG), nil before the first render.
func (s *Surface) Bytes() []byte { return s.data }

// Image decodes the last PNG frame.
func (s *Surface) Image() (image.Image, error) {
	if s.Format != PNG {
		return nil, errors.New("surface is not raster")
	}
	if len(s.data) == 0 {
		return nil, errors.New("surface has not been rendered")
	}
	return png.Decode(bytes.NewReader(s.data))
}

// CSSSize resolves the display size: the laid out width (or the bitmap width scaled
// back by dpr) and a height that keeps the attribute aspect, 3:8 when unknown.
func (s *Surface) CSSSize(dpr float64) (float64, float64) {
	dpr = NormalizeDPR(dpr)
	w := s.CSSWidth
	if w <= 0 {
		w = float64(s.Width) / dpr
	}
	if w <= 0 {
		w = DefaultWidth
	}
	if s.Width > 0 && s.Height > 0 {
		return w, w * float64(s.Height) / float64(s.Width)
	}
	return w, w * 3 / 8
}

// NormalizeDPR maps missing or nonsensical ratios to 1.
func NormalizeDPR(dpr float64) float64 {
	if dpr <= 0 || math.IsNaN(dpr) || math.IsInf(dpr, 0) {
		return 1
	}
	return dpr
}
