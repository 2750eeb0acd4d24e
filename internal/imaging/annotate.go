package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/clone"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/pose-tools-mcp/internal/pose"
)

// ChannelOrder describes how the red and blue channels are laid out in a
// buffer handed to the annotator.
type ChannelOrder int

const (
	// RGB is the order of every decoded Go image.
	RGB ChannelOrder = iota
	// BGR is the order of OpenCV buffers converted back into Go images.
	BGR
)

func (o ChannelOrder) String() string {
	if o == BGR {
		return "bgr"
	}
	return "rgb"
}

// Marker defaults.
const (
	DefaultMarkerRadius = 5
	DefaultMarkerColor  = "#00FF00"
)

// Annotator draws a filled disc at every detected landmark.
type Annotator struct {
	// Radius of each marker in pixels.
	Radius int

	// Color of each marker, always given in RGB.
	Color color.RGBA

	// Order is the channel order of the input buffer. Output is always RGB.
	// Use BGR only for pixels that really are BGR, such as a gocv Mat copied
	// into an image.RGBA without conversion; setting it for a decoded upload
	// swaps red and blue across the whole photo.
	Order ChannelOrder
}

// DefaultAnnotator returns green 5 px markers for RGB input.
func DefaultAnnotator() *Annotator {
	return &Annotator{
		Radius: DefaultMarkerRadius,
		Color:  color.RGBA{R: 0, G: 255, B: 0, A: 255},
		Order:  RGB,
	}
}

// NewAnnotator builds an annotator from a radius and a "#RRGGBB" color.
func NewAnnotator(radius int, hex string, order ChannelOrder) (*Annotator, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("marker radius must be positive, got %d", radius)
	}
	c, err := ParseColor(hex)
	if err != nil {
		return nil, err
	}
	return &Annotator{Radius: radius, Color: c, Order: order}, nil
}

// ParseColor parses a "#RRGGBB" hex color into an opaque RGBA color.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid marker color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// PixelPoint converts a normalized coordinate to the pixel it falls on
// within bounds: round(x*width), round(y*height), offset by bounds.Min.
func PixelPoint(p pose.Point2D, bounds image.Rectangle) image.Point {
	return image.Point{
		X: bounds.Min.X + int(math.Round(p.X*float64(bounds.Dx()))),
		Y: bounds.Min.Y + int(math.Round(p.Y*float64(bounds.Dy()))),
	}
}

// Annotate returns a copy of img with a marker at every landmark in set.
//
// The source image is never modified and the result has the same bounds.
// Markers are clipped to the image; a landmark outside the frame draws
// nothing or only the part of its disc that overlaps the frame.
//
// When a.Order is BGR the markers are drawn with red and blue exchanged and
// the whole result is converted to RGB, so callers always receive an RGB
// image with markers in the configured color.
func (a *Annotator) Annotate(img image.Image, set *pose.LandmarkSet) (*image.RGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("annotate: nil image")
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("annotate: empty image")
	}

	dst := clone.AsRGBA(img)

	marker := a.Color
	if a.Order == BGR {
		marker.R, marker.B = marker.B, marker.R
	}

	for _, l := range set.Landmarks() {
		drawDisc(dst, PixelPoint(l.Point(), bounds), a.Radius, marker)
	}

	if a.Order == BGR {
		return SwapRB(dst), nil
	}
	return dst, nil
}

// SwapRB returns a copy of img with its red and blue channels exchanged.
// It converts between BGR and RGB in either direction.
func SwapRB(img image.Image) *image.RGBA {
	return adjust.Apply(img, func(c color.RGBA) color.RGBA {
		return color.RGBA{R: c.B, G: c.G, B: c.R, A: c.A}
	})
}

// drawDisc fills the pixels within radius of center, clipped to dst.
func drawDisc(dst *image.RGBA, center image.Point, radius int, c color.RGBA) {
	bounds := dst.Bounds()
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			p := image.Point{X: center.X + dx, Y: center.Y + dy}
			if p.In(bounds) {
				dst.SetRGBA(p.X, p.Y, c)
			}
		}
	}
}
