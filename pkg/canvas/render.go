package canvas

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	tdcanvas "github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
)

// Format is the encoding of a rendered region.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// MimeType returns the media type of the format.
func (f Format) MimeType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// RenderOptions selects the canvas region to rasterize. Left, Top, Width and
// Height are canvas pixels; Multiplier scales them to output pixels.
type RenderOptions struct {
	Left       float64
	Top        float64
	Width      float64
	Height     float64
	Multiplier float64
	Format     Format
	Quality    int
}

var transparent = color.RGBA{}

// Rasterize draws the visible objects inside the region into an RGBA image.
// Areas not covered by any object (or by the background colour) stay
// transparent.
func (c *Canvas) Rasterize(opts RenderOptions) (*image.RGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: %gx%g", ErrEmptyRegion, opts.Width, opts.Height)
	}
	multiplier := opts.Multiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	dst := tdcanvas.New(opts.Width, opts.Height)
	ctx := tdcanvas.NewContext(dst)

	if bg, ok := parseColor(c.Background, 1); ok {
		ctx.SetFillColor(bg)
		ctx.SetStrokeColor(transparent)
		ctx.DrawPath(0, 0, tdcanvas.Rectangle(opts.Width, opts.Height))
	}

	for _, o := range c.Objects {
		if !o.Visible {
			continue
		}
		if err := drawObject(ctx, o, opts); err != nil {
			return nil, err
		}
	}

	return rasterizer.Draw(dst, tdcanvas.DPMM(multiplier), tdcanvas.DefaultColorSpace), nil
}

// Render rasterizes the region and encodes it in the requested format.
func (c *Canvas) Render(opts RenderOptions) ([]byte, error) {
	img, err := c.Rasterize(opts)
	if err != nil {
		return nil, err
	}
	return Encode(img, opts.Format, opts.Quality)
}

// ToDataURL rasterizes the region and returns it as a base64 data URL.
func (c *Canvas) ToDataURL(opts RenderOptions) (string, error) {
	data, err := c.Render(opts)
	if err != nil {
		return "", err
	}
	return EncodeDataURL(data, opts.Format), nil
}

// Encode writes img as PNG or JPEG. Quality applies to JPEG only.
func Encode(img image.Image, format Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJPEG:
		if quality <= 0 {
			quality = 92
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// EncodeDataURL wraps encoded image bytes in a data URL.
func EncodeDataURL(data []byte, format Format) string {
	return "data:" + format.MimeType() + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL extracts the payload and media type of a base64 data URL.
func DecodeDataURL(s string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURL)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing payload", ErrInvalidDataURL)
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, "", fmt.Errorf("%w: payload is not base64", ErrInvalidDataURL)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidDataURL, err)
	}
	return data, mime, nil
}

// drawObject draws o relative to the render region. The region uses a
// top-left origin; tdewolff/canvas draws bottom-up, so y is flipped here.
func drawObject(ctx *tdcanvas.Context, o *Object, opts RenderOptions) error {
	if o.Width <= 0 || o.Height <= 0 {
		return nil
	}

	x := o.Left - opts.Left
	y := opts.Height - (o.Top - opts.Top) - o.Height

	switch o.Shape {
	case ShapeImage:
		return drawImage(ctx, o, x, y)
	case ShapeEllipse:
		applyStyle(ctx, o)
		ctx.DrawPath(x+o.Width/2, y+o.Height/2, tdcanvas.Ellipse(o.Width/2, o.Height/2))
	default:
		applyStyle(ctx, o)
		ctx.DrawPath(x, y, tdcanvas.Rectangle(o.Width, o.Height))
	}
	return nil
}

func drawImage(ctx *tdcanvas.Context, o *Object, x, y float64) error {
	if len(o.Image) == 0 {
		return nil
	}

	img, _, err := image.Decode(bytes.NewReader(o.Image))
	if err != nil {
		return fmt.Errorf("%w: object %s: %w", ErrInvalidImage, o.ID, err)
	}

	px := img.Bounds().Dx()
	if px == 0 {
		return nil
	}
	ctx.DrawImage(x, y, img, tdcanvas.DPMM(float64(px)/o.Width))
	return nil
}

func applyStyle(ctx *tdcanvas.Context, o *Object) {
	alpha := o.opacity()

	if fill, ok := parseColor(o.Fill, alpha); ok {
		ctx.SetFillColor(fill)
	} else {
		ctx.SetFillColor(transparent)
	}

	if stroke, ok := parseColor(o.Stroke, alpha); ok && o.StrokeWidth > 0 {
		ctx.SetStrokeColor(stroke)
		ctx.SetStrokeWidth(o.StrokeWidth)
	} else {
		ctx.SetStrokeColor(transparent)
	}
}

func parseColor(s string, alpha float64) (color.RGBA, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "transparent") || strings.EqualFold(s, "none") {
		return transparent, false
	}
	base := tdcanvas.Hex(s)
	a := float64(base.A) / 255 * alpha
	return tdcanvas.RGBA(float64(base.R)/255, float64(base.G)/255, float64(base.B)/255, a), true
}
