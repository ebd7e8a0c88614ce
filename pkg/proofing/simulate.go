package proofing

import (
	"context"
	"image"
	"image/color"
	"runtime"

	tdcanvas "github.com/tdewolff/canvas"
	"golang.org/x/sync/errgroup"
)

// transform holds the parameters of one soft-proof pass.
type transform struct {
	inkLimit float64
	dotGain  float64
	paper    color.RGBA
}

func newTransform(p Profile) transform {
	t := transform{
		inkLimit: p.InkLimit,
		dotGain:  p.DotGain,
		paper:    color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
	if t.inkLimit <= 0 || t.inkLimit > 4 {
		t.inkLimit = 4
	}
	t.dotGain = min(max(t.dotGain, 0), 0.5)
	if p.PaperWhite != "" {
		t.paper = tdcanvas.Hex(p.PaperWhite)
		t.paper.A = 255
	}
	return t
}

// Apply converts img in place so it shows how the colours would print. The
// image is flattened onto paper white; rows are processed in parallel bands.
func (t transform) Apply(ctx context.Context, img *image.RGBA) error {
	b := img.Bounds()
	rows := b.Dy()
	if rows == 0 {
		return nil
	}

	workers := min(runtime.NumCPU(), rows)
	band := (rows + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for y0 := b.Min.Y; y0 < b.Max.Y; y0 += band {
		y1 := min(y0+band, b.Max.Y)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for y := y0; y < y1; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					img.SetRGBA(x, y, t.pixel(img.RGBAAt(x, y)))
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (t transform) pixel(px color.RGBA) color.RGBA {
	// Flatten premultiplied RGBA onto paper.
	inv := 255 - uint32(px.A)
	r := uint8(uint32(px.R) + uint32(t.paper.R)*inv/255)
	g := uint8(uint32(px.G) + uint32(t.paper.G)*inv/255)
	bl := uint8(uint32(px.B) + uint32(t.paper.B)*inv/255)

	c8, m8, y8, k8 := color.RGBToCMYK(r, g, bl)
	c, m, y, k := float64(c8)/255, float64(m8)/255, float64(y8)/255, float64(k8)/255

	if total := c + m + y + k; total > t.inkLimit {
		// Reduce chromatic inks first; black carries the detail.
		chroma := c + m + y
		if chroma > 0 {
			scale := max(t.inkLimit-k, 0) / chroma
			c, m, y = c*scale, m*scale, y*scale
		}
	}

	c, m, y, k = t.gain(c), t.gain(m), t.gain(y), t.gain(k)

	out := color.CMYK{C: unit(c), M: unit(m), Y: unit(y), K: unit(k)}
	or, og, ob := color.CMYKToRGB(out.C, out.M, out.Y, out.K)

	return color.RGBA{
		R: uint8(uint32(or) * uint32(t.paper.R) / 255),
		G: uint8(uint32(og) * uint32(t.paper.G) / 255),
		B: uint8(uint32(ob) * uint32(t.paper.B) / 255),
		A: 255,
	}
}

// gain applies a midtone-weighted dot gain curve. Solid and empty tones are
// unchanged; the largest increase is at 50%.
func (t transform) gain(v float64) float64 {
	return min(v+4*t.dotGain*v*(1-v), 1)
}

func unit(v float64) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}
