package canvas_test

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/comboworks-ops/webprinter-platform-sub007/pkg/canvas"
)

func TestRasterizeSize(t *testing.T) {
	c := canvas.New(400, 300)
	c.Add(&canvas.Object{Role: canvas.RoleContent, Shape: canvas.ShapeRect, Left: 0, Top: 0, Width: 400, Height: 300, Fill: "#ff0000", Visible: true})

	img, err := c.Rasterize(canvas.RenderOptions{Left: 100, Top: 100, Width: 40, Height: 20, Multiplier: 2})
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}

	b := img.Bounds()
	if b.Dx() != 80 || b.Dy() != 40 {
		t.Errorf("size = %dx%d, want 80x40", b.Dx(), b.Dy())
	}
}

func TestRasterizeTopLeftOrigin(t *testing.T) {
	c := canvas.New(100, 100)
	c.Add(&canvas.Object{Role: canvas.RoleContent, Shape: canvas.ShapeRect, Left: 0, Top: 0, Width: 40, Height: 10, Fill: "#0000ff", Visible: true})

	img, err := c.Rasterize(canvas.RenderOptions{Width: 40, Height: 20, Multiplier: 1})
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}

	top := img.RGBAAt(20, 5)
	if top.B < 200 || top.A != 255 {
		t.Errorf("top pixel = %+v, want opaque blue", top)
	}
	bottom := img.RGBAAt(20, 15)
	if bottom.A != 0 {
		t.Errorf("bottom pixel = %+v, want transparent", bottom)
	}
}

func TestRasterizeSkipsHidden(t *testing.T) {
	c := canvas.New(100, 100)
	c.Add(&canvas.Object{Role: canvas.RoleGuide, Shape: canvas.ShapeRect, Width: 100, Height: 100, Fill: "#00ff00", Visible: false})

	img, err := c.Rasterize(canvas.RenderOptions{Width: 20, Height: 20, Multiplier: 1})
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if px := img.RGBAAt(10, 10); px.A != 0 {
		t.Errorf("pixel = %+v, want transparent", px)
	}
}

func TestRasterizeBackground(t *testing.T) {
	c := canvas.New(100, 100)
	c.Background = "#ffffff"

	img, err := c.Rasterize(canvas.RenderOptions{Width: 20, Height: 20, Multiplier: 1})
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if px := img.RGBAAt(10, 10); px.R != 255 || px.A != 255 {
		t.Errorf("pixel = %+v, want opaque white", px)
	}
}

func TestRasterizeEmptyRegion(t *testing.T) {
	c := canvas.New(100, 100)
	_, err := c.Rasterize(canvas.RenderOptions{Width: 0, Height: 20})
	if !errors.Is(err, canvas.ErrEmptyRegion) {
		t.Errorf("err = %v, want ErrEmptyRegion", err)
	}
}

func TestRasterizeInvalidImage(t *testing.T) {
	c := canvas.New(100, 100)
	c.Add(&canvas.Object{ID: "photo", Role: canvas.RoleContent, Shape: canvas.ShapeImage, Width: 10, Height: 10, Image: []byte("not an image"), Visible: true})

	_, err := c.Rasterize(canvas.RenderOptions{Width: 20, Height: 20, Multiplier: 1})
	if !errors.Is(err, canvas.ErrInvalidImage) {
		t.Errorf("err = %v, want ErrInvalidImage", err)
	}
}

func TestRasterizeImageObject(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}

	c := canvas.New(100, 100)
	c.Add(&canvas.Object{Role: canvas.RoleContent, Shape: canvas.ShapeImage, Width: 20, Height: 20, Image: buf.Bytes(), Visible: true})

	img, err := c.Rasterize(canvas.RenderOptions{Width: 20, Height: 20, Multiplier: 1})
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if px := img.RGBAAt(10, 10); px.A == 0 {
		t.Errorf("pixel = %+v, want image content", px)
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	c := canvas.New(100, 100)
	c.Background = "#123456"

	url, err := c.ToDataURL(canvas.RenderOptions{Width: 10, Height: 10, Multiplier: 1, Format: canvas.FormatPNG})
	if err != nil {
		t.Fatalf("ToDataURL() error = %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("url prefix = %q", url[:min(len(url), 30)])
	}

	data, mime, err := canvas.DecodeDataURL(url)
	if err != nil {
		t.Fatalf("DecodeDataURL() error = %v", err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q, want image/png", mime)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if img.Bounds().Dx() != 10 {
		t.Errorf("width = %d, want 10", img.Bounds().Dx())
	}
}

func TestDecodeDataURLErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"no prefix", "image/png;base64,AAAA"},
		{"no payload", "data:image/png;base64"},
		{"not base64", "data:image/png,AAAA"},
		{"bad payload", "data:image/png;base64,***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := canvas.DecodeDataURL(tt.in)
			if !errors.Is(err, canvas.ErrInvalidDataURL) {
				t.Errorf("err = %v, want ErrInvalidDataURL", err)
			}
		})
	}
}

func TestEncodeJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	data, err := canvas.Encode(img, canvas.FormatJPEG, 0)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("output is not a JPEG stream")
	}
}
