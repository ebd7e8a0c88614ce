package export

import (
	"bytes"
	"fmt"
	"image"

	tdcanvas "github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
)

// Creator is written into the document properties of every generated PDF.
const Creator = "Webprinter Designer"

// Info holds the PDF document properties of one export.
type Info struct {
	Title    string
	Subject  string
	Keywords string
	Author   string
	Creator  string
}

func rasterInfo(mode Mode, doc DocumentSpec, profileName string) Info {
	info := Info{
		Author:  DeriveName(doc.Name),
		Creator: Creator,
	}
	switch mode {
	case ModeProof:
		info.Title = "Proof PDF (CMYK Simulation)"
		info.Subject = fmt.Sprintf("Proof PDF (CMYK Simulation), %s", profileName)
		info.Keywords = "proof, soft proof, cmyk simulation"
	default:
		info.Title = "Print PDF"
		info.Subject = fmt.Sprintf("Print PDF, %s", profileName)
		info.Keywords = "print, pdf, cmyk"
	}
	return info
}

// assembleRasterPDF writes a single-page PDF of widthMM x heightMM with img
// stretched over the whole page.
func assembleRasterPDF(img image.Image, widthMM, heightMM float64, info Info) ([]byte, error) {
	px := img.Bounds().Dx()
	if px == 0 || img.Bounds().Dy() == 0 {
		return nil, fmt.Errorf("%w: empty raster", ErrCaptureFailed)
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, widthMM, heightMM, nil)
	writer.SetInfo(info.Title, info.Subject, info.Keywords, info.Author, info.Creator)

	page := tdcanvas.New(widthMM, heightMM)
	ctx := tdcanvas.NewContext(page)
	ctx.DrawImage(0, 0, img, tdcanvas.DPMM(float64(px)/widthMM))
	page.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
