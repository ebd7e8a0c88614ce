package canvas

// PDFPageBackgroundKind discriminates PDF page backgrounds from other
// background payloads.
const PDFPageBackgroundKind = "pdf_page_background"

// PDFBackground carries the original bytes of an imported PDF so that the
// page it came from can be re-embedded losslessly on export.
type PDFBackground struct {
	Kind             string `json:"kind"`
	OriginalPDF      []byte `json:"original_pdf,omitempty"`
	PageIndex        int    `json:"page_index"`
	OriginalFilename string `json:"original_filename,omitempty"`
}

// NewPDFBackground wraps the original PDF bytes of page pageIndex (0-based).
func NewPDFBackground(data []byte, pageIndex int, filename string) *PDFBackground {
	return &PDFBackground{
		Kind:             PDFPageBackgroundKind,
		OriginalPDF:      data,
		PageIndex:        pageIndex,
		OriginalFilename: filename,
	}
}

// DetectPDFBackground returns the imported PDF page background, if any.
func DetectPDFBackground(c *Canvas) (*PDFBackground, bool) {
	o := c.PDFBackgroundObject()
	if o == nil {
		return nil, false
	}
	return o.PDF, true
}

// PDFBackgroundObject returns the object holding the imported PDF page, or nil.
func (c *Canvas) PDFBackgroundObject() *Object {
	if c == nil {
		return nil
	}
	for _, o := range c.Objects {
		if o.Role != RolePDFBackground || o.PDF == nil {
			continue
		}
		if o.PDF.Kind == PDFPageBackgroundKind {
			return o
		}
	}
	return nil
}

// SetPDFBackground places (or replaces) the PDF page background object. The
// object spans the given area and sits directly above the document background
// placeholder. preview is an optional raster rendition used by raster exports.
func (c *Canvas) SetPDFBackground(bg *PDFBackground, left, top, width, height float64, preview []byte) *Object {
	obj := &Object{
		ID:      "pdf-background",
		Role:    RolePDFBackground,
		Shape:   ShapeImage,
		Left:    left,
		Top:     top,
		Width:   width,
		Height:  height,
		Image:   preview,
		Visible: true,
		PDF:     bg,
	}

	objects := make([]*Object, 0, len(c.Objects)+1)
	for _, o := range c.Objects {
		if o.Role == RoleDocumentBackground {
			objects = append(objects, o)
		}
	}
	objects = append(objects, obj)
	for _, o := range c.Objects {
		if o.Role == RoleDocumentBackground || o.Role == RolePDFBackground {
			continue
		}
		objects = append(objects, o)
	}
	c.Objects = objects
	return obj
}
