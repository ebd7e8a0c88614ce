// Package canvas models the design canvas the editor works on: a pasteboard
// holding a document area plus the objects placed on it. Every object carries
// an explicit Role so that guides, background placeholders and imported PDF
// pages can be told apart from user content without ad hoc tags.
package canvas

import (
	"encoding/json"
	"fmt"
)

// Shape identifies how an object is drawn.
type Shape string

const (
	ShapeRect    Shape = "rect"
	ShapeEllipse Shape = "ellipse"
	ShapeImage   Shape = "image"
)

// Object is a single element on the canvas. Positions and sizes are in
// canvas pixels, measured from the top-left corner of the pasteboard.
type Object struct {
	ID          string         `json:"id,omitempty"`
	Role        Role           `json:"role"`
	Shape       Shape          `json:"shape"`
	Left        float64        `json:"left"`
	Top         float64        `json:"top"`
	Width       float64        `json:"width"`
	Height      float64        `json:"height"`
	Fill        string         `json:"fill,omitempty"`
	Stroke      string         `json:"stroke,omitempty"`
	StrokeWidth float64        `json:"stroke_width,omitempty"`
	Opacity     *float64       `json:"opacity,omitempty"`
	Image       []byte         `json:"image,omitempty"`
	Visible     bool           `json:"visible"`
	PDF         *PDFBackground `json:"pdf,omitempty"`
}

// UnmarshalJSON decodes an object, treating a missing "visible" field as true.
func (o *Object) UnmarshalJSON(data []byte) error {
	type alias Object
	a := alias{Visible: true}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*o = Object(a)
	return nil
}

func (o *Object) opacity() float64 {
	if o.Opacity == nil {
		return 1
	}
	return min(max(*o.Opacity, 0), 1)
}

// Canvas is the object graph of one design. It is mutated in place while an
// export captures pixels; every mutation done by this package is undone
// before the capturing call returns.
type Canvas struct {
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Background string    `json:"background,omitempty"`
	Objects    []*Object `json:"objects"`

	renders  int
	onRender func()
}

// New creates an empty canvas of the given pixel size.
func New(width, height float64) *Canvas {
	return &Canvas{
		Width:   width,
		Height:  height,
		Objects: []*Object{},
	}
}

// Parse decodes a canvas from its JSON representation.
func Parse(data []byte) (*Canvas, error) {
	var c Canvas
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCanvas, err)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return nil, fmt.Errorf("%w: size %gx%g", ErrInvalidCanvas, c.Width, c.Height)
	}
	if c.Objects == nil {
		c.Objects = []*Object{}
	}
	return &c, nil
}

// Add appends objects to the top of the stacking order.
func (c *Canvas) Add(objs ...*Object) {
	c.Objects = append(c.Objects, objs...)
}

// OnRender registers a callback invoked on every render request.
func (c *Canvas) OnRender(fn func()) {
	c.onRender = fn
}

// RequestRenderAll signals that the visible state of the canvas changed.
func (c *Canvas) RequestRenderAll() {
	c.renders++
	if c.onRender != nil {
		c.onRender()
	}
}

// RenderRequests returns how many render requests the canvas has received.
func (c *Canvas) RenderRequests() int {
	return c.renders
}

// HasOverlays reports whether any visible user content sits on the canvas.
// Only objects with RoleContent and Visible set count. Hidden content is
// left out of every capture, so it never forces compositing; guides and
// backgrounds never count.
func (c *Canvas) HasOverlays() bool {
	if c == nil {
		return false
	}
	for _, o := range c.Objects {
		if o.Role == RoleContent && o.Visible {
			return true
		}
	}
	return false
}

// Visibility returns the visible flag of every object, keyed by position.
func (c *Canvas) Visibility() []bool {
	v := make([]bool, len(c.Objects))
	for i, o := range c.Objects {
		v[i] = o.Visible
	}
	return v
}
