package canvas

// GuideState records the visibility an object had before a capture hid it.
type GuideState struct {
	Object  *Object
	Visible bool
}

// HideGuides hides every guide and document-background object and returns
// their previous visibility. A nil canvas yields an empty list.
func HideGuides(c *Canvas) []GuideState {
	if c == nil {
		return []GuideState{}
	}

	states := []GuideState{}
	for _, o := range c.Objects {
		if !o.Role.IsGuide() {
			continue
		}
		states = append(states, GuideState{Object: o, Visible: o.Visible})
		o.Visible = false
	}

	if len(states) > 0 {
		c.RequestRenderAll()
	}
	return states
}

// RestoreGuides puts back the visibility recorded by HideGuides.
func RestoreGuides(c *Canvas, states []GuideState) {
	if c == nil || len(states) == 0 {
		return
	}
	restore(states)
	c.RequestRenderAll()
}

// WithHiddenGuides runs fn with guides hidden. The guides are restored when fn
// returns or panics; fn's error or panic still reaches the caller.
func WithHiddenGuides(c *Canvas, fn func() error) error {
	states := HideGuides(c)
	defer RestoreGuides(c, states)
	return fn()
}

// WithOverlayIsolation runs fn with only user content visible: guides, the
// document background placeholder and any imported PDF page are hidden and the
// canvas background is cleared so that a capture yields a transparent overlay.
// Visibility and background are restored when fn returns or panics.
func WithOverlayIsolation(c *Canvas, fn func() error) error {
	if c == nil {
		return fn()
	}

	states := []GuideState{}
	for _, o := range c.Objects {
		if o.Role == RoleContent {
			continue
		}
		states = append(states, GuideState{Object: o, Visible: o.Visible})
		o.Visible = false
	}

	background := c.Background
	c.Background = ""
	c.RequestRenderAll()

	defer func() {
		restore(states)
		c.Background = background
		c.RequestRenderAll()
	}()

	return fn()
}

func restore(states []GuideState) {
	for _, s := range states {
		if s.Object != nil {
			s.Object.Visible = s.Visible
		}
	}
}
