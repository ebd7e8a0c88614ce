package canvas

import "fmt"

// Role classifies a canvas object for export purposes.
type Role int

const (
	// RoleContent is anything the user placed on the design.
	RoleContent Role = iota
	// RoleGuide marks trim and safe-area outlines.
	RoleGuide
	// RoleDocumentBackground marks the white document placeholder.
	RoleDocumentBackground
	// RolePDFBackground marks an imported PDF page used as background.
	RolePDFBackground
)

var roleNames = map[Role]string{
	RoleContent:            "content",
	RoleGuide:              "guide",
	RoleDocumentBackground: "document_background",
	RolePDFBackground:      "pdf_background",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// IsGuide reports whether objects of this role must never appear in a capture.
func (r Role) IsGuide() bool {
	switch r {
	case RoleGuide, RoleDocumentBackground:
		return true
	case RoleContent, RolePDFBackground:
		return false
	}
	return false
}

// MarshalText encodes the role as its name.
func (r Role) MarshalText() ([]byte, error) {
	name, ok := roleNames[r]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, int(r))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a role name. An empty name decodes to RoleContent.
func (r *Role) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*r = RoleContent
		return nil
	}
	for role, name := range roleNames {
		if name == string(text) {
			*r = role
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownRole, text)
}
