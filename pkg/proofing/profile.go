package proofing

import (
	"fmt"

	"seehuhn.de/go/icc"
)

// Profile describes a CMYK output condition offered for soft proofing.
type Profile struct {
	ID         string  `toml:"id" json:"id"`
	Name       string  `toml:"name" json:"name"`
	URL        string  `toml:"url" json:"url,omitempty"`
	InkLimit   float64 `toml:"ink_limit" json:"ink_limit"`
	DotGain    float64 `toml:"dot_gain" json:"dot_gain"`
	PaperWhite string  `toml:"paper_white" json:"paper_white,omitempty"`
}

// DefaultProfiles is the fixed list of output conditions. The first entry is
// the fallback for unknown identifiers.
var DefaultProfiles = []Profile{
	{
		ID:         "fogra39",
		Name:       "FOGRA39 (ISO Coated v2)",
		URL:        "storage://profiles/ISOcoated_v2_eci.icc",
		InkLimit:   3.30,
		DotGain:    0.14,
		PaperWhite: "#ffffff",
	},
	{
		ID:         "fogra51",
		Name:       "FOGRA51 (PSO Coated v3)",
		URL:        "storage://profiles/PSOcoated_v3.icc",
		InkLimit:   3.00,
		DotGain:    0.13,
		PaperWhite: "#fdfdfb",
	},
	{
		ID:         "fogra52",
		Name:       "FOGRA52 (PSO Uncoated v3)",
		URL:        "storage://profiles/PSOuncoated_v3_FOGRA52.icc",
		InkLimit:   2.80,
		DotGain:    0.20,
		PaperWhite: "#f6f4ee",
	},
	{
		ID:         "gracol2013",
		Name:       "GRACoL 2013 (CRPC6)",
		URL:        "storage://profiles/GRACoL2013_CRPC6.icc",
		InkLimit:   3.20,
		DotGain:    0.15,
		PaperWhite: "#fbfbf8",
	},
	{
		ID:         "swop",
		Name:       "U.S. Web Coated (SWOP) v2",
		URL:        "storage://profiles/USWebCoatedSWOP.icc",
		InkLimit:   3.00,
		DotGain:    0.18,
		PaperWhite: "#f8f8f4",
	},
}

// ResolveProfile returns the profile with the given id, or the first profile
// when the id is unknown or empty. An empty list falls back to DefaultProfiles.
func ResolveProfile(profiles []Profile, id string) Profile {
	if len(profiles) == 0 {
		profiles = DefaultProfiles
	}
	for _, p := range profiles {
		if p.ID == id {
			return p
		}
	}
	return profiles[0]
}

// ValidateOutputProfile checks that data is an ICC profile for a CMYK device.
func ValidateOutputProfile(data []byte) error {
	return validate(data, icc.CMYKSpace)
}

// ValidateInputProfile checks that data is an ICC profile for an RGB source.
func ValidateInputProfile(data []byte) error {
	return validate(data, icc.RGBSpace)
}

func validate(data []byte, want icc.ColorSpace) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty profile", ErrInvalidProfile)
	}
	p, err := icc.Decode(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	if p.ColorSpace != want {
		return fmt.Errorf("%w: colour space %v, want %v", ErrInvalidProfile, p.ColorSpace, want)
	}
	return nil
}
