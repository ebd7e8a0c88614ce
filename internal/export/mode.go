package export

import "fmt"

// Mode selects one export pipeline.
type Mode int

const (
	ModePrint Mode = iota + 1
	ModeProof
	ModeOriginal
	ModeVector
)

// Modes lists every export mode in presentation order.
var Modes = []Mode{ModePrint, ModeProof, ModeOriginal, ModeVector}

var modeNames = map[Mode]string{
	ModePrint:    "print_pdf",
	ModeProof:    "proof_pdf",
	ModeOriginal: "original_pdf",
	ModeVector:   "vector_pdf",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode resolves a mode name such as "vector_pdf".
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedMode, s)
}

func (m Mode) MarshalText() ([]byte, error) {
	name, ok := modeNames[m]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMode, int(m))
	}
	return []byte(name), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
