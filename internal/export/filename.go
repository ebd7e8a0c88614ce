package export

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	fallbackRasterName = "design"
	fallbackVectorName = "vector-export"
	fallbackSourceName = "original"
	editedSuffix       = "_edited"
	pdfExt             = ".pdf"
	maxStemLength      = 120
)

var placeholderNames = map[string]bool{
	"untitled":          true,
	"untitled design":   true,
	"unavngivet":        true,
	"unavngivet design": true,
	"design":            true,
	"ny design":         true,
	"new design":        true,
}

// SanitizeFilename reduces name to letters A-Z, digits, the Danish letters
// æøå, spaces and hyphens. Other characters become hyphens, runs of hyphens
// and spaces collapse, and both ends are trimmed.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range norm.NFC.String(name) {
		if !allowedRune(r) {
			r = '-'
		}
		b.WriteRune(r)
	}

	out := collapseSpaces(b.String())
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	out = strings.Trim(out, " -")

	if utf8.RuneCountInString(out) > maxStemLength {
		out = strings.TrimRight(string([]rune(out)[:maxStemLength]), " -")
	}
	return out
}

// DeriveName returns the sanitized design name, or "" when the name is empty
// or one of the editor's placeholder names.
func DeriveName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || placeholderNames[strings.ToLower(norm.NFC.String(trimmed))] {
		return ""
	}
	return SanitizeFilename(trimmed)
}

// RasterFilename names a print or proof export.
func RasterFilename(doc DocumentSpec) string {
	if name := DeriveName(doc.Name); name != "" {
		return name + pdfExt
	}
	return fallbackRasterName + pdfExt
}

// OriginalFilename names a pass-through export: the uploaded filename when
// known, else the design name.
func OriginalFilename(doc DocumentSpec, src *PDFSourceMeta) string {
	if src != nil {
		if stem := SanitizeFilename(stripPDFExt(src.OriginalFilename)); stem != "" {
			return stem + pdfExt
		}
	}
	if name := DeriveName(doc.Name); name != "" {
		return name + pdfExt
	}
	return fallbackSourceName + pdfExt
}

// VectorFilename names a vector export: the design name when set, else the
// original PDF's name with an "_edited" suffix.
func VectorFilename(doc DocumentSpec, originalFilename string) string {
	if name := DeriveName(doc.Name); name != "" {
		return name + pdfExt
	}
	if stem := SanitizeFilename(stripPDFExt(originalFilename)); stem != "" {
		return stem + editedSuffix + pdfExt
	}
	return fallbackVectorName + pdfExt
}

func allowedRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '-':
		return true
	case strings.ContainsRune("æøåÆØÅ", r):
		return true
	}
	return false
}

func stripPDFExt(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	if ext := filepath.Ext(name); strings.EqualFold(ext, pdfExt) {
		name = name[:len(name)-len(ext)]
	}
	return name
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
