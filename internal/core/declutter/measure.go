package declutter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rook-prog/CartoZen/internal/core/domain"
)

const (
	pointsPerInch = 72.0
	glyphEm       = 0.6
	lineEm        = 1.2
)

// Page sizes in inches, portrait.
var pageSizes = map[string][2]float64{
	"a4":     {8.27, 11.69},
	"a3":     {11.69, 16.54},
	"letter": {8.5, 11},
}

// PageMeasurer estimates text size from a monospace approximation at a font
// size in points, converted to degrees for a map filling the page.
type PageMeasurer struct {
	FontSize  float64
	DegPerPtX float64
	DegPerPtY float64
}

// NewPageMeasurer maps the extent onto the named page ("A4", "A3",
// "Letter") in "portrait" or "landscape" orientation.
func NewPageMeasurer(b domain.Bounds, page, orientation string, fontSize float64) (*PageMeasurer, error) {
	size, ok := pageSizes[strings.ToLower(strings.TrimSpace(page))]
	if !ok {
		return nil, fmt.Errorf("unknown page size %q (want A4, A3 or Letter)", page)
	}
	w, h := size[0], size[1]
	switch strings.ToLower(strings.TrimSpace(orientation)) {
	case "", "portrait":
	case "landscape":
		w, h = h, w
	default:
		return nil, fmt.Errorf("unknown orientation %q (want portrait or landscape)", orientation)
	}
	if fontSize <= 0 {
		return nil, fmt.Errorf("font size must be positive, got %v", fontSize)
	}
	return &PageMeasurer{
		FontSize:  fontSize,
		DegPerPtX: b.LonSpan() / (w * pointsPerInch),
		DegPerPtY: b.LatSpan() / (h * pointsPerInch),
	}, nil
}

// Measure implements Measurer.
func (p *PageMeasurer) Measure(text string) (float64, float64) {
	lines := strings.Split(text, "\n")
	widest := 0
	for _, l := range lines {
		if n := utf8.RuneCountInString(l); n > widest {
			widest = n
		}
	}
	wPt := float64(widest) * glyphEm * p.FontSize
	hPt := float64(len(lines)) * lineEm * p.FontSize
	return wPt * p.DegPerPtX, hPt * p.DegPerPtY
}
