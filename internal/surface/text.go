package surface

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// FontBook resolves Font descriptions to gg faces. Families are mapped
// onto the Go font family: monospace families use Go Mono, everything else
// Go Regular with its bold and italic cuts.
type FontBook struct {
	mu      sync.Mutex
	sources map[string]*text.FontSource
	faces   map[string]text.Face

	// faces are shared between goroutines enlivening text
	measureMu sync.Mutex
}

var (
	defaultBook     *FontBook
	defaultBookOnce sync.Once
)

// DefaultMeasurer returns the process-wide font book.
func DefaultMeasurer() *FontBook {
	defaultBookOnce.Do(func() { defaultBook = NewFontBook() })
	return defaultBook
}

func NewFontBook() *FontBook {
	return &FontBook{
		sources: make(map[string]*text.FontSource),
		faces:   make(map[string]text.Face),
	}
}

func variant(f Font) (string, []byte) {
	family := strings.ToLower(f.Family)
	if strings.Contains(family, "mono") || strings.Contains(family, "courier") {
		return "mono", gomono.TTF
	}
	bold := f.Weight == "bold" || f.Weight == "bolder" || f.Weight >= "600" && f.Weight <= "900"
	italic := f.Style == "italic" || f.Style == "oblique"
	switch {
	case bold && italic:
		return "bolditalic", gobolditalic.TTF
	case bold:
		return "bold", gobold.TTF
	case italic:
		return "italic", goitalic.TTF
	}
	return "regular", goregular.TTF
}

// Face returns the face for f, or nil when the font data cannot be parsed.
func (b *FontBook) Face(f Font) text.Face {
	size := f.Size
	if size <= 0 {
		size = 10
	}
	name, data := variant(f)
	key := fmt.Sprintf("%s/%g", name, size)

	b.mu.Lock()
	defer b.mu.Unlock()
	if face, ok := b.faces[key]; ok {
		return face
	}
	src, ok := b.sources[name]
	if !ok {
		var err error
		src, err = text.NewFontSource(data)
		if err != nil {
			return nil
		}
		b.sources[name] = src
	}
	face := src.Face(size)
	b.faces[key] = face
	return face
}

// MeasureText implements TextMeasurer. Without a face it falls back to a
// fixed advance of half the font size per rune.
func (b *FontBook) MeasureText(f Font, s string) TextMetrics {
	face := b.Face(f)
	if face == nil {
		n := float64(len([]rune(s)))
		return TextMetrics{Width: n * f.Size / 2, Ascent: f.Size * 0.8, Descent: f.Size * 0.2}
	}
	b.measureMu.Lock()
	defer b.measureMu.Unlock()
	m := face.Metrics()
	return TextMetrics{Width: face.Advance(s), Ascent: m.Ascent, Descent: m.Descent}
}
