package canvas

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inamate/inamate/canvas-go/internal/scene"
)

// SVGOptions tune ToSVG.
type SVGOptions struct {
	// SuppressPreamble drops the XML declaration and doctype.
	SuppressPreamble bool
	// Width and Height override the canvas size, as SVG lengths.
	Width, Height string
	// NoViewportTransform exports the scene plane instead of the current
	// pan and zoom.
	NoViewportTransform bool
}

func svgNum(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ToSVG renders the canvas as a standalone SVG document.
func (c *Canvas) ToSVG(opts SVGOptions) string {
	var b strings.Builder
	if !opts.SuppressPreamble {
		b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\" standalone=\"no\" ?>\n")
		b.WriteString("<!DOCTYPE svg PUBLIC \"-//W3C//DTD SVG 1.1//EN\" \"http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd\">\n")
	}
	w, h := opts.Width, opts.Height
	if w == "" {
		w = strconv.Itoa(c.Width)
	}
	if h == "" {
		h = strconv.Itoa(c.Height)
	}
	viewBox := ""
	if !opts.NoViewportTransform {
		v := c.vpt
		viewBox = fmt.Sprintf(`viewBox="%s %s %s %s" `,
			svgNum(-v[4]/v[0]), svgNum(-v[5]/v[3]),
			svgNum(float64(c.Width)/v[0]), svgNum(float64(c.Height)/v[3]))
	}
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" version="1.1" width="%s" height="%s" %sxml:space="preserve">`+"\n", w, h, viewBox)
	fmt.Fprintf(&b, "<desc>Created with inamate %s</desc>\n", scene.Version)

	var clipID string
	b.WriteString("<defs>\n")
	if c.ClipPath != nil && !c.ClipPath.Base().ExcludeFromExport {
		var def string
		clipID, def = scene.ClipPathDef(c.ClipPath)
		b.WriteString(def)
	}
	b.WriteString("</defs>\n")

	c.svgBackgroundOrOverlay(&b, c.BackgroundColor, c.BackgroundImage)
	if clipID != "" {
		fmt.Fprintf(&b, "<g clip-path=\"url(#%s)\" >\n", clipID)
	}
	for _, d := range c.Collection.Objects() {
		if d.Base().ExcludeFromExport {
			continue
		}
		c.withRealizedTransform(d, func() {
			b.WriteString(d.Base().ToSVG())
		})
	}
	if clipID != "" {
		b.WriteString("</g>\n")
	}
	c.svgBackgroundOrOverlay(&b, c.OverlayColor, c.OverlayImage)
	b.WriteString("</svg>")
	return b.String()
}

func (c *Canvas) svgBackgroundOrOverlay(b *strings.Builder, fill string, img scene.Drawable) {
	if fill != "" {
		fmt.Fprintf(b, "<rect x=\"0\" y=\"0\" width=\"100%%\" height=\"100%%\" fill=\"%s\"></rect>\n", fill)
	}
	if img != nil && !img.Base().ExcludeFromExport {
		b.WriteString(img.Base().ToSVG())
	}
}
