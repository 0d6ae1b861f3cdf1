package sink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/skyline/pkg/iso"
	"github.com/matzehuels/skyline/pkg/scene"
)

// DefaultViewBox frames the default grid at the default scale.
const DefaultViewBox = "-100 -75 200 150"

const interactionCSS = `
    .cube { cursor: pointer; }
    .cube:hover polygon { opacity: 0.9; }`

// interactionJS posts the clicked entity and lets the page pick up the next
// frame on its own polling cycle.
const interactionJS = `
    document.querySelectorAll('.cube').forEach(el => {
      el.addEventListener('click', () => {
        fetch('%s' + encodeURIComponent(el.dataset.name), { method: 'POST' })
          .then(() => document.dispatchEvent(new CustomEvent('skyline:focus', { detail: el.dataset.name })));
      });
    });`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	viewBox     string
	style       Style
	interactive bool
	focusPath   string
	caption     string
	width       string
}

// WithViewBox overrides the viewBox attribute.
func WithViewBox(vb string) SVGOption { return func(r *svgRenderer) { r.viewBox = vb } }

// WithStyle replaces DefaultStyle.
func WithStyle(s Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithInteraction embeds a script that POSTs clicks to focusPath+name,
// for example "/focus/".
func WithInteraction(focusPath string) SVGOption {
	return func(r *svgRenderer) { r.interactive = true; r.focusPath = focusPath }
}

// WithCaption writes text in the lower left corner.
func WithCaption(text string) SVGOption { return func(r *svgRenderer) { r.caption = text } }

// Caption formats the camera angle the way the live view labels frames.
func Caption(angle float64) string { return fmt.Sprintf("t = %.3f", angle) }

// WithWidth sets an explicit width attribute, such as "800" or "100%".
func WithWidth(w string) SVGOption { return func(r *svgRenderer) { r.width = w } }

// RenderSVG draws shapes as a standalone SVG document.
func RenderSVG(shapes []scene.Shape, opts ...SVGOption) []byte {
	r := svgRenderer{viewBox: DefaultViewBox, style: DefaultStyle()}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s"`, escapeXML(r.viewBox))
	if r.width != "" {
		fmt.Fprintf(&buf, ` width="%s"`, escapeXML(r.width))
	}
	buf.WriteString(">\n")

	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", interactionCSS)
	}
	for _, s := range shapes {
		r.renderShape(&buf, s)
	}
	if r.caption != "" {
		r.renderCaption(&buf)
	}
	if r.interactive {
		fmt.Fprintf(&buf, "  <script><![CDATA[%s\n  ]]></script>\n", fmt.Sprintf(interactionJS, r.focusPath))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderShape(buf *bytes.Buffer, s scene.Shape) {
	st := r.style
	fill := st.Fill
	class := "cube"
	if s.Highlighted {
		fill = st.FocusFill
		class += " focus"
	}

	fmt.Fprintf(buf, `  <g class="%s" id="cube-%d" data-name="%s" data-rank="%d">`+"\n",
		class, s.Rank, escapeXML(s.Name), s.Rank)
	fmt.Fprintf(buf, `    <polygon points="%s" fill="%s" stroke="%s" stroke-width="%g" opacity="%g"/>`+"\n",
		points(s.Cube.Base), st.BaseFill, st.Stroke, st.StrokeWidth, st.Opacity)
	fmt.Fprintf(buf, `    <polygon points="%s" fill="%s" stroke="%s" stroke-width="%g" opacity="%g"/>`+"\n",
		points(s.Cube.Outer), fill, st.Stroke, st.StrokeWidth, st.Opacity)
	for _, path := range s.Cube.Inner {
		fmt.Fprintf(buf, `    <polyline points="%s" fill="none" stroke="%s" stroke-width="%g" opacity="%g"/>`+"\n",
			points(path), st.Stroke, st.InnerWidth, st.Opacity)
	}
	fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%g" text-anchor="middle">%s</text>`+"\n",
		s.Cube.Anchor.X, s.Cube.Anchor.Y, st.FontSize, escapeXML(s.Label))
	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) renderCaption(buf *bytes.Buffer) {
	var x, y, w, h float64
	if _, err := fmt.Sscanf(r.viewBox, "%g %g %g %g", &x, &y, &w, &h); err != nil {
		x, y, h = -100, -75, 150
	}
	fmt.Fprintf(buf, `  <text class="caption" x="%.2f" y="%.2f" font-size="%g">%s</text>`+"\n",
		x+2, y+h-2, r.style.FontSize*1.5, escapeXML(r.caption))
}

func points(path []iso.Point) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = fmt.Sprintf("%.2f,%.2f", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}
