package sink

import (
	"github.com/matzehuels/skyline/pkg/render"
	"github.com/matzehuels/skyline/pkg/scene"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithPNGSVGOptions passes options through to the SVG renderer.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the resolution multiplier, default 4. The default viewBox
// is only 200 units wide.
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG rasterizes shapes. Requires rsvg-convert.
func RenderPNG(shapes []scene.Shape, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 4}
	for _, opt := range opts {
		opt(&r)
	}
	return render.ToPNG(RenderSVG(shapes, r.svgOpts...), r.scale)
}
