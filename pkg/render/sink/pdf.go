package sink

import (
	"github.com/matzehuels/skyline/pkg/render"
	"github.com/matzehuels/skyline/pkg/scene"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	svgOpts []SVGOption
}

// WithPDFSVGOptions passes options through to the SVG renderer.
func WithPDFSVGOptions(opts ...SVGOption) PDFOption {
	return func(r *pdfRenderer) { r.svgOpts = opts }
}

// RenderPDF renders shapes as a one-page PDF. Requires rsvg-convert.
func RenderPDF(shapes []scene.Shape, opts ...PDFOption) ([]byte, error) {
	var r pdfRenderer
	for _, opt := range opts {
		opt(&r)
	}
	return render.ToPDF(RenderSVG(shapes, r.svgOpts...))
}
