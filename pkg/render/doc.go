// Package render converts rendered SVG into raster and print formats.
//
// The skyline itself is drawn by the [sink] subpackage, and the
// entity-to-process diagram by [nodelink]. Both produce SVG; [ToPNG] and
// [ToPDF] convert that SVG with the external rsvg-convert tool from
// librsvg:
//
//	svg := sink.RenderSVG(frame.Shapes)
//	png, err := render.ToPNG(svg, 2.0)
//	pdf, err := render.ToPDF(svg)
package render
