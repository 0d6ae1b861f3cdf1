// Package sink writes skyline frames in their output formats.
//
// [RenderSVG] draws shapes in the order given, which is already paint
// order. Each cube becomes a group holding the base pedestal, the outer
// silhouette, the division polylines and a centered label:
//
//	<g class="cube" data-name="postgres">
//	  <polygon points="..." fill="#002b36" .../>
//	  <polygon points="..." fill="#ffffff" .../>
//	  <polyline points="..." fill="none" .../>
//	  <text ...>postgres</text>
//	</g>
//
// [RenderJSON] exports the full frame with projected coordinates for
// clients that draw themselves. [RenderPNG] and [RenderPDF] convert the
// SVG with the render package.
package sink
