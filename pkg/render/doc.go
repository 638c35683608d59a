// Package render turns lineage layouts into images.
//
// # Overview
//
// Two renderers live in subpackages:
//
//   - [force]: draws a settled (or in-flight) force layout as SVG, one
//     circle per asset with arrows along lineage edges
//   - [nodelink]: emits Graphviz DOT for a left-to-right lineage diagram and
//     renders it to SVG in-process
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg). Both renderers feed into them:
//
//	svg := force.RenderSVG(layout)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// When rsvg-convert is missing the conversions fail with an UNSUPPORTED
// error; [Available] checks ahead of time.
//
// [force]: github.com/matzehuels/lens/pkg/render/force
// [nodelink]: github.com/matzehuels/lens/pkg/render/nodelink
package render
