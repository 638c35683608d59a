// Package nodelink renders lineage as a left-to-right Graphviz diagram.
//
// Where the force renderer shows the live, physical layout, this package
// produces a ranked diagram: sources on the left, consumers on the right,
// the focal asset highlighted in between.
//
//	dot := nodelink.ToDOT(g, focal, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Nodes one hop from the focal asset have a solid border; everything
// further out is dashed. Colours match the force renderer.
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
