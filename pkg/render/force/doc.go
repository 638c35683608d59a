// Package force renders force-directed lineage layouts as SVG.
//
// The input is a [graph.Layout], either a settled layout from the pipeline
// or a live snapshot of a session. Each asset is a circle of radius
// [NodeRadius] coloured by role:
//
//   - focal asset: sky blue
//   - dashboards: amber
//   - pipelines: slate
//   - everything else: light grey
//
// Links are drawn as straight arrows that stop at the target's rim. Each
// circle carries the asset name above and its kind below. A legend in the
// top-left corner explains the colours and can be turned off with
// [WithoutLegend].
//
//	svg := force.RenderSVG(layout, force.WithTitle("Customer 360"))
//
// [graph.Layout]: github.com/matzehuels/lens/pkg/graph.Layout
package force
