package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/lens/pkg/graph"
	"github.com/matzehuels/lens/pkg/lineage"
	"github.com/matzehuels/lens/pkg/render"
	forcesvg "github.com/matzehuels/lens/pkg/render/force"
	"github.com/matzehuels/lens/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats.
//
// The force formats (svg, json, png, pdf) draw l; the Graphviz formats (dot,
// graphviz) lay out g themselves and only take the focal node from l.
func Render(ctx context.Context, g *lineage.Graph, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var svg []byte
	forceSVG := func() []byte {
		if svg == nil {
			svg = forcesvg.RenderSVG(l, svgOptions(opts)...)
		}
		return svg
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = forceSVG()
		case FormatPNG:
			data, err = render.ToPNG(ctx, forceSVG(), 2.0)
		case FormatPDF:
			data, err = render.ToPDF(ctx, forceSVG())
		case FormatJSON:
			data, err = graph.MarshalLayout(l)
		case FormatDOT:
			data = []byte(nodelink.ToDOT(g, l.Focal, nodelink.Options{Detailed: opts.Detailed}))
		case FormatGraphviz:
			data, err = nodelink.RenderSVG(ctx, nodelink.ToDOT(g, l.Focal, nodelink.Options{Detailed: opts.Detailed}))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func svgOptions(opts Options) []forcesvg.Option {
	var out []forcesvg.Option
	if opts.Title != "" {
		out = append(out, forcesvg.WithTitle(opts.Title))
	}
	return out
}
