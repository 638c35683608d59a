package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lens/pkg/lineage"
)

// Fill colours, shared with the force renderer.
const (
	colorFocal     = "#0ea5e9"
	colorDashboard = "#f59e0b"
	colorPipeline  = "#64748b"
	colorDefault   = "#e2e8f0"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node kind and certification under the name.
	Detailed bool
}

// ToDOT converts a lineage graph to Graphviz DOT, centred on focal.
//
// The focal node is filled sky blue. Nodes one hop from the focal node get
// a solid border; nodes further away, or unrelated to it, are dashed.
// Dangling edges are omitted.
func ToDOT(g *lineage.Graph, focal string, opts Options) string {
	res := lineage.Trace(g, focal)
	direct := make(map[string]bool)
	for _, e := range res.Upstream {
		direct[e.Node.ID] = e.Direct
	}
	for _, e := range res.Downstream {
		direct[e.Node.ID] = direct[e.Node.ID] || e.Direct
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=\"" + colorDefault + "\", fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#94a3b8\", arrowsize=0.8];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), n.ID == focal, direct[n.ID])
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.ResolvedEdges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n lineage.Node, detailed bool) string {
	if !detailed {
		return n.Label()
	}
	parts := []string{n.Label(), string(n.Kind)}
	if n.Certification != lineage.CertNone {
		parts = append(parts, string(n.Certification))
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n lineage.Node, label string, focal, direct bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case focal:
		attrs = append(attrs, "fillcolor=\""+colorFocal+"\"", "fontcolor=white", "penwidth=2")
	case n.Kind == lineage.KindDashboard:
		attrs = append(attrs, "fillcolor=\""+colorDashboard+"\"")
	case n.Kind == lineage.KindPipeline:
		attrs = append(attrs, "fillcolor=\""+colorPipeline+"\"", "fontcolor=white")
	}
	if !focal && !direct {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion to PNG or PDF.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// pixel-sized one anchored at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
