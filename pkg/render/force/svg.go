package force

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/matzehuels/lens/pkg/graph"
	"github.com/matzehuels/lens/pkg/lineage"
)

// NodeRadius is the circle radius of every asset.
const NodeRadius = 20.0

// Fill colours.
const (
	ColorFocal     = "#0ea5e9"
	ColorDashboard = "#f59e0b"
	ColorPipeline  = "#64748b"
	ColorDefault   = "#e2e8f0"

	colorStroke = "#ffffff"
	colorLink   = "#94a3b8"
	colorText   = "#334155"
	colorMuted  = "#64748b"
)

const interactionCSS = `
    .node circle { transition: r 0.2s ease; }
    .node:hover circle { r: 24; }
    .node.pinned circle { stroke: #0f172a; stroke-dasharray: 3 2; }
    .link { stroke-opacity: 0.8; }`

// Option configures SVG rendering.
type Option func(*renderer)

type renderer struct {
	legend bool
	title  string
}

// WithoutLegend omits the colour legend.
func WithoutLegend() Option { return func(r *renderer) { r.legend = false } }

// WithTitle adds a title line above the legend.
func WithTitle(s string) Option { return func(r *renderer) { r.title = s } }

// Fill returns the fill colour for a node.
func Fill(n graph.LayoutNode) string {
	if n.Focal {
		return ColorFocal
	}
	k, err := lineage.ParseKind(n.Type)
	if err != nil {
		return ColorDefault
	}
	switch k {
	case lineage.KindDashboard:
		return ColorDashboard
	case lineage.KindPipeline:
		return ColorPipeline
	default:
		return ColorDefault
	}
}

// RenderSVG draws l as a standalone SVG document sized to its viewport.
func RenderSVG(l graph.Layout, opts ...Option) []byte {
	r := renderer{legend: true}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, l.Height, l.Width, l.Height)
	renderDefs(&buf)

	buf.WriteString(`  <g class="links">` + "\n")
	for _, e := range l.Links {
		src, ok1 := l.Lookup(e.Source)
		dst, ok2 := l.Lookup(e.Target)
		if !ok1 || !ok2 || e.Source == e.Target {
			continue
		}
		renderLink(&buf, src, dst)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, n := range l.Nodes {
		renderNode(&buf, n)
	}
	buf.WriteString("  </g>\n")

	if r.legend {
		renderLegend(&buf, r.title)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	fmt.Fprintf(buf, "    <style>%s\n    </style>\n", interactionCSS)
	fmt.Fprintf(buf, `    <marker id="arrow" viewBox="0 -5 10 10" refX="10" refY="0" markerWidth="6" markerHeight="6" orient="auto">`+
		`<path d="M0,-5L10,0L0,5" fill="%s"/></marker>`+"\n", colorLink)
	buf.WriteString("  </defs>\n")
}

// renderLink draws an arrow from rim to rim so the marker tip touches the
// target circle.
func renderLink(buf *bytes.Buffer, src, dst graph.LayoutNode) {
	dx, dy := dst.X-src.X, dst.Y-src.Y
	d := math.Hypot(dx, dy)
	if d <= 2*NodeRadius {
		return
	}
	ux, uy := dx/d, dy/d
	x1, y1 := src.X+ux*NodeRadius, src.Y+uy*NodeRadius
	x2, y2 := dst.X-ux*NodeRadius, dst.Y-uy*NodeRadius
	fmt.Fprintf(buf, `    <line class="link" data-source="%s" data-target="%s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1.5" marker-end="url(#arrow)"/>`+"\n",
		escapeXML(src.ID), escapeXML(dst.ID), x1, y1, x2, y2, colorLink)
}

func renderNode(buf *bytes.Buffer, n graph.LayoutNode) {
	class := "node"
	if n.Focal {
		class += " focal"
	}
	if n.Pinned {
		class += " pinned"
	}
	strokeWidth := 2
	if n.Focal {
		strokeWidth = 4
	}
	fmt.Fprintf(buf, `    <g class="%s" id="node-%s" transform="translate(%.1f,%.1f)">`+"\n", class, escapeXML(n.ID), n.X, n.Y)
	fmt.Fprintf(buf, `      <circle r="%.0f" fill="%s" stroke="%s" stroke-width="%d"/>`+"\n", NodeRadius, Fill(n), colorStroke, strokeWidth)

	name := n.Name
	if name == "" {
		name = n.ID
	}
	fmt.Fprintf(buf, `      <text y="%.0f" text-anchor="middle" font-family="sans-serif" font-size="12" font-weight="600" fill="%s">%s</text>`+"\n",
		-NodeRadius-8, colorText, escapeXML(name))
	if n.Type != "" {
		fmt.Fprintf(buf, `      <text y="%.0f" text-anchor="middle" font-family="sans-serif" font-size="10" fill="%s">%s</text>`+"\n",
			NodeRadius+14, colorMuted, escapeXML(n.Type))
	}
	buf.WriteString("    </g>\n")
}

var legendItems = []struct{ label, color string }{
	{"Focal asset", ColorFocal},
	{"Dashboard", ColorDashboard},
	{"Pipeline", ColorPipeline},
	{"Table / View / API", ColorDefault},
}

func renderLegend(buf *bytes.Buffer, title string) {
	y := 20.0
	buf.WriteString(`  <g class="legend" font-family="sans-serif" font-size="11">` + "\n")
	if title != "" {
		fmt.Fprintf(buf, `    <text x="12" y="%.0f" font-size="13" font-weight="700" fill="%s">%s</text>`+"\n", y, colorText, escapeXML(title))
		y += 20
	}
	for _, item := range legendItems {
		fmt.Fprintf(buf, `    <circle cx="18" cy="%.0f" r="6" fill="%s" stroke="%s"/>`+"\n", y-4, item.color, colorLink)
		fmt.Fprintf(buf, `    <text x="30" y="%.0f" fill="%s">%s</text>`+"\n", y, colorText, escapeXML(item.label))
		y += 18
	}
	buf.WriteString("  </g>\n")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
