package force

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/lens/pkg/graph"
)

func sampleLayout() graph.Layout {
	return graph.Layout{
		Width:  400,
		Height: 300,
		Focal:  "gold",
		Nodes: []graph.LayoutNode{
			{Node: graph.Node{ID: "ingest", Name: "Stripe Events", Type: "Pipeline"}, X: 60, Y: 150},
			{Node: graph.Node{ID: "gold", Name: "gold.orders & returns", Type: "Table"}, X: 200, Y: 150, Focal: true},
			{Node: graph.Node{ID: "board", Name: "Exec <Board>", Type: "Dashboard"}, X: 340, Y: 150, Pinned: true},
		},
		Links: []graph.Link{
			{Source: "ingest", Target: "gold"},
			{Source: "gold", Target: "board"},
			{Source: "gold", Target: "missing"},
		},
	}
}

func TestFill(t *testing.T) {
	tests := []struct {
		node graph.LayoutNode
		want string
	}{
		{graph.LayoutNode{Node: graph.Node{Type: "Table"}, Focal: true}, ColorFocal},
		{graph.LayoutNode{Node: graph.Node{Type: "Dashboard"}, Focal: true}, ColorFocal},
		{graph.LayoutNode{Node: graph.Node{Type: "Dashboard"}}, ColorDashboard},
		{graph.LayoutNode{Node: graph.Node{Type: "pipeline"}}, ColorPipeline},
		{graph.LayoutNode{Node: graph.Node{Type: "View"}}, ColorDefault},
		{graph.LayoutNode{Node: graph.Node{Type: "API Endpoint"}}, ColorDefault},
		{graph.LayoutNode{Node: graph.Node{Type: "???"}}, ColorDefault},
	}
	for _, tt := range tests {
		if got := Fill(tt.node); got != tt.want {
			t.Errorf("Fill(%q, focal=%v) = %s, want %s", tt.node.Type, tt.node.Focal, got, tt.want)
		}
	}
}

func TestRenderSVGWellFormed(t *testing.T) {
	svg := RenderSVG(sampleLayout(), WithTitle("Orders & Co"))

	dec := xml.NewDecoder(strings.NewReader(string(svg)))
	for {
		_, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("invalid XML: %v\n%s", err, svg)
		}
	}
}

func TestRenderSVGContent(t *testing.T) {
	s := string(RenderSVG(sampleLayout()))

	if !strings.Contains(s, `viewBox="0 0 400.0 300.0"`) {
		t.Error("missing viewport")
	}
	if got := strings.Count(s, "<circle r=\"20\""); got != 3 {
		t.Errorf("node circles = %d, want 3", got)
	}
	if got := strings.Count(s, `class="link"`); got != 2 {
		t.Errorf("links = %d, want 2 (unresolved link dropped)", got)
	}
	// Arrow stops at the target rim: gold at x=200, r=20.
	if !strings.Contains(s, `x2="180.0"`) {
		t.Error("link does not end at target rim")
	}
	for _, want := range []string{
		`class="node focal"`,
		`class="node pinned"`,
		`fill="` + ColorFocal + `"`,
		`fill="` + ColorDashboard + `"`,
		`fill="` + ColorPipeline + `"`,
		"Exec &lt;Board&gt;",
		`marker-end="url(#arrow)"`,
		`class="legend"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestRenderSVGWithoutLegend(t *testing.T) {
	s := string(RenderSVG(sampleLayout(), WithoutLegend()))
	if strings.Contains(s, `class="legend"`) {
		t.Error("legend rendered")
	}
}

func TestRenderSVGSkipsOverlappingLinks(t *testing.T) {
	l := sampleLayout()
	l.Nodes[0].X = 190 // overlaps gold
	s := string(RenderSVG(l))
	if strings.Contains(s, `data-source="ingest"`) {
		t.Error("drew link between overlapping circles")
	}
}
