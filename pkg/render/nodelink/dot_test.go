package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/lens/pkg/lineage"
)

func testGraph(t *testing.T) *lineage.Graph {
	t.Helper()
	g, err := lineage.FromParts(
		[]lineage.Node{
			{ID: "api", Name: "Billing API", Kind: lineage.KindAPI},
			{ID: "etl", Name: "Nightly ETL", Kind: lineage.KindPipeline},
			{ID: "gold", Name: "gold.orders", Kind: lineage.KindTable, Certification: lineage.CertCertified},
			{ID: "board", Name: "Revenue Board", Kind: lineage.KindDashboard},
		},
		[]lineage.Edge{
			{Source: "api", Target: "etl"},
			{Source: "etl", Target: "gold"},
			{Source: "gold", Target: "board"},
			{Source: "gold", Target: "ghost"},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func line(dot, id string) string {
	for _, l := range strings.Split(dot, "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), `"`+id+`" [`) {
			return l
		}
	}
	return ""
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testGraph(t), "gold", Options{})

	if !strings.Contains(dot, "rankdir=LR") {
		t.Error("expected left-to-right layout")
	}
	if !strings.Contains(line(dot, "gold"), colorFocal) {
		t.Errorf("focal not highlighted: %s", line(dot, "gold"))
	}
	if !strings.Contains(line(dot, "board"), colorDashboard) {
		t.Errorf("dashboard colour missing: %s", line(dot, "board"))
	}
	if !strings.Contains(line(dot, "etl"), colorPipeline) {
		t.Errorf("pipeline colour missing: %s", line(dot, "etl"))
	}
	if strings.Contains(line(dot, "etl"), "dashed") || strings.Contains(line(dot, "board"), "dashed") {
		t.Error("direct neighbours should be solid")
	}
	if !strings.Contains(line(dot, "api"), "dashed") {
		t.Errorf("indirect node should be dashed: %s", line(dot, "api"))
	}
	if strings.Contains(dot, `"ghost"`) {
		t.Error("dangling edge emitted")
	}
	if got := strings.Count(dot, " -> "); got != 3 {
		t.Errorf("edges = %d, want 3", got)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testGraph(t), "gold", Options{Detailed: true})
	if !strings.Contains(line(dot, "gold"), `label="gold.orders\nTable\nCertified"`) {
		t.Errorf("detailed label: %s", line(dot, "gold"))
	}
	if !strings.Contains(line(dot, "api"), `label="Billing API\nAPI Endpoint"`) {
		t.Errorf("detailed label: %s", line(dot, "api"))
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testGraph(t), "gold", Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	s := string(svg)
	if !strings.Contains(s, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Errorf("root element not normalized: %.200s", s)
	}
	if !strings.Contains(s, "Revenue Board") {
		t.Error("label missing from SVG")
	}
}

func TestRenderSVGInvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("expected parse error")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("got %s", got)
	}
	if got := normalizeViewBox([]byte("<svg/>")); string(got) != "<svg/>" {
		t.Error("should pass through without viewBox")
	}
}
