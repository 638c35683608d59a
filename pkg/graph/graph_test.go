package graph

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/lens/pkg/layout/force"
	"github.com/matzehuels/lens/pkg/lineage"
)

func sample() Graph {
	return Graph{
		Focal: "this_asset",
		Nodes: []Node{
			{ID: "src_crm", Name: "Salesforce CRM", Type: "API Endpoint"},
			{ID: "stg_cust", Name: "raw.stg_customers", Type: "table"},
			{ID: "this_asset", Name: "gold.cust_360_master", Type: "Table", Status: "Certified"},
			{ID: "dash_exec", Name: "Executive Overview", Type: "Dashboard"},
		},
		Links: []Link{
			{Source: "src_crm", Target: "stg_cust"},
			{Source: "stg_cust", Target: "this_asset"},
			{Source: "this_asset", Target: "dash_exec"},
		},
	}
}

func TestToLineage(t *testing.T) {
	tests := []struct {
		name      string
		in        Graph
		wantNodes int
		wantEdges int
		wantErr   error
	}{
		{name: "Empty", in: Graph{}, wantNodes: 0, wantEdges: 0},
		{name: "Sample", in: sample(), wantNodes: 4, wantEdges: 3},
		{
			name: "DanglingKept",
			in: Graph{
				Nodes: []Node{{ID: "a", Type: "View"}},
				Links: []Link{{Source: "a", Target: "missing"}},
			},
			wantNodes: 1,
			wantEdges: 1,
		},
		{
			name:    "BadType",
			in:      Graph{Nodes: []Node{{ID: "a", Type: "Spreadsheet"}}},
			wantErr: lineage.ErrInvalidKind,
		},
		{
			name:    "BadStatus",
			in:      Graph{Nodes: []Node{{ID: "a", Type: "Table", Status: "Gold"}}},
			wantErr: lineage.ErrInvalidCertification,
		},
		{
			name:    "DuplicateID",
			in:      Graph{Nodes: []Node{{ID: "a", Type: "Table"}, {ID: "a", Type: "View"}}},
			wantErr: lineage.ErrDuplicateNodeID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ToLineage(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToLineage: %v", err)
			}
			if g.NodeCount() != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", g.NodeCount(), tt.wantNodes)
			}
			if g.EdgeCount() != tt.wantEdges {
				t.Errorf("edges = %d, want %d", g.EdgeCount(), tt.wantEdges)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	g, err := ToLineage(sample())
	if err != nil {
		t.Fatal(err)
	}
	out := FromLineage(g, "this_asset")

	if out.Focal != "this_asset" {
		t.Errorf("Focal = %q", out.Focal)
	}
	if len(out.Nodes) != 4 || len(out.Links) != 3 {
		t.Fatalf("got %d nodes, %d links", len(out.Nodes), len(out.Links))
	}
	if out.Nodes[1].Type != "Table" {
		t.Errorf("type not normalized: %q", out.Nodes[1].Type)
	}
	if out.Nodes[2].Status != "Certified" {
		t.Errorf("status = %q", out.Nodes[2].Status)
	}
	if out.Nodes[0].ID != "src_crm" || out.Nodes[3].ID != "dash_exec" {
		t.Errorf("order not preserved: %v", out.Nodes)
	}
}

func TestGraphFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lineage.json")
	if err := WriteGraphFile(sample(), path); err != nil {
		t.Fatal(err)
	}
	g, focal, err := LoadLineage(path)
	if err != nil {
		t.Fatal(err)
	}
	if focal != "this_asset" {
		t.Errorf("focal = %q", focal)
	}
	if !g.Has("dash_exec") {
		t.Error("dash_exec missing")
	}
}

func TestReadGraphErrors(t *testing.T) {
	if _, err := ReadGraph(strings.NewReader("{not json")); err == nil {
		t.Error("expected decode error")
	}
	if _, err := ReadGraphFile(filepath.Join(t.TempDir(), "nope.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
	if _, err := UnmarshalGraph([]byte("[]")); err == nil {
		t.Error("expected unmarshal error for array")
	}
}

func TestMarshalGraphShape(t *testing.T) {
	data, err := MarshalGraph(sample())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"focal": "this_asset"`, `"source": "src_crm"`, `"status": "Certified"`} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("output missing %s", want)
		}
	}
	if bytes.Contains(data, []byte(`"status": ""`)) {
		t.Error("empty status should be omitted")
	}
}

func TestFromResult(t *testing.T) {
	gj := sample()
	gj.Links = append(gj.Links, Link{Source: "ghost", Target: "this_asset"})
	g, err := ToLineage(gj)
	if err != nil {
		t.Fatal(err)
	}
	rep := FromResult(g, lineage.Trace(g, "this_asset"))

	if rep.Focal.Name != "gold.cust_360_master" {
		t.Errorf("Focal = %+v", rep.Focal)
	}
	if len(rep.Upstream) != 2 || len(rep.Downstream) != 1 {
		t.Fatalf("upstream=%d downstream=%d", len(rep.Upstream), len(rep.Downstream))
	}
	if rep.Upstream[0].ID != "src_crm" || rep.Upstream[0].Direct || rep.Upstream[0].Depth != 2 {
		t.Errorf("Upstream[0] = %+v", rep.Upstream[0])
	}
	if len(rep.Skipped) != 1 || rep.Skipped[0].Source != "ghost" {
		t.Errorf("Skipped = %+v", rep.Skipped)
	}
	if rep.DirectUpstream != 1 || rep.DirectDownstream != 1 {
		t.Errorf("badges = %d/%d", rep.DirectUpstream, rep.DirectDownstream)
	}
}

func TestFromResultUnknownFocal(t *testing.T) {
	g, _ := ToLineage(sample())
	rep := FromResult(g, lineage.Trace(g, "nope"))
	if rep.Focal.ID != "nope" || len(rep.Upstream) != 0 || len(rep.Downstream) != 0 {
		t.Errorf("rep = %+v", rep)
	}
}

func TestFromSimulation(t *testing.T) {
	g, err := ToLineage(sample())
	if err != nil {
		t.Fatal(err)
	}
	sim := force.New(force.Options{Seed: 3})
	sim.Initialize(g, 640, 480)
	ticks, err := sim.Settle(context.Background(), 500)
	if err != nil {
		t.Fatal(err)
	}

	l := FromSimulation(g, "this_asset", sim, ticks)
	if l.Width != 640 || l.Height != 480 || l.Seed != 3 {
		t.Errorf("header = %vx%v seed %d", l.Width, l.Height, l.Seed)
	}
	if !l.Settled || l.Ticks != ticks {
		t.Errorf("settled=%v ticks=%d", l.Settled, l.Ticks)
	}
	n, ok := l.Lookup("this_asset")
	if !ok || !n.Focal {
		t.Fatalf("focal node = %+v, %v", n, ok)
	}
	if p, _ := sim.Position("this_asset"); p != n.Position() {
		t.Errorf("position %v != %v", n.Position(), p)
	}
	if len(l.Links) != 3 {
		t.Errorf("links = %d", len(l.Links))
	}
}

func TestLayoutFileRoundTrip(t *testing.T) {
	in := Layout{
		Width: 800, Height: 600, Seed: 42, Ticks: 301, Settled: true,
		Nodes: []LayoutNode{{Node: Node{ID: "a", Name: "A", Type: "Table"}, X: 10, Y: 20, Focal: true}},
	}
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(in, path); err != nil {
		t.Fatal(err)
	}
	out, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if out.Nodes[0].X != 10 || out.Nodes[0].Name != "A" || !out.Nodes[0].Focal {
		t.Errorf("node = %+v", out.Nodes[0])
	}
}

func TestUnmarshalLayoutRejectsEmptyViewport(t *testing.T) {
	if _, err := UnmarshalLayout([]byte(`{"width":0,"height":10}`)); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := UnmarshalLayout([]byte(`nope`)); err == nil {
		t.Error("expected error for invalid json")
	}
}
