package graph_test

import (
	"fmt"
	"os"
	"strings"

	"github.com/matzehuels/lens/pkg/graph"
	"github.com/matzehuels/lens/pkg/lineage"
)

func ExampleReadGraph() {
	input := `{
	  "focal": "orders",
	  "nodes": [
	    {"id": "erp", "name": "SAP ERP", "type": "api"},
	    {"id": "orders", "name": "raw.stg_orders", "type": "table"}
	  ],
	  "links": [{"source": "erp", "target": "orders"}]
	}`

	gj, _ := graph.ReadGraph(strings.NewReader(input))
	g, _ := graph.ToLineage(gj)
	for _, n := range g.Nodes() {
		fmt.Printf("%s (%s)\n", n.Name, n.Kind)
	}
	// Output:
	// SAP ERP (API Endpoint)
	// raw.stg_orders (Table)
}

func ExampleFromResult() {
	g, _ := lineage.FromParts(
		[]lineage.Node{
			{ID: "a", Name: "source", Kind: lineage.KindTable},
			{ID: "b", Name: "focal", Kind: lineage.KindView},
		},
		[]lineage.Edge{{Source: "a", Target: "b"}},
	)
	rep := graph.FromResult(g, lineage.Trace(g, "b"))
	_ = graph.WriteGraph(graph.Graph{Nodes: []graph.Node{rep.Focal}}, os.Stdout)
	fmt.Println(rep.Upstream[0].Name, rep.Upstream[0].Direct)
	// Output:
	// {
	//   "nodes": [
	//     {
	//       "id": "b",
	//       "name": "focal",
	//       "type": "View"
	//     }
	//   ],
	//   "links": null
	// }
	// source true
}
