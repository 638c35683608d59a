// Package lineage models catalog lineage graphs and classifies the upstream
// and downstream dependencies of a focal asset.
//
// # Model
//
// A [Graph] holds [Node] values (tables, views, dashboards, pipelines and API
// endpoints) and directed [Edge] values where Source feeds Target:
//
//	g := lineage.New()
//	_ = g.AddNode(lineage.Node{ID: "stg_orders", Kind: lineage.KindTable})
//	_ = g.AddNode(lineage.Node{ID: "orders_mart", Kind: lineage.KindTable})
//	_ = g.AddEdge(lineage.Edge{Source: "stg_orders", Target: "orders_mart"})
//
// Graphs received from a catalog are built with [FromParts], which keeps edges
// that reference unknown nodes instead of failing. Such dangling edges are a
// data-hygiene issue: [Trace] skips them and reports them in Result.Skipped.
//
// # Traversal
//
// [Trace] walks the graph backwards and forwards from the focal node and
// returns both transitive closures, each entry flagged Direct when it is one
// hop away. Cycles terminate; the focal node is never part of its own result.
//
//	res := lineage.Trace(g, "orders_mart")
//	for _, e := range res.Upstream {
//	    fmt.Println(e.Node.ID, e.Direct)
//	}
package lineage
