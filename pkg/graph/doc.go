// Package graph provides serialization types for lineage graphs and layouts.
//
// This package defines the canonical wire format for lens data, used for
// JSON files, catalog payloads, API responses and caching.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Graph], [Lineage], [Layout]: serialization types (this package)
//   - pkg/lineage.Graph: internal graph and traversal
//   - pkg/layout/force.Simulation: internal layout state
//
// Use [FromLineage]/[ToLineage], [FromResult] and [FromSimulation] to convert
// between them.
//
// # Graph Serialization
//
// Graphs use the node-link shape catalog front-ends already speak:
//
//	{
//	  "focal": "this_asset",
//	  "nodes": [{"id": "src_crm", "name": "Salesforce CRM", "type": "API Endpoint"}],
//	  "links": [{"source": "src_crm", "target": "stg_cust"}]
//	}
//
// Common operations:
//
//	gj, _ := graph.ReadGraphFile("lineage.json")   // File -> Graph
//	g, _ := graph.ToLineage(gj)                     // Graph -> lineage.Graph
//	g, focal, _ := graph.LoadLineage("lineage.json") // both in one step
//	graph.WriteGraphFile(graph.FromLineage(g, focal), "out.json")
//
// Links that reference unknown nodes survive the round trip; traversal and
// layout ignore them.
//
// # Layout Serialization
//
//	layout := graph.FromSimulation(g, focal, sim, ticks)
//	data, _ := graph.MarshalLayout(layout)
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
