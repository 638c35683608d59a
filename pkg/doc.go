// Package pkg provides the core libraries for Lens lineage exploration.
//
// # Overview
//
// Lens takes a data asset from a catalog, traces everything that feeds it
// and everything it feeds, and lays the result out with a force-directed
// simulation that can be watched, dragged and resized while it settles.
//
// # Architecture
//
// The typical data flow:
//
//	Catalog (demo, TOML file)
//	         ↓
//	    [lineage] package (trace upstream/downstream from a focal node)
//	         ↓
//	    [layout/force] package (force simulation, generations, drag)
//	         ↓
//	    [render] packages (SVG, Graphviz, PNG/PDF)
//
// [pipeline] wires these steps together behind a cache, and [session]
// keeps live simulations for the HTTP API.
//
// # Main Packages
//
//   - [catalog]: asset metadata and lineage graphs, with a built-in demo
//   - [lineage]: graph model and bounded breadth-first tracing
//   - [layout/force]: the interactive force simulation
//   - [graph]: JSON interchange types for graphs, traces and layouts
//   - [render]: SVG and DOT renderers plus format conversion
//   - [pipeline]: load → trace → layout → render with caching
//   - [session]: in-memory live layout sessions with idle expiry
//   - [cache]: file, Redis and MongoDB cache backends
//   - [errors]: error codes mapped to HTTP status and user messages
//   - [observability]: pipeline and HTTP hooks, with a Prometheus adapter
//
// [catalog]: https://pkg.go.dev/github.com/matzehuels/lens/pkg/catalog
// [lineage]: https://pkg.go.dev/github.com/matzehuels/lens/pkg/lineage
// [layout/force]: https://pkg.go.dev/github.com/matzehuels/lens/pkg/layout/force
// [graph]: https://pkg.go.dev/github.com/matzehuels/lens/pkg/graph
// [render]: https://pkg.go.dev/github.com/matzehuels/lens/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/lens/pkg/pipeline
// [session]: https://pkg.go.dev/github.com/matzehuels/lens/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/lens/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/lens/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/lens/pkg/observability
package pkg
