package pipeline

import (
	"context"

	"github.com/matzehuels/lens/pkg/catalog"
	lenserr "github.com/matzehuels/lens/pkg/errors"
	"github.com/matzehuels/lens/pkg/graph"
	"github.com/matzehuels/lens/pkg/lineage"
)

// Load reads the lineage graph named by opts from the catalog or from a JSON
// graph file, and resolves the focal node.
//
// opts.Focal overrides the focal node recorded by the source. The focal node
// must exist in the graph. With opts.Connected the graph is cut down to the
// focal node's lineage.
func Load(ctx context.Context, cat catalog.Catalog, opts Options) (*lineage.Graph, string, error) {
	if err := opts.ValidateSource(); err != nil {
		return nil, "", err
	}

	var (
		g     *lineage.Graph
		focal string
		err   error
	)
	if opts.GraphFile != "" {
		g, focal, err = graph.LoadLineage(opts.GraphFile)
		if err != nil {
			return nil, "", lenserr.Wrap(lenserr.ErrCodeInvalidGraph, err, "load %s", opts.GraphFile)
		}
	} else {
		if cat == nil {
			return nil, "", lenserr.New(lenserr.ErrCodeUnsupported, "no catalog configured")
		}
		g, focal, err = cat.Lineage(ctx, opts.AssetID)
		if err != nil {
			return nil, "", err
		}
	}

	if opts.Focal != "" {
		focal = opts.Focal
	}
	if focal == "" {
		return nil, "", lenserr.New(lenserr.ErrCodeInvalidInput, "no focal node: the graph does not name one and none was given")
	}
	if !g.Has(focal) {
		return nil, "", lenserr.New(lenserr.ErrCodeNodeNotFound, "focal node %q is not in the graph", focal)
	}
	if opts.Connected {
		g = lineage.Subgraph(g, lineage.Trace(g, focal))
	}
	return g, focal, nil
}
