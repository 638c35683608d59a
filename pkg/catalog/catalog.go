// Package catalog provides the asset metadata and lineage payloads that
// lens traces and lays out.
//
// A [Catalog] is the boundary to whatever system owns asset metadata. Two
// implementations ship with lens: [Mock], a fixed five-asset catalog used
// for demos and tests, and [LoadFile], which reads a TOML catalog export.
package catalog

import (
	"context"
	"slices"
	"strings"

	lenserr "github.com/matzehuels/lens/pkg/errors"
	"github.com/matzehuels/lens/pkg/graph"
	"github.com/matzehuels/lens/pkg/lineage"
)

// Environment labels.
const (
	EnvProd  = "PROD"
	EnvStage = "STAGE"
	EnvDev   = "DEV"
)

// Asset is a catalogued data entity with its lineage neighbourhood.
type Asset struct {
	ID            string      `json:"id" toml:"id"`
	TechnicalName string      `json:"technical_name" toml:"technical_name"`
	FriendlyName  string      `json:"friendly_name" toml:"friendly_name"`
	Domain        string      `json:"domain" toml:"domain"`
	Platform      string      `json:"platform,omitempty" toml:"platform"`
	Environment   string      `json:"environment,omitempty" toml:"environment"`
	Type          string      `json:"type" toml:"type"`
	Certification string      `json:"certification,omitempty" toml:"certification"`
	Description   string      `json:"description,omitempty" toml:"description"`
	Owner         string      `json:"owner,omitempty" toml:"owner"`
	Steward       string      `json:"steward,omitempty" toml:"steward"`
	Lineage       graph.Graph `json:"lineage" toml:"lineage"`
}

// Summary returns a copy of the asset without its lineage payload.
func (a Asset) Summary() Asset {
	a.Lineage = graph.Graph{}
	return a
}

// Query filters assets. Empty fields match everything.
type Query struct {
	Text   string // case-insensitive substring of technical name, friendly name or domain
	Domain string // exact domain; "All" matches every domain
}

// Catalog is a read-only source of assets and their lineage.
type Catalog interface {
	List(ctx context.Context) ([]Asset, error)
	Get(ctx context.Context, id string) (Asset, error)
	Search(ctx context.Context, q Query) ([]Asset, error)
	Domains(ctx context.Context) ([]string, error)

	// Lineage returns the asset's lineage graph and the ID of the node
	// representing the asset within it.
	Lineage(ctx context.Context, id string) (*lineage.Graph, string, error)
}

// Static is an in-memory catalog.
type Static struct {
	assets []Asset
	index  map[string]int
}

// NewStatic builds a catalog over assets. Asset IDs must be unique and non-empty.
func NewStatic(assets []Asset) (*Static, error) {
	s := &Static{index: make(map[string]int, len(assets))}
	for _, a := range assets {
		if err := lenserr.ValidateAssetID(a.ID); err != nil {
			return nil, err
		}
		if _, dup := s.index[a.ID]; dup {
			return nil, lenserr.New(lenserr.ErrCodeInvalidInput, "duplicate asset id %q", a.ID)
		}
		s.index[a.ID] = len(s.assets)
		s.assets = append(s.assets, a)
	}
	return s, nil
}

// List returns all assets in catalog order.
func (s *Static) List(ctx context.Context) ([]Asset, error) {
	return slices.Clone(s.assets), nil
}

// Get returns a single asset.
func (s *Static) Get(ctx context.Context, id string) (Asset, error) {
	i, ok := s.index[id]
	if !ok {
		return Asset{}, lenserr.New(lenserr.ErrCodeAssetNotFound, "asset %q not found", id)
	}
	return s.assets[i], nil
}

// Search returns the assets matching q in catalog order.
func (s *Static) Search(ctx context.Context, q Query) ([]Asset, error) {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	var out []Asset
	for _, a := range s.assets {
		if q.Domain != "" && q.Domain != "All" && a.Domain != q.Domain {
			continue
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(a.FriendlyName), text) &&
			!strings.Contains(strings.ToLower(a.TechnicalName), text) &&
			!strings.Contains(strings.ToLower(a.Domain), text) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// Domains returns the distinct domains in first-seen order.
func (s *Static) Domains(ctx context.Context) ([]string, error) {
	var out []string
	for _, a := range s.assets {
		if a.Domain != "" && !slices.Contains(out, a.Domain) {
			out = append(out, a.Domain)
		}
	}
	return out, nil
}

// Lineage converts the asset's lineage payload to a graph.
//
// The focal node is the payload's focal field when set; otherwise the node
// whose name equals the asset's technical name, and finally a node whose
// ID equals the asset ID.
func (s *Static) Lineage(ctx context.Context, id string) (*lineage.Graph, string, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	g, err := graph.ToLineage(a.Lineage)
	if err != nil {
		return nil, "", lenserr.Wrap(lenserr.ErrCodeInvalidGraph, err, "lineage of asset %q", id)
	}
	return g, focalOf(a, g), nil
}

func focalOf(a Asset, g *lineage.Graph) string {
	if a.Lineage.Focal != "" {
		return a.Lineage.Focal
	}
	for _, n := range g.Nodes() {
		if n.Name == a.TechnicalName {
			return n.ID
		}
	}
	return a.ID
}

var _ Catalog = (*Static)(nil)
