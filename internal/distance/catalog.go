package distance

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"rail_distance/internal/graph"
	"rail_distance/internal/metrics"
	"rail_distance/internal/tariff"
)

// Catalog holds the current tariff registry and adjacency graph. Both are
// immutable; reloads publish a complete replacement.
type Catalog struct {
	registry atomic.Pointer[tariff.Registry]
	graph    atomic.Pointer[graph.Graph]
}

// NewCatalog returns a catalog with the given initial contents; either may be nil.
func NewCatalog(reg *tariff.Registry, g *graph.Graph) *Catalog {
	c := &Catalog{}
	if reg != nil {
		c.registry.Store(reg)
	}
	if g != nil {
		c.graph.Store(g)
	}
	return c
}

// Registry returns the current registry or nil before the first load.
func (c *Catalog) Registry() *tariff.Registry { return c.registry.Load() }

// SetRegistry publishes a new registry.
func (c *Catalog) SetRegistry(reg *tariff.Registry) { c.registry.Store(reg) }

// Graph returns the current adjacency graph or nil before the first build.
func (c *Catalog) Graph() *graph.Graph { return c.graph.Load() }

// SetGraph publishes a new graph.
func (c *Catalog) SetGraph(g *graph.Graph) { c.graph.Store(g) }

// ChainSource supplies the station chains the adjacency graph is built from.
type ChainSource interface {
	Chains(ctx context.Context) ([][]graph.Node, error)
}

// ReloadTariffs loads a new registry from src and publishes it. On error the
// current registry stays in place.
func (c *Catalog) ReloadTariffs(ctx context.Context, src tariff.Source) (tariff.Stats, error) {
	reg, err := tariff.Load(ctx, src)
	if err != nil {
		metrics.ObserveTariffReload("error", 0)
		return tariff.Stats{}, err
	}
	c.SetRegistry(reg)
	st := reg.Stats()
	metrics.ObserveTariffReload("success", st.Stations)
	return st, nil
}

// GraphStats describes a published adjacency graph.
type GraphStats struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// RebuildGraph builds a new graph from src and publishes it.
func (c *Catalog) RebuildGraph(ctx context.Context, src ChainSource) (GraphStats, error) {
	chains, err := src.Chains(ctx)
	if err != nil {
		return GraphStats{}, fmt.Errorf("load station chains: %w", err)
	}
	g := graph.Build(chains)
	c.SetGraph(g)
	metrics.SetGraphNodes(g.Nodes())
	logrus.WithFields(logrus.Fields{"chains": len(chains), "nodes": g.Nodes(), "edges": g.Edges()}).
		Info("distance: adjacency graph rebuilt")
	return GraphStats{Nodes: g.Nodes(), Edges: g.Edges()}, nil
}

// FileChains reads station chains from the section (book 1) files of a
// tariff directory.
type FileChains struct {
	Source *tariff.FileSource
}

// Chains implements ChainSource.
func (f FileChains) Chains(ctx context.Context) ([][]graph.Node, error) {
	tables, err := f.Source.SectionTables(ctx)
	if err != nil {
		return nil, err
	}
	var chains [][]graph.Node
	for _, t := range tables {
		chains = append(chains, graph.ParseSectionRows(t.Rows)...)
	}
	return chains, nil
}
