// Package graphsource loads the form graph that prefill resolution runs on.
//
// The blueprint API returns nodes, edges and form definitions separately;
// Transform joins each node to its form through data.component_id and turns
// the form's JSON schema properties into graph fields.
package graphsource

import (
	"context"

	"github.com/Ramsey-B/fern/pkg/graph"
)

// Source supplies graph snapshots. Implementations do not return retrieval
// failures to the core; they fall back to a usable snapshot instead.
type Source interface {
	FetchGraph(ctx context.Context) (graph.Graph, error)
}

// Static always returns the same snapshot.
type Static struct {
	Graph graph.Graph
}

func NewStatic(g graph.Graph) *Static {
	return &Static{Graph: g}
}

func (s *Static) FetchGraph(_ context.Context) (graph.Graph, error) {
	return s.Graph, nil
}
