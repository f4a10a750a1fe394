package datasource

import (
	"context"

	"github.com/Gobusters/ectolinq"
	"github.com/Ramsey-B/fern/pkg/graph"
)

// DirectProvider returns the forms that feed the target through a single edge.
type DirectProvider struct{}

func NewDirectProvider() *DirectProvider {
	return &DirectProvider{}
}

func (p *DirectProvider) Name() string {
	return "direct"
}

func (p *DirectProvider) GetDataSources(ctx context.Context, targetNodeID string, g graph.Graph) ([]DataSource, error) {
	parents := graph.DirectParents(targetNodeID, g)

	return ectolinq.Map(parents, func(nodeID string) DataSource {
		return formSource(nodeID, g)
	}), nil
}

// TransitiveProvider returns ancestors of the target that are not direct
// parents. Their fields are still available (they ran earlier) but are a
// weaker suggestion than a neighbouring form.
type TransitiveProvider struct{}

func NewTransitiveProvider() *TransitiveProvider {
	return &TransitiveProvider{}
}

func (p *TransitiveProvider) Name() string {
	return "transitive"
}

func (p *TransitiveProvider) GetDataSources(ctx context.Context, targetNodeID string, g graph.Graph) ([]DataSource, error) {
	ancestors := graph.FindUpstreamNodes(targetNodeID, g)
	parents := graph.DirectParents(targetNodeID, g)

	indirect := ectolinq.Filter(ancestors, func(nodeID string) bool {
		return !ectolinq.Contains(parents, nodeID)
	})

	return ectolinq.Map(indirect, func(nodeID string) DataSource {
		return formSource(nodeID, g)
	}), nil
}
