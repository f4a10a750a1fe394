package datasource

import (
	"context"

	"github.com/Ramsey-B/fern/pkg/graph"
)

// DefaultGlobalSources is the context every form can read from regardless of
// its position in the graph.
func DefaultGlobalSources() []DataSource {
	return []DataSource{
		{
			ID:   "action_properties",
			Name: "Action Properties",
			Type: CategoryGlobal,
			Fields: graph.Fields{
				{ID: "action_id", Name: "action_id", Type: "string"},
				{ID: "action_name", Name: "action_name", Type: "string"},
				{ID: "created_at", Name: "created_at", Type: "date"},
			},
		},
		{
			ID:   "client_org_properties",
			Name: "Client Organization Properties",
			Type: CategoryGlobal,
			Fields: graph.Fields{
				{ID: "org_id", Name: "org_id", Type: "string"},
				{ID: "org_name", Name: "org_name", Type: "string"},
				{ID: "org_domain", Name: "org_domain", Type: "string"},
			},
		},
	}
}

// GlobalProvider returns a fixed set of sources and ignores the graph.
type GlobalProvider struct {
	sources []DataSource
}

// NewGlobalProvider creates a global provider. With no sources it serves
// DefaultGlobalSources.
func NewGlobalProvider(sources ...DataSource) *GlobalProvider {
	if len(sources) == 0 {
		sources = DefaultGlobalSources()
	} else {
		sources = append([]DataSource{}, sources...)
	}

	for i := range sources {
		sources[i].Type = CategoryGlobal
	}

	return &GlobalProvider{sources: sources}
}

func (p *GlobalProvider) Name() string {
	return "global"
}

func (p *GlobalProvider) GetDataSources(_ context.Context, _ string, _ graph.Graph) ([]DataSource, error) {
	result := make([]DataSource, len(p.sources))
	for i, source := range p.sources {
		result[i] = source
		result[i].Fields = append(graph.Fields{}, source.Fields...)
	}
	return result, nil
}
