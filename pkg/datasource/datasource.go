// Package datasource resolves the candidate sources a form field can be
// prefilled from.
//
// # Providers
//
// Every variant implements the single-method Provider interface:
//
//   - DirectProvider: forms with an edge straight into the target
//   - TransitiveProvider: ancestors two or more hops away
//   - GlobalProvider: context available to every form (action, organization)
//   - CompositeProvider: fans out to a list of providers and concatenates
//
// A form can appear under more than one provider when the graph allows it
// (for example a direct edge plus a longer path). Results are not
// deduplicated; grouping is left to the caller.
package datasource

import (
	"context"

	"github.com/Ramsey-B/fern/pkg/graph"
)

// Category tags where a data source comes from.
type Category string

const (
	CategoryForm   Category = "form"
	CategoryGlobal Category = "global"
)

// DataSource is a candidate origin for a prefill value.
type DataSource struct {
	ID     string       `json:"id"`   // Origin node id, or a synthetic id for globals
	Name   string       `json:"name"` // Display name
	Type   Category     `json:"type"`
	Fields graph.Fields `json:"fields"`
}

// Provider returns the data sources available to a target node.
type Provider interface {
	Name() string
	GetDataSources(ctx context.Context, targetNodeID string, g graph.Graph) ([]DataSource, error)
}

// formSource builds the data source for a form node. Missing nodes and nodes
// without a loaded schema contribute an empty field list.
func formSource(nodeID string, g graph.Graph) DataSource {
	return DataSource{
		ID:     nodeID,
		Name:   g.NodeLabel(nodeID),
		Type:   CategoryForm,
		Fields: g.NodeFields(nodeID),
	}
}
