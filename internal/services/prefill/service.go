package prefill

import (
	"context"
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/datasource"
	"github.com/Ramsey-B/fern/pkg/graph"
	"github.com/Ramsey-B/fern/pkg/graphsource"
	"github.com/Ramsey-B/fern/pkg/prefill"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// DataSources is the candidate list for one target node. Failures is only
// set when partial results were requested and a provider failed.
type DataSources struct {
	NodeID   string                       `json:"node_id"`
	Sources  []datasource.DataSource      `json:"sources"`
	Failures []datasource.ProviderFailure `json:"failures,omitempty"`
}

type Service struct {
	logger   ectologger.Logger
	source   graphsource.Source
	provider *datasource.CompositeProvider
	registry *prefill.Registry
}

func NewService(logger ectologger.Logger, source graphsource.Source, provider *datasource.CompositeProvider, registry *prefill.Registry) *Service {
	return &Service{
		logger:   logger,
		source:   source,
		provider: provider,
		registry: registry,
	}
}

func (s *Service) GetGraph(ctx context.Context) (graph.Graph, error) {
	ctx, span := tracing.StartSpan(ctx, "prefill.GetGraph")
	defer span.End()

	g, err := s.source.FetchGraph(ctx)
	if err != nil {
		return graph.Graph{}, httperror.WrapError(http.StatusBadGateway, err)
	}
	return g, nil
}

// GetDataSources resolves the prefill candidates of nodeID. A failing
// provider degrades the answer to an empty list instead of an error; with
// partial set the healthy providers are kept and the failures reported.
func (s *Service) GetDataSources(ctx context.Context, nodeID string, partial bool) (DataSources, error) {
	ctx, span := tracing.StartSpan(ctx, "prefill.GetDataSources")
	defer span.End()

	g, _, err := s.node(ctx, nodeID)
	if err != nil {
		return DataSources{}, err
	}

	provider := s.provider
	if partial {
		provider = provider.WithOptions(datasource.WithPartialResults())
	}

	result := DataSources{NodeID: nodeID, Sources: []datasource.DataSource{}}

	sources, err := provider.GetDataSources(ctx, nodeID, g)
	var partialErr *datasource.PartialError
	if errors.As(err, &partialErr) {
		s.logger.WithContext(ctx).WithError(err).WithField("node_id", nodeID).Warn("Some data source providers failed")
		result.Sources = sources
		result.Failures = partialErr.Failures
		return result, nil
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return DataSources{}, ctxErr
		}
		s.logger.WithContext(ctx).WithError(err).WithField("node_id", nodeID).Error("Failed to resolve data sources")
		return result, nil
	}

	if sources != nil {
		result.Sources = sources
	}
	return result, nil
}

func (s *Service) ListMappings(ctx context.Context, nodeID string) (prefill.MappingSet, error) {
	ctx, span := tracing.StartSpan(ctx, "prefill.ListMappings")
	defer span.End()

	if _, _, err := s.node(ctx, nodeID); err != nil {
		return nil, err
	}

	return s.registry.Store(ctx, nodeID).Mappings(), nil
}

func (s *Service) GetMapping(ctx context.Context, nodeID, targetFieldID string) (prefill.PrefillMapping, error) {
	ctx, span := tracing.StartSpan(ctx, "prefill.GetMapping")
	defer span.End()

	if _, _, err := s.node(ctx, nodeID); err != nil {
		return prefill.PrefillMapping{}, err
	}

	mapping, ok := s.registry.Store(ctx, nodeID).GetMapping(targetFieldID)
	if !ok {
		return prefill.PrefillMapping{}, httperror.NewHTTPErrorf(http.StatusNotFound, "no prefill mapping for field '%s'", targetFieldID)
	}
	return mapping, nil
}

// UpsertMapping stores mapping for nodeID. When the node's fields are known
// the target field must be one of them.
func (s *Service) UpsertMapping(ctx context.Context, nodeID string, mapping prefill.PrefillMapping) (prefill.MappingSet, error) {
	ctx, span := tracing.StartSpan(ctx, "prefill.UpsertMapping")
	defer span.End()

	_, node, err := s.node(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	if len(node.Data.Fields) > 0 && !ectolinq.Contains(fieldIDs(node.Data.Fields), mapping.TargetFieldID) {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "node '%s' has no field '%s'", nodeID, mapping.TargetFieldID)
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"node_id":         nodeID,
		"target_field_id": mapping.TargetFieldID,
		"source_node_id":  mapping.SourceNodeID,
	}).Info("Saving prefill mapping")

	store := s.registry.Store(ctx, nodeID)
	store.AddMapping(ctx, mapping)
	return store.Mappings(), nil
}

func (s *Service) RemoveMapping(ctx context.Context, nodeID, targetFieldID string) (prefill.MappingSet, error) {
	ctx, span := tracing.StartSpan(ctx, "prefill.RemoveMapping")
	defer span.End()

	if _, _, err := s.node(ctx, nodeID); err != nil {
		return nil, err
	}

	store := s.registry.Store(ctx, nodeID)
	store.RemoveMapping(ctx, targetFieldID)
	return store.Mappings(), nil
}

func (s *Service) ClearMappings(ctx context.Context, nodeID string) error {
	ctx, span := tracing.StartSpan(ctx, "prefill.ClearMappings")
	defer span.End()

	if _, _, err := s.node(ctx, nodeID); err != nil {
		return err
	}

	s.logger.WithContext(ctx).WithField("node_id", nodeID).Info("Clearing prefill mappings")
	s.registry.Store(ctx, nodeID).ClearMappings(ctx)
	return nil
}

// node loads the graph and looks up nodeID in it.
func (s *Service) node(ctx context.Context, nodeID string) (graph.Graph, graph.Node, error) {
	g, err := s.GetGraph(ctx)
	if err != nil {
		return graph.Graph{}, graph.Node{}, err
	}

	node, ok := g.FindNode(nodeID)
	if !ok {
		return graph.Graph{}, graph.Node{}, httperror.NewHTTPErrorf(http.StatusNotFound, "node '%s' not found", nodeID)
	}
	return g, node, nil
}

func fieldIDs(fields graph.Fields) []string {
	return ectolinq.Map(fields, func(field graph.Field) string {
		return field.ID
	})
}
