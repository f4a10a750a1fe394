package graphsource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/graph"
	"github.com/Ramsey-B/fern/pkg/httpclient"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// HTTPConfig locates a blueprint graph on the blueprint API.
type HTTPConfig struct {
	BaseURL     string
	TenantID    string
	BlueprintID string
	Headers     map[string]string
}

// GraphURL returns the graph endpoint of the configured blueprint.
func (c HTTPConfig) GraphURL() string {
	return fmt.Sprintf("%s/api/v1/%s/actions/blueprints/%s/graph",
		strings.TrimRight(c.BaseURL, "/"),
		url.PathEscape(c.TenantID),
		url.PathEscape(c.BlueprintID),
	)
}

// HTTPSource fetches the graph from the blueprint API. When the API cannot
// be reached or answers with something unusable, the fallback snapshot is
// returned instead.
type HTTPSource struct {
	client   *httpclient.Client
	config   HTTPConfig
	fallback graph.Graph
	logger   ectologger.Logger
}

func NewHTTPSource(client *httpclient.Client, config HTTPConfig, fallback graph.Graph, logger ectologger.Logger) *HTTPSource {
	return &HTTPSource{
		client:   client,
		config:   config,
		fallback: fallback,
		logger:   logger,
	}
}

// FetchGraph never returns an error.
func (s *HTTPSource) FetchGraph(ctx context.Context) (graph.Graph, error) {
	ctx, span := tracing.StartSpan(ctx, "graphsource.FetchGraph")
	defer span.End()

	g, err := s.fetch(ctx)
	if err != nil {
		metrics.RecordGraphFetch("fallback")
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tenant_id":    s.config.TenantID,
			"blueprint_id": s.config.BlueprintID,
		}).Warn("Failed to fetch form graph, falling back to snapshot")
		return s.fallback, nil
	}

	metrics.RecordGraphFetch("success")
	s.logger.WithContext(ctx).WithFields(map[string]any{
		"nodes": len(g.Nodes),
		"edges": len(g.Edges),
	}).Debug("Fetched form graph")
	return g, nil
}

func (s *HTTPSource) fetch(ctx context.Context) (graph.Graph, error) {
	headers := map[string]string{"Accept": "application/json"}
	for key, value := range s.config.Headers {
		headers[key] = value
	}

	resp, err := s.client.Get(ctx, s.config.GraphURL(), headers)
	if err != nil {
		return graph.Graph{}, err
	}

	if resp.StatusCode != http.StatusOK {
		return graph.Graph{}, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	var bp Blueprint
	if err := json.Unmarshal(resp.Body, &bp); err != nil {
		return graph.Graph{}, fmt.Errorf("failed to decode graph payload: %w", err)
	}

	return Transform(bp), nil
}
