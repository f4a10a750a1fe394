package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Ramsey-B/fern/pkg/graph"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"golang.org/x/sync/errgroup"
)

// ProviderFailure is the error a single member provider returned.
type ProviderFailure struct {
	Provider string `json:"provider"`
	Err      error  `json:"-"`
	Message  string `json:"message"`
}

// PartialError reports the providers that failed when a composite runs with
// partial results enabled. The data sources of the remaining providers are
// returned alongside it.
type PartialError struct {
	Failures []ProviderFailure
}

func (e *PartialError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, failure := range e.Failures {
		parts[i] = fmt.Sprintf("%s: %s", failure.Provider, failure.Message)
	}
	return fmt.Sprintf("%d data source provider(s) failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

type CompositeOption func(*CompositeProvider)

// WithPartialResults keeps the results of healthy providers when others fail.
func WithPartialResults() CompositeOption {
	return func(c *CompositeProvider) {
		c.partial = true
	}
}

// CompositeProvider queries its providers concurrently and concatenates their
// results in provider order, independent of completion order.
//
// By default the first failing provider fails the whole call and no results
// are returned.
type CompositeProvider struct {
	providers []Provider
	partial   bool
}

func NewCompositeProvider(providers []Provider, opts ...CompositeOption) *CompositeProvider {
	c := &CompositeProvider{providers: providers}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewDefaultProvider combines the direct, transitive and global providers.
func NewDefaultProvider(opts ...CompositeOption) *CompositeProvider {
	return NewCompositeProvider([]Provider{
		NewDirectProvider(),
		NewTransitiveProvider(),
		NewGlobalProvider(),
	}, opts...)
}

func (c *CompositeProvider) Name() string {
	return "composite"
}

// WithOptions returns a copy of the composite with extra options applied.
func (c *CompositeProvider) WithOptions(opts ...CompositeOption) *CompositeProvider {
	clone := &CompositeProvider{providers: c.providers, partial: c.partial}
	for _, opt := range opts {
		opt(clone)
	}
	return clone
}

func (c *CompositeProvider) GetDataSources(ctx context.Context, targetNodeID string, g graph.Graph) ([]DataSource, error) {
	ctx, span := tracing.StartSpan(ctx, "CompositeProvider.GetDataSources")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([][]DataSource, len(c.providers))
	errs := make([]error, len(c.providers))

	var eg *errgroup.Group
	egCtx := ctx
	if c.partial {
		eg = &errgroup.Group{}
	} else {
		eg, egCtx = errgroup.WithContext(ctx)
	}

	for i, provider := range c.providers {
		eg.Go(func() error {
			sources, err := callProvider(egCtx, provider, targetNodeID, g)
			if err != nil {
				errs[i] = err
				if c.partial {
					return nil
				}
				return fmt.Errorf("data source provider '%s' failed: %w", provider.Name(), err)
			}
			results[i] = sources
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	merged := []DataSource{}
	failures := []ProviderFailure{}
	for i, sources := range results {
		if errs[i] != nil {
			failures = append(failures, ProviderFailure{
				Provider: c.providers[i].Name(),
				Err:      errs[i],
				Message:  errs[i].Error(),
			})
			continue
		}
		merged = append(merged, sources...)
	}

	if len(failures) > 0 {
		return merged, &PartialError{Failures: failures}
	}

	return merged, nil
}

func callProvider(ctx context.Context, provider Provider, targetNodeID string, g graph.Graph) ([]DataSource, error) {
	start := time.Now()
	sources, err := provider.GetDataSources(ctx, targetNodeID, g)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordProviderCall(provider.Name(), status, len(sources), time.Since(start).Seconds())

	return sources, err
}
