package datasource

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Ramsey-B/fern/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGraph(edges ...graph.Edge) graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{
			{ID: "A", Type: graph.NodeTypeForm, Data: graph.NodeData{Label: "A", Type: "Form", Fields: graph.Fields{{ID: "field1", Name: "field1", Type: "string"}}}},
			{ID: "B", Type: graph.NodeTypeForm, Data: graph.NodeData{Label: "B", Type: "Form", Fields: graph.Fields{{ID: "field2", Name: "field2", Type: "number"}}}},
			{ID: "C", Type: graph.NodeTypeForm, Data: graph.NodeData{Label: "C", Type: "Form", Fields: graph.Fields{{ID: "field3", Name: "field3", Type: "boolean"}}}},
		},
		Edges: edges,
	}
}

func ids(sources []DataSource) []string {
	result := make([]string, len(sources))
	for i, source := range sources {
		result[i] = source.ID
	}
	return result
}

type stubProvider struct {
	name    string
	sources []DataSource
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (s *stubProvider) Name() string {
	return s.name
}

func (s *stubProvider) GetDataSources(ctx context.Context, _ string, _ graph.Graph) ([]DataSource, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.sources, s.err
}

func TestDirectProvider(t *testing.T) {
	g := testGraph(
		graph.Edge{ID: "edge1", Source: "A", Target: "C"},
		graph.Edge{ID: "edge2", Source: "B", Target: "C"},
	)

	sources, err := NewDirectProvider().GetDataSources(context.Background(), "C", g)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "A", sources[0].ID)
	assert.Equal(t, "B", sources[1].ID)
	assert.Equal(t, CategoryForm, sources[0].Type)
	assert.Equal(t, graph.Fields{{ID: "field1", Name: "field1", Type: "string"}}, sources[0].Fields)
	assert.Equal(t, graph.Fields{{ID: "field2", Name: "field2", Type: "number"}}, sources[1].Fields)
}

func TestDirectProvider_MissingParentHasNoFields(t *testing.T) {
	g := testGraph(graph.Edge{ID: "ghost-c", Source: "ghost", Target: "C"})
	g.Nodes = append(g.Nodes, graph.Node{ID: "D", Type: graph.NodeTypeForm})
	g.Edges = append(g.Edges, graph.Edge{ID: "d-c", Source: "D", Target: "C"})

	sources, err := NewDirectProvider().GetDataSources(context.Background(), "C", g)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "ghost", sources[0].ID)
	assert.NotNil(t, sources[0].Fields)
	assert.Empty(t, sources[0].Fields)
	assert.Equal(t, "D", sources[1].ID)
	assert.NotNil(t, sources[1].Fields)
	assert.Empty(t, sources[1].Fields)
}

func TestTransitiveProvider(t *testing.T) {
	g := testGraph(
		graph.Edge{ID: "edge1", Source: "A", Target: "B"},
		graph.Edge{ID: "edge2", Source: "B", Target: "C"},
	)

	sources, err := NewTransitiveProvider().GetDataSources(context.Background(), "C", g)
	require.NoError(t, err)
	require.Len(t, sources, 1)

	assert.Equal(t, "A", sources[0].ID)
	assert.Equal(t, CategoryForm, sources[0].Type)
	assert.Equal(t, graph.Fields{{ID: "field1", Name: "field1", Type: "string"}}, sources[0].Fields)
}

func TestTransitiveProvider_ExcludesDirectParentsReachableTwice(t *testing.T) {
	g := testGraph(
		graph.Edge{ID: "a-b", Source: "A", Target: "B"},
		graph.Edge{ID: "b-c", Source: "B", Target: "C"},
		graph.Edge{ID: "a-c", Source: "A", Target: "C"},
	)

	sources, err := NewTransitiveProvider().GetDataSources(context.Background(), "C", g)
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestTransitiveProvider_Cycle(t *testing.T) {
	g := testGraph(
		graph.Edge{ID: "a-b", Source: "A", Target: "B"},
		graph.Edge{ID: "b-c", Source: "B", Target: "C"},
		graph.Edge{ID: "c-a", Source: "C", Target: "A"},
	)

	sources, err := NewTransitiveProvider().GetDataSources(context.Background(), "C", g)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, ids(sources))
}

func TestGlobalProvider(t *testing.T) {
	sources, err := NewGlobalProvider().GetDataSources(context.Background(), "any-node", graph.Graph{})
	require.NoError(t, err)
	require.NotEmpty(t, sources)

	assert.Equal(t, []string{"action_properties", "client_org_properties"}, ids(sources))
	for _, source := range sources {
		assert.Equal(t, CategoryGlobal, source.Type)
	}
	assert.Equal(t, graph.FieldType("date"), sources[0].Fields[2].Type)
}

func TestGlobalProvider_CustomSources(t *testing.T) {
	custom := []DataSource{{ID: "run", Name: "Run", Type: CategoryForm}}

	sources, err := NewGlobalProvider(custom...).GetDataSources(context.Background(), "x", graph.Graph{})
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, CategoryGlobal, sources[0].Type)
	assert.Equal(t, CategoryForm, custom[0].Type)
}

func TestGlobalProvider_ResultsAreCopies(t *testing.T) {
	provider := NewGlobalProvider()

	first, err := provider.GetDataSources(context.Background(), "x", graph.Graph{})
	require.NoError(t, err)
	first[0].Fields[0].Name = "changed"

	second, err := provider.GetDataSources(context.Background(), "x", graph.Graph{})
	require.NoError(t, err)
	assert.Equal(t, "action_id", second[0].Fields[0].Name)
}

func TestCompositeProvider_ConcatenatesInProviderOrder(t *testing.T) {
	g := testGraph(
		graph.Edge{ID: "edge1", Source: "A", Target: "B"},
		graph.Edge{ID: "edge2", Source: "B", Target: "C"},
	)

	direct := NewDirectProvider()
	transitive := NewTransitiveProvider()
	global := NewGlobalProvider()

	composite := NewCompositeProvider([]Provider{direct, transitive, global})
	sources, err := composite.GetDataSources(context.Background(), "C", g)
	require.NoError(t, err)

	expectedLen := 0
	for _, provider := range []Provider{direct, transitive, global} {
		memberSources, err := provider.GetDataSources(context.Background(), "C", g)
		require.NoError(t, err)
		expectedLen += len(memberSources)
	}

	assert.Len(t, sources, expectedLen)
	assert.Equal(t, []string{"B", "A", "action_properties", "client_org_properties"}, ids(sources))
}

func TestCompositeProvider_OrderIndependentOfCompletion(t *testing.T) {
	slow := &stubProvider{name: "slow", sources: []DataSource{{ID: "slow"}}, delay: 50 * time.Millisecond}
	fast := &stubProvider{name: "fast", sources: []DataSource{{ID: "fast"}}}

	sources, err := NewCompositeProvider([]Provider{slow, fast}).GetDataSources(context.Background(), "C", graph.Graph{})
	require.NoError(t, err)
	assert.Equal(t, []string{"slow", "fast"}, ids(sources))
}

func TestCompositeProvider_FailsAsAWhole(t *testing.T) {
	boom := errors.New("boom")
	ok := &stubProvider{name: "ok", sources: []DataSource{{ID: "x"}}}
	broken := &stubProvider{name: "broken", err: boom}

	sources, err := NewCompositeProvider([]Provider{ok, broken}).GetDataSources(context.Background(), "C", graph.Graph{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
	assert.Nil(t, sources)
	var partial *PartialError
	assert.False(t, errors.As(err, &partial))
}

func TestCompositeProvider_PartialResults(t *testing.T) {
	boom := errors.New("boom")
	first := &stubProvider{name: "first", sources: []DataSource{{ID: "one"}}}
	broken := &stubProvider{name: "broken", err: boom}
	last := &stubProvider{name: "last", sources: []DataSource{{ID: "two"}, {ID: "three"}}}

	composite := NewCompositeProvider([]Provider{first, broken, last}, WithPartialResults())
	sources, err := composite.GetDataSources(context.Background(), "C", graph.Graph{})

	require.Error(t, err)
	var partial *PartialError
	require.True(t, errors.As(err, &partial))
	require.Len(t, partial.Failures, 1)
	assert.Equal(t, "broken", partial.Failures[0].Provider)
	assert.ErrorIs(t, partial.Failures[0].Err, boom)
	assert.Equal(t, []string{"one", "two", "three"}, ids(sources))
}

func TestCompositeProvider_Empty(t *testing.T) {
	sources, err := NewCompositeProvider(nil).GetDataSources(context.Background(), "C", graph.Graph{})
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestCompositeProvider_CancelledContext(t *testing.T) {
	member := &stubProvider{name: "member"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCompositeProvider([]Provider{member}).GetDataSources(ctx, "C", graph.Graph{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), member.calls.Load())
}

func TestCompositeProvider_DuplicatesAreKept(t *testing.T) {
	g := testGraph(
		graph.Edge{ID: "a-b", Source: "A", Target: "B"},
		graph.Edge{ID: "b-c", Source: "B", Target: "C"},
	)
	direct := NewDirectProvider()

	sources, err := NewCompositeProvider([]Provider{direct, direct}).GetDataSources(context.Background(), "C", g)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "B"}, ids(sources))
}

func TestNewDefaultProvider(t *testing.T) {
	provider := NewDefaultProvider()

	names := []string{}
	for _, member := range provider.providers {
		names = append(names, member.Name())
	}
	assert.Equal(t, []string{"direct", "transitive", "global"}, names)
	assert.False(t, provider.partial)
	assert.True(t, provider.WithOptions(WithPartialResults()).partial)
	assert.False(t, provider.partial)
}
