package graphsource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/pkg/graph"
	"github.com/Ramsey-B/fern/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blueprintPayload = `{
	"nodes": [
		{
			"id": "form-47c61d17",
			"type": "form",
			"position": {"x": 494, "y": 269},
			"data": {"component_id": "f_01jk7ap2r3ewf9gx6a9r09gzjv", "name": "Form A"}
		},
		{
			"id": "form-bad163fd",
			"type": "form",
			"position": {"x": 780, "y": 150},
			"data": {"component_id": "f_missing", "name": "Form B"}
		}
	],
	"edges": [
		{"source": "form-47c61d17", "target": "form-bad163fd"}
	],
	"forms": [
		{
			"id": "f_01jk7ap2r3ewf9gx6a9r09gzjv",
			"name": "test form",
			"field_schema": {
				"type": "object",
				"properties": {
					"name": {"avantos_type": "short-text", "type": "string"},
					"email": {"title": "Email Address", "type": "string"},
					"button": {"type": "object", "title": "Button"},
					"notes": {}
				}
			}
		}
	]
}`

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestExtractFields(t *testing.T) {
	schema := json.RawMessage(`{"properties": {"zeta": {"type": "number"}, "alpha": {"title": "Alpha"}, "mid": {"type": "date", "title": ""}}}`)

	fields, err := ExtractFields(schema)
	require.NoError(t, err)
	assert.Equal(t, graph.Fields{
		{ID: "zeta", Name: "zeta", Type: "number"},
		{ID: "alpha", Name: "Alpha", Type: "string"},
		{ID: "mid", Name: "mid", Type: "date"},
	}, fields)
}

func TestExtractFields_NonObjectPropertyDegrades(t *testing.T) {
	schema := json.RawMessage(`{"properties": {"email": {"type": "string", "title": "Email"}, "agree": true, "count": 3}}`)

	fields, err := ExtractFields(schema)
	require.NoError(t, err)
	assert.Equal(t, graph.Fields{
		{ID: "email", Name: "Email", Type: "string"},
		{ID: "agree", Name: "agree", Type: "string"},
		{ID: "count", Name: "count", Type: "string"},
	}, fields)
}

func TestExtractFields_NoProperties(t *testing.T) {
	for _, schema := range []string{``, `null`, `{}`, `{"properties": null}`} {
		fields, err := ExtractFields(json.RawMessage(schema))
		require.NoError(t, err, schema)
		assert.NotNil(t, fields, schema)
		assert.Empty(t, fields, schema)
	}
}

func TestExtractFields_Invalid(t *testing.T) {
	_, err := ExtractFields(json.RawMessage(`{"properties": [1, 2]}`))
	assert.Error(t, err)

	_, err = ExtractFields(json.RawMessage(`"nope"`))
	assert.Error(t, err)
}

func TestTransform(t *testing.T) {
	var bp Blueprint
	require.NoError(t, json.Unmarshal([]byte(blueprintPayload), &bp))

	g := Transform(bp)
	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 1)

	a := g.Nodes[0]
	assert.Equal(t, "form-47c61d17", a.ID)
	assert.Equal(t, "form", a.Type)
	assert.Equal(t, graph.Position{X: 494, Y: 269}, a.Position)
	assert.Equal(t, "Form A", a.Data.Label)
	assert.Equal(t, FormNodeType, a.Data.Type)
	assert.Equal(t, "f_01jk7ap2r3ewf9gx6a9r09gzjv", a.Data.ComponentID)
	assert.Equal(t, graph.Fields{
		{ID: "name", Name: "name", Type: "string"},
		{ID: "email", Name: "Email Address", Type: "string"},
		{ID: "button", Name: "Button", Type: "object"},
		{ID: "notes", Name: "notes", Type: "string"},
	}, a.Data.Fields)

	b := g.Nodes[1]
	assert.Equal(t, "Form B", b.Data.Label)
	assert.NotNil(t, b.Data.Fields)
	assert.Empty(t, b.Data.Fields)

	assert.Equal(t, []string{"form-47c61d17"}, graph.DirectParents("form-bad163fd", g))
}

func TestHTTPSource_FetchGraph(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(blueprintPayload))
	}))
	defer server.Close()

	source := NewHTTPSource(
		httpclient.NewClient(httpclient.DefaultConfig(), testLogger()),
		HTTPConfig{BaseURL: server.URL + "/", TenantID: "tenant1", BlueprintID: "bp_01"},
		SampleGraph(),
		testLogger(),
	)

	g, err := source.FetchGraph(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/tenant1/actions/blueprints/bp_01/graph", gotPath)
	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "Form A", g.NodeLabel("form-47c61d17"))
}

func TestHTTPSource_FallsBack(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "invalid payload",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"nodes": "nope"`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			source := NewHTTPSource(
				httpclient.NewClient(httpclient.DefaultConfig(), testLogger()),
				HTTPConfig{BaseURL: server.URL, TenantID: "t", BlueprintID: "b"},
				SampleGraph(),
				testLogger(),
			)

			g, err := source.FetchGraph(context.Background())
			require.NoError(t, err)
			assert.Equal(t, SampleGraph(), g)
		})
	}
}

func TestHTTPSource_FallsBackWhenUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	source := NewHTTPSource(
		httpclient.NewClient(httpclient.DefaultConfig(), testLogger()),
		HTTPConfig{BaseURL: baseURL, TenantID: "t", BlueprintID: "b"},
		SampleGraph(),
		testLogger(),
	)

	g, err := source.FetchGraph(context.Background())
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 5)
}

func TestSampleGraph(t *testing.T) {
	g := SampleGraph()

	assert.Equal(t, []string{"form-b", "form-a"}, graph.FindUpstreamNodes("form-d", g))
	assert.Empty(t, graph.FindUpstreamNodes("form-a", g))
	assert.Len(t, g.NodeFields("form-b"), 9)
	assert.Equal(t, graph.FieldType("text"), g.NodeFields("form-e")[2].Type)
}

func TestStatic(t *testing.T) {
	g, err := NewStatic(SampleGraph()).FetchGraph(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SampleGraph(), g)
}
