package graphsource

import "github.com/Ramsey-B/fern/pkg/graph"

func fields(defs ...[2]string) graph.Fields {
	result := make(graph.Fields, 0, len(defs))
	for _, def := range defs {
		result = append(result, graph.Field{ID: def[0], Name: def[0], Type: graph.FieldType(def[1])})
	}
	return result
}

func formNode(id, label string, x, y float64, f graph.Fields) graph.Node {
	return graph.Node{
		ID:       id,
		Type:     graph.NodeTypeForm,
		Position: graph.Position{X: x, Y: y},
		Data: graph.NodeData{
			Label:  label,
			Type:   FormNodeType,
			Fields: f,
		},
	}
}

// SampleGraph returns the five form demo journey. It is the fallback used
// when no blueprint API is configured or reachable.
//
//	form-a ──► form-b ──► form-d
//	   └─────► form-c ──► form-e
func SampleGraph() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{
			formNode("form-a", "Form A", 50, 200, fields(
				[2]string{"name", "string"},
				[2]string{"email", "string"},
				[2]string{"notes", "text"},
				[2]string{"multi_select", "array"},
			)),
			formNode("form-b", "Form B", 300, 100, fields(
				[2]string{"completed_at", "date"},
				[2]string{"button", "boolean"},
				[2]string{"dynamic_checkbox_group", "object"},
				[2]string{"dynamic_object", "object"},
				[2]string{"email", "string"},
				[2]string{"id", "string"},
				[2]string{"multi_select", "array"},
				[2]string{"name", "string"},
				[2]string{"notes", "text"},
			)),
			formNode("form-c", "Form C", 300, 300, fields(
				[2]string{"name", "string"},
				[2]string{"address", "string"},
				[2]string{"phone", "string"},
			)),
			formNode("form-d", "Form D", 550, 100, fields(
				[2]string{"dynamic_checkbox_group", "object"},
				[2]string{"dynamic_object", "object"},
				[2]string{"email", "string"},
				[2]string{"name", "string"},
			)),
			formNode("form-e", "Form E", 550, 300, fields(
				[2]string{"completed_at", "date"},
				[2]string{"status", "string"},
				[2]string{"comments", "text"},
			)),
		},
		Edges: []graph.Edge{
			{ID: "edge-a-b", Source: "form-a", Target: "form-b"},
			{ID: "edge-a-c", Source: "form-a", Target: "form-c"},
			{ID: "edge-b-d", Source: "form-b", Target: "form-d"},
			{ID: "edge-c-e", Source: "form-c", Target: "form-e"},
		},
	}
}
