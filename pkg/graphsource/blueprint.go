package graphsource

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Ramsey-B/fern/pkg/graph"
)

// FormNodeType is the payload type label given to every transformed node.
const FormNodeType = "Form"

// Blueprint is the raw graph payload of the blueprint API.
type Blueprint struct {
	Nodes []BlueprintNode `json:"nodes"`
	Edges []graph.Edge    `json:"edges"`
	Forms []Form          `json:"forms"`
}

type BlueprintNode struct {
	ID       string            `json:"id"`
	Type     string            `json:"type"`
	Position graph.Position    `json:"position"`
	Data     BlueprintNodeData `json:"data"`
}

type BlueprintNodeData struct {
	ComponentID string `json:"component_id"`
	Name        string `json:"name"`
}

// Form is a form definition. FieldSchema is a JSON schema object whose
// properties become the form's fields.
type Form struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	FieldSchema json.RawMessage `json:"field_schema"`
}

type schemaProperty struct {
	Title any `json:"title"`
	Type  any `json:"type"`
}

// Transform converts a blueprint payload into a graph. Nodes without a
// matching form, or whose schema cannot be read, get an empty field list.
func Transform(bp Blueprint) graph.Graph {
	forms := make(map[string]Form, len(bp.Forms))
	for _, form := range bp.Forms {
		forms[form.ID] = form
	}

	g := graph.Graph{
		Nodes: make([]graph.Node, 0, len(bp.Nodes)),
		Edges: bp.Edges,
	}
	if g.Edges == nil {
		g.Edges = []graph.Edge{}
	}

	for _, node := range bp.Nodes {
		fields := graph.Fields{}
		if form, ok := forms[node.Data.ComponentID]; ok {
			if extracted, err := ExtractFields(form.FieldSchema); err == nil {
				fields = extracted
			}
		}

		g.Nodes = append(g.Nodes, graph.Node{
			ID:       node.ID,
			Type:     node.Type,
			Position: node.Position,
			Data: graph.NodeData{
				Label:       node.Data.Name,
				Type:        FormNodeType,
				ComponentID: node.Data.ComponentID,
				Fields:      fields,
			},
		})
	}

	return g
}

// ExtractFields reads the properties of a JSON schema in declaration order.
// The field id is the property key, the name its title (or the key) and the
// type its declared type (or "string"). A property that is not an object,
// such as a boolean schema, keeps the key as name and "string" as type.
func ExtractFields(schema json.RawMessage) (graph.Fields, error) {
	fields := graph.Fields{}
	if len(bytes.TrimSpace(schema)) == 0 || bytes.Equal(bytes.TrimSpace(schema), []byte("null")) {
		return fields, nil
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal(schema, &root); err != nil {
		return nil, fmt.Errorf("invalid field schema: %w", err)
	}

	properties, ok := root["properties"]
	if !ok {
		return fields, nil
	}

	keys, values, err := orderedObject(properties)
	if err != nil {
		return nil, fmt.Errorf("invalid field schema properties: %w", err)
	}

	for i, key := range keys {
		var property schemaProperty
		if err := json.Unmarshal(values[i], &property); err != nil {
			property = schemaProperty{}
		}

		field := graph.Field{ID: key, Name: key, Type: "string"}
		if title, ok := property.Title.(string); ok && title != "" {
			field.Name = title
		}
		if fieldType, ok := property.Type.(string); ok && fieldType != "" {
			field.Type = graph.FieldType(fieldType)
		}
		fields = append(fields, field)
	}

	return fields, nil
}

// orderedObject decodes a JSON object keeping the order of its keys.
func orderedObject(raw json.RawMessage) ([]string, []json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if tok == nil {
		return nil, nil, nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	keys := []string{}
	values := []json.RawMessage{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected object key, got %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		values = append(values, value)
	}

	return keys, values, nil
}
