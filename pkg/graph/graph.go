// Package graph defines the form graph that prefill resolution operates on.
//
// # Overview
//
// A graph is a snapshot of form steps (nodes) and the dependencies between
// them (edges). Data and execution flow from an edge's Source to its Target,
// so every node reachable by walking edges backward from a form has already
// run by the time that form is filled in.
//
//	form-a ──► form-b ──► form-d
//	   │
//	   └─────► form-c ──► form-e
//
// For form-d, form-b is a direct parent and form-a a transitive ancestor.
//
// # Fields
//
// Each node carries the fields of its form schema in declaration order. The
// field type is an open string. Any value is accepted and none is treated
// specially.
//
// # Snapshots
//
// Nothing in this package mutates a Graph. Edges may reference nodes that are
// not present; lookups simply report the node as missing.
package graph

// NodeTypeForm is the only node kind currently produced by the graph source.
const NodeTypeForm = "form"

// FieldType is the declared type of a form field ("string", "number", "date", ...).
type FieldType string

// Field is a single form field.
type Field struct {
	ID   string    `json:"id" validate:"required"`   // Unique within the owning node
	Name string    `json:"name" validate:"required"` // Display name
	Type FieldType `json:"type"`                     // Open-ended type tag
}

// Fields is an ordered list of fields.
type Fields []Field

// Position is the editor canvas position. It is carried through untouched.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData is the form payload of a node.
type NodeData struct {
	Label       string `json:"label"`
	Type        string `json:"type"`
	ComponentID string `json:"component_id,omitempty"`
	Fields      Fields `json:"fields,omitempty"` // nil until the form schema is loaded
}

// Node is a step in the workflow graph.
type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// Edge is a directed dependency; data flows from Source to Target.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type,omitempty"`
}

// Graph is a snapshot of every loaded node and edge.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// FindNode returns the node with the given id.
func (g Graph) FindNode(id string) (Node, bool) {
	for _, node := range g.Nodes {
		if node.ID == id {
			return node, true
		}
	}
	return Node{}, false
}

// NodeFields returns the fields of the node, or an empty list when the node is
// missing or its schema has not loaded. The result is never nil.
func (g Graph) NodeFields(id string) Fields {
	node, ok := g.FindNode(id)
	if !ok || node.Data.Fields == nil {
		return Fields{}
	}
	return node.Data.Fields
}

// NodeLabel returns the display label of the node, or "" when it is missing.
func (g Graph) NodeLabel(id string) string {
	node, ok := g.FindNode(id)
	if !ok {
		return ""
	}
	return node.Data.Label
}
