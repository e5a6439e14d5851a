package models

import "slices"

// Model is the container owning every node of one architecture, keyed by the
// unique node name.
//
// A Model is not safe for concurrent use. Callers sharing a model between
// goroutines must hold one lock around every mutating call sequence,
// RemoveNode included.
type Model struct {
	name  string
	nodes map[string]*Node
	order []*Node
}

// NewModel creates an empty model.
func NewModel(name string) *Model {
	return &Model{
		name:  name,
		nodes: make(map[string]*Node),
	}
}

func (m *Model) Name() string {
	return m.name
}

// Len returns the number of nodes.
func (m *Model) Len() int {
	return len(m.order)
}

// AddNode makes m the owner of node. The name must be non-empty and unused in
// m, and the node must not belong to another model.
func (m *Model) AddNode(node *Node) error {
	const op = "add node"

	if node == nil || node.name == "" {
		return nodeError(op, ErrInvalidName, "")
	}
	if _, exists := m.nodes[node.name]; exists {
		return nodeError(op, ErrDuplicateName, node.name)
	}
	if node.model != nil {
		return nodeError(op, ErrAttached, node.name)
	}

	node.model = m
	m.nodes[node.name] = node
	m.order = append(m.order, node)
	return nil
}

// Lookup returns the node with the given name.
func (m *Model) Lookup(name string) (*Node, error) {
	node, ok := m.nodes[name]
	if !ok {
		return nil, nodeError("lookup", ErrNotFound, name)
	}
	return node, nil
}

// Has reports whether a node with the given name exists.
func (m *Model) Has(name string) bool {
	_, ok := m.nodes[name]
	return ok
}

// Nodes returns all nodes in insertion order.
func (m *Model) Nodes() []*Node {
	return slices.Clone(m.order)
}

// NodesByRole returns the nodes with the given role in insertion order.
func (m *Model) NodesByRole(role Role) []*Node {
	var nodes []*Node
	for _, n := range m.order {
		if n.role == role {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// AddInteraction looks both endpoints up by name and creates the interaction
// through the source node.
func (m *Model) AddInteraction(source, target string, opts ...InteractionOption) (*InteractsWith, error) {
	src, err := m.Lookup(source)
	if err != nil {
		return nil, err
	}
	tgt, err := m.Lookup(target)
	if err != nil {
		return nil, err
	}
	return src.AddInteraction(tgt, opts...)
}

// Interactions returns every relationship of the model, grouped by source in
// node insertion order.
func (m *Model) Interactions() []*InteractsWith {
	var rels []*InteractsWith
	for _, n := range m.order {
		rels = append(rels, n.interactions...)
	}
	return rels
}

// RemoveNode removes node and every relationship it takes part in. Outgoing
// relationships are dropped from their targets' incoming sets and incoming
// relationships from their sources' outgoing sets before the node itself is
// removed, so no remaining node references it. The removed node is detached
// and may be added to a model again.
func (m *Model) RemoveNode(node *Node) error {
	if node == nil || node.model != m || m.nodes[node.name] != node {
		name := ""
		if node != nil {
			name = node.name
		}
		return nodeError("remove node", ErrNotFound, name)
	}

	for _, rel := range node.interactions {
		rel.target.incoming = removeRelationship(rel.target.incoming, rel)
	}
	for _, rel := range node.incoming {
		rel.source.interactions = removeRelationship(rel.source.interactions, rel)
	}
	node.interactions = nil
	node.incoming = nil

	delete(m.nodes, node.name)
	m.order = slices.DeleteFunc(m.order, func(n *Node) bool { return n == node })
	node.model = nil
	return nil
}
