package models

import "slices"

// Node is an architectural element of a microservice architecture.
//
// The name and role are fixed at construction. The outgoing and incoming
// relationship sets keep insertion order and are only changed through
// AddInteraction, RemoveInteraction and Model.RemoveNode, which update both
// endpoints in one call.
//
// Example:
//
//	m := models.NewModel("shop")
//	orders := models.NewService("orders")
//	db := models.NewDatabase("orders-db")
//	_ = m.AddNode(orders)
//	_ = m.AddNode(db)
//	rel, err := orders.AddInteraction(db, models.WithTimeout(true))
type Node struct {
	name  string
	role  Role
	model *Model

	interactions []*InteractsWith
	incoming     []*InteractsWith
}

// NewNode creates a detached node with the given name and role.
func NewNode(name string, role Role) *Node {
	return &Node{name: name, role: role}
}

// NewService creates a detached service node.
func NewService(name string) *Node {
	return NewNode(name, RoleService)
}

// NewDatabase creates a detached database node.
func NewDatabase(name string) *Node {
	return NewNode(name, RoleDatabase)
}

// NewMessageBroker creates a detached message broker node.
func NewMessageBroker(name string) *Node {
	return NewNode(name, RoleMessageBroker)
}

// NewMessageRouter creates a detached message router node.
func NewMessageRouter(name string) *Node {
	return NewNode(name, RoleMessageRouter)
}

func (n *Node) Name() string {
	return n.name
}

func (n *Node) Role() Role {
	return n.role
}

// Model returns the model owning the node, or nil for a detached node.
func (n *Node) Model() *Model {
	return n.model
}

// Interactions returns the outgoing relationships in insertion order. The
// returned slice is a copy.
func (n *Node) Interactions() []*InteractsWith {
	return slices.Clone(n.interactions)
}

// IncomingInteractions returns the relationships targeting this node in
// insertion order. The returned slice is a copy.
func (n *Node) IncomingInteractions() []*InteractsWith {
	return slices.Clone(n.incoming)
}

// AddInteraction creates a relationship from n to target and registers it on
// both endpoints. Checks run in order and stop at the first failure:
//  1. target must not be n (ErrSelfLoop)
//  2. the role pair must be allowed by the policy (ErrInvalidInteraction)
//  3. both nodes must belong to the same model (ErrNotFound)
//
// On failure nothing is modified.
func (n *Node) AddInteraction(target *Node, opts ...InteractionOption) (*InteractsWith, error) {
	const op = "add interaction"

	if target == nil {
		return nil, &ModelError{Op: op, Kind: ErrNotFound, Source: n.name, Detail: "target is nil"}
	}
	if target == n {
		return nil, interactionError(op, ErrSelfLoop, n, target, "")
	}
	if !IsAllowed(n.role, target.role) {
		return nil, interactionError(op, ErrInvalidInteraction, n, target,
			string(n.role)+" cannot interact with "+string(target.role))
	}
	if n.model == nil || target.model != n.model {
		return nil, interactionError(op, ErrNotFound, n, target, "endpoints are not in the same model")
	}

	rel := newInteractsWith(n, target, opts)
	link(rel)
	return rel, nil
}

// RemoveInteraction removes rel from n's outgoing set and from its target's
// incoming set. It fails with ErrNotFound when rel does not start at n.
func (n *Node) RemoveInteraction(rel *InteractsWith) error {
	if rel == nil || !slices.Contains(n.interactions, rel) {
		return nodeError("remove interaction", ErrNotFound, n.name)
	}
	unlink(rel)
	return nil
}

// InteractsWithNode reports whether n has at least one outgoing relationship
// to target.
func (n *Node) InteractsWithNode(target *Node) bool {
	return slices.ContainsFunc(n.interactions, func(r *InteractsWith) bool {
		return r.target == target
	})
}

func (n *Node) String() string {
	return n.name + " (" + string(n.role) + ")"
}

// link and unlink are the only places touching the relationship sets, so the
// two sides of a relationship are always registered together.
func link(rel *InteractsWith) {
	rel.source.interactions = append(rel.source.interactions, rel)
	rel.target.incoming = append(rel.target.incoming, rel)
}

func unlink(rel *InteractsWith) {
	rel.source.interactions = removeRelationship(rel.source.interactions, rel)
	rel.target.incoming = removeRelationship(rel.target.incoming, rel)
}

func removeRelationship(set []*InteractsWith, rel *InteractsWith) []*InteractsWith {
	if i := slices.Index(set, rel); i >= 0 {
		return slices.Delete(set, i, i+1)
	}
	return set
}
