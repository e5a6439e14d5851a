package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// operation is one generated step against a model: add an interaction
// between two node indexes, or remove a node.
type operation struct {
	Remove bool
	From   int
	To     int
}

func genRole() gopter.Gen {
	return gen.OneConstOf(RoleService, RoleDatabase, RoleMessageBroker, RoleMessageRouter)
}

func genOperation() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 9),
		gen.IntRange(0, 7),
		gen.IntRange(0, 7),
	).Map(func(values []interface{}) operation {
		return operation{
			Remove: values[0].(int) == 0,
			From:   values[1].(int),
			To:     values[2].(int),
		}
	})
}

// buildModel creates one node per role and replays ops, ignoring rejected
// interactions.
func buildModel(roles []Role, ops []operation) *Model {
	m := NewModel("generated")
	for i, r := range roles {
		_ = m.AddNode(NewNode(fmt.Sprintf("n%d", i), r))
	}

	for _, op := range ops {
		src, err := m.Lookup(fmt.Sprintf("n%d", op.From))
		if err != nil {
			continue
		}
		if op.Remove {
			_ = m.RemoveNode(src)
			continue
		}
		tgt, err := m.Lookup(fmt.Sprintf("n%d", op.To))
		if err != nil {
			continue
		}
		_, _ = src.AddInteraction(tgt)
	}
	return m
}

// consistent checks that every relationship reachable from the model has both
// endpoints in the model and is registered on both sides.
func consistent(m *Model) bool {
	for _, n := range m.Nodes() {
		for _, rel := range n.Interactions() {
			if rel.Source() != n || !m.Has(rel.Target().Name()) {
				return false
			}
			if !containsRel(rel.Target().IncomingInteractions(), rel) {
				return false
			}
		}
		for _, rel := range n.IncomingInteractions() {
			if rel.Target() != n || !m.Has(rel.Source().Name()) {
				return false
			}
			if !containsRel(rel.Source().Interactions(), rel) {
				return false
			}
		}
	}
	return true
}

func containsRel(set []*InteractsWith, rel *InteractsWith) bool {
	for _, r := range set {
		if r == rel {
			return true
		}
	}
	return false
}

func TestModelProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("self-loops are rejected for every role", prop.ForAll(
		func(role Role) bool {
			m := NewModel("self")
			n := NewNode("n", role)
			if err := m.AddNode(n); err != nil {
				return false
			}
			rel, err := n.AddInteraction(n)
			return rel == nil && errors.Is(err, ErrSelfLoop) &&
				len(n.Interactions()) == 0 && len(n.IncomingInteractions()) == 0
		},
		genRole(),
	))

	properties.Property("add interaction follows the policy", prop.ForAll(
		func(srcRole, tgtRole Role) bool {
			m := NewModel("pair")
			src := NewNode("src", srcRole)
			tgt := NewNode("tgt", tgtRole)
			_ = m.AddNode(src)
			_ = m.AddNode(tgt)

			rel, err := src.AddInteraction(tgt)
			if !IsAllowed(srcRole, tgtRole) {
				return errors.Is(err, ErrInvalidInteraction) &&
					len(src.Interactions()) == 0 && len(tgt.IncomingInteractions()) == 0
			}
			return err == nil &&
				rel.Source() == src && rel.Target() == tgt &&
				len(src.Interactions()) == 1 && len(tgt.IncomingInteractions()) == 1 &&
				containsRel(src.Interactions(), rel) && containsRel(tgt.IncomingInteractions(), rel)
		},
		genRole(),
		genRole(),
	))

	properties.Property("random operation sequences keep both sides consistent", prop.ForAll(
		func(roles []Role, ops []operation) bool {
			return consistent(buildModel(roles, ops))
		},
		gen.SliceOfN(8, genRole()),
		gen.SliceOf(genOperation()),
	))

	properties.Property("removing a node leaves no reference to it", prop.ForAll(
		func(roles []Role, ops []operation, victim int) bool {
			m := buildModel(roles, ops)
			node, err := m.Lookup(fmt.Sprintf("n%d", victim))
			if err != nil {
				return true
			}
			if err := m.RemoveNode(node); err != nil {
				return false
			}
			for _, n := range m.Nodes() {
				for _, rel := range append(n.Interactions(), n.IncomingInteractions()...) {
					if rel.Source() == node || rel.Target() == node {
						return false
					}
				}
			}
			return consistent(m)
		},
		gen.SliceOfN(8, genRole()),
		gen.SliceOf(genOperation()),
		gen.IntRange(0, 7),
	))

	properties.Property("replaying operations is deterministic", prop.ForAll(
		func(roles []Role, ops []operation) bool {
			a := buildModel(roles, ops)
			b := buildModel(roles, ops)
			return fmt.Sprint(snapshot(a)) == fmt.Sprint(snapshot(b)) && a.Len() == b.Len()
		},
		gen.SliceOfN(8, genRole()),
		gen.SliceOf(genOperation()),
	))

	properties.TestingRun(t)
}
