package models

import (
	"errors"
	"fmt"
)

var (
	// ErrModel matches every error raised by the model
	ErrModel = errors.New("model error")

	// ErrSelfLoop is returned when a node is asked to interact with itself
	ErrSelfLoop = errors.New("self-loop interaction")

	// ErrInvalidInteraction is returned when the role pair is not allowed
	ErrInvalidInteraction = errors.New("invalid interaction")

	// ErrDuplicateName is returned when a node name is already taken
	ErrDuplicateName = errors.New("duplicate node name")

	// ErrNotFound is returned for unknown nodes and relationships
	ErrNotFound = errors.New("not found")

	// ErrAttached is returned when a node already belongs to another model
	ErrAttached = errors.New("node already attached to a model")

	// ErrInvalidName is returned for nodes with an empty name
	ErrInvalidName = errors.New("invalid node name")
)

// ModelError describes a rejected model operation. Kind is one of the
// sentinel errors above; errors.Is matches both Kind and ErrModel.
type ModelError struct {
	Op     string
	Kind   error
	Node   string
	Source string
	Target string
	Detail string
}

func (e *ModelError) Error() string {
	msg := e.Op + ": " + e.Kind.Error()
	switch {
	case e.Source != "" || e.Target != "":
		msg += fmt.Sprintf(" (%s -> %s)", e.Source, e.Target)
	case e.Node != "":
		msg += fmt.Sprintf(" (%s)", e.Node)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ModelError) Unwrap() error {
	return e.Kind
}

func (e *ModelError) Is(target error) bool {
	return target == ErrModel
}

func nodeError(op string, kind error, node string) *ModelError {
	return &ModelError{Op: op, Kind: kind, Node: node}
}

func interactionError(op string, kind error, source, target *Node, detail string) *ModelError {
	return &ModelError{
		Op:     op,
		Kind:   kind,
		Source: source.Name(),
		Target: target.Name(),
		Detail: detail,
	}
}
