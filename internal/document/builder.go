package document

import (
	"errors"
	"fmt"
	"io"
	"log"

	"evalgo.org/microtosca/models"
)

// ErrBuildFailed is returned by a strict build on the first rejected node or link.
var ErrBuildFailed = errors.New("document build failed")

// Builder creates models from documents through the public model operations,
// so every link passes the interaction policy.
type Builder struct {
	// Strict aborts on the first rejected node or link. Otherwise rejected
	// entries are recorded in BuildResult.Errors and skipped.
	Strict bool

	logger *log.Logger
}

// BuildResult contains the built model and everything that was skipped.
type BuildResult struct {
	// Model is nil only when a strict build fails
	Model *models.Model

	// Warnings contains non-fatal findings
	Warnings []string

	// Errors contains rejected nodes and links
	Errors []string
}

// OK reports whether every node and link was accepted.
func (r *BuildResult) OK() bool {
	return len(r.Errors) == 0
}

// NewBuilder creates a builder. A nil logger discards output.
func NewBuilder(strict bool, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Builder{Strict: strict, logger: logger}
}

// Build creates a model from doc. Nodes are added first, then links, each in
// document order.
func (b *Builder) Build(doc *Document) (*BuildResult, error) {
	result := &BuildResult{
		Warnings: []string{},
		Errors:   []string{},
	}

	if doc == nil {
		return result, fmt.Errorf("document is nil")
	}
	if doc.Name == "" {
		result.Warnings = append(result.Warnings, "document has no name")
	}
	if len(doc.Nodes) == 0 {
		result.Warnings = append(result.Warnings, "document contains no nodes")
	}

	m := models.NewModel(doc.Name)

	for i, spec := range doc.Nodes {
		if err := b.addNode(m, spec); err != nil {
			if b.Strict {
				return result, fmt.Errorf("%w: nodes[%d]: %w", ErrBuildFailed, i, err)
			}
			result.Errors = append(result.Errors, fmt.Sprintf("nodes[%d]: %v", i, err))
		}
	}

	for i, spec := range doc.Links {
		if err := b.addLink(m, spec); err != nil {
			if b.Strict {
				return result, fmt.Errorf("%w: links[%d]: %w", ErrBuildFailed, i, err)
			}
			result.Errors = append(result.Errors, fmt.Sprintf("links[%d]: %v", i, err))
		}
	}

	for _, n := range m.Nodes() {
		if len(n.Interactions()) == 0 && len(n.IncomingInteractions()) == 0 && m.Len() > 1 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("node %s has no interactions", n.Name()))
		}
	}

	b.logger.Printf("Built model %q: %d nodes, %d interactions, %d errors",
		m.Name(), m.Len(), len(m.Interactions()), len(result.Errors))

	result.Model = m
	return result, nil
}

func (b *Builder) addNode(m *models.Model, spec NodeSpec) error {
	role, err := models.ParseRole(spec.Type)
	if err != nil {
		return fmt.Errorf("node %s: %w", spec.Name, err)
	}
	return m.AddNode(models.NewNode(spec.Name, role))
}

func (b *Builder) addLink(m *models.Model, spec LinkSpec) error {
	if spec.Type != "" && spec.Type != LinkTypeInteraction {
		return fmt.Errorf("link %s -> %s: unsupported link type %q", spec.Source, spec.Target, spec.Type)
	}

	_, err := m.AddInteraction(spec.Source, spec.Target, models.WithProperties(spec.Properties()))
	return err
}

// Properties returns the interaction metadata of the link.
func (l LinkSpec) Properties() models.InteractionProperties {
	return models.InteractionProperties{
		Timeout:          l.Timeout,
		CircuitBreaker:   l.CircuitBreaker,
		DynamicDiscovery: l.DynamicDiscovery,
	}
}

// Export converts a model back into a document, preserving node insertion
// order and the order of each node's outgoing interactions.
func Export(m *models.Model) *Document {
	doc := &Document{
		Name:  m.Name(),
		Nodes: make([]NodeSpec, 0, m.Len()),
	}

	for _, n := range m.Nodes() {
		doc.Nodes = append(doc.Nodes, NodeSpec{Name: n.Name(), Type: n.Role().String()})
	}

	for _, rel := range m.Interactions() {
		props := rel.Properties()
		doc.Links = append(doc.Links, LinkSpec{
			Source:           rel.Source().Name(),
			Target:           rel.Target().Name(),
			Type:             LinkTypeInteraction,
			Timeout:          props.Timeout,
			CircuitBreaker:   props.CircuitBreaker,
			DynamicDiscovery: props.DynamicDiscovery,
		})
	}

	return doc
}
