// Package document translates architecture description documents to and from
// models.Model. A document lists nodes by name and type and the interaction
// links between them; it can be written as JSON or YAML:
//
//	name: shop
//	nodes:
//	  - name: gateway
//	    type: message_router
//	  - name: orders
//	    type: service
//	  - name: orders-db
//	    type: database
//	links:
//	  - source: gateway
//	    target: orders
//	  - source: orders
//	    target: orders-db
//	    timeout: true
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LinkTypeInteraction is the only link type a document may contain.
const LinkTypeInteraction = "interaction"

// Format is the encoding of a document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document is the serialized form of an architecture model.
type Document struct {
	// Name is the model name
	Name string `json:"name" yaml:"name" validate:"required"`

	// Nodes are created in the listed order
	Nodes []NodeSpec `json:"nodes" yaml:"nodes" validate:"dive"`

	// Links are created after all nodes, in the listed order
	Links []LinkSpec `json:"links,omitempty" yaml:"links,omitempty" validate:"dive"`
}

// NodeSpec describes one node.
type NodeSpec struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	Type string `json:"type" yaml:"type" validate:"required,role"`
}

// LinkSpec describes one interaction. An empty Type means interaction.
type LinkSpec struct {
	Source           string `json:"source" yaml:"source" validate:"required"`
	Target           string `json:"target" yaml:"target" validate:"required"`
	Type             string `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,eq=interaction"`
	Timeout          bool   `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	CircuitBreaker   bool   `json:"circuit_breaker,omitempty" yaml:"circuit_breaker,omitempty"`
	DynamicDiscovery bool   `json:"dynamic_discovery,omitempty" yaml:"dynamic_discovery,omitempty"`
}

// DetectFormat picks the format from a file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// ParseFormat converts a format name ("json", "yaml", "yml").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown document format %q", s)
}

// Parse decodes a document. Unknown fields are rejected so that typos in
// property names do not silently drop metadata.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("invalid YAML document: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("invalid JSON document: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}

	return &doc, nil
}

// LoadFile reads and parses a document, detecting the format from the
// file extension.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return Parse(data, DetectFormat(path))
}

// Marshal encodes a document.
func Marshal(doc *Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	}
	return nil, fmt.Errorf("unknown document format %q", format)
}
