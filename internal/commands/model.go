package commands

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"evalgo.org/microtosca/internal/document"
	"evalgo.org/microtosca/models"
)

// loadModel builds the model described by the document at path. An empty
// path yields an empty model named after the configuration.
func loadModel(path string, strict bool) (*document.BuildResult, error) {
	if path == "" {
		name := "microtosca"
		if cfg != nil && cfg.Model.Name != "" {
			name = cfg.Model.Name
		}
		return &document.BuildResult{
			Model:    models.NewModel(name),
			Warnings: []string{},
			Errors:   []string{},
		}, nil
	}

	doc, err := document.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return buildDocument(doc, path, strict)
}

// buildDocument builds doc, which was read from path.
func buildDocument(doc *document.Document, path string, strict bool) (*document.BuildResult, error) {
	stdLogger, closer := componentLogger(logrus.DebugLevel)
	defer closer.Close()

	result, err := document.NewBuilder(strict, stdLogger).Build(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", path, err)
	}
	return result, nil
}

// modelFile picks the document argument, falling back to the configured file.
func modelFile(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if cfg != nil {
		return cfg.Model.File
	}
	return ""
}
