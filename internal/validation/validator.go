// Package validation checks architecture documents before they are loaded.
//
// Validation runs in three passes and collects every problem instead of
// stopping at the first one:
//
//  1. Syntax - the document must decode as JSON or YAML
//  2. Structure - required fields and known node types (go-playground/validator)
//  3. Semantics - unique node names, existing link endpoints, no self-links
//     and role pairs allowed by the interaction policy
//
// # Usage Example
//
//	v := validation.New()
//	result, err := v.ValidateDocument(data, document.FormatYAML)
//	if err != nil {
//	    // Handle error
//	}
//	if !result.Valid {
//	    for _, e := range result.Errors {
//	        fmt.Printf("%s: %s\n", e.Field, e.Message)
//	    }
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"evalgo.org/microtosca/internal/document"
	"evalgo.org/microtosca/models"
)

// Validator handles architecture document validation.
type Validator struct {
	// structValidator validates Go struct constraints and tags
	structValidator *validator.Validate
}

// ValidationError represents a single validation error with field-level details.
type ValidationError struct {
	// Field is the path of the field that failed validation (e.g. links[2].target)
	Field string `json:"field"`

	// Message describes why the validation failed
	Message string `json:"message"`

	// Value is the invalid value that caused the error (optional)
	Value interface{} `json:"value,omitempty"`
}

// ValidationResult represents the complete result of a validation operation.
type ValidationResult struct {
	// Valid is true if validation passed, false otherwise
	Valid bool `json:"valid"`

	// Errors contains all validation errors found (empty if Valid is true)
	Errors []ValidationError `json:"errors,omitempty"`
}

// New creates a new Validator with the "role" tag registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, err := models.ParseRole(fl.Field().String())
		return err == nil
	})
	return &Validator{structValidator: v}
}

// ValidateDocument decodes data and validates the resulting document. A
// decode failure is reported as a "document" field error, not as an error
// return.
func (v *Validator) ValidateDocument(data []byte, format document.Format) (*ValidationResult, error) {
	doc, err := document.Parse(data, format)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{
				{
					Field:   "document",
					Message: err.Error(),
				},
			},
		}, nil
	}

	return v.Validate(doc), nil
}

// Validate checks an already decoded document.
func (v *Validator) Validate(doc *document.Document) *ValidationResult {
	if doc == nil {
		return &ValidationResult{
			Errors: []ValidationError{{Field: "document", Message: "Document is empty"}},
		}
	}

	allErrors := v.validateStruct(doc)
	allErrors = append(allErrors, v.validateNodes(doc)...)
	allErrors = append(allErrors, v.validateLinks(doc)...)

	return &ValidationResult{
		Valid:  len(allErrors) == 0,
		Errors: allErrors,
	}
}

// validateStruct runs the struct tag rules declared on the document types.
func (v *Validator) validateStruct(doc *document.Document) []ValidationError {
	err := v.structValidator.Struct(doc)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "document", Message: err.Error()}}
	}

	var out []ValidationError
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fieldPath(fe.Namespace()),
			Message: tagMessage(fe),
			Value:   fe.Value(),
		})
	}
	return out
}

// validateNodes checks node names are unique.
func (v *Validator) validateNodes(doc *document.Document) []ValidationError {
	var errs []ValidationError

	seen := make(map[string]int, len(doc.Nodes))
	for i, n := range doc.Nodes {
		if n.Name == "" {
			continue
		}
		if first, ok := seen[n.Name]; ok {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("nodes[%d].name", i),
				Message: fmt.Sprintf("Duplicate node name (first declared at nodes[%d])", first),
				Value:   n.Name,
			})
			continue
		}
		seen[n.Name] = i
	}

	return errs
}

// validateLinks checks link endpoints and the interaction policy.
func (v *Validator) validateLinks(doc *document.Document) []ValidationError {
	var errs []ValidationError

	roles := make(map[string]models.Role, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if _, ok := roles[n.Name]; ok {
			continue
		}
		if r, err := models.ParseRole(n.Type); err == nil {
			roles[n.Name] = r
		}
	}
	declared := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		declared[n.Name] = true
	}

	for i, l := range doc.Links {
		prefix := fmt.Sprintf("links[%d]", i)

		if l.Source != "" && !declared[l.Source] {
			errs = append(errs, ValidationError{
				Field:   prefix + ".source",
				Message: "Source node is not declared",
				Value:   l.Source,
			})
		}
		if l.Target != "" && !declared[l.Target] {
			errs = append(errs, ValidationError{
				Field:   prefix + ".target",
				Message: "Target node is not declared",
				Value:   l.Target,
			})
		}

		if l.Source != "" && l.Source == l.Target {
			errs = append(errs, ValidationError{
				Field:   prefix,
				Message: "A node cannot interact with itself",
				Value:   l.Source,
			})
			continue
		}

		src, srcOK := roles[l.Source]
		tgt, tgtOK := roles[l.Target]
		if srcOK && tgtOK && !models.IsAllowed(src, tgt) {
			errs = append(errs, ValidationError{
				Field:   prefix,
				Message: fmt.Sprintf("A %s cannot interact with a %s", src, tgt),
				Value:   l.Source + " -> " + l.Target,
			})
		}
	}

	return errs
}

// fieldPath turns "Document.Links[2].Target" into "links[2].target".
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToLower(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, ".")
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "role":
		return fmt.Sprintf("Unknown node type: must be one of: %s", roleNames())
	case "eq":
		return fmt.Sprintf("%s must be '%s'", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed the '%s' rule", fe.Field(), fe.Tag())
}

func roleNames() string {
	var names []string
	for _, r := range models.Roles() {
		names = append(names, r.String())
	}
	return strings.Join(names, ", ")
}
