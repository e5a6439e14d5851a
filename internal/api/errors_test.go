package api

import (
	"errors"
	"net/http"
	"testing"

	"evalgo.org/microtosca/models"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		want     string
	}{
		{
			name: "error with details",
			apiError: &APIError{
				Code:    400,
				Message: "Bad Request",
				Details: "Invalid JSON format",
			},
			want: "Bad Request: Invalid JSON format",
		},
		{
			name: "error without details",
			apiError: &APIError{
				Code:    404,
				Message: "Not Found",
			},
			want: "Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.apiError.Error(); got != tt.want {
				t.Errorf("APIError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBadRequestError(t *testing.T) {
	err := BadRequestError("Invalid input", "Field 'name' is required")

	if err.Code != http.StatusBadRequest {
		t.Errorf("BadRequestError().Code = %v, want %v", err.Code, http.StatusBadRequest)
	}
	if err.Message != "Invalid input" {
		t.Errorf("BadRequestError().Message = %v, want %v", err.Message, "Invalid input")
	}
	if err.Details != "Field 'name' is required" {
		t.Errorf("BadRequestError().Details = %v, want %v", err.Details, "Field 'name' is required")
	}
}

func TestNotFoundError(t *testing.T) {
	err := NotFoundError("Node", "orders")

	if err.Code != http.StatusNotFound {
		t.Errorf("NotFoundError().Code = %v, want %v", err.Code, http.StatusNotFound)
	}
	if err.Message != "Node not found" {
		t.Errorf("NotFoundError().Message = %v, want %v", err.Message, "Node not found")
	}
	if err.Context == nil {
		t.Error("NotFoundError().Context is nil, want non-nil")
	}
	if name, ok := err.Context["name"].(string); !ok || name != "orders" {
		t.Errorf("NotFoundError().Context['name'] = %v, want 'orders'", name)
	}
}

func TestValidationError(t *testing.T) {
	fieldErrors := map[string]string{
		"name": "Name is required",
		"type": "Unknown role",
	}
	err := ValidationError("Validation failed", fieldErrors)

	if err.Code != http.StatusBadRequest {
		t.Errorf("ValidationError().Code = %v, want %v", err.Code, http.StatusBadRequest)
	}
	if err.Message != "Validation failed" {
		t.Errorf("ValidationError().Message = %v, want %v", err.Message, "Validation failed")
	}
	if len(err.FieldError) != 2 {
		t.Errorf("ValidationError().FieldError length = %v, want 2", len(err.FieldError))
	}
	if err.FieldError["name"] != "Name is required" {
		t.Errorf("ValidationError().FieldError['name'] = %v, want 'Name is required'", err.FieldError["name"])
	}
}

func TestInternalError(t *testing.T) {
	err := InternalError("Model operation failed", "unexpected state")

	if err.Code != http.StatusInternalServerError {
		t.Errorf("InternalError().Code = %v, want %v", err.Code, http.StatusInternalServerError)
	}
	if err.Message != "Model operation failed" {
		t.Errorf("InternalError().Message = %v, want %v", err.Message, "Model operation failed")
	}
	if err.Details != "unexpected state" {
		t.Errorf("InternalError().Details = %v, want %v", err.Details, "unexpected state")
	}
}

func TestConflictError(t *testing.T) {
	err := ConflictError("Resource conflict", "Node already exists")

	if err.Code != http.StatusConflict {
		t.Errorf("ConflictError().Code = %v, want %v", err.Code, http.StatusConflict)
	}
	if err.Message != "Resource conflict" {
		t.Errorf("ConflictError().Message = %v, want %v", err.Message, "Resource conflict")
	}
	if err.Details != "Node already exists" {
		t.Errorf("ConflictError().Details = %v, want %v", err.Details, "Node already exists")
	}
}

func TestGetHTTPMessage(t *testing.T) {
	tests := []struct {
		name string
		code int
		want string
	}{
		{"Bad Request", http.StatusBadRequest, "Bad request"},
		{"Not Found", http.StatusNotFound, "Resource not found"},
		{"Internal Server Error", http.StatusInternalServerError, "Internal server error"},
		{"Unknown Code", 999, http.StatusText(999)}, // Falls back to http.StatusText for unknown codes
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getHTTPMessage(tt.code); got != tt.want {
				t.Errorf("getHTTPMessage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestModelError(t *testing.T) {
	m := models.NewModel("shop")
	if err := m.AddNode(models.NewService("orders")); err != nil {
		t.Fatalf("AddNode() error = %v", err)
	}
	if err := m.AddNode(models.NewDatabase("orders-db")); err != nil {
		t.Fatalf("AddNode() error = %v", err)
	}

	_, notFound := m.Lookup("ghost")
	duplicate := m.AddNode(models.NewService("orders"))
	_, selfLoop := m.AddInteraction("orders", "orders")
	_, policy := m.AddInteraction("orders-db", "orders")

	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not found", notFound, http.StatusNotFound},
		{"duplicate name", duplicate, http.StatusConflict},
		{"self-loop", selfLoop, http.StatusUnprocessableEntity},
		{"policy violation", policy, http.StatusUnprocessableEntity},
		{"foreign error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatal("expected an error to convert")
			}
			if got := ModelError(tt.err); got.Code != tt.wantCode {
				t.Errorf("ModelError().Code = %v, want %v", got.Code, tt.wantCode)
			}
		})
	}

	if got := ModelError(policy); got.Context["source"] != "orders-db" || got.Context["target"] != "orders" {
		t.Errorf("ModelError().Context = %v, want source and target", got.Context)
	}
}
