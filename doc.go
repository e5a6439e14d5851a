// Package microtosca models microservice architectures as typed graphs.
//
// # Overview
//
// An architecture is a Model of named nodes, each with a role, connected by
// directed interacts-with relationships. Every relationship is checked
// against a fixed interaction policy when it is created, so a model never
// holds a role pair that the policy forbids.
//
// The module consists of four main parts:
//   - Model: nodes, roles, the policy table and relationships (models)
//   - Documents: JSON and YAML architecture descriptions (internal/document)
//   - Integrity: scans of documents and models, repairs (internal/integrity)
//   - API Server: REST API and WebSocket feed over one model (internal/api)
//
// # Architecture
//
//	┌─────────────────┐       ┌─────────────────┐
//	│   CLI           │       │   Go client     │
//	│  (cobra)        │       │  (client pkg)   │
//	└────────┬────────┘       └────────┬────────┘
//	         │                         │
//	         │                ┌────────▼────────┐
//	         │                │  API Server     │
//	         │                │  (Echo REST)    │
//	         │                └────────┬────────┘
//	         │                         │
//	┌────────▼─────────────────────────▼────────┐
//	│  Documents · Validation · Integrity       │
//	└────────────────────┬──────────────────────┘
//	                     │
//	            ┌────────▼────────┐
//	            │  models.Model   │
//	            └─────────────────┘
//
// # Roles and Policy
//
// A node is a service, message_router, message_broker or database. Services
// and message routers may interact with every role. Message brokers and
// databases never start an interaction.
// Self-loops are rejected. Parallel relationships between the same pair are
// allowed and reported by the integrity scan.
//
// # Usage
//
// Check a document:
//
//	microtosca check shop.yaml
//
// Serve it:
//
//	microtosca server --model shop.yaml
//
// Build a model in Go:
//
//	m := models.NewModel("shop")
//	_ = m.AddNode(models.NewService("orders"))
//	_ = m.AddNode(models.NewDatabase("orders-db"))
//	_, err := m.AddInteraction("orders", "orders-db", models.WithTimeout(true))
//
// # Configuration
//
// Configuration can be provided via:
//   - YAML file (config.yaml)
//   - Environment variables (MT_ prefix)
//   - .env file
//
// Example configuration:
//
//	server:
//	  port: 8095
//	model:
//	  file: ./shop.yaml
//	security:
//	  auth_enabled: true
//	  jwt_secret: change-me
//	integrity:
//	  scan_interval: 5m
//
// # API Endpoints
//
// Model:
//   - GET    /api/v1/model                      - Model summary
//   - GET    /api/v1/model/document             - Export as JSON or YAML
//   - PUT    /api/v1/model/document             - Replace from a document
//
// Nodes:
//   - GET    /api/v1/nodes                      - List nodes (paginated, role filter)
//   - POST   /api/v1/nodes                      - Create node
//   - GET    /api/v1/nodes/:name                - Get node
//   - DELETE /api/v1/nodes/:name                - Delete node and its relationships
//   - GET    /api/v1/nodes/:name/interactions   - Outgoing relationships
//   - GET    /api/v1/nodes/:name/incoming       - Incoming relationships
//
// Interactions:
//   - GET    /api/v1/interactions               - All relationships
//   - POST   /api/v1/interactions               - Create relationship
//   - DELETE /api/v1/interactions               - Remove oldest matching relationship
//
// Other:
//   - GET  /api/v1/policy              - Allowed role pairs
//   - POST /api/v1/validate            - Validate a document
//   - GET  /api/v1/integrity           - Integrity scan
//   - POST /api/v1/integrity/repair    - Collapse parallel relationships
//   - GET  /api/v1/ws/graph            - Real-time model events
//
// # Development
//
// Run tests:
//
//	go test ./...
//
// Build the binary:
//
//	go build -o microtosca ./cmd/microtosca
//
// # Technology Stack
//
//   - Go 1.25+
//   - Echo v4 (Web framework)
//   - Cobra and Viper (CLI and configuration)
//   - logrus (Logging)
//   - go-playground/validator (Document validation)
//   - golang-jwt (API tokens)
package microtosca
