package client

import "time"

// ModelSummary describes the served model.
type ModelSummary struct {
	Name         string         `json:"name"`
	Nodes        int            `json:"nodes"`
	Interactions int            `json:"interactions"`
	ByRole       map[string]int `json:"by_role"`
}

// Node is one architecture element with its relationship counts.
type Node struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Outgoing int    `json:"outgoing"`
	Incoming int    `json:"incoming"`
}

// NodeList is a page of nodes.
type NodeList struct {
	Count  int    `json:"count"`
	Total  int    `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Nodes  []Node `json:"nodes"`
}

// Interaction is a directed interacts-with relationship.
type Interaction struct {
	Source           string `json:"source"`
	Target           string `json:"target"`
	Timeout          bool   `json:"timeout"`
	CircuitBreaker   bool   `json:"circuit_breaker"`
	DynamicDiscovery bool   `json:"dynamic_discovery"`
}

// Policy lists which roles each role may interact with.
type Policy struct {
	Roles   []string            `json:"roles"`
	Allowed map[string][]string `json:"allowed"`
}

// Allows reports whether an interaction from source to target is allowed.
func (p *Policy) Allows(source, target string) bool {
	for _, r := range p.Allowed[source] {
		if r == target {
			return true
		}
	}
	return false
}

// IntegrityReport is the result of a server-side integrity scan.
type IntegrityReport struct {
	ID                  string        `json:"id"`
	Model               string        `json:"model"`
	Timestamp           time.Time     `json:"timestamp"`
	NodesScanned        int           `json:"nodes_scanned"`
	InteractionsScanned int           `json:"interactions_scanned"`
	Issues              []Issue       `json:"issues_found"`
	Summary             ScanSummary   `json:"summary"`
	Duration            time.Duration `json:"duration"`
}

type ScanSummary struct {
	TotalIssues int            `json:"total_issues"`
	ByType      map[string]int `json:"by_type"`
	BySeverity  map[string]int `json:"by_severity"`
	HealthScore int            `json:"health_score"`
}

type Issue struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Node        string `json:"node"`
	Description string `json:"description"`
	Repairable  bool   `json:"repairable"`
}

// RepairResult lists what a repair did or would do.
type RepairResult struct {
	ScanID  string   `json:"scan_id"`
	DryRun  bool     `json:"dry_run"`
	Removed int      `json:"removed"`
	Actions []string `json:"actions"`
}

// ValidationResult lists the problems found in a document.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ReplaceResult is returned after the served model was replaced.
type ReplaceResult struct {
	Model    ModelSummary `json:"model"`
	Warnings []string     `json:"warnings"`
}
