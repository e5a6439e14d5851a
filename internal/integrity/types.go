// Package integrity audits architectures. Documents are scanned before they
// are built, where undeclared endpoints, malformed nodes and policy
// violations can still occur. Built models are scanned for architectural
// findings such as parallel interactions and isolated nodes.
package integrity

import (
	"time"
)

// IssueType represents the type of integrity issue detected.
type IssueType string

const (
	// IssueTypeInvalidNode indicates a node declaration without a name, with
	// an unknown role or with a name that is already taken
	IssueTypeInvalidNode IssueType = "invalid_node"

	// IssueTypeInvalidReference indicates a link whose endpoint is not a declared node
	IssueTypeInvalidReference IssueType = "invalid_reference"

	// IssueTypePolicyViolation indicates a self-loop, a disallowed role pair or
	// an unsupported link type
	IssueTypePolicyViolation IssueType = "policy_violation"

	// IssueTypeParallel indicates more than one interaction between the same ordered pair
	IssueTypeParallel IssueType = "parallel"

	// IssueTypeOrphaned indicates a node with no interactions at all
	IssueTypeOrphaned IssueType = "orphaned"
)

// Severity represents how critical an issue is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ScanReport contains the results of an integrity scan.
type ScanReport struct {
	// ID uniquely identifies this scan
	ID string `json:"id"`

	// Model is the name of the scanned model or document
	Model string `json:"model"`

	// Timestamp when the scan was performed
	Timestamp time.Time `json:"timestamp"`

	// Duration of the scan
	Duration time.Duration `json:"duration"`

	// NodesScanned is the number of nodes checked
	NodesScanned int `json:"nodes_scanned"`

	// InteractionsScanned is the number of relationships or links checked
	InteractionsScanned int `json:"interactions_scanned"`

	// IssuesFound contains all detected issues
	IssuesFound []Issue `json:"issues_found"`

	// Summary provides aggregated statistics
	Summary ScanSummary `json:"summary"`
}

// ScanSummary provides aggregated scan statistics.
type ScanSummary struct {
	TotalIssues int               `json:"total_issues"`
	ByType      map[IssueType]int `json:"by_type"`
	BySeverity  map[Severity]int  `json:"by_severity"`

	// HealthScore is a 0-100 score
	HealthScore int `json:"health_score"`
}

// HasBlocking reports whether the report contains a high or critical issue.
func (r *ScanReport) HasBlocking() bool {
	return r.Summary.BySeverity[SeverityHigh] > 0 || r.Summary.BySeverity[SeverityCritical] > 0
}

// Issue represents a single integrity problem.
type Issue struct {
	ID          string                 `json:"id"`
	Type        IssueType              `json:"type"`
	Severity    Severity               `json:"severity"`
	Node        string                 `json:"node"`
	Description string                 `json:"description"`
	Details     map[string]interface{} `json:"details,omitempty"`
	DetectedAt  time.Time              `json:"detected_at"`

	// Repairable is set when Repair can fix the issue without losing information
	Repairable bool `json:"repairable"`
}

// RepairResult contains the outcome of a repair run.
type RepairResult struct {
	ScanID  string `json:"scan_id"`
	DryRun  bool   `json:"dry_run"`
	Removed int    `json:"removed"`

	// Actions lists what was (or would be) done, one line per relationship
	Actions []string `json:"actions"`
}
