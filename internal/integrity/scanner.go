package integrity

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"evalgo.org/microtosca/models"
)

// Options configures which optional checks a scan runs. Document scans
// always check node declarations, link endpoints and the policy.
type Options struct {
	// Parallel reports interactions duplicated between the same ordered pair
	Parallel bool

	// Orphans reports nodes without any interaction
	Orphans bool
}

// DefaultOptions enables every check.
func DefaultOptions() Options {
	return Options{Parallel: true, Orphans: true}
}

// Scanner audits models. It only reads the model; callers sharing the model
// must hold their lock for the duration of Scan.
type Scanner struct {
	options Options
	logger  *log.Logger
}

// NewScanner creates a scanner. A nil logger discards output.
func NewScanner(options Options, logger *log.Logger) *Scanner {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Scanner{options: options, logger: logger}
}

// Scan checks every node of m and returns the report. A model only holds
// relationships that passed the policy, so the scan looks for parallel
// relationships and orphaned nodes.
func (s *Scanner) Scan(m *models.Model) *ScanReport {
	report := newReport(m.Name())
	s.logger.Printf("Starting integrity scan %s of model %q", report.ID, m.Name())

	for _, n := range m.Nodes() {
		report.NodesScanned++
		report.InteractionsScanned += len(n.Interactions())

		if s.options.Parallel {
			report.IssuesFound = append(report.IssuesFound, s.checkParallel(n)...)
		}
		if s.options.Orphans && m.Len() > 1 && len(n.Interactions()) == 0 && len(n.IncomingInteractions()) == 0 {
			report.IssuesFound = append(report.IssuesFound, newIssue(IssueTypeOrphaned, SeverityLow, n.Name(),
				"Node takes part in no interaction", nil))
		}
	}

	s.finish(report)
	return report
}

func newReport(model string) *ScanReport {
	return &ScanReport{
		ID:          uuid.New().String(),
		Model:       model,
		Timestamp:   time.Now(),
		IssuesFound: []Issue{},
		Summary: ScanSummary{
			ByType:     make(map[IssueType]int),
			BySeverity: make(map[Severity]int),
		},
	}
}

// finish fills the summary and duration of report.
func (s *Scanner) finish(report *ScanReport) {
	report.Summary.TotalIssues = len(report.IssuesFound)
	for _, issue := range report.IssuesFound {
		report.Summary.ByType[issue.Type]++
		report.Summary.BySeverity[issue.Severity]++
	}
	report.Summary.HealthScore = calculateHealthScore(report)
	report.Duration = time.Since(report.Timestamp)

	s.logger.Printf("Scan completed: found %d issues in %v (health %d)",
		report.Summary.TotalIssues, report.Duration, report.Summary.HealthScore)
}

// checkParallel reports one issue per extra interaction towards a target.
func (s *Scanner) checkParallel(n *models.Node) []Issue {
	var issues []Issue

	counts := make(map[*models.Node]int)
	for _, rel := range n.Interactions() {
		counts[rel.Target()]++
		if counts[rel.Target()] == 2 {
			issue := newIssue(IssueTypeParallel, SeverityLow, n.Name(),
				fmt.Sprintf("More than one interaction towards %s", rel.Target().Name()),
				map[string]interface{}{"source": n.Name(), "target": rel.Target().Name()})
			issue.Repairable = true
			issues = append(issues, issue)
		}
	}

	return issues
}

// calculateHealthScore computes a 0-100 health score based on issues found.
func calculateHealthScore(report *ScanReport) int {
	score := 100

	for severity, count := range report.Summary.BySeverity {
		switch severity {
		case SeverityCritical:
			score -= count * 20
		case SeverityHigh:
			score -= count * 10
		case SeverityMedium:
			score -= count * 3
		case SeverityLow:
			score -= count * 1
		}
	}

	if score < 0 {
		score = 0
	}
	return score
}

func newIssue(t IssueType, sev Severity, node string, description string, details map[string]interface{}) Issue {
	return Issue{
		ID:          uuid.New().String(),
		Type:        t,
		Severity:    sev,
		Node:        node,
		Description: description,
		Details:     details,
		DetectedAt:  time.Now(),
	}
}
