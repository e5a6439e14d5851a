package integrity

import (
	"fmt"

	"evalgo.org/microtosca/internal/document"
	"evalgo.org/microtosca/models"
)

// ScanDocument checks doc before it is built. Only the first declaration of
// a name counts, as in document.Builder, so parallel issues found here can be
// repaired on the model built from doc.
func (s *Scanner) ScanDocument(doc *document.Document) *ScanReport {
	report := newReport(doc.Name)
	s.logger.Printf("Starting integrity scan %s of document %q", report.ID, doc.Name)

	report.NodesScanned = len(doc.Nodes)
	report.InteractionsScanned = len(doc.Links)

	roles := make(map[string]models.Role, len(doc.Nodes))
	var declared []string
	for i, spec := range doc.Nodes {
		details := map[string]interface{}{"index": i, "type": spec.Type}

		if spec.Name == "" {
			report.IssuesFound = append(report.IssuesFound, newIssue(IssueTypeInvalidNode, SeverityHigh, "",
				fmt.Sprintf("nodes[%d] has no name", i), details))
			continue
		}
		if _, taken := roles[spec.Name]; taken {
			report.IssuesFound = append(report.IssuesFound, newIssue(IssueTypeInvalidNode, SeverityHigh, spec.Name,
				fmt.Sprintf("Node %s is declared more than once", spec.Name), details))
			continue
		}
		role, err := models.ParseRole(spec.Type)
		if err != nil {
			report.IssuesFound = append(report.IssuesFound, newIssue(IssueTypeInvalidNode, SeverityHigh, spec.Name,
				fmt.Sprintf("Node %s: %v", spec.Name, err), details))
			continue
		}
		roles[spec.Name] = role
		declared = append(declared, spec.Name)
	}

	type pair struct{ source, target string }
	counts := make(map[pair]int)
	linked := make(map[string]bool)

	for i, spec := range doc.Links {
		details := map[string]interface{}{"index": i, "source": spec.Source, "target": spec.Target}
		name := fmt.Sprintf("%s -> %s", spec.Source, spec.Target)

		sourceRole, sourceOK := roles[spec.Source]
		targetRole, targetOK := roles[spec.Target]
		switch {
		case !sourceOK:
			report.IssuesFound = append(report.IssuesFound, newIssue(IssueTypeInvalidReference, SeverityCritical, spec.Source,
				fmt.Sprintf("Link %s starts at an undeclared node", name), details))
			continue
		case !targetOK:
			report.IssuesFound = append(report.IssuesFound, newIssue(IssueTypeInvalidReference, SeverityCritical, spec.Source,
				fmt.Sprintf("Link %s ends at an undeclared node", name), details))
			continue
		case spec.Type != "" && spec.Type != document.LinkTypeInteraction:
			report.IssuesFound = append(report.IssuesFound, newIssue(IssueTypePolicyViolation, SeverityHigh, spec.Source,
				fmt.Sprintf("Link %s has unsupported type %q", name, spec.Type), details))
			continue
		case spec.Source == spec.Target:
			report.IssuesFound = append(report.IssuesFound, newIssue(IssueTypePolicyViolation, SeverityHigh, spec.Source,
				fmt.Sprintf("Link %s is a self-loop", name), details))
			continue
		case !models.IsAllowed(sourceRole, targetRole):
			report.IssuesFound = append(report.IssuesFound, newIssue(IssueTypePolicyViolation, SeverityHigh, spec.Source,
				fmt.Sprintf("Link %s: %s cannot interact with %s", name, sourceRole, targetRole), details))
			continue
		}

		linked[spec.Source] = true
		linked[spec.Target] = true

		key := pair{spec.Source, spec.Target}
		counts[key]++
		if s.options.Parallel && counts[key] == 2 {
			issue := newIssue(IssueTypeParallel, SeverityLow, spec.Source,
				fmt.Sprintf("More than one interaction towards %s", spec.Target),
				map[string]interface{}{"source": spec.Source, "target": spec.Target})
			issue.Repairable = true
			report.IssuesFound = append(report.IssuesFound, issue)
		}
	}

	if s.options.Orphans && len(declared) > 1 {
		for _, name := range declared {
			if !linked[name] {
				report.IssuesFound = append(report.IssuesFound, newIssue(IssueTypeOrphaned, SeverityLow, name,
					"Node takes part in no interaction", nil))
			}
		}
	}

	s.finish(report)
	return report
}
