package integrity

import (
	"fmt"

	"evalgo.org/microtosca/models"
)

// Repair collapses parallel interactions reported in report: for every
// source/target pair the first interaction is kept and its properties are
// OR-ed with those of the duplicates, which are then removed. With dryRun
// the model is left untouched and only the actions are listed.
func (s *Scanner) Repair(m *models.Model, report *ScanReport, dryRun bool) (*RepairResult, error) {
	result := &RepairResult{
		ScanID:  report.ID,
		DryRun:  dryRun,
		Actions: []string{},
	}

	s.logger.Printf("Repairing scan %s (dry-run: %v)", report.ID, dryRun)

	for _, issue := range report.IssuesFound {
		if issue.Type != IssueTypeParallel || !issue.Repairable {
			continue
		}

		source, err := m.Lookup(issue.Node)
		if err != nil {
			return result, fmt.Errorf("repair %s: %w", issue.ID, err)
		}
		targetName, _ := issue.Details["target"].(string)

		var keep *models.InteractsWith
		for _, rel := range source.Interactions() {
			if rel.Target().Name() != targetName {
				continue
			}
			if keep == nil {
				keep = rel
				continue
			}

			result.Actions = append(result.Actions, fmt.Sprintf("remove duplicate interaction %s", rel))
			result.Removed++
			if dryRun {
				continue
			}

			merged := keep.Properties()
			props := rel.Properties()
			keep.SetTimeout(merged.Timeout || props.Timeout)
			keep.SetCircuitBreaker(merged.CircuitBreaker || props.CircuitBreaker)
			keep.SetDynamicDiscovery(merged.DynamicDiscovery || props.DynamicDiscovery)

			if err := source.RemoveInteraction(rel); err != nil {
				return result, fmt.Errorf("repair %s: %w", issue.ID, err)
			}
		}
	}

	s.logger.Printf("Repair completed: %d interactions removed", result.Removed)
	return result, nil
}
