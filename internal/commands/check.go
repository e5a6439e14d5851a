package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"evalgo.org/microtosca/internal/document"
	"evalgo.org/microtosca/internal/integrity"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Scan a document for integrity issues and build its model",
	Long: `Scan a document for integrity issues, then build the model it describes.

The scan reports malformed or duplicate nodes, links to undeclared nodes,
self-loops and links the interaction policy forbids, as well as parallel
relationships and orphaned nodes. The command fails when the scan found
high or critical issues or the build rejected anything.

Examples:
  microtosca check shop.yaml
  microtosca check shop.yaml --json
  microtosca check shop.yaml --repair --write`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("strict", false, "abort on the first rejected node or link (default: model.strict)")
	checkCmd.Flags().Bool("parallel", true, "report parallel relationships")
	checkCmd.Flags().Bool("orphans", true, "report orphaned nodes")
	checkCmd.Flags().Bool("repair", false, "collapse parallel relationships")
	checkCmd.Flags().Bool("write", false, "write the repaired model back to the document (requires --repair)")
	checkCmd.Flags().Bool("json", false, "Output results as JSON")
}

// checkResult is the JSON form of a check.
type checkResult struct {
	Document string                  `json:"document"`
	Warnings []string                `json:"warnings"`
	Errors   []string                `json:"errors"`
	Report   *integrity.ScanReport   `json:"report"`
	Repair   *integrity.RepairResult `json:"repair,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	filename := modelFile(args)
	if filename == "" {
		return fmt.Errorf("no document given and model.file is not configured")
	}

	strict := cfg.Model.Strict
	if cmd.Flags().Changed("strict") {
		strict, _ = cmd.Flags().GetBool("strict")
	}
	parallel, _ := cmd.Flags().GetBool("parallel")
	orphans, _ := cmd.Flags().GetBool("orphans")
	repair, _ := cmd.Flags().GetBool("repair")
	write, _ := cmd.Flags().GetBool("write")
	outputJSON, _ := cmd.Flags().GetBool("json")

	if write && !repair {
		return fmt.Errorf("--write requires --repair")
	}

	doc, err := document.LoadFile(filename)
	if err != nil {
		return err
	}

	stdLogger, closer := componentLogger(logrus.DebugLevel)
	defer closer.Close()

	scanner := integrity.NewScanner(integrity.Options{Parallel: parallel, Orphans: orphans}, stdLogger)
	report := scanner.ScanDocument(doc)

	result := checkResult{
		Document: filename,
		Warnings: []string{},
		Errors:   []string{},
		Report:   report,
	}

	build, err := buildDocument(doc, filename, strict)
	if err != nil {
		_ = printCheckResult(cmd.OutOrStdout(), &result, outputJSON)
		return err
	}
	result.Warnings = build.Warnings
	result.Errors = build.Errors

	if repair {
		result.Repair, err = scanner.Repair(build.Model, report, !write)
		if err != nil {
			return fmt.Errorf("repair failed: %w", err)
		}
		if write && result.Repair.Removed > 0 {
			if err := writeDocument(filename, document.Export(build.Model)); err != nil {
				return err
			}
		}
	}

	if err := printCheckResult(cmd.OutOrStdout(), &result, outputJSON); err != nil {
		return err
	}

	if report.HasBlocking() || !build.OK() {
		return fmt.Errorf("document has blocking integrity issues (score: %d, %d nodes or links rejected)",
			report.Summary.HealthScore, len(build.Errors))
	}
	return nil
}

func printCheckResult(out io.Writer, result *checkResult, outputJSON bool) error {
	if !outputJSON {
		printCheck(out, result)
		return nil
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func writeDocument(filename string, doc *document.Document) error {
	data, err := document.Marshal(doc, document.DetectFormat(filename))
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

func printCheck(out io.Writer, result *checkResult) {
	report := result.Report

	fmt.Fprintf(out, "🔍 Checking %s\n\n", result.Document)
	fmt.Fprintf(out, "Model:              %s\n", report.Model)
	fmt.Fprintf(out, "Nodes Scanned:      %d\n", report.NodesScanned)
	fmt.Fprintf(out, "Interactions:       %d\n", report.InteractionsScanned)
	fmt.Fprintf(out, "Issues Found:       %d\n", report.Summary.TotalIssues)
	fmt.Fprintln(out)

	scoreColor := getScoreColor(report.Summary.HealthScore)
	fmt.Fprintf(out, "Health Score:       %s%d/100%s\n", scoreColor, report.Summary.HealthScore, colorReset)
	fmt.Fprintln(out)

	if len(result.Errors) > 0 {
		fmt.Fprintln(out, "Rejected:")
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  %s✗%s %s\n", colorRed, colorReset, e)
		}
		fmt.Fprintln(out)
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(out, "Warnings:")
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  • %s\n", w)
		}
		fmt.Fprintln(out)
	}

	if len(report.Summary.ByType) > 0 {
		fmt.Fprintln(out, "Issues by Type:")
		for _, t := range slices.Sorted(maps.Keys(report.Summary.ByType)) {
			fmt.Fprintf(out, "  %s: %d\n", t, report.Summary.ByType[t])
		}
		fmt.Fprintln(out)
	}

	if len(report.IssuesFound) > 0 {
		fmt.Fprintln(out, "Detailed Issues:")
		for i, issue := range report.IssuesFound {
			if i >= 10 {
				fmt.Fprintf(out, "  ... and %d more issues\n", len(report.IssuesFound)-10)
				break
			}
			severityColor := getSeverityColor(issue.Severity)
			fmt.Fprintf(out, "  %d. [%s%s%s] %s\n", i+1, severityColor, issue.Severity, colorReset, issue.Description)
		}
		fmt.Fprintln(out)
	}

	if result.Repair != nil {
		if result.Repair.DryRun {
			fmt.Fprintln(out, "Repair Plan:")
		} else {
			fmt.Fprintln(out, "Repairs:")
		}
		for _, action := range result.Repair.Actions {
			fmt.Fprintf(out, "  • %s\n", action)
		}
		if result.Repair.Removed == 0 {
			fmt.Fprintln(out, "  nothing to repair")
		} else if result.Repair.DryRun {
			fmt.Fprintln(out, "\nRun with --write to save the repaired model.")
		} else {
			fmt.Fprintf(out, "\n✅ Removed %d parallel interactions, wrote %s\n", result.Repair.Removed, result.Document)
		}
		fmt.Fprintln(out)
	}

	if report.Summary.TotalIssues == 0 && len(result.Errors) == 0 {
		fmt.Fprintln(out, "✅ No integrity issues found!")
	}
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorOrange = "\033[38;5;208m"
)

// getScoreColor returns the appropriate color for a health score
func getScoreColor(score int) string {
	if score >= 90 {
		return colorGreen
	} else if score >= 70 {
		return colorYellow
	} else if score >= 50 {
		return colorOrange
	}
	return colorRed
}

func getSeverityColor(severity integrity.Severity) string {
	switch severity {
	case integrity.SeverityCritical:
		return colorRed
	case integrity.SeverityHigh:
		return colorOrange
	case integrity.SeverityMedium:
		return colorYellow
	default:
		return colorGreen
	}
}
