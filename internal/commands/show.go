package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"evalgo.org/microtosca/models"
	"evalgo.org/microtosca/pkg/microtosca/client"
)

var (
	showRole   string
	showAPIURL string
	showToken  string
)

var showCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "List the nodes and interactions of a model",
	Long: `List the nodes of a model with their outgoing and incoming interaction
counts, followed by every interaction.

The model is built from a document, or fetched from a running server
with --api-url.

Examples:
  microtosca show shop.yaml
  microtosca show shop.yaml --role service
  microtosca show --api-url http://localhost:8095`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showRole, "role", "", "only list nodes of this role")
	showCmd.Flags().StringVar(&showAPIURL, "api-url", "", "show the model served by this API server")
	showCmd.Flags().StringVar(&showToken, "token", "", "bearer token for the API server")
}

// nodeRow and interactionRow are what show prints, whichever way the model
// was obtained.
type nodeRow struct {
	Name     string
	Type     string
	Outgoing int
	Incoming int
}

type interactionRow struct {
	Source           string
	Target           string
	Timeout          bool
	CircuitBreaker   bool
	DynamicDiscovery bool
}

func runShow(cmd *cobra.Command, args []string) error {
	if showRole != "" {
		if _, err := models.ParseRole(showRole); err != nil {
			return err
		}
	}

	if showAPIURL != "" {
		return showRemote(cmd.Context(), cmd.OutOrStdout())
	}

	filename := modelFile(args)
	if filename == "" {
		return fmt.Errorf("no document given and model.file is not configured")
	}

	build, err := loadModel(filename, cfg.Model.Strict)
	if err != nil {
		return err
	}
	m := build.Model

	var nodes []*models.Node
	if showRole != "" {
		role, _ := models.ParseRole(showRole)
		nodes = m.NodesByRole(role)
	} else {
		nodes = m.Nodes()
	}

	rows := make([]nodeRow, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, nodeRow{
			Name:     n.Name(),
			Type:     n.Role().String(),
			Outgoing: len(n.Interactions()),
			Incoming: len(n.IncomingInteractions()),
		})
	}

	var rels []interactionRow
	for _, rel := range m.Interactions() {
		props := rel.Properties()
		rels = append(rels, interactionRow{
			Source:           rel.Source().Name(),
			Target:           rel.Target().Name(),
			Timeout:          props.Timeout,
			CircuitBreaker:   props.CircuitBreaker,
			DynamicDiscovery: props.DynamicDiscovery,
		})
	}

	printModel(cmd.OutOrStdout(), m.Name(), rows, rels)
	return nil
}

func showRemote(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	c, err := client.New(showAPIURL, client.WithToken(showToken))
	if err != nil {
		return err
	}

	summary, err := c.Model(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch model: %w", err)
	}

	var rows []nodeRow
	for offset := 0; ; {
		page, err := c.ListNodes(ctx, client.Query{Role: showRole, Limit: 1000, Offset: offset})
		if err != nil {
			return fmt.Errorf("failed to list nodes: %w", err)
		}
		for _, n := range page.Nodes {
			rows = append(rows, nodeRow(n))
		}
		offset += page.Count
		if page.Count == 0 || offset >= page.Total {
			break
		}
	}

	interactions, err := c.Interactions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list interactions: %w", err)
	}
	rels := make([]interactionRow, 0, len(interactions))
	for _, rel := range interactions {
		rels = append(rels, interactionRow(rel))
	}

	printModel(out, summary.Name, rows, rels)
	return nil
}

func printModel(out io.Writer, name string, nodes []nodeRow, rels []interactionRow) {
	fmt.Fprintf(out, "Model: %s\n\n", name)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tOUTGOING\tINCOMING")
	for _, n := range nodes {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", n.Name, n.Type, n.Outgoing, n.Incoming)
	}
	w.Flush()
	fmt.Fprintf(out, "\nTotal: %d nodes\n", len(nodes))

	if len(rels) == 0 {
		return
	}

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tTARGET\tTIMEOUT\tCIRCUIT BREAKER\tDYNAMIC DISCOVERY")
	for _, r := range rels {
		fmt.Fprintf(w, "%s\t%s\t%v\t%v\t%v\n", r.Source, r.Target, r.Timeout, r.CircuitBreaker, r.DynamicDiscovery)
	}
	w.Flush()
	fmt.Fprintf(out, "\nTotal: %d interactions\n", len(rels))
}
