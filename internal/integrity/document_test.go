package integrity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/microtosca/internal/document"
)

func shopDocument() *document.Document {
	return &document.Document{
		Name: "shop",
		Nodes: []document.NodeSpec{
			{Name: "gateway", Type: "message_router"},
			{Name: "orders", Type: "service"},
			{Name: "orders-db", Type: "database"},
		},
		Links: []document.LinkSpec{
			{Source: "gateway", Target: "orders"},
			{Source: "orders", Target: "orders-db", Timeout: true},
		},
	}
}

func issuesOf(report *ScanReport, t IssueType) []Issue {
	var found []Issue
	for _, issue := range report.IssuesFound {
		if issue.Type == t {
			found = append(found, issue)
		}
	}
	return found
}

func TestScanDocument_Clean(t *testing.T) {
	report := NewScanner(DefaultOptions(), nil).ScanDocument(shopDocument())

	assert.Equal(t, "shop", report.Model)
	assert.Equal(t, 3, report.NodesScanned)
	assert.Equal(t, 2, report.InteractionsScanned)
	assert.Empty(t, report.IssuesFound)
	assert.Equal(t, 100, report.Summary.HealthScore)
	assert.False(t, report.HasBlocking())
}

func TestScanDocument_InvalidReference(t *testing.T) {
	doc := shopDocument()
	doc.Links = append(doc.Links,
		document.LinkSpec{Source: "orders", Target: "payments"},
		document.LinkSpec{Source: "billing", Target: "orders-db"},
	)

	report := NewScanner(DefaultOptions(), nil).ScanDocument(doc)

	issues := issuesOf(report, IssueTypeInvalidReference)
	require.Len(t, issues, 2)
	assert.Equal(t, SeverityCritical, issues[0].Severity)
	assert.Equal(t, "orders", issues[0].Node)
	assert.Equal(t, "payments", issues[0].Details["target"])
	assert.Equal(t, "billing", issues[1].Node)
	assert.Equal(t, 60, report.Summary.HealthScore)
	assert.True(t, report.HasBlocking())
}

func TestScanDocument_PolicyViolation(t *testing.T) {
	tests := []struct {
		name string
		link document.LinkSpec
		desc string
	}{
		{"self-loop", document.LinkSpec{Source: "orders", Target: "orders"}, "self-loop"},
		{"passive source", document.LinkSpec{Source: "orders-db", Target: "orders"}, "database cannot interact with service"},
		{"link type", document.LinkSpec{Source: "orders", Target: "orders-db", Type: "depends_on"}, "unsupported type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := shopDocument()
			doc.Links = append(doc.Links, tt.link)

			report := NewScanner(DefaultOptions(), nil).ScanDocument(doc)

			issues := issuesOf(report, IssueTypePolicyViolation)
			require.Len(t, issues, 1)
			assert.Equal(t, SeverityHigh, issues[0].Severity)
			assert.Contains(t, issues[0].Description, tt.desc)
			assert.Empty(t, issuesOf(report, IssueTypeParallel), "rejected links are not counted as parallel")
			assert.True(t, report.HasBlocking())
		})
	}
}

func TestScanDocument_InvalidNode(t *testing.T) {
	doc := shopDocument()
	doc.Nodes = append(doc.Nodes,
		document.NodeSpec{Name: "", Type: "service"},
		document.NodeSpec{Name: "orders", Type: "database"},
		document.NodeSpec{Name: "cache", Type: "queue"},
	)
	doc.Links = append(doc.Links, document.LinkSpec{Source: "orders", Target: "cache"})

	report := NewScanner(DefaultOptions(), nil).ScanDocument(doc)

	issues := issuesOf(report, IssueTypeInvalidNode)
	require.Len(t, issues, 3)
	assert.Equal(t, "", issues[0].Node)
	assert.Contains(t, issues[1].Description, "declared more than once")
	assert.Contains(t, issues[2].Description, "unknown role")

	// the link to the rejected node is a dangling reference
	refs := issuesOf(report, IssueTypeInvalidReference)
	require.Len(t, refs, 1)
	assert.Equal(t, "cache", refs[0].Details["target"])

	// the first declaration wins, so orders stays a service
	assert.Empty(t, issuesOf(report, IssueTypePolicyViolation))
}

func TestScanDocument_ParallelAndOrphaned(t *testing.T) {
	doc := shopDocument()
	doc.Nodes = append(doc.Nodes, document.NodeSpec{Name: "legacy", Type: "service"})
	doc.Links = append(doc.Links,
		document.LinkSpec{Source: "orders", Target: "orders-db", CircuitBreaker: true},
		document.LinkSpec{Source: "orders", Target: "orders-db"},
	)

	report := NewScanner(DefaultOptions(), nil).ScanDocument(doc)

	parallel := issuesOf(report, IssueTypeParallel)
	require.Len(t, parallel, 1)
	assert.True(t, parallel[0].Repairable)
	assert.Equal(t, "orders-db", parallel[0].Details["target"])

	orphaned := issuesOf(report, IssueTypeOrphaned)
	require.Len(t, orphaned, 1)
	assert.Equal(t, "legacy", orphaned[0].Node)
	assert.False(t, report.HasBlocking())

	assert.Empty(t, NewScanner(Options{}, nil).ScanDocument(doc).IssuesFound)
}

func TestScanDocument_RepairBuiltModel(t *testing.T) {
	doc := shopDocument()
	doc.Links = append(doc.Links,
		document.LinkSpec{Source: "orders", Target: "orders-db", DynamicDiscovery: true},
		document.LinkSpec{Source: "orders-db", Target: "orders"},
	)

	s := NewScanner(DefaultOptions(), nil)
	report := s.ScanDocument(doc)
	require.True(t, report.HasBlocking())

	build, err := document.NewBuilder(false, nil).Build(doc)
	require.NoError(t, err)
	require.Len(t, build.Errors, 1)

	result, err := s.Repair(build.Model, report, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Removed)
	assert.Empty(t, s.Scan(build.Model).IssuesFound)
}
