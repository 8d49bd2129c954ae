package tool

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/floworc/floworc/types"
)

// ReportGenerator assembles a markdown report from the outputs of all
// prior steps. Fully deterministic: no model call involved.
type ReportGenerator struct {
	logger *zap.Logger
}

// NewReportGenerator creates the report_generator tool.
func NewReportGenerator(logger *zap.Logger) *ReportGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportGenerator{logger: logger.With(zap.String("tool", "report_generator"))}
}

// Contract describes the tool to the planner.
func (t *ReportGenerator) Contract() types.ToolContract {
	return types.ToolContract{
		Name:        "report_generator",
		Description: "Assembles a markdown report from the outputs of all previous steps. Use as the final agent of a workflow.",
		RequiredInputs: []types.ToolInput{
			{Name: "report_title", Type: "string", Description: "Title of the report", Required: false},
		},
		OutputShape: "Markdown report",
	}
}

// Invoke builds the report.
func (t *ReportGenerator) Invoke(_ context.Context, inv Invocation) (*Result, error) {
	title, ok := stringInput(inv.Inputs, "report_title")
	if !ok {
		title = "Workflow Report"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if summary := strings.TrimSpace(inv.Prompt); summary != "" {
		fmt.Fprintf(&b, "%s\n\n", summary)
	}

	if len(inv.Prior) == 0 {
		b.WriteString("No prior step results.\n")
	}
	for _, step := range inv.Prior {
		fmt.Fprintf(&b, "## Step %d\n\n%s\n\n", step.AgentPosition+1, strings.TrimSpace(step.Output))
		if len(step.SideEffects) > 0 {
			b.WriteString("Side effects:\n\n")
			for _, se := range step.SideEffects {
				fmt.Fprintf(&b, "- %s: %s\n", se.Kind, se.Detail)
			}
			b.WriteString("\n")
		}
	}

	t.logger.Debug("report generated", zap.Int("steps", len(inv.Prior)))
	return &Result{Output: strings.TrimRight(b.String(), "\n")}, nil
}
