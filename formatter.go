package specrun

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/spectral-sh/specrun/runner"
	"github.com/spectral-sh/specrun/types"
)

// ResultFormatter is responsible for formatting and displaying run results.
type ResultFormatter interface {
	FormatResults(report *runner.AggregateReport) error
}

// ConsoleResultFormatter implements the ResultFormatter interface.
type ConsoleResultFormatter struct {
	logger log.Logger
	out    io.Writer
}

// NewConsoleResultFormatter creates a new ConsoleResultFormatter.
func NewConsoleResultFormatter(logger log.Logger) *ConsoleResultFormatter {
	return &ConsoleResultFormatter{
		logger: logger,
		out:    os.Stdout,
	}
}

// FormatResults renders the aggregate report as a table, one row per
// completed file, plus the run totals.
func (f *ConsoleResultFormatter) FormatResults(report *runner.AggregateReport) error {
	f.logger.Info("Printing results...")
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle(fmt.Sprintf("Test Run Results (%.1fs wall clock)", report.WallClockTime.Seconds()))

	t.AppendHeader(table.Row{
		"File", "Duration", "Tests", "Passed", "Failed", "Skipped", "Pending", "Status",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "File", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Pending", Align: text.AlignRight},
	})

	for _, outcome := range report.FileOutcomes {
		t.AppendRow(table.Row{
			outcome.File,
			fmt.Sprintf("%.1fs", outcome.Elapsed.Seconds()),
			outcome.Total,
			outcome.Passed,
			outcome.Failed,
			outcome.Skipped,
			outcome.Pending,
			getResultString(outcome.Status),
		})
	}
	t.AppendSeparator()

	switch report.Status {
	case types.TestStatusPass:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	case types.TestStatusSkip:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		fmt.Sprintf("%.1fs", report.Duration.Seconds()),
		report.Total,
		report.Passed,
		report.Failed,
		report.Skipped,
		report.Pending,
		getResultString(report.Status),
	})

	t.Render()

	fmt.Fprintln(f.out, report.String())
	return nil
}
