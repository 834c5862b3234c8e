package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/spantree/spantree/pkg/spanstore"
)

// QueryCommand holds the flags for the query command.
type QueryCommand struct {
	configPath string
	dataset    string
	overlaps   []string
	points     []string
	noColor    bool
}

// NewQueryCommand creates and configures the query command.
func NewQueryCommand() *cobra.Command {
	cmd := &QueryCommand{}

	cobraCmd := &cobra.Command{
		Use:   "query",
		Short: "Run overlap and point queries against a span dataset",
		Long: `Query loads a span dataset, indexes it in an interval tree, and prints
every span overlapping the requested ranges or containing the requested
points.`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.configPath, "config", "", "Config file path")
	cobraCmd.Flags().StringVarP(&cmd.dataset, "dataset", "d", "", "Dataset file (JSON, optionally .lz4; - for stdin)")
	cobraCmd.Flags().StringSliceVarP(&cmd.overlaps, "overlap", "o", nil, "Overlap query as low:high (repeatable)")
	cobraCmd.Flags().StringSliceVarP(&cmd.points, "point", "p", nil, "Point query (repeatable)")
	cobraCmd.Flags().BoolVar(&cmd.noColor, "no-color", false, "Disable colored output")

	return cobraCmd
}

// Run executes the query command.
func (c *QueryCommand) Run(_ *cobra.Command, _ []string) error {
	if len(c.overlaps) == 0 && len(c.points) == 0 {
		return fmt.Errorf("nothing to do: pass at least one --overlap or --point")
	}

	cfg, err := loadCommandConfig(c.configPath)
	if err != nil {
		return err
	}

	if c.noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	store, err := loadStore(cfg, c.dataset)
	if err != nil {
		return err
	}

	for _, arg := range c.overlaps {
		low, high, parseErr := parseRange(arg)
		if parseErr != nil {
			return parseErr
		}

		renderResults(os.Stdout, fmt.Sprintf("overlap [%d - %d]", low, high), store.Overlapping(low, high))
	}

	for _, arg := range c.points {
		point, parseErr := parsePoint(arg)
		if parseErr != nil {
			return parseErr
		}

		renderResults(os.Stdout, fmt.Sprintf("point %d", point), store.At(point))
	}

	return nil
}

// renderResults prints one query's matches as a table with a colored
// summary line.
func renderResults(writer io.Writer, label string, spans []spanstore.Span) {
	if len(spans) == 0 {
		color.New(color.FgYellow).Fprintf(writer, "%s: no matching spans\n", label)

		return
	}

	color.New(color.FgGreen).Fprintf(writer, "%s: %d matching span(s)\n", label, len(spans))

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false

	tbl.AppendHeader(table.Row{"ID", "START", "END"})

	for _, span := range spans {
		tbl.AppendRow(table.Row{span.ID, span.Start, span.End})
	}

	fmt.Fprintf(writer, "%s\n", tbl.Render())
}
