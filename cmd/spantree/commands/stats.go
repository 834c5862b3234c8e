package commands

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/spantree/spantree/pkg/safeconv"
)

// StatsCommand holds the flags for the stats command.
type StatsCommand struct {
	configPath string
	dataset    string
}

// NewStatsCommand creates and configures the stats command.
func NewStatsCommand() *cobra.Command {
	cmd := &StatsCommand{}

	cobraCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics for a span dataset",
		Long: `Stats loads a span dataset, indexes it, and reports tree shape plus the
size of an LZ4-hibernated snapshot of the index.`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringVar(&cmd.configPath, "config", "", "Config file path")
	cobraCmd.Flags().StringVarP(&cmd.dataset, "dataset", "d", "", "Dataset file (JSON, optionally .lz4; - for stdin)")

	return cobraCmd
}

// Run executes the stats command.
func (c *StatsCommand) Run(_ *cobra.Command, _ []string) error {
	cfg, err := loadCommandConfig(c.configPath)
	if err != nil {
		return err
	}

	store, err := loadStore(cfg, c.dataset)
	if err != nil {
		return err
	}

	spanCount := store.Len()
	treeHeight := store.TreeHeight()

	maxEnd, hasSpans := store.MaxEnd()
	maxEndCell := "-"

	if hasSpans {
		maxEndCell = fmt.Sprintf("%d", maxEnd)
	}

	if err := store.Hibernate(); err != nil {
		return fmt.Errorf("hibernate index: %w", err)
	}

	snapshotBytes := humanize.Bytes(uint64(safeconv.MustIntToUint(store.HibernatedSize())))

	tbl := table.NewWriter()
	tbl.SetOutputMirror(os.Stdout)
	tbl.SetStyle(table.StyleLight)

	tbl.AppendRow(table.Row{"Spans", spanCount})
	tbl.AppendRow(table.Row{"Tree height", treeHeight})
	tbl.AppendRow(table.Row{"Max end", maxEndCell})
	tbl.AppendRow(table.Row{"Snapshot size", snapshotBytes})

	tbl.Render()

	return nil
}
