package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/simlist/internal/overlap"
	"github.com/danieljhkim/simlist/internal/report"
)

// statsResult is the JSON form of a stats run.
type statsResult struct {
	Stats              overlap.Stats  `json:"stats"`
	DetectorsPerVisit  report.Summary `json:"detectorsPerVisitSummary"`
	EntriesPerDetector report.Summary `json:"entriesPerDetectorSummary"`
	EntriesPerVisit    report.Summary `json:"entriesPerVisitSummary"`
}

// newStatsCmd builds the stats command.
func (a *app) newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the full overlap table",
		Long: `Tally every overlap row ordered by visit and detector: sensors touched per
visit, patches per sensor, and database entries per visit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()

			var records []overlap.Record
			err := a.withSource(ctx, func(src overlap.Source) error {
				var err error
				records, err = src.Overlaps(ctx)
				return err
			})
			if err != nil {
				return err
			}
			st := overlap.Tally(records)

			if a.jsonOutput {
				return outputJSON(out, statsResult{
					Stats:              st,
					DetectorsPerVisit:  report.Summarize(st.DetectorsPerVisit),
					EntriesPerDetector: report.Summarize(st.EntriesPerDetector),
					EntriesPerVisit:    report.Summarize(st.EntriesPerVisit),
				})
			}

			PrintSection(out, "Overlap table")
			PrintLabelValue(out, "Database", a.cfg.Database)
			PrintLabelValue(out, "Rows", st.Rows)
			if st.Rows == 0 {
				PrintEmptyState(out, "No overlap rows")
				return nil
			}
			printDistribution(out, "Sensors per visit", st.DetectorsPerVisit)
			printDistribution(out, "Patches per sensor", st.EntriesPerDetector)
			printDistribution(out, "Entries per visit", st.EntriesPerVisit)

			if !a.cfg.Plots {
				return nil
			}
			fmt.Fprintln(out)
			return renderSensorHistogram(out, "Sensors per Visit (full list)", st.DetectorsPerVisit)
		},
	}
	return cmd
}
