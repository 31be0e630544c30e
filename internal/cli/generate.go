package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danieljhkim/simlist/internal/config"
	"github.com/danieljhkim/simlist/internal/fsops"
	"github.com/danieljhkim/simlist/internal/overlap"
)

// generateResult is the JSON form of a generate run.
type generateResult struct {
	Tracts          []int          `json:"tracts"`
	SensorVisits    int            `json:"sensorVisits"`
	Visits          int            `json:"visits"`
	Files           []string       `json:"files"`
	SensorsPerVisit []int          `json:"sensorsPerVisit"`
	Output          string         `json:"output,omitempty"`
	Stats           *overlap.Stats `json:"stats,omitempty"`
}

// newGenerateCmd builds the generate command.
func (a *app) newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the sim file list for the configured tracts",
		Long: `Select the distinct sensor-visits overlapping the configured tracts and
construct the simulated FITS file path of each one, e.g.

  <prefix>/00385844to00445379/00425529/lsst_a_425529_R14_S00_y.fits

With --sim-file-list the paths are written one per line to that file.
With --plots the full overlap table is also tallied and histograms of
sensors per visit are shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()
			resolver := overlap.NewResolver(a.cfg.Resolver(), a.logger)

			var (
				res   *overlap.Result
				stats *overlap.Stats
			)
			err := a.withSource(ctx, func(src overlap.Source) error {
				var err error
				res, err = resolver.Resolve(ctx, src)
				if err != nil {
					return err
				}
				if !a.cfg.Plots {
					return nil
				}
				records, err := src.Overlaps(ctx)
				if err != nil {
					return fmt.Errorf("failed to read overlap table: %w", err)
				}
				st := overlap.Tally(records)
				stats = &st
				return nil
			})
			if err != nil {
				return err
			}

			if a.cfg.Output != "" {
				if err := fsops.WriteLines(fsops.NewRealFS(), a.cfg.Output, res.Paths); err != nil {
					return err
				}
				a.logger.Info("Wrote sim file list", zap.String("path", a.cfg.Output), zap.Int("files", len(res.Paths)))
			}

			sensorDist := overlap.SensorsPerVisit(res)

			if a.jsonOutput {
				return outputJSON(out, generateResult{
					Tracts:          a.cfg.Tracts,
					SensorVisits:    len(res.Paths),
					Visits:          len(res.Visits),
					Files:           res.Paths,
					SensorsPerVisit: sensorDist,
					Output:          a.cfg.Output,
					Stats:           stats,
				})
			}

			PrintSection(out, "Sim file list")
			PrintLabelValue(out, "Database", a.cfg.Database)
			PrintLabelValue(out, "Tracts", fmt.Sprint(a.cfg.Tracts))
			PrintLabelValue(out, "Sensor-visits", len(res.Paths))
			PrintLabelValue(out, "Visits", len(res.Visits))
			PrintLabelValue(out, "Files", len(res.Paths))
			if len(res.Paths) == 0 {
				PrintWarning(out, "No sensor-visits overlap the selected tracts")
			}
			if a.cfg.Output != "" {
				PrintSuccess(out, fmt.Sprintf("A list of all %s has been written to %s",
					PrintCount(len(res.Paths), "sim file", "sim files"), a.cfg.Output))
			}

			if stats == nil {
				return nil
			}

			PrintSection(out, "Overlap table")
			PrintLabelValue(out, "Rows", stats.Rows)
			printDistribution(out, "Sensors per visit", stats.DetectorsPerVisit)
			printDistribution(out, "Patches per sensor", stats.EntriesPerDetector)
			printDistribution(out, "Entries per visit", stats.EntriesPerVisit)
			fmt.Fprintln(out)

			if err := renderSensorHistogram(out, "Sensors per Visit (full list)", stats.DetectorsPerVisit); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return renderSensorHistogram(out, "Sensors per Visit (tract selection)", sensorDist)
		},
	}
	cmd.Flags().StringP("sim-file-list", "s", "", "Name of sim file list file to produce")
	a.bindFlag(config.KeyOutput, cmd, "sim-file-list")
	return cmd
}

