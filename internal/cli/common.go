package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/danieljhkim/simlist/internal/overlap"
	"github.com/danieljhkim/simlist/internal/report"
)

// Histogram layout used for sensors-per-visit plots.
const (
	histBins = 10
	histLo   = 1
	histHi   = 190
)

// withSource runs fn against the configured overlap database.
func (a *app) withSource(ctx context.Context, fn func(overlap.Source) error) error {
	return overlap.WithStore(ctx, a.cfg.Database, a.logger, fn)
}

// outputJSON writes a value as indented JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printDistribution prints the count, min and max of a distribution.
func printDistribution(w io.Writer, label string, values []int) {
	s := report.Summarize(values)
	PrintLabelValue(w, label, fmt.Sprintf("n=%d min=%d max=%d", s.Count, s.Min, s.Max))
}

// renderSensorHistogram draws a sensors-per-visit histogram.
func renderSensorHistogram(w io.Writer, title string, values []int) error {
	return report.Render(w, title, report.NewHistogram(values, histBins, histLo, histHi))
}
