package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/simlist/internal/detector"
)

// detectorResult is the JSON form of a detector lookup.
type detectorResult struct {
	Detector int    `json:"detector"`
	Raft     string `json:"raft"`
	Sensor   string `json:"sensor"`
}

// newDetectorCmd builds the detector command.
func (a *app) newDetectorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detector <number|Rnn_Smm>",
		Short: "Convert between detector numbers and raft/sensor names",
		Long: `Convert a detector number (0-188) to its raft and sensor, or a raft/sensor
name such as R22_S11 to its detector number.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec := detector.NewCodec(a.cfg.Rafts)

			var res detectorResult
			if n, err := strconv.Atoi(args[0]); err == nil {
				addr, err := codec.Decode(n)
				if err != nil {
					return err
				}
				res = detectorResult{Detector: n, Raft: addr.Raft, Sensor: addr.Sensor}
			} else {
				addr, err := detector.ParseAddress(args[0])
				if err != nil {
					return err
				}
				det, err := codec.EncodeAddress(addr)
				if err != nil {
					return err
				}
				res = detectorResult{Detector: det, Raft: addr.Raft, Sensor: addr.Sensor}
			}

			if a.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), res)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s_%s\n", res.Detector, res.Raft, res.Sensor)
			return err
		},
	}
	return cmd
}
