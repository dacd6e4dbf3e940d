package main

import (
	"os"

	"github.com/spf13/cobra"

	"ddosim/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded snapshot log",
	Long:  "replay feeds snapshots from a JSONL log back into GreptimeDB or STDOUT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var writer sim.SnapshotWriter = &sim.StdoutJSONWriter{}
		if endpoint := os.Getenv("GREPTIMEDB_ENDPOINT"); endpoint != "" && !replayPrintOnly {
			gw, err := sim.NewGreptimeWriter(endpoint, "public")
			if err != nil {
				return err
			}
			writer = gw
		}
		return sim.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to snapshot log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print snapshots to STDOUT instead of writing to DB")
	_ = replayCmd.MarkFlagRequired("input")
}
