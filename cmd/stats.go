package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/proposal-cli/internal/monitoring"
)

var statsLookbackHours int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize stored generation activity and spend",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		snap, err := monitoring.NewCollector(env.Store).Collect(cmd.Context(), statsLookbackHours)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsLookbackHours, "lookback", 0, "lookback window in hours (0 for all time)")
	rootCmd.AddCommand(statsCmd)
}
