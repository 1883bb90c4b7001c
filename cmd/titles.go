package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	titlesBidFile string
	titlesCount   int
)

var titlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "Suggest alternative proposal titles for a bid",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		bid, err := loadBid(titlesBidFile)
		if err != nil {
			return err
		}

		titles, err := env.Pipeline.GenerateTitles(cmd.Context(), bid, titlesCount)
		if err != nil {
			return err
		}

		for _, title := range titles {
			fmt.Println(title)
		}
		return nil
	},
}

func init() {
	titlesCmd.Flags().StringVar(&titlesBidFile, "bid", "", "path to bid file (YAML or JSON)")
	titlesCmd.Flags().IntVar(&titlesCount, "count", 5, "number of titles to suggest")
	_ = titlesCmd.MarkFlagRequired("bid")
	rootCmd.AddCommand(titlesCmd)
}
