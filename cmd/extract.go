package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	extractInFile  string
	extractOutFile string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract structured bid info from solicitation text",
	Long:  "Reads raw RFP/RFQ text, extracts structured bid fields via the research model, and writes a bid file usable by quote and propose.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		data, err := os.ReadFile(extractInFile)
		if err != nil {
			return eris.Wrap(err, "read solicitation file")
		}

		bid, err := env.Pipeline.ExtractBidInfo(cmd.Context(), string(data))
		if err != nil {
			return err
		}

		// The raw document text is kept in the store-bound bid but omitted
		// from the file to keep it reviewable.
		fileBid := *bid
		fileBid.DocumentsText = ""

		out, err := yaml.Marshal(fileBid)
		if err != nil {
			return eris.Wrap(err, "marshal bid YAML")
		}

		if extractOutFile == "" {
			fmt.Print(string(out))
			return nil
		}
		if err := os.WriteFile(extractOutFile, out, 0o644); err != nil {
			return eris.Wrap(err, "write bid file")
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", extractOutFile)
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractInFile, "file", "", "path to solicitation text file")
	extractCmd.Flags().StringVarP(&extractOutFile, "out", "o", "", "output bid file path (YAML); prints to stdout when empty")
	_ = extractCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(extractCmd)
}
