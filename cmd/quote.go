package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/export"
)

var (
	quoteBidFile  string
	quoteXLSXPath string
	quoteNoSave   bool
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a bid without generating documents",
	Long:  "Classifies the client and complexity, runs budget and market research, and prints the resulting price quote as JSON. The quote includes internal budget intelligence; do not forward the raw output to clients.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		bid, err := loadBid(quoteBidFile)
		if err != nil {
			return err
		}

		quote, err := env.Pipeline.Quote(cmd.Context(), bid)
		if err != nil {
			return err
		}

		if !quoteNoSave {
			id, err := env.Store.SaveQuote(cmd.Context(), bid, quote)
			if err != nil {
				return err
			}
			zap.L().Info("quote saved", zap.String("id", id))
		}

		if quoteXLSXPath != "" {
			if err := export.WriteQuoteXLSX(quoteXLSXPath, bid, quote); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "wrote %s\n", quoteXLSXPath)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(quote)
	},
}

func init() {
	quoteCmd.Flags().StringVar(&quoteBidFile, "bid", "", "path to bid file (YAML or JSON)")
	quoteCmd.Flags().StringVar(&quoteXLSXPath, "xlsx", "", "also write the quote workbook to this path")
	quoteCmd.Flags().BoolVar(&quoteNoSave, "no-save", false, "skip persisting the quote")
	_ = quoteCmd.MarkFlagRequired("bid")
	rootCmd.AddCommand(quoteCmd)
}
