package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/internal/store"
)

var (
	proposalsKind  string
	proposalsLimit int
)

var proposalsCmd = &cobra.Command{
	Use:   "proposals",
	Short: "List stored proposal documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		docs, err := env.Store.ListProposals(cmd.Context(), store.ProposalFilter{
			Kind:  model.DocumentKind(proposalsKind),
			Limit: proposalsLimit,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	},
}

var proposalGetCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one stored proposal document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		doc, err := env.Store.GetProposal(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if doc == nil {
			return eris.Errorf("no proposal with id %s", args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}

func init() {
	proposalsCmd.Flags().StringVar(&proposalsKind, "kind", "", "filter by document kind")
	proposalsCmd.Flags().IntVar(&proposalsLimit, "limit", 20, "maximum documents to list")
	proposalsCmd.AddCommand(proposalGetCmd)
	rootCmd.AddCommand(proposalsCmd)
}
