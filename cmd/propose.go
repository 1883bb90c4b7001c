package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/model"
)

var (
	proposeBidFile string
	proposeKind    string
	proposeOutDir  string
)

var proposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Generate proposal documents for a bid",
	Long:  "Generates the requested document (technical, cost, followup, cover, or all), persists each one, and writes markdown files to the output directory. The cost proposal prices the bid first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		bid, err := loadBid(proposeBidFile)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(proposeOutDir, 0o755); err != nil {
			return eris.Wrap(err, "create output directory")
		}

		kinds, err := resolveKinds(proposeKind)
		if err != nil {
			return err
		}

		for _, kind := range kinds {
			doc, err := generateOne(cmd.Context(), env, bid, kind)
			if err != nil {
				return eris.Wrapf(err, "generate %s", kind)
			}

			if err := env.Store.SaveProposal(cmd.Context(), bid, doc); err != nil {
				return err
			}

			path := filepath.Join(proposeOutDir, fmt.Sprintf("%s.md", kind))
			if err := os.WriteFile(path, []byte(doc.Content), 0o644); err != nil {
				return eris.Wrap(err, "write document")
			}

			zap.L().Info("document generated",
				zap.String("kind", string(kind)),
				zap.String("id", doc.ID),
				zap.String("path", path),
				zap.Float64("cost_usd", doc.CostUSD))
			fmt.Fprintf(os.Stderr, "wrote %s\n", path)
		}

		return nil
	},
}

func resolveKinds(kind string) ([]model.DocumentKind, error) {
	switch kind {
	case "technical":
		return []model.DocumentKind{model.DocTechnical}, nil
	case "cost":
		return []model.DocumentKind{model.DocCost}, nil
	case "followup":
		return []model.DocumentKind{model.DocFollowUp}, nil
	case "cover":
		return []model.DocumentKind{model.DocCover}, nil
	case "all":
		return []model.DocumentKind{model.DocCover, model.DocTechnical, model.DocCost, model.DocFollowUp}, nil
	default:
		return nil, eris.Errorf("unknown document kind: %s (want technical, cost, followup, cover, or all)", kind)
	}
}

func generateOne(ctx context.Context, env *pipelineEnv, bid model.BidRequest, kind model.DocumentKind) (*model.ProposalDocument, error) {
	switch kind {
	case model.DocTechnical:
		return env.Pipeline.GenerateTechnicalProposal(ctx, bid)
	case model.DocCost:
		doc, quote, err := env.Pipeline.GenerateCostProposal(ctx, bid)
		if err != nil {
			return nil, err
		}
		if id, err := env.Store.SaveQuote(ctx, bid, quote); err != nil {
			zap.L().Warn("quote save failed", zap.Error(err))
		} else {
			zap.L().Info("quote saved", zap.String("id", id), zap.Float64("price", quote.ProposedPrice))
		}
		return doc, nil
	case model.DocFollowUp:
		return env.Pipeline.GenerateFollowUpEmail(ctx, bid)
	case model.DocCover:
		return env.Pipeline.GenerateCoverPage(ctx, bid)
	default:
		return nil, eris.Errorf("unknown document kind: %s", kind)
	}
}

func init() {
	proposeCmd.Flags().StringVar(&proposeBidFile, "bid", "", "path to bid file (YAML or JSON)")
	proposeCmd.Flags().StringVar(&proposeKind, "kind", "all", "document kind: technical, cost, followup, cover, or all")
	proposeCmd.Flags().StringVarP(&proposeOutDir, "out", "o", ".", "output directory for markdown files")
	_ = proposeCmd.MarkFlagRequired("bid")
	rootCmd.AddCommand(proposeCmd)
}
