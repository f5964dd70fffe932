package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"loan-advisor/domain"
)

var scoreCmd = &cobra.Command{
	Use:   "score <payload.json>",
	Short: "Score one application file; non-approved ones also get recommendations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScore(cmd, args[0])
	},
}

func init() {
	scoreCmd.Flags().Int("top-k", 0, "Number of single-step tips to print (defaults to recommend.top_k)")
}

type scoreOutput struct {
	Score          domain.ScoreResult           `json:"score"`
	Recommendation *domain.RecommendationResult `json:"recommendation,omitempty"`
}

func runScore(cmd *cobra.Command, path string) error {
	cfg, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}
	var payload domain.ApplicantPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("invalid payload JSON: %w", err)
	}

	var res closers
	defer func() { _ = res.Close() }()

	engine, err := buildEngine(cmd.Context(), cfg, logger, &res)
	if err != nil {
		return err
	}

	topK, _ := cmd.Flags().GetInt("top-k")
	if topK <= 0 {
		topK = cfg.Recommend.TopK
	}

	ctx := cmd.Context()
	scored, err := engine.Score(ctx, payload)
	if err != nil {
		return err
	}
	out := scoreOutput{Score: scored}
	if scored.Decision != domain.DecisionApprove {
		rec, err := engine.Recommend(ctx, payload, topK)
		if err != nil {
			return err
		}
		out.Recommendation = &rec
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
