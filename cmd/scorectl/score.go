// cmd/scorectl/score.go
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"startup-scoring/internal/scoring"

	"github.com/spf13/cobra"
)

func newScoreCmd() *cobra.Command {
	var (
		file             string
		bias             int
		goThreshold      int
		cautionThreshold int
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute a validation score from a JSON request",
		Long: `Score reads a compute-score request body and prints the result.

  scorectl score --file request.json
  scorectl score --file request.json --bias -5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("score: %w", err)
			}
			var req scoring.Request
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("score: parse %s: %w", file, err)
			}
			if cmd.Flags().Changed("bias") {
				req.BiasCorrection = bias
			}

			calc := scoring.NewCalculator(scoring.WithVerdictThresholds(goThreshold, cautionThreshold))
			result := calc.Compute(req.Dimensions, req.MarketFactors, req.ExecutionFactors, req.BiasCorrection)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to the request JSON")
	cmd.Flags().IntVar(&bias, "bias", 0, "bias correction, overrides the request")
	cmd.Flags().IntVar(&goThreshold, "go-threshold", scoring.DefaultGoThreshold, "minimum score for a go verdict")
	cmd.Flags().IntVar(&cautionThreshold, "caution-threshold", scoring.DefaultCautionThreshold, "minimum score for a caution verdict")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
