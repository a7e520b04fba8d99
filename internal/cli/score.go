package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"lyric-quiz-service/internal/scoring"
)

// NewScoreCmd prints how a guess would score against an answer.
func NewScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <answer> <guess>",
		Short: "Score a guess against the expected lyric line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", scoring.Score(args[0], args[1]))
			return err
		},
	}
}
