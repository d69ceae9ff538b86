package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ponyclubs/clubsync/internal/model"
)

var (
	reconcileInput  string
	reconcileApply  bool
	reconcileSelect []string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Match a PCA export payload against the club registry",
	Long: "Reads a payload file, extracts club records, and prints the ranked match list. " +
		"With --apply, writes the selected clubs' extracted contact fields to the registry.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		payload, err := os.ReadFile(reconcileInput)
		if err != nil {
			return eris.Wrap(err, "read payload file")
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if !reconcileApply {
			result, err := env.reconciler.Preview(ctx, string(payload), "")
			if err != nil {
				return err
			}
			printMatches(result.Matches)
			zap.L().Info("preview complete",
				zap.Int("extracted", result.Summary.TotalExtracted),
				zap.Int("exact", result.Summary.ExactCount),
				zap.Int("high", result.Summary.HighCount),
				zap.Int("medium", result.Summary.MediumCount),
				zap.Int("low", result.Summary.LowCount),
				zap.Int("none", result.Summary.NoneCount),
				zap.Int("rows_skipped", len(result.Summary.SkippedRows)),
			)
			return nil
		}

		if len(reconcileSelect) == 0 {
			return eris.New("--apply requires --select with at least one club id")
		}
		selected := make(map[string]bool, len(reconcileSelect))
		for _, id := range reconcileSelect {
			selected[id] = true
		}

		result, err := env.reconciler.Apply(ctx, string(payload), selected, "")
		if err != nil {
			return err
		}
		printMatches(result.Matches)
		zap.L().Info("apply complete",
			zap.Int("applied", result.AppliedCount),
			zap.Int("skipped", result.SkippedCount),
		)
		return nil
	},
}

func printMatches(matches []model.MatchCandidate) {
	for _, m := range matches {
		fmt.Printf("%-6s %.3f  %-40s -> %s (%s)\n",
			m.MatchTier, m.ConfidenceScore, m.Extracted.Name, m.ExistingName, m.ExistingID)
	}
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileInput, "input", "", "path to payload file (required)")
	reconcileCmd.Flags().BoolVar(&reconcileApply, "apply", false, "apply selected matches to the registry")
	reconcileCmd.Flags().StringSliceVar(&reconcileSelect, "select", nil, "club ids to apply (with --apply)")
	_ = reconcileCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(reconcileCmd)
}
