package main

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ponyclubs/clubsync/internal/report"
)

var (
	exportInput  string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Preview a payload and write the match report to CSV or XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		payload, err := os.ReadFile(exportInput)
		if err != nil {
			return eris.Wrap(err, "read payload file")
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.reconciler.Preview(ctx, string(payload), "")
		if err != nil {
			return err
		}

		switch {
		case strings.HasSuffix(exportOutput, ".xlsx"):
			err = report.WriteXLSX(exportOutput, result.Matches, result.Summary)
		case strings.HasSuffix(exportOutput, ".csv"):
			err = report.WriteCSVFile(exportOutput, result.Matches)
		default:
			return eris.Errorf("unsupported report format %q (want .csv or .xlsx)", exportOutput)
		}
		if err != nil {
			return err
		}

		zap.L().Info("report written",
			zap.String("output", exportOutput),
			zap.Int("matches", len(result.Matches)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportInput, "input", "", "path to payload file (required)")
	exportCmd.Flags().StringVar(&exportOutput, "output", "matches.csv", "report output path (.csv or .xlsx)")
	_ = exportCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(exportCmd)
}
