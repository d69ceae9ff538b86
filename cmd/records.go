package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ponyclubs/clubsync/internal/model"
)

var recordsCSVPath string

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect and seed the club registry",
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered clubs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		clubs, err := env.store.ListClubs(ctx)
		if err != nil {
			return err
		}
		for _, c := range clubs {
			fmt.Printf("%-36s  %-40s %s\n", c.ID, c.Name, c.Zone)
		}
		zap.L().Info("registry listed", zap.Int("clubs", len(clubs)))
		return nil
	},
}

// csv columns: id,name,address,phone,email,website,logo_url,contact_person,contact_role,zone
var recordsLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Seed or refresh the registry from the federation club CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		f, err := os.Open(recordsCSVPath)
		if err != nil {
			return eris.Wrap(err, "open csv")
		}
		defer f.Close()

		r := csv.NewReader(f)
		header, err := r.Read()
		if err != nil {
			return eris.Wrap(err, "read csv header")
		}
		col := make(map[string]int, len(header))
		for i, h := range header {
			col[h] = i
		}
		if _, ok := col["name"]; !ok {
			return eris.New("csv is missing the name column")
		}
		field := func(row []string, name string) string {
			i, ok := col[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		loaded := 0
		for {
			row, err := r.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return eris.Wrap(err, "read csv row")
			}
			club := &model.Club{
				ID:            field(row, "id"),
				Name:          field(row, "name"),
				Address:       field(row, "address"),
				Phone:         field(row, "phone"),
				Email:         field(row, "email"),
				Website:       field(row, "website"),
				LogoURL:       field(row, "logo_url"),
				ContactPerson: field(row, "contact_person"),
				ContactRole:   field(row, "contact_role"),
				Zone:          field(row, "zone"),
			}
			if club.Name == "" {
				continue
			}
			if err := env.store.UpsertClub(ctx, club); err != nil {
				return err
			}
			loaded++
		}

		zap.L().Info("registry load complete",
			zap.Int("loaded", loaded),
			zap.String("csv", recordsCSVPath),
		)
		return nil
	},
}

var runsListCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent reconciliation runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		runs, err := env.store.ListRuns(ctx, 50)
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Printf("%s  %-7s extracted=%d exact=%d high=%d medium=%d low=%d none=%d applied=%d skipped=%d\n",
				r.CreatedAt.Format("2006-01-02 15:04:05"), r.Mode, r.TotalExtracted,
				r.ExactCount, r.HighCount, r.MediumCount, r.LowCount, r.NoneCount,
				r.AppliedCount, r.SkippedCount)
		}
		return nil
	},
}

func init() {
	recordsLoadCmd.Flags().StringVar(&recordsCSVPath, "csv", "", "path to club CSV file (required)")
	_ = recordsLoadCmd.MarkFlagRequired("csv")
	recordsCmd.AddCommand(recordsListCmd, recordsLoadCmd)
	rootCmd.AddCommand(recordsCmd, runsListCmd)
}
