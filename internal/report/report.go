// Package report renders match lists as CSV or XLSX files for operator
// review outside the web UI.
package report

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/ponyclubs/clubsync/internal/model"
)

// matchColumns defines the ordered report columns.
var matchColumns = []string{
	"Extracted Name",
	"Matched Club",
	"Club ID",
	"Score",
	"Tier",
	"Action",
	"Address",
	"Phone",
	"Email",
	"Website",
}

func matchRow(m model.MatchCandidate) []string {
	return []string{
		m.Extracted.Name,
		m.ExistingName,
		m.ExistingID,
		strconv.FormatFloat(m.ConfidenceScore, 'f', 3, 64),
		string(m.MatchTier),
		string(m.RecommendedAction),
		m.Extracted.Address,
		m.Extracted.Phone,
		m.Extracted.Email,
		m.Extracted.Website,
	}
}

// WriteCSV writes the match list as CSV.
func WriteCSV(w io.Writer, matches []model.MatchCandidate) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(matchColumns); err != nil {
		return eris.Wrap(err, "report: write header")
	}
	for _, m := range matches {
		if err := cw.Write(matchRow(m)); err != nil {
			return eris.Wrap(err, "report: write row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush")
}

// WriteCSVFile writes the match list as a CSV file at path.
func WriteCSVFile(path string, matches []model.MatchCandidate) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "report: create file")
	}
	defer f.Close()
	return WriteCSV(f, matches)
}

// WriteXLSX writes the match list plus a summary sheet as an XLSX workbook.
func WriteXLSX(path string, matches []model.MatchCandidate, summary model.ReconciliationSummary) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet("Matches")
	if err != nil {
		return eris.Wrap(err, "report: add matches sheet")
	}
	header := sheet.AddRow()
	for _, col := range matchColumns {
		header.AddCell().Value = col
	}
	for _, m := range matches {
		row := sheet.AddRow()
		for _, v := range matchRow(m) {
			row.AddCell().Value = v
		}
	}

	sum, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}
	addSummaryRow := func(label string, n int) {
		row := sum.AddRow()
		row.AddCell().Value = label
		row.AddCell().Value = strconv.Itoa(n)
	}
	addSummaryRow("Total extracted", summary.TotalExtracted)
	addSummaryRow("Exact", summary.ExactCount)
	addSummaryRow("High", summary.HighCount)
	addSummaryRow("Medium", summary.MediumCount)
	addSummaryRow("Low", summary.LowCount)
	addSummaryRow("None", summary.NoneCount)
	addSummaryRow("Rows skipped", len(summary.SkippedRows))

	return eris.Wrap(f.Save(path), "report: save xlsx")
}
