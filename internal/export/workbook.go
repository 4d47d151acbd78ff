package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ii-tuitions/mocktest/internal/paper"
)

const (
	answerSheet = "Answer Key"
	infoSheet   = "Test Info"
)

var answerHeaders = []any{"No.", "Type", "Question", "A", "B", "C", "D", "Answer", "Explanation"}

// AnswerKeyWorkbook writes an xlsx with one row per question and a sheet of
// test details.
func AnswerKeyWorkbook(p *paper.Paper, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", answerSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := f.SetSheetRow(answerSheet, "A1", &answerHeaders); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}
	if err := f.SetRowStyle(answerSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, q := range p.Questions {
		row := []any{i + 1, q.Type, q.DisplayText(), "", "", "", "", q.AnswerKey(), q.Explanation}
		if q.IsMCQ() {
			for j, label := range paper.OptionLabels {
				row[3+j] = q.Options[label]
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(answerSheet, cell, &row); err != nil {
			return fmt.Errorf("writing question %d: %w", i+1, err)
		}
	}

	widths := map[string]float64{"A": 6, "B": 14, "C": 60, "D": 20, "E": 20, "F": 20, "G": 20, "H": 40, "I": 60}
	for col, width := range widths {
		if err := f.SetColWidth(answerSheet, col, col, width); err != nil {
			return fmt.Errorf("sizing column %s: %w", col, err)
		}
	}

	if _, err := f.NewSheet(infoSheet); err != nil {
		return fmt.Errorf("adding info sheet: %w", err)
	}
	info := [][]any{
		{"Board", p.Info.Board},
		{"Grade", int(p.Info.Grade)},
		{"Subject", p.Info.Subject},
		{"Topic", p.Info.Topic},
		{"Paper Type", p.Info.PaperType},
		{"Total Questions", p.Info.Total(p)},
	}
	for i, row := range info {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(infoSheet, cell, &row); err != nil {
			return fmt.Errorf("writing test info: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
