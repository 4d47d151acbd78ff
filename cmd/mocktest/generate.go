package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ii-tuitions/mocktest/internal/apperr"
	"github.com/ii-tuitions/mocktest/internal/export"
	"github.com/ii-tuitions/mocktest/internal/paper"
	"github.com/ii-tuitions/mocktest/internal/quiz"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a test and write the question and answer PDFs and the answer key",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			board, _ := flags.GetString("board")
			grade, _ := flags.GetInt("grade")
			subject, _ := flags.GetString("subject")
			topic, _ := flags.GetString("topic")
			paperNo, _ := flags.GetInt("paper")
			showAnswers, _ := flags.GetBool("show-answers")
			outDir, _ := flags.GetString("out")

			pt, err := paperType(paperNo)
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			form := quiz.Form{
				Board:       board,
				Grade:       grade,
				Subject:     subject,
				Topic:       topic,
				PaperType:   pt,
				ShowAnswers: showAnswers,
			}
			p, err := a.Service.Generate(cmd.Context(), "", form)
			if err != nil {
				msg := apperr.MessageFor(err)
				return fmt.Errorf("%s: %w (%s)", msg.Text, err, msg.Hint)
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generated %d questions for %s Grade %d %s: %s\n",
				len(p.Questions), board, grade, subject, topic)
			for _, f := range exportFiles {
				path := filepath.Join(outDir, export.Filename(f.kind, p))
				if err := writeExport(path, p, f.build); err != nil {
					return fmt.Errorf("creating %s: %w", f.kind, err)
				}
				fmt.Fprintf(out, "  wrote %s\n", path)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("board", "", "Board name")
	flags.Int("grade", 0, "Grade (1-12)")
	flags.String("subject", "", "Subject")
	flags.String("topic", "", "Topic")
	flags.Int("paper", 1, "Paper type: 1 (25 MCQs), 2 (23 mixed) or 3 (30 MCQs)")
	flags.Bool("show-answers", false, "Mark the test as showing answers on screen")
	flags.String("out", ".", "Output directory")
	for _, name := range []string{"board", "grade", "subject", "topic"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func paperType(n int) (paper.PaperType, error) {
	types := paper.PaperTypes()
	if n < 1 || n > len(types) {
		return "", fmt.Errorf("--paper must be 1-%d, got %d", len(types), n)
	}
	return types[n-1], nil
}

var exportFiles = []struct {
	kind  string
	build func(*paper.Paper, io.Writer) error
}{
	{export.KindQuestions, func(p *paper.Paper, w io.Writer) error {
		return export.RenderPDF(export.QuestionsDocument(p), w)
	}},
	{export.KindAnswers, func(p *paper.Paper, w io.Writer) error {
		return export.RenderPDF(export.AnswersDocument(p), w)
	}},
	{export.KindAnswerKey, export.AnswerKeyWorkbook},
}

// writeExport renders into memory first so a failed export leaves no
// partial file behind.
func writeExport(path string, p *paper.Paper, build func(*paper.Paper, io.Writer) error) error {
	var buf bytes.Buffer
	if err := build(p, &buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
