package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin   = 20.0
	optionIndent = 12.0
	answerIndent = 6.0
)

type fontSpec struct {
	size   float64
	style  string
	line   float64
	after  float64
	align  string
	accent bool
}

var fonts = map[Style]fontSpec{
	StyleTitle:    {size: 20, style: "B", line: 10, after: 3, align: "C", accent: true},
	StyleSubtitle: {size: 16, style: "B", line: 8, after: 6, align: "C", accent: true},
	StyleInfo:     {size: 11, line: 6},
	StyleHeading:  {size: 14, style: "B", line: 8, after: 1},
	StyleBullet:   {size: 11, line: 6},
	StyleQuestion: {size: 12, line: 6.5, after: 1},
	StyleOption:   {size: 11, line: 6},
	StyleAnswer:   {size: 11, line: 6},
}

// RenderPDF writes doc to w as an A4 PDF using the core Helvetica font.
// Text is translated to cp1252; characters outside it are lost.
func RenderPDF(doc Document, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(doc.Title), false)
	pdf.SetCreator(tr(Brand), false)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	for _, p := range doc.Paragraphs {
		if p.Style == StyleSpacer {
			pdf.Ln(6)
			continue
		}
		spec := fonts[p.Style]
		if spec.accent {
			pdf.SetTextColor(doc.Accent.R, doc.Accent.G, doc.Accent.B)
		} else {
			pdf.SetTextColor(0, 0, 0)
		}

		switch p.Style {
		case StyleTitle, StyleSubtitle, StyleHeading:
			pdf.SetFont("Helvetica", spec.style, spec.size)
			pdf.MultiCell(0, spec.line, tr(p.Text), "", spec.align, false)
		default:
			indent := 0.0
			switch p.Style {
			case StyleOption:
				indent = optionIndent
			case StyleAnswer:
				indent = answerIndent
			}
			text := p.Text
			if p.Style == StyleBullet {
				text = "• " + text
			}
			writeLabelled(pdf, tr, spec, indent, p.Label, text)
		}
		if spec.after > 0 {
			pdf.Ln(spec.after)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("building pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

// writeLabelled writes a bold label followed by normal text, wrapping within
// the margins shifted right by indent.
func writeLabelled(pdf *fpdf.Fpdf, tr func(string) string, spec fontSpec, indent float64, label, text string) {
	if indent > 0 {
		pdf.SetLeftMargin(pageMargin + indent)
		defer pdf.SetLeftMargin(pageMargin)
	}
	pdf.SetX(pageMargin + indent)
	if label != "" {
		pdf.SetFont("Helvetica", "B", spec.size)
		pdf.Write(spec.line, tr(label+" "))
	}
	pdf.SetFont("Helvetica", spec.style, spec.size)
	pdf.Write(spec.line, tr(text))
	pdf.Ln(spec.line)
}
