package web

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/ii-tuitions/mocktest/internal/export"
	"github.com/ii-tuitions/mocktest/internal/paper"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (h *Handler) handleQuestionsPDF(w http.ResponseWriter, r *http.Request) {
	h.serveExport(w, r, export.KindQuestions, contentTypePDF, func(p *paper.Paper, out io.Writer) error {
		return export.RenderPDF(export.QuestionsDocument(p), out)
	})
}

func (h *Handler) handleAnswersPDF(w http.ResponseWriter, r *http.Request) {
	h.serveExport(w, r, export.KindAnswers, contentTypePDF, func(p *paper.Paper, out io.Writer) error {
		return export.RenderPDF(export.AnswersDocument(p), out)
	})
}

func (h *Handler) handleAnswerKey(w http.ResponseWriter, r *http.Request) {
	h.serveExport(w, r, export.KindAnswerKey, contentTypeXLSX, export.AnswerKeyWorkbook)
}

// serveExport builds the document in memory so a failure can still be
// reported with a proper status. It never writes the session.
func (h *Handler) serveExport(w http.ResponseWriter, r *http.Request, kind, contentType string, build func(*paper.Paper, io.Writer) error) {
	s, err := h.loadSession(w, r)
	if err != nil {
		h.sessionError(w, r, err)
		return
	}
	if !s.HasPaper() {
		http.Error(w, "No test generated yet", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := build(s.Paper, &buf); err != nil {
		h.logger.Error("export failed", "kind", kind, "error", err, "request_id", RequestIDFrom(r.Context()))
		http.Error(w, fmt.Sprintf("Error creating %s: %v", kind, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(kind, s.Paper)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w)
}
