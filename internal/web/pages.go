package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ii-tuitions/mocktest/internal/apperr"
	"github.com/ii-tuitions/mocktest/internal/paper"
	"github.com/ii-tuitions/mocktest/internal/quiz"
	"github.com/ii-tuitions/mocktest/internal/session"
)

// handleIndex shows the home page, or redirects to the page the session is
// on.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	s, err := h.loadSession(w, r)
	if err != nil {
		h.sessionError(w, r, err)
		return
	}
	if s.Page != session.PageHome {
		http.Redirect(w, r, pagePath(s.Page), http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "home", h.homeData(r, s))
}

func (h *Handler) homeData(r *http.Request, s *session.Session) pageData {
	return pageData{
		Title:          "Mock Test Generator",
		GeneratedCount: h.svc.GeneratedCount(r.Context()),
		Provider:       h.svc.ProviderName(),
		Key:            h.keyStatus,
		Paper:          s.Paper,
	}
}

// handleNavigate applies the posted action and redirects to the new page.
func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	s, err := h.loadSession(w, r)
	if err != nil {
		h.sessionError(w, r, err)
		return
	}

	action := session.Action(r.PostFormValue("action"))
	if err := s.Navigate(action); err != nil {
		h.logger.Warn("rejected navigation", "page", s.Page, "action", action, "request_id", RequestIDFrom(r.Context()))
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err := h.saveSession(w, r, s); err != nil {
		h.sessionError(w, r, err)
		return
	}
	http.Redirect(w, r, pagePath(s.Page), http.StatusSeeOther)
}

// handleCreatePage shows the create form. Query parameters update the saved
// form without generating, so the subject list and summary follow the
// board and grade.
func (h *Handler) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	s, err := h.loadSession(w, r)
	if err != nil {
		h.sessionError(w, r, err)
		return
	}
	if s.Page != session.PageCreateTest {
		http.Redirect(w, r, pagePath(s.Page), http.StatusSeeOther)
		return
	}

	if q := r.URL.Query(); len(q) > 0 {
		s.Form = formFromValues(q, s.Form)
		if f := s.Form.Normalized(); f.Subject != "" && !h.svc.Catalog().HasSubject(f.Board, f.Grade, f.Subject) {
			s.Form.Subject = ""
		}
		if err := h.saveSession(w, r, s); err != nil {
			h.sessionError(w, r, err)
			return
		}
	}
	h.render(w, r, http.StatusOK, "create", h.createData(s.Form, nil))
}

func (h *Handler) createData(f quiz.Form, actionErr error) pageData {
	f = f.Normalized()
	catalog := h.svc.Catalog()
	data := pageData{
		Title:      "Create Mock Test",
		Boards:     catalog.Boards(),
		Grades:     catalog.Grades(),
		Subjects:   catalog.Subjects(f.Board, f.Grade),
		Topics:     catalog.Topics(f.Board, f.Subject, f.Grade),
		PaperTypes: paper.PaperTypes(),
		Form:       f,
		Summary:    h.svc.Summarize(f),
	}
	if actionErr != nil {
		msg := apperr.MessageFor(actionErr)
		data.Error = &msg
		var ve *quiz.ValidationError
		if errors.As(actionErr, &ve) {
			data.FieldErrors = ve.Fields
		}
	}
	return data
}

// handleCreate generates a test from the posted form.
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	s, err := h.loadSession(w, r)
	if err != nil {
		h.sessionError(w, r, err)
		return
	}
	if s.Page != session.PageCreateTest {
		http.Redirect(w, r, pagePath(s.Page), http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	s.Form = formFromValues(r.PostForm, quiz.Form{})
	p, genErr := h.svc.Generate(r.Context(), s.ID, s.Form)
	if genErr == nil {
		genErr = s.Generated(p)
	}
	if err := h.saveSession(w, r, s); err != nil {
		h.sessionError(w, r, err)
		return
	}
	if genErr != nil {
		h.render(w, r, statusFor(genErr), "create", h.createData(s.Form, genErr))
		return
	}
	http.Redirect(w, r, pagePath(s.Page), http.StatusSeeOther)
}

// handleTestPage shows the generated test.
func (h *Handler) handleTestPage(w http.ResponseWriter, r *http.Request) {
	s, err := h.loadSession(w, r)
	if err != nil {
		h.sessionError(w, r, err)
		return
	}
	if s.Page != session.PageTestDisplay {
		http.Redirect(w, r, pagePath(s.Page), http.StatusSeeOther)
		return
	}
	if !s.HasPaper() {
		h.render(w, r, http.StatusOK, "no_test", pageData{Title: "No Test"})
		return
	}
	h.render(w, r, http.StatusOK, "test", pageData{Title: s.Paper.Info.Subject + " Mock Test", Paper: s.Paper})
}

// formFromValues reads the form fields present in v. Absent fields keep
// their fallback values; present but empty ones are cleared.
func formFromValues(v url.Values, fallback quiz.Form) quiz.Form {
	f := fallback
	if v.Has("board") {
		f.Board = v.Get("board")
	}
	if v.Has("grade") {
		if s := strings.TrimSpace(v.Get("grade")); s == "" {
			f.Grade = 0
		} else if g, err := strconv.Atoi(s); err == nil {
			f.Grade = g
		}
	}
	if v.Has("subject") {
		f.Subject = v.Get("subject")
	}
	if v.Has("topic") {
		f.Topic = v.Get("topic")
	}
	if v.Has("paper_type") {
		f.PaperType = paper.PaperType(v.Get("paper_type"))
	}
	switch v.Get("show_answers") {
	case "on", "true", "1":
		f.ShowAnswers = true
	case "off", "false", "0":
		f.ShowAnswers = false
	}
	return f
}
