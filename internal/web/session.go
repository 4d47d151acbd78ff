package web

import (
	"errors"
	"net/http"

	"github.com/ii-tuitions/mocktest/internal/session"
)

// loadSession returns the visitor's session, starting a new one when the
// cookie is missing or the stored session has expired.
func (h *Handler) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	if c, err := r.Cookie(h.cookieName); err == nil && c.Value != "" {
		s, err := h.sessions.Get(r.Context(), c.Value)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, session.ErrNotFound) {
			return nil, err
		}
	}

	s := session.New()
	if err := h.saveSession(w, r, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (h *Handler) saveSession(w http.ResponseWriter, r *http.Request, s *session.Session) error {
	if err := h.sessions.Save(r.Context(), s); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (h *Handler) sessionError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("session store failed", "error", err, "request_id", RequestIDFrom(r.Context()))
	http.Error(w, "session unavailable", http.StatusServiceUnavailable)
}

// pagePath is where each page is served.
func pagePath(p session.Page) string {
	switch p {
	case session.PageCreateTest:
		return "/create"
	case session.PageTestDisplay:
		return "/test"
	default:
		return "/"
	}
}
