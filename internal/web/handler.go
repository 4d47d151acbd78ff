// Package web serves the mock test UI and its JSON endpoints.
package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/ii-tuitions/mocktest/internal/apperr"
	"github.com/ii-tuitions/mocktest/internal/paper"
	"github.com/ii-tuitions/mocktest/internal/quiz"
	"github.com/ii-tuitions/mocktest/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Checker reports whether a dependency is ready.
type Checker func(ctx context.Context) error

// Handler holds everything the HTTP handlers need.
type Handler struct {
	svc        *quiz.Service
	sessions   session.Store
	logger     *slog.Logger
	pages      map[string]*template.Template
	cookieName string
	cookieTTL  time.Duration
	keyStatus  KeyStatus
	checks     map[string]Checker
}

// KeyStatus describes the configured credential for the home page.
type KeyStatus struct {
	Configured bool
	Preview    string
	FormatErr  string
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithCookie sets the session cookie name and lifetime.
func WithCookie(name string, ttl time.Duration) Option {
	return func(h *Handler) {
		if name != "" {
			h.cookieName = name
		}
		h.cookieTTL = ttl
	}
}

// WithKeyStatus sets what the home page says about the API key.
func WithKeyStatus(ks KeyStatus) Option {
	return func(h *Handler) { h.keyStatus = ks }
}

// WithReadinessCheck adds a dependency to /readyz.
func WithReadinessCheck(name string, c Checker) Option {
	return func(h *Handler) { h.checks[name] = c }
}

// NewHandler creates a Handler. It fails only if the embedded templates do
// not parse.
func NewHandler(svc *quiz.Service, sessions session.Store, opts ...Option) (*Handler, error) {
	h := &Handler{
		svc:        svc,
		sessions:   sessions,
		logger:     slog.Default(),
		cookieName: "mocktest_session",
		cookieTTL:  24 * time.Hour,
		checks:     make(map[string]Checker),
	}
	for _, opt := range opts {
		opt(h)
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	h.pages = pages
	return h, nil
}

var pageNames = []string{"home", "create", "test", "no_test"}

var templateFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// Routes returns the router wrapped in the middleware chain
// RequestID -> Logging -> Recover -> mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("POST /navigate", h.handleNavigate)
	mux.HandleFunc("GET /create", h.handleCreatePage)
	mux.HandleFunc("POST /create", h.handleCreate)
	mux.HandleFunc("GET /test", h.handleTestPage)
	mux.HandleFunc("GET /test/questions.pdf", h.handleQuestionsPDF)
	mux.HandleFunc("GET /test/answers.pdf", h.handleAnswersPDF)
	mux.HandleFunc("GET /test/answer-key.xlsx", h.handleAnswerKey)

	mux.HandleFunc("GET /api/catalog/boards", h.handleBoards)
	mux.HandleFunc("GET /api/catalog/subjects", h.handleSubjects)
	mux.HandleFunc("GET /api/catalog/topics", h.handleTopics)
	mux.HandleFunc("POST /api/topic-check", h.handleTopicCheck)
	mux.HandleFunc("POST /api/connection-test", h.handleConnectionTest)

	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", h.handleReadyz)

	return RequestID(Logging(h.logger)(Recover(h.logger)(mux)))
}

// pageData is what every view template receives.
type pageData struct {
	Title     string
	RequestID string
	Error     *apperr.Message
	Notice    string

	GeneratedCount int
	Provider       string
	Key            KeyStatus

	Boards      []string
	Grades      []int
	Subjects    []string
	Topics      []string
	PaperTypes  []paper.PaperType
	Form        quiz.Form
	Summary     quiz.Summary
	FieldErrors map[string]string

	Paper *paper.Paper
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	t, ok := h.pages[name]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}
	data.RequestID = RequestIDFrom(r.Context())

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		h.logger.Error("rendering page", "page", name, "error", err, "request_id", data.RequestID)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError writes {"error": message}.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps an action error to an HTTP status.
func statusFor(err error) int {
	var ve *quiz.ValidationError
	switch kind := apperr.KindOf(err); {
	case errors.As(err, &ve), kind == apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case kind == apperr.KindConfiguration:
		return http.StatusServiceUnavailable
	case kind == apperr.KindRateLimited:
		return http.StatusTooManyRequests
	case kind == apperr.KindAuthentication, kind == apperr.KindAPI, kind == apperr.KindMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	failed := make(map[string]string)
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
