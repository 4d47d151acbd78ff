package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ii-tuitions/mocktest/internal/quiz"
)

func (h *Handler) handleBoards(w http.ResponseWriter, r *http.Request) {
	catalog := h.svc.Catalog()
	respondJSON(w, http.StatusOK, map[string]any{
		"boards": catalog.Boards(),
		"grades": catalog.Grades(),
	})
}

// GET /api/catalog/subjects?board=&grade=
func (h *Handler) handleSubjects(w http.ResponseWriter, r *http.Request) {
	board := r.URL.Query().Get("board")
	grade, err := strconv.Atoi(r.URL.Query().Get("grade"))
	if board == "" || err != nil {
		respondError(w, http.StatusBadRequest, "board and numeric grade are required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"board":    board,
		"grade":    grade,
		"subjects": h.svc.Catalog().Subjects(board, grade),
	})
}

// GET /api/catalog/topics?board=&subject=&grade=
func (h *Handler) handleTopics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	board, subject := q.Get("board"), q.Get("subject")
	grade, err := strconv.Atoi(q.Get("grade"))
	if board == "" || subject == "" || err != nil {
		respondError(w, http.StatusBadRequest, "board, subject and numeric grade are required")
		return
	}
	catalog := h.svc.Catalog()
	respondJSON(w, http.StatusOK, map[string]any{
		"topics":  catalog.Topics(board, subject, grade),
		"context": catalog.Context(board, subject, grade),
	})
}

type topicCheckRequest struct {
	Topic   string `json:"topic"`
	Subject string `json:"subject"`
}

type topicCheckResponse struct {
	Relevant    bool     `json:"relevant"`
	Keywords    []string `json:"keywords"`
	Suggestions []string `json:"suggestions"`
	MoreTopics  []string `json:"more_topics"`
	Message     string   `json:"message"`
}

// POST /api/topic-check
func (h *Handler) handleTopicCheck(w http.ResponseWriter, r *http.Request) {
	var req topicCheckRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid json")
		return
	}

	v, suggestions := h.svc.CheckTopic(req.Topic, req.Subject)
	resp := topicCheckResponse{
		Relevant:    v.Relevant,
		Keywords:    v.Keywords,
		Suggestions: suggestions[0],
		MoreTopics:  suggestions[1],
	}
	if resp.Keywords == nil {
		resp.Keywords = []string{}
	}
	switch {
	case req.Subject == "":
		resp.Message = "Please select a subject first to validate your topic"
	case v.Relevant:
		resp.Message = "Topic '" + req.Topic + "' is relevant to " + req.Subject
	default:
		resp.Message = quiz.OffSubjectMessage(req.Topic, req.Subject)
	}
	respondJSON(w, http.StatusOK, resp)
}

// POST /api/connection-test
func (h *Handler) handleConnectionTest(w http.ResponseWriter, r *http.Request) {
	ok, message := h.svc.TestConnection(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"ok":       ok,
		"message":  message,
		"provider": h.svc.ProviderName(),
	})
}
