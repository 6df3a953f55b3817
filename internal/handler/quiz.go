package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/vininote/internal/service"
)

// QuizHandler serves the learning hub and quiz sessions.
type QuizHandler struct {
	base
	quizzes *service.QuizService
}

// NewQuizHandler creates a QuizHandler.
func NewQuizHandler(quizzes *service.QuizService, logger *slog.Logger) *QuizHandler {
	return &QuizHandler{base: base{logger: logger}, quizzes: quizzes}
}

// HandleHub returns every topic with its progress.
//
// HTTP: GET /api/learn
func (h *QuizHandler) HandleHub(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.quizzes.Hub(r.Context()))
}

// HandleProgress returns one topic's stored progress.
//
// HTTP: GET /api/learn/{topic}/progress
func (h *QuizHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	p, err := h.quizzes.Progress(r.Context(), chi.URLParam(r, "topic"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleStart opens a session on a topic.
//
// HTTP: POST /api/learn/{topic}/sessions
func (h *QuizHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	v, err := h.quizzes.Start(r.Context(), chi.URLParam(r, "topic"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// HandleGet returns a session.
//
// HTTP: GET /api/quiz/{sid}
func (h *QuizHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.quizzes.Get(r.Context(), chi.URLParam(r, "sid")))
}

type answerRequest struct {
	Choice *int `json:"choice" validate:"required,min=0"`
}

// HandleAnswer answers the current question.
//
// HTTP: POST /api/quiz/{sid}/answer
// REQUEST BODY: {"choice": 1}
func (h *QuizHandler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r)(h.quizzes.Answer(r.Context(), chi.URLParam(r, "sid"), *req.Choice))
}

// HandleNext moves to the next question. The response of the finishing
// call carries the updated progress.
//
// HTTP: POST /api/quiz/{sid}/next
func (h *QuizHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.quizzes.Advance(r.Context(), chi.URLParam(r, "sid")))
}

// HandleRestart reshuffles the session.
//
// HTTP: POST /api/quiz/{sid}/restart
func (h *QuizHandler) HandleRestart(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.quizzes.Restart(r.Context(), chi.URLParam(r, "sid")))
}

func (h *QuizHandler) respond(w http.ResponseWriter, r *http.Request) func(service.QuizView, error) {
	return func(v service.QuizView, err error) {
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}
