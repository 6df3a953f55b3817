package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/sakif/vininote/internal/apperror"
	"github.com/sakif/vininote/internal/model"
	"github.com/sakif/vininote/internal/quiz"
	"github.com/sakif/vininote/internal/repository"
)

// QuizService runs quiz sessions and keeps the learning progress.
//
// Sessions live in memory only; their result reaches the store once per
// run. A run whose result could not be stored stays open for Advance to
// retry the write.
type QuizService struct {
	progress repository.ProgressStore
	sessions *registry[quizRun]
	newRand  func() *rand.Rand
	logger   *slog.Logger
}

// NewQuizService creates a QuizService.
func NewQuizService(progress repository.ProgressStore, logger *slog.Logger) *QuizService {
	return &QuizService{
		progress: progress,
		sessions: newRegistry[quizRun]("quiz session", DefaultRegistryLimit, nil),
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
		logger: logger,
	}
}

// quizRun is a session plus whether its finished result is stored.
type quizRun struct {
	*quiz.Session
	recorded bool
}

// QuizView is the state of one session as the view renders it. Question
// and Feedback are absent once the session is done; Progress is present
// only on the finishing Advance.
type QuizView struct {
	ID       string              `json:"id"`
	Topic    quiz.Topic          `json:"topic"`
	Index    int                 `json:"index"`
	Total    int                 `json:"total"`
	Score    int                 `json:"score"`
	Earned   int                 `json:"earned"`
	Percent  int                 `json:"percent"`
	Done     bool                `json:"done"`
	Passed   bool                `json:"passed"`
	Question *quiz.Question      `json:"question,omitempty"`
	Feedback *quiz.Feedback      `json:"feedback,omitempty"`
	Progress *model.QuizProgress `json:"progress,omitempty"`
}

func viewOf(id string, s *quiz.Session) QuizView {
	v := QuizView{
		ID:      id,
		Topic:   s.Topic(),
		Index:   s.Index(),
		Total:   s.Total(),
		Score:   s.Score(),
		Earned:  s.Earned(),
		Percent: s.Percent(),
		Done:    s.Done(),
		Passed:  s.Passed(),
	}
	if q, ok := s.Current(); ok {
		v.Question = &q
	}
	if fb, ok := s.Feedback(); ok {
		v.Feedback = &fb
	}
	return v
}

func lookupTopic(slug string) (quiz.Topic, error) {
	t, ok := quiz.Lookup(slug)
	if !ok {
		return quiz.Topic{}, apperror.NotFound("quiz topic", slug)
	}
	return t, nil
}

// Start opens a new session on topic slug.
func (s *QuizService) Start(_ context.Context, slug string) (QuizView, error) {
	topic, err := lookupTopic(slug)
	if err != nil {
		return QuizView{}, err
	}
	sess := quiz.NewSession(topic, s.newRand())
	id := s.sessions.add(&quizRun{Session: sess})

	s.logger.Debug("quiz started", slog.String("session", id), slog.String("topic", slug))
	return viewOf(id, sess), nil
}

// Get returns the current state of a session.
func (s *QuizService) Get(_ context.Context, id string) (QuizView, error) {
	var v QuizView
	err := s.sessions.with(id, func(run *quizRun) error {
		v = viewOf(id, run.Session)
		return nil
	})
	return v, err
}

// Answer records choice for the current question. Answering again
// returns the first answer's feedback.
func (s *QuizService) Answer(_ context.Context, id string, choice int) (QuizView, error) {
	var v QuizView
	err := s.sessions.with(id, func(run *quizRun) error {
		if _, err := run.Answer(choice); err != nil {
			return quizError(err)
		}
		v = viewOf(id, run.Session)
		return nil
	})
	return v, err
}

// Advance moves past an answered question. The call that finishes the
// session folds its score into the topic's stored progress; when that
// write fails, the next Advance on the finished session retries it.
func (s *QuizService) Advance(ctx context.Context, id string) (QuizView, error) {
	var v QuizView
	err := s.sessions.with(id, func(run *quizRun) error {
		if !run.Done() || run.recorded {
			if _, err := run.Advance(); err != nil {
				return quizError(err)
			}
		}
		v = viewOf(id, run.Session)
		if !run.Done() {
			return nil
		}

		t := run.Topic()
		p, err := s.progress.ProgressFor(t.StorageKey).Record(ctx, run.Score(), run.Earned(), t.PassScore)
		if err != nil {
			return fmt.Errorf("recording quiz progress: %w", err)
		}
		run.recorded = true
		v.Progress = &p

		s.logger.Info("quiz finished",
			slog.String("topic", t.Slug),
			slog.Int("score", run.Score()),
			slog.Int("total", run.Total()),
			slog.Bool("passed", run.Passed()),
		)
		return nil
	})
	return v, err
}

// Restart reshuffles and resets a session in place.
func (s *QuizService) Restart(_ context.Context, id string) (QuizView, error) {
	var v QuizView
	err := s.sessions.with(id, func(run *quizRun) error {
		run.Restart()
		run.recorded = false
		v = viewOf(id, run.Session)
		return nil
	})
	return v, err
}

// Progress returns the stored progress of topic slug (zero when none).
func (s *QuizService) Progress(ctx context.Context, slug string) (model.QuizProgress, error) {
	topic, err := lookupTopic(slug)
	if err != nil {
		return model.QuizProgress{}, err
	}
	return s.progress.ProgressFor(topic.StorageKey).Get(ctx), nil
}

// ResetProgress forgets the stored progress of topic slug.
func (s *QuizService) ResetProgress(ctx context.Context, slug string) error {
	topic, err := lookupTopic(slug)
	if err != nil {
		return err
	}
	if err := s.progress.ProgressFor(topic.StorageKey).Clear(ctx); err != nil {
		return fmt.Errorf("resetting quiz progress: %w", err)
	}
	return nil
}

// HubTopic is one card of the learning hub.
type HubTopic struct {
	Topic    quiz.Topic         `json:"topic"`
	Progress model.QuizProgress `json:"progress"`
}

// Hub is the learning hub: every topic with its progress, the number of
// passed topics (badges) and the XP summed over topics.
type Hub struct {
	Topics  []HubTopic `json:"topics"`
	Badges  int        `json:"badges"`
	TotalXP int        `json:"totalXp"`
}

// Hub builds the learning hub from stored progress.
func (s *QuizService) Hub(ctx context.Context) Hub {
	topics := quiz.Topics()
	h := Hub{Topics: make([]HubTopic, 0, len(topics))}
	for _, t := range topics {
		p := s.progress.ProgressFor(t.StorageKey).Get(ctx)
		h.Topics = append(h.Topics, HubTopic{Topic: t, Progress: p})
		if p.Passed {
			h.Badges++
		}
		h.TotalXP += p.XP
	}
	return h
}

func quizError(err error) error {
	switch {
	case errors.Is(err, quiz.ErrInvalidChoice):
		return apperror.ValidationFailed("choice", "choice is out of range")
	case errors.Is(err, quiz.ErrNotAnswered):
		return apperror.ValidationFailed("choice", "answer the current question first")
	case errors.Is(err, quiz.ErrDone):
		return apperror.ValidationFailed("session", "quiz is finished")
	}
	return err
}
