// Package quiz runs the short multiple-choice quizzes of the learning hub.
//
// A Session walks a shuffled copy of a topic's questions:
//
//	InProgress(index, score, earned) --Answer--> answered --Advance--> next question or Done
//
// Each question can be answered once; the first pick counts. Scoring and
// XP stay inside the session until it is Done, and only then does the
// caller fold the result into the topic's stored progress.
package quiz

import (
	"errors"
	"math/rand/v2"
)

var (
	ErrDone          = errors.New("quiz: session is finished")
	ErrNotAnswered   = errors.New("quiz: current question has not been answered")
	ErrInvalidChoice = errors.New("quiz: choice is out of range")
)

// Topic is one quiz: its question bank and scoring rules.
type Topic struct {
	Slug         string     `json:"slug"`
	Title        string     `json:"title"`
	Subtitle     string     `json:"subtitle"`
	StorageKey   string     `json:"storageKey"`
	PassScore    int        `json:"passScore"`
	XPPerCorrect int        `json:"xpPerCorrect"`
	Questions    []Question `json:"-"`
}

// Question is a prompt with two or more answers, exactly one correct.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Answers []Answer `json:"answers"`
}

// Answer is one choice. Why is the feedback shown once it is picked.
type Answer struct {
	Label   string `json:"label"`
	Correct bool   `json:"-"`
	Why     string `json:"-"`
}

// CorrectIndex returns the index of the correct answer, or -1.
func (q Question) CorrectIndex() int {
	for i, a := range q.Answers {
		if a.Correct {
			return i
		}
	}
	return -1
}

// Feedback is the result of answering the current question.
type Feedback struct {
	Choice       int    `json:"choice"`
	Correct      bool   `json:"correct"`
	CorrectIndex int    `json:"correctIndex"`
	Why          string `json:"why"`
	XP           int    `json:"xp"`
}

// Session is one run through a topic. It is not safe for concurrent use;
// the service layer serialises access.
type Session struct {
	topic     Topic
	rng       *rand.Rand
	questions []Question
	index     int
	score     int
	earned    int
	feedback  *Feedback
}

// NewSession starts a session with the questions shuffled by rng.
func NewSession(topic Topic, rng *rand.Rand) *Session {
	s := &Session{topic: topic, rng: rng}
	s.Restart()
	return s
}

// Restart reshuffles the full bank and resets score and position.
func (s *Session) Restart() {
	s.questions = Shuffle(s.rng, s.topic.Questions)
	s.index = 0
	s.score = 0
	s.earned = 0
	s.feedback = nil
}

// Shuffle returns a uniformly shuffled copy of qs (Fisher-Yates).
func Shuffle(rng *rand.Rand, qs []Question) []Question {
	out := make([]Question, len(qs))
	copy(out, qs)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Topic is the topic this session runs.
func (s *Session) Topic() Topic { return s.topic }

// Done reports whether every question has been passed.
func (s *Session) Done() bool { return s.index >= len(s.questions) }

// Passed reports a finished session at or above the pass score.
func (s *Session) Passed() bool { return s.Done() && s.score >= s.topic.PassScore }

func (s *Session) Index() int  { return s.index }
func (s *Session) Total() int  { return len(s.questions) }
func (s *Session) Score() int  { return s.score }
func (s *Session) Earned() int { return s.earned }

// Questions is the shuffled order of this run.
func (s *Session) Questions() []Question { return s.questions }

// Current returns the question being asked; false once Done.
func (s *Session) Current() (Question, bool) {
	if s.Done() {
		return Question{}, false
	}
	return s.questions[s.index], true
}

// Feedback returns the recorded answer to the current question, if any.
func (s *Session) Feedback() (Feedback, bool) {
	if s.feedback == nil {
		return Feedback{}, false
	}
	return *s.feedback, true
}

// Answer records choice for the current question. Only the first answer
// counts: later calls return the recorded feedback unchanged.
func (s *Session) Answer(choice int) (Feedback, error) {
	q, ok := s.Current()
	if !ok {
		return Feedback{}, ErrDone
	}
	if s.feedback != nil {
		return *s.feedback, nil
	}
	if choice < 0 || choice >= len(q.Answers) {
		return Feedback{}, ErrInvalidChoice
	}

	a := q.Answers[choice]
	fb := Feedback{
		Choice:       choice,
		Correct:      a.Correct,
		CorrectIndex: q.CorrectIndex(),
		Why:          a.Why,
	}
	if a.Correct {
		s.score++
		s.earned += s.topic.XPPerCorrect
		fb.XP = s.topic.XPPerCorrect
	}
	s.feedback = &fb
	return fb, nil
}

// Advance moves to the next question. It reports whether this call
// finished the session.
func (s *Session) Advance() (bool, error) {
	if s.Done() {
		return false, ErrDone
	}
	if s.feedback == nil {
		return false, ErrNotAnswered
	}
	s.feedback = nil
	s.index++
	return s.Done(), nil
}

// Percent is the share of questions already passed, 0..100.
func (s *Session) Percent() int {
	if len(s.questions) == 0 {
		return 100
	}
	n := len(s.questions)
	return min(100, (s.index*100+n/2)/n)
}
