// Package quiztest provides deterministic fakes for the quiz engine.
package quiztest

import (
	"context"
	"sync"
	"time"

	"github.com/knowlympics/knowlympics-backend/internal/quiz"
)

// Clock is a manual clock. Tickers it creates only fire on Fire.
type Clock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*Ticker
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *Clock) NewTicker(time.Duration) quiz.Ticker {
	t := &Ticker{ch: make(chan time.Time), stopped: make(chan struct{})}
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

// Ticker returns the i-th ticker created, or nil.
func (c *Clock) Ticker(i int) *Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.tickers) {
		return nil
	}
	return c.tickers[i]
}

// Ticker is a manually driven quiz.Ticker.
type Ticker struct {
	ch       chan time.Time
	stopped  chan struct{}
	stopOnce sync.Once
}

func (t *Ticker) C() <-chan time.Time { return t.ch }

func (t *Ticker) Stop() {
	t.stopOnce.Do(func() { close(t.stopped) })
}

// Fire delivers one tick and reports false if the ticker was stopped.
func (t *Ticker) Fire() bool {
	select {
	case t.ch <- time.Time{}:
		return true
	case <-t.stopped:
		return false
	}
}

// Stopped reports whether Stop was called.
func (t *Ticker) Stopped() bool {
	select {
	case <-t.stopped:
		return true
	default:
		return false
	}
}

// Submitter records attempts and fails while Err is set.
type Submitter struct {
	mu       sync.Mutex
	Err      error
	attempts []quiz.Attempt
}

func (s *Submitter) SubmitAttempt(_ context.Context, a quiz.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.attempts = append(s.attempts, a)
	return nil
}

// SetErr changes the failure returned by later calls.
func (s *Submitter) SetErr(err error) {
	s.mu.Lock()
	s.Err = err
	s.mu.Unlock()
}

func (s *Submitter) Attempts() []quiz.Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]quiz.Attempt(nil), s.attempts...)
}

// Catalog serves quizzes and questions from memory.
type Catalog struct {
	Quizzes   map[int]quiz.Quiz
	Questions map[int][]quiz.Question
}

func (c *Catalog) GetQuiz(_ context.Context, id int) (quiz.Quiz, error) {
	q, ok := c.Quizzes[id]
	if !ok {
		return quiz.Quiz{}, quiz.ErrQuizNotFound
	}
	return q, nil
}

func (c *Catalog) GetQuestions(_ context.Context, id int) ([]quiz.Question, error) {
	return c.Questions[id], nil
}

// ThreeQuestions builds a question set whose correct slots are 1, 2 and 3.
func ThreeQuestions() []quiz.Question {
	return []quiz.Question{
		{ID: 101, Prompt: "2 + 2", Options: [quiz.NumOptions]string{"4", "5", "6", "7"}, Correct: 1},
		{ID: 102, Prompt: "Capital of France", Options: [quiz.NumOptions]string{"Rome", "Paris", "Oslo", "Bern"}, Correct: 2},
		{ID: 103, Prompt: "H2O is", Options: [quiz.NumOptions]string{"Salt", "Air", "Water", "Fire"}, Correct: 3},
	}
}
