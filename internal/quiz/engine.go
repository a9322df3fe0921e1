// Package quiz is the quiz-taking session engine: a timed run over a fixed
// question set with answer capture, navigation, forced submission on
// timeout, and exactly-once scoring.
package quiz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// QuizProvider supplies quiz metadata.
type QuizProvider interface {
	GetQuiz(ctx context.Context, quizID int) (Quiz, error)
}

// QuestionProvider supplies the ordered question set of a quiz.
type QuestionProvider interface {
	GetQuestions(ctx context.Context, quizID int) ([]Question, error)
}

// Submitter persists a scored attempt.
type Submitter interface {
	SubmitAttempt(ctx context.Context, a Attempt) error
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) EngineOption {
	return func(e *Engine) { e.clock = c }
}

// WithPassThreshold sets the minimum score labelled Passed.
func WithPassThreshold(t int) EngineOption {
	return func(e *Engine) { e.threshold = t }
}

// WithTickInterval sets how often the countdown consumes one second.
func WithTickInterval(d time.Duration) EngineOption {
	return func(e *Engine) { e.tickInterval = d }
}

// WithPersistTimeout bounds the submission call made after auto-submit.
func WithPersistTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.persistTimeout = d }
}

func WithLogger(log zerolog.Logger) EngineOption {
	return func(e *Engine) { e.log = log.With().Str("component", "quiz_engine").Logger() }
}

type activeKey struct {
	learnerID int
	quizID    int
}

// Engine creates sessions and keeps them addressable by id.
type Engine struct {
	quizzes        QuizProvider
	questions      QuestionProvider
	submitter      Submitter
	clock          Clock
	threshold      int
	tickInterval   time.Duration
	persistTimeout time.Duration
	log            zerolog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	active   map[activeKey]*Session
}

func NewEngine(quizzes QuizProvider, questions QuestionProvider, submitter Submitter, opts ...EngineOption) *Engine {
	e := &Engine{
		quizzes:        quizzes,
		questions:      questions,
		submitter:      submitter,
		clock:          SystemClock{},
		threshold:      DefaultPassThreshold,
		tickInterval:   time.Second,
		persistTimeout: 10 * time.Second,
		log:            zerolog.Nop(),
		sessions:       make(map[uuid.UUID]*Session),
		active:         make(map[activeKey]*Session),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PassThreshold returns the configured pass mark.
func (e *Engine) PassThreshold() int { return e.threshold }

// StartSession opens a session for learnerID on quizID. If the learner
// already has one in progress for the quiz it is returned unchanged.
func (e *Engine) StartSession(ctx context.Context, learnerID, quizID int) (*Session, error) {
	key := activeKey{learnerID: learnerID, quizID: quizID}
	if s := e.inProgress(key); s != nil {
		return s, nil
	}

	q, err := e.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if err := CheckAvailability(q, e.clock.Now()); err != nil {
		return nil, err
	}

	questions, err := e.questions.GetQuestions(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrEmptyQuestionSet
	}

	s := newSession(e, learnerID, q, append([]Question(nil), questions...))

	e.mu.Lock()
	if existing, ok := e.active[key]; ok && existing.Status() == StatusInProgress {
		e.mu.Unlock()
		return existing, nil
	}
	e.sessions[s.id] = s
	e.active[key] = s
	e.mu.Unlock()

	go s.run(e.clock.NewTicker(e.tickInterval))

	s.log.Info().
		Int("questions", len(questions)).
		Int("time_left", q.TotalSeconds()).
		Msg("Session started")

	return s, nil
}

// Get looks up a session by id.
func (e *Engine) Get(id uuid.UUID) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Resubmit retries persistence of a submitted session.
func (e *Engine) Resubmit(ctx context.Context, id uuid.UUID) error {
	s, err := e.Get(id)
	if err != nil {
		return err
	}
	return s.Resubmit(ctx)
}

// InProgressCount returns the number of sessions still running.
func (e *Engine) InProgressCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, s := range e.active {
		if s.Status() == StatusInProgress {
			n++
		}
	}
	return n
}

// ActiveLearnerCount returns how many distinct learners have a session
// still running.
func (e *Engine) ActiveLearnerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	learners := make(map[int]struct{})
	for key, s := range e.active {
		if s.Status() == StatusInProgress {
			learners[key.learnerID] = struct{}{}
		}
	}
	return len(learners)
}

// Sweep forgets sessions submitted more than retention ago and returns how
// many were removed. Sessions whose attempt was never saved are kept so
// Resubmit can still reach them.
func (e *Engine) Sweep(retention time.Duration) int {
	cutoff := e.clock.Now().Add(-retention)

	e.mu.Lock()
	defer e.mu.Unlock()

	removed := 0
	for id, s := range e.sessions {
		if !s.submittedBefore(cutoff) {
			continue
		}
		if !s.saved() {
			s.log.Error().Err(s.PersistErr()).Msg("Keeping expired session with unsaved attempt")
			continue
		}
		delete(e.sessions, id)
		key := activeKey{learnerID: s.learnerID, quizID: s.quiz.ID}
		if e.active[key] == s {
			delete(e.active, key)
		}
		removed++
	}
	return removed
}

func (e *Engine) inProgress(key activeKey) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok := e.active[key]; ok && s.Status() == StatusInProgress {
		return s
	}
	return nil
}
