package quiz

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventType identifies a session stream event.
type EventType string

const (
	EventTick      EventType = "tick"
	EventSubmitted EventType = "submitted"
)

// Event is pushed to subscribers on every tick and once on submission.
type Event struct {
	Type     EventType
	TimeLeft int
	Result   *Result
	Trigger  Trigger
}

const subscriberBuffer = 8

// QuestionView is a question as shown to the learner.
type QuestionView struct {
	ID       int                `json:"id"`
	Prompt   string             `json:"prompt"`
	Options  [NumOptions]string `json:"options"`
	Selected Option             `json:"selected"`
}

// View is a consistent read-only snapshot of a session.
type View struct {
	ID              uuid.UUID      `json:"session_id"`
	LearnerID       int            `json:"learner_id"`
	QuizID          int            `json:"quiz_id"`
	QuizName        string         `json:"quiz_name"`
	Status          Status         `json:"status"`
	CurrentIndex    int            `json:"current_index"`
	TotalQuestions  int            `json:"total_questions"`
	Progress        float64        `json:"progress"`
	TimeLeftSeconds int            `json:"time_left_seconds"`
	Answered        int            `json:"answered"`
	Current         QuestionView   `json:"current_question"`
	Answers         map[int]Option `json:"answers"`
	StartedAt       time.Time      `json:"started_at"`
	SubmittedAt     *time.Time     `json:"submitted_at,omitempty"`
	Trigger         Trigger        `json:"trigger,omitempty"`
	Result          *Result        `json:"result,omitempty"`
}

// Session is one learner's attempt at one quiz. All methods are safe for
// concurrent use; the countdown goroutine and request handlers share it.
type Session struct {
	id             uuid.UUID
	learnerID      int
	quiz           Quiz
	questions      []Question
	threshold      int
	submitter      Submitter
	persistTimeout time.Duration
	now            func() time.Time
	log            zerolog.Logger

	mu          sync.Mutex
	status      Status
	nav         *Navigator
	ledger      *Ledger
	countdown   *Countdown
	answers     map[int]Option
	result      *Result
	trigger     Trigger
	startedAt   time.Time
	submittedAt time.Time
	stop        chan struct{}
	persisted   chan struct{}
	persistErr  error
	subs        map[int]chan Event
	nextSub     int

	resubmitMu sync.Mutex
}

func newSession(e *Engine, learnerID int, q Quiz, questions []Question) *Session {
	id := uuid.New()
	return &Session{
		id:             id,
		learnerID:      learnerID,
		quiz:           q,
		questions:      questions,
		threshold:      e.threshold,
		submitter:      e.submitter,
		persistTimeout: e.persistTimeout,
		now:            e.clock.Now,
		log: e.log.With().
			Str("session_id", id.String()).
			Int("learner_id", learnerID).
			Int("quiz_id", q.ID).
			Logger(),
		status:    StatusInProgress,
		nav:       NewNavigator(len(questions)),
		ledger:    NewLedger(questions),
		countdown: NewCountdown(q.TotalSeconds()),
		startedAt: e.clock.Now(),
		stop:      make(chan struct{}),
		persisted: make(chan struct{}),
		subs:      make(map[int]chan Event),
	}
}

func (s *Session) ID() uuid.UUID  { return s.id }
func (s *Session) LearnerID() int { return s.learnerID }
func (s *Session) Quiz() Quiz     { return s.quiz }

// run drives the countdown until the session leaves InProgress.
func (s *Session) run(t Ticker) {
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C():
			s.Tick()
		}
	}
}

// Tick consumes one second of the countdown. Reaching zero submits the
// session with TriggerTimeout. Ticks after submission are ignored.
func (s *Session) Tick() {
	s.mu.Lock()
	if s.status != StatusInProgress {
		s.mu.Unlock()
		return
	}
	expired := s.countdown.Tick()
	if !expired {
		s.broadcastLocked(Event{Type: EventTick, TimeLeft: s.countdown.Left()})
		s.mu.Unlock()
		return
	}
	s.finishLocked(TriggerTimeout)
	s.mu.Unlock()

	s.log.Info().Msg("Time is up, session auto-submitted")

	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
	defer cancel()
	s.persist(ctx)
}

// RecordAnswer stores slot for questionID, overwriting an earlier choice.
func (s *Session) RecordAnswer(questionID int, slot Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusInProgress {
		return ErrSessionSubmitted
	}
	return s.ledger.Record(questionID, slot)
}

// Next moves to the following question; it is a no-op on the last one.
func (s *Session) Next() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusInProgress {
		return false, ErrSessionSubmitted
	}
	return s.nav.Next(), nil
}

// Previous moves back; it is a no-op on the first question.
func (s *Session) Previous() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusInProgress {
		return false, ErrSessionSubmitted
	}
	return s.nav.Previous(), nil
}

func (s *Session) GoTo(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusInProgress {
		return ErrSessionSubmitted
	}
	return s.nav.GoTo(index)
}

// CurrentQuestion returns the question under the cursor, including its key.
func (s *Session) CurrentQuestion() Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questions[s.nav.Index()]
}

func (s *Session) TimeLeft() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countdown.Left()
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Progress()
}

// Result returns the scored result once the session is submitted.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return Result{}, false
	}
	return s.result.clone(), true
}

// PersistErr returns the outcome of the latest persistence attempt.
func (s *Session) PersistErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistErr
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := s.ledger.Snapshot()
	cur := s.questions[s.nav.Index()]
	v := View{
		ID:              s.id,
		LearnerID:       s.learnerID,
		QuizID:          s.quiz.ID,
		QuizName:        s.quiz.Name,
		Status:          s.status,
		CurrentIndex:    s.nav.Index(),
		TotalQuestions:  len(s.questions),
		Progress:        s.nav.Progress(),
		TimeLeftSeconds: s.countdown.Left(),
		Answered:        len(answers),
		Current: QuestionView{
			ID:       cur.ID,
			Prompt:   cur.Prompt,
			Options:  cur.Options,
			Selected: answers[cur.ID],
		},
		Answers:   answers,
		StartedAt: s.startedAt,
		Trigger:   s.trigger,
	}
	if s.result != nil {
		r := s.result.clone()
		v.Result = &r
		at := s.submittedAt
		v.SubmittedAt = &at
	}
	return v
}

// Submit ends the session and returns its Result. Only the first call (or
// the countdown reaching zero, whichever comes first) scores the ledger;
// later calls return the same Result and persistence outcome. A
// *SubmissionTransportError leaves the returned Result valid.
func (s *Session) Submit(ctx context.Context) (Result, error) {
	s.mu.Lock()
	res, first := s.finishLocked(TriggerManual)
	s.mu.Unlock()

	if first {
		s.log.Info().Int("score", res.Score).Str("status", res.Status).Msg("Session submitted")
		s.persist(ctx)
	} else {
		select {
		case <-s.persisted:
		case <-ctx.Done():
		}
	}
	return res, s.PersistErr()
}

// Resubmit retries persistence after a transport failure. It is a no-op
// when the attempt was already stored.
func (s *Session) Resubmit(ctx context.Context) error {
	s.resubmitMu.Lock()
	defer s.resubmitMu.Unlock()

	if s.Status() != StatusSubmitted {
		return ErrSessionNotSubmitted
	}
	select {
	case <-s.persisted:
	case <-ctx.Done():
		return ctx.Err()
	}
	if s.PersistErr() == nil {
		return nil
	}

	err := s.submitter.SubmitAttempt(ctx, s.attempt())
	if err != nil {
		err = &SubmissionTransportError{Err: err}
		s.log.Warn().Err(err).Msg("Attempt resubmission failed")
	}
	s.mu.Lock()
	s.persistErr = err
	s.mu.Unlock()
	return err
}

// Subscribe returns a channel of session events. The channel is closed
// after the submitted event or when cancel is called. Slow readers lose
// older ticks, never the submitted event.
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if s.status == StatusSubmitted {
		r := s.result.clone()
		ch <- Event{Type: EventSubmitted, TimeLeft: s.countdown.Left(), Result: &r, Trigger: s.trigger}
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// finishLocked performs the one-way transition. It reports false when the
// session was already submitted. Caller holds s.mu.
func (s *Session) finishLocked(trigger Trigger) (Result, bool) {
	if s.status == StatusSubmitted {
		return s.result.clone(), false
	}

	s.status = StatusSubmitted
	s.trigger = trigger
	s.submittedAt = s.now()
	close(s.stop)

	s.answers = s.ledger.Snapshot()
	r := Score(s.questions, s.answers, s.threshold, s.countdown.Total(), s.countdown.Left())
	s.result = &r

	out := r.clone()
	s.broadcastLocked(Event{Type: EventSubmitted, TimeLeft: s.countdown.Left(), Result: &out, Trigger: trigger})
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	return r.clone(), true
}

func (s *Session) persist(ctx context.Context) {
	err := s.submitter.SubmitAttempt(ctx, s.attempt())
	if err != nil {
		err = &SubmissionTransportError{Err: err}
		s.log.Warn().Err(err).Msg("Attempt submission failed")
	}

	s.mu.Lock()
	s.persistErr = err
	s.mu.Unlock()
	close(s.persisted)
}

func (s *Session) attempt() Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make(map[int]Option, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	return Attempt{
		SessionID:        s.id,
		LearnerID:        s.learnerID,
		QuizID:           s.quiz.ID,
		Answers:          answers,
		TimeSpentSeconds: s.result.TimeSpentSeconds,
		Score:            s.result.Score,
		CorrectCount:     s.result.CorrectCount,
		TotalQuestions:   s.result.TotalQuestions,
		Status:           s.result.Status,
		Trigger:          s.trigger,
		SubmittedAt:      s.submittedAt,
	}
}

func (s *Session) broadcastLocked(ev Event) {
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			// Drop the oldest queued event to make room.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

func (s *Session) submittedBefore(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status == StatusSubmitted && s.submittedAt.Before(t)
}

// saved reports whether the attempt reached the submitter. A session whose
// first persistence call is still running counts as unsaved.
func (s *Session) saved() bool {
	select {
	case <-s.persisted:
	default:
		return false
	}
	return s.PersistErr() == nil
}

func (r Result) clone() Result {
	out := r
	out.Breakdown = append([]Outcome(nil), r.Breakdown...)
	return out
}
