package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/knowlympics/knowlympics-backend/internal/quiz"
	"github.com/rs/zerolog"
)

// ErrNotSessionOwner is returned when a learner touches someone else's session.
var ErrNotSessionOwner = errors.New("session belongs to another learner")

// QuizSessionService is the HTTP and WebSocket facing side of the engine.
// It enforces session ownership.
type QuizSessionService struct {
	engine *quiz.Engine
	log    zerolog.Logger
}

func NewQuizSessionService(engine *quiz.Engine, log zerolog.Logger) *QuizSessionService {
	return &QuizSessionService{
		engine: engine,
		log:    log.With().Str("component", "quiz_session_service").Logger(),
	}
}

// Start opens or resumes the learner's session on a quiz.
func (s *QuizSessionService) Start(ctx context.Context, learnerID, quizID int) (*quiz.Session, error) {
	sess, err := s.engine.StartSession(ctx, learnerID, quizID)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Int("learner_id", learnerID).Str("session_id", sess.ID().String()).Msg("Session opened")
	return sess, nil
}

// Get returns the session if it belongs to the learner.
func (s *QuizSessionService) Get(learnerID int, sessionID uuid.UUID) (*quiz.Session, error) {
	sess, err := s.engine.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.LearnerID() != learnerID {
		return nil, ErrNotSessionOwner
	}
	return sess, nil
}

// Answer records a selection and returns the updated view.
func (s *QuizSessionService) Answer(learnerID int, sessionID uuid.UUID, questionID int, slot quiz.Option) (quiz.View, error) {
	sess, err := s.Get(learnerID, sessionID)
	if err != nil {
		return quiz.View{}, err
	}
	if err := sess.RecordAnswer(questionID, slot); err != nil {
		return quiz.View{}, err
	}
	return sess.View(), nil
}

// NavAction names a navigation request.
type NavAction string

const (
	NavNext     NavAction = "next"
	NavPrevious NavAction = "previous"
	NavGoTo     NavAction = "goto"
)

// Navigate moves the cursor. index is only used by NavGoTo.
func (s *QuizSessionService) Navigate(learnerID int, sessionID uuid.UUID, action NavAction, index int) (quiz.View, error) {
	sess, err := s.Get(learnerID, sessionID)
	if err != nil {
		return quiz.View{}, err
	}

	switch action {
	case NavNext:
		_, err = sess.Next()
	case NavPrevious:
		_, err = sess.Previous()
	default:
		err = sess.GoTo(index)
	}
	if err != nil {
		return quiz.View{}, err
	}
	return sess.View(), nil
}

// Submit ends the session. A *quiz.SubmissionTransportError comes back with
// a valid Result.
func (s *QuizSessionService) Submit(ctx context.Context, learnerID int, sessionID uuid.UUID) (quiz.Result, error) {
	sess, err := s.Get(learnerID, sessionID)
	if err != nil {
		return quiz.Result{}, err
	}
	return sess.Submit(ctx)
}

// Resubmit retries a failed persistence.
func (s *QuizSessionService) Resubmit(ctx context.Context, learnerID int, sessionID uuid.UUID) error {
	if _, err := s.Get(learnerID, sessionID); err != nil {
		return err
	}
	return s.engine.Resubmit(ctx, sessionID)
}

// ActiveLearners counts distinct learners with a session in progress.
func (s *QuizSessionService) ActiveLearners(context.Context) (int64, error) {
	return int64(s.engine.ActiveLearnerCount()), nil
}

// Sweep forgets sessions submitted longer than retention ago.
func (s *QuizSessionService) Sweep(retention time.Duration) int {
	return s.engine.Sweep(retention)
}
