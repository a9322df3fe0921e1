package service

import (
	"context"
	"time"

	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/knowlympics/knowlympics-backend/internal/quiz"
	"github.com/knowlympics/knowlympics-backend/internal/repository"
	"github.com/rs/zerolog"
)

// CacheInvalidator drops cached quiz payloads after catalog edits.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, quizID int) error
}

// QuizService manages quizzes and their questions.
type QuizService struct {
	quizRepo     *repository.QuizRepository
	questionRepo *repository.QuestionRepository
	cache        CacheInvalidator
	now          func() time.Time
	log          zerolog.Logger
}

func NewQuizService(
	quizRepo *repository.QuizRepository,
	questionRepo *repository.QuestionRepository,
	cache CacheInvalidator,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		cache:        cache,
		now:          time.Now,
		log:          log.With().Str("component", "quiz_service").Logger(),
	}
}

// ListByChapter returns a chapter's quizzes with their availability at the
// time of the request.
func (s *QuizService) ListByChapter(ctx context.Context, chapterID int) ([]model.Quiz, error) {
	quizzes, err := s.quizRepo.ListByChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range quizzes {
		quizzes[i].Availability = quiz.AvailabilityAt(quizzes[i].Engine(), now)
	}
	return quizzes, nil
}

func (s *QuizService) Get(ctx context.Context, id int) (*model.Quiz, error) {
	q, err := s.quizRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Availability = quiz.AvailabilityAt(q.Engine(), s.now())
	return q, nil
}

func (s *QuizService) Create(ctx context.Context, req model.QuizRequest) (*model.Quiz, error) {
	q := quizFromRequest(req)
	if err := s.quizRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuizService) Update(ctx context.Context, id int, req model.QuizRequest) (*model.Quiz, error) {
	q := quizFromRequest(req)
	q.ID = id
	if err := s.quizRepo.Update(ctx, q); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return q, nil
}

func (s *QuizService) Delete(ctx context.Context, id int) error {
	if err := s.quizRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Questions returns the full question set including answer keys. Admin only.
func (s *QuizService) Questions(ctx context.Context, quizID int) ([]model.Question, error) {
	if _, err := s.quizRepo.GetByID(ctx, quizID); err != nil {
		return nil, err
	}
	return s.questionRepo.ListByQuiz(ctx, quizID)
}

func (s *QuizService) CreateQuestion(ctx context.Context, quizID int, req model.QuestionRequest) (*model.Question, error) {
	q := questionFromRequest(req)
	q.QuizID = quizID
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	s.invalidate(ctx, quizID)
	return q, nil
}

func (s *QuizService) UpdateQuestion(ctx context.Context, id int, req model.QuestionRequest) (*model.Question, error) {
	existing, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	q := questionFromRequest(req)
	q.ID = id
	q.QuizID = existing.QuizID
	if err := s.questionRepo.Update(ctx, q); err != nil {
		return nil, err
	}
	s.invalidate(ctx, existing.QuizID)
	return q, nil
}

func (s *QuizService) DeleteQuestion(ctx context.Context, id int) error {
	existing, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.questionRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, existing.QuizID)
	return nil
}

// invalidate is best effort; a stale payload expires with its TTL.
func (s *QuizService) invalidate(ctx context.Context, quizID int) {
	if err := s.cache.Invalidate(ctx, quizID); err != nil {
		s.log.Warn().Err(err).Int("quiz_id", quizID).Msg("Failed to invalidate quiz cache")
	}
}

func quizFromRequest(req model.QuizRequest) *model.Quiz {
	return &model.Quiz{
		ChapterID:       req.ChapterID,
		Name:            req.Name,
		Description:     req.Description,
		Difficulty:      quiz.Difficulty(req.Difficulty),
		DurationMinutes: req.DurationMinutes,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
	}
}

func questionFromRequest(req model.QuestionRequest) *model.Question {
	return &model.Question{
		Position:      req.Position,
		Prompt:        req.Prompt,
		Options:       req.Options,
		CorrectOption: req.CorrectOption,
	}
}
