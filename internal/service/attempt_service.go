package service

import (
	"context"

	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/knowlympics/knowlympics-backend/internal/repository"
)

// AttemptService serves a learner's stored attempts.
type AttemptService struct {
	attemptRepo *repository.AttemptRepository
}

func NewAttemptService(attemptRepo *repository.AttemptRepository) *AttemptService {
	return &AttemptService{attemptRepo: attemptRepo}
}

// History returns one page of attempts, newest first, with the learner's
// overall average and pass rate.
func (s *AttemptService) History(ctx context.Context, f model.AttemptFilter) (*model.AttemptHistory, error) {
	attempts, total, err := s.attemptRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	_, avg, passRate, err := s.attemptRepo.Stats(ctx, f.UserID)
	if err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []model.Attempt{}
	}
	return &model.AttemptHistory{
		Attempts:     attempts,
		AverageScore: avg,
		PassRate:     passRate,
		Total:        total,
	}, nil
}
