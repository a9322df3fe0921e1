package service

import (
	"context"

	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/knowlympics/knowlympics-backend/internal/repository"
	"github.com/rs/zerolog"
)

type SubjectService struct {
	subjectRepo *repository.SubjectRepository
	chapterRepo *repository.ChapterRepository
	log         zerolog.Logger
}

func NewSubjectService(subjectRepo *repository.SubjectRepository, chapterRepo *repository.ChapterRepository, log zerolog.Logger) *SubjectService {
	return &SubjectService{
		subjectRepo: subjectRepo,
		chapterRepo: chapterRepo,
		log:         log.With().Str("component", "subject_service").Logger(),
	}
}

func (s *SubjectService) GetAll(ctx context.Context) ([]model.Subject, error) {
	return s.subjectRepo.GetAll(ctx)
}

func (s *SubjectService) Create(ctx context.Context, req model.SubjectRequest) (*model.Subject, error) {
	sub := &model.Subject{Name: req.Name, Description: req.Description}
	if err := s.subjectRepo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubjectService) Update(ctx context.Context, id int, req model.SubjectRequest) (*model.Subject, error) {
	sub := &model.Subject{ID: id, Name: req.Name, Description: req.Description}
	if err := s.subjectRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubjectService) Delete(ctx context.Context, id int) error {
	if err := s.subjectRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int("subject_id", id).Msg("Subject deleted")
	return nil
}

func (s *SubjectService) Chapters(ctx context.Context, subjectID int) ([]model.Chapter, error) {
	return s.chapterRepo.ListBySubject(ctx, subjectID)
}

func (s *SubjectService) CreateChapter(ctx context.Context, req model.ChapterRequest) (*model.Chapter, error) {
	c := &model.Chapter{SubjectID: req.SubjectID, Name: req.Name, Description: req.Description}
	if err := s.chapterRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *SubjectService) UpdateChapter(ctx context.Context, id int, req model.ChapterRequest) (*model.Chapter, error) {
	c := &model.Chapter{ID: id, SubjectID: req.SubjectID, Name: req.Name, Description: req.Description}
	if err := s.chapterRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *SubjectService) DeleteChapter(ctx context.Context, id int) error {
	return s.chapterRepo.Delete(ctx, id)
}
