package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/knowlympics/knowlympics-backend/internal/quiz"
	"github.com/knowlympics/knowlympics-backend/internal/repository"
	"github.com/knowlympics/knowlympics-backend/internal/service"
	"github.com/knowlympics/knowlympics-backend/internal/validator"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout accepted by `knowctl seed`.
type SeedFile struct {
	Subjects []SeedSubject `yaml:"subjects"`
}

type SeedSubject struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Chapters    []SeedChapter `yaml:"chapters"`
}

type SeedChapter struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Quizzes     []SeedQuiz `yaml:"quizzes"`
}

type SeedQuiz struct {
	Name            string         `yaml:"name"`
	Description     string         `yaml:"description"`
	Difficulty      string         `yaml:"difficulty"`
	DurationMinutes int            `yaml:"duration_minutes"`
	StartTime       *time.Time     `yaml:"start_time"`
	EndTime         *time.Time     `yaml:"end_time"`
	Questions       []SeedQuestion `yaml:"questions"`
}

type SeedQuestion struct {
	Prompt  string    `yaml:"prompt"`
	Options [4]string `yaml:"options"`
	Correct int       `yaml:"correct"`
}

// ParseSeed decodes and validates a seed file. Quizzes and questions are
// checked with the same rules as the admin API.
func ParseSeed(r io.Reader) (*SeedFile, error) {
	var f SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if len(f.Subjects) == 0 {
		return nil, fmt.Errorf("seed file has no subjects")
	}

	for _, s := range f.Subjects {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("subject without a name")
		}
		for _, ch := range s.Chapters {
			if strings.TrimSpace(ch.Name) == "" {
				return nil, fmt.Errorf("subject %q: chapter without a name", s.Name)
			}
			for _, q := range ch.Quizzes {
				// Chapter ids are assigned while seeding; 1 satisfies the rule.
				if fields := validator.Struct(q.request(1)); fields != nil {
					return nil, fmt.Errorf("quiz %q: %s", q.Name, describe(fields))
				}
				for i, qs := range q.Questions {
					if fields := validator.Struct(qs.request(i)); fields != nil {
						return nil, fmt.Errorf("quiz %q question %d: %s", q.Name, i+1, describe(fields))
					}
				}
			}
		}
	}
	return &f, nil
}

func (q SeedQuiz) request(chapterID int) model.QuizRequest {
	return model.QuizRequest{
		ChapterID:       chapterID,
		Name:            q.Name,
		Description:     q.Description,
		Difficulty:      q.Difficulty,
		DurationMinutes: q.DurationMinutes,
		StartTime:       q.StartTime,
		EndTime:         q.EndTime,
	}
}

func (q SeedQuestion) request(position int) model.QuestionRequest {
	return model.QuestionRequest{
		Position:      position,
		Prompt:        q.Prompt,
		Options:       q.Options,
		CorrectOption: q.Correct,
	}
}

func describe(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for k, v := range fields {
		parts = append(parts, k+": "+v)
	}
	return strings.Join(parts, "; ")
}

type subjectSeeder interface {
	GetOrCreate(ctx context.Context, name, description string) (int, error)
}

type chapterSeeder interface {
	GetOrCreate(ctx context.Context, subjectID int, name, description string) (int, error)
}

type quizSeeder interface {
	Upsert(ctx context.Context, q *model.Quiz) error
}

type questionSeeder interface {
	ReplaceAll(ctx context.Context, quizID int, questions []model.Question) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, quizID int) error
}

// Seeder writes a seed file into the catalog. Reruns update quizzes by name
// and replace their question sets.
type Seeder struct {
	Subjects  subjectSeeder
	Chapters  chapterSeeder
	Quizzes   quizSeeder
	Questions questionSeeder
	Cache     cacheInvalidator
}

// SeedStats counts what a run wrote.
type SeedStats struct {
	Subjects  int
	Chapters  int
	Quizzes   int
	Questions int
}

func (s *Seeder) Seed(ctx context.Context, f *SeedFile) (SeedStats, error) {
	var st SeedStats
	for _, subj := range f.Subjects {
		subjectID, err := s.Subjects.GetOrCreate(ctx, subj.Name, subj.Description)
		if err != nil {
			return st, fmt.Errorf("subject %q: %w", subj.Name, err)
		}
		st.Subjects++

		for _, ch := range subj.Chapters {
			chapterID, err := s.Chapters.GetOrCreate(ctx, subjectID, ch.Name, ch.Description)
			if err != nil {
				return st, fmt.Errorf("chapter %q: %w", ch.Name, err)
			}
			st.Chapters++

			for _, sq := range ch.Quizzes {
				q := &model.Quiz{
					ChapterID:       chapterID,
					Name:            sq.Name,
					Description:     sq.Description,
					Difficulty:      quiz.Difficulty(sq.Difficulty),
					DurationMinutes: sq.DurationMinutes,
					StartTime:       sq.StartTime,
					EndTime:         sq.EndTime,
				}
				if err := s.Quizzes.Upsert(ctx, q); err != nil {
					return st, fmt.Errorf("quiz %q: %w", sq.Name, err)
				}

				questions := make([]model.Question, 0, len(sq.Questions))
				for i, qs := range sq.Questions {
					questions = append(questions, model.Question{
						QuizID:        q.ID,
						Position:      i,
						Prompt:        qs.Prompt,
						Options:       qs.Options,
						CorrectOption: qs.Correct,
					})
				}
				if err := s.Questions.ReplaceAll(ctx, q.ID, questions); err != nil {
					return st, fmt.Errorf("questions of %q: %w", sq.Name, err)
				}
				if s.Cache != nil {
					_ = s.Cache.Invalidate(ctx, q.ID)
				}
				st.Quizzes++
				st.Questions += len(questions)
			}
		}
	}
	return st, nil
}

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load subjects, chapters, quizzes and questions from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			validator.Setup()

			fh, err := os.Open(file)
			if err != nil {
				return err
			}
			defer fh.Close()

			seed, err := ParseSeed(fh)
			if err != nil {
				return err
			}

			e, err := connect(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer e.Close()

			quizzes := repository.NewQuizRepository(e.pool)
			questions := repository.NewQuestionRepository(e.pool)
			s := &Seeder{
				Subjects:  repository.NewSubjectRepository(e.pool),
				Chapters:  repository.NewChapterRepository(e.pool),
				Quizzes:   quizzes,
				Questions: questions,
				Cache:     service.NewQuizCatalog(quizzes, questions, e.rdb, e.cfg.QuizCacheTTL, e.log),
			}

			st, err := s.Seed(cmd.Context(), seed)
			if err != nil {
				return err
			}
			e.log.Info().
				Int("subjects", st.Subjects).
				Int("chapters", st.Chapters).
				Int("quizzes", st.Quizzes).
				Int("questions", st.Questions).
				Msg("Seed complete")
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "catalog.yaml", "seed file")
	return cmd
}
