package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/knowlympics/knowlympics-backend/internal/config"
	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/knowlympics/knowlympics-backend/internal/quiz"
	"github.com/knowlympics/knowlympics-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// QuizStore loads quiz rows.
type QuizStore interface {
	GetByID(ctx context.Context, id int) (*model.Quiz, error)
}

// QuestionStore loads the ordered questions of a quiz.
type QuestionStore interface {
	ListByQuiz(ctx context.Context, quizID int) ([]model.Question, error)
}

// quizPayload is the cached form of a quiz and its full question set.
type quizPayload struct {
	Quiz      model.Quiz       `json:"quiz"`
	Questions []model.Question `json:"questions"`
}

// QuizCatalog serves quiz metadata and question sets to the session engine.
// Payloads are cached in Redis with a jittered TTL; concurrent misses for
// the same quiz share one database load.
type QuizCatalog struct {
	quizzes   QuizStore
	questions QuestionStore
	rdb       *redis.Client
	ttl       time.Duration
	sf        singleflight.Group
	log       zerolog.Logger
}

func NewQuizCatalog(quizzes QuizStore, questions QuestionStore, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *QuizCatalog {
	return &QuizCatalog{
		quizzes:   quizzes,
		questions: questions,
		rdb:       rdb,
		ttl:       ttl,
		log:       log.With().Str("component", "quiz_catalog").Logger(),
	}
}

// GetQuiz implements quiz.QuizProvider.
func (c *QuizCatalog) GetQuiz(ctx context.Context, quizID int) (quiz.Quiz, error) {
	p, err := c.load(ctx, quizID)
	if err != nil {
		return quiz.Quiz{}, err
	}
	return p.Quiz.Engine(), nil
}

// GetQuestions implements quiz.QuestionProvider.
func (c *QuizCatalog) GetQuestions(ctx context.Context, quizID int) ([]quiz.Question, error) {
	p, err := c.load(ctx, quizID)
	if err != nil {
		return nil, err
	}
	out := make([]quiz.Question, 0, len(p.Questions))
	for _, q := range p.Questions {
		out = append(out, q.Engine())
	}
	return out, nil
}

// Invalidate drops the cached payload after an admin edit.
func (c *QuizCatalog) Invalidate(ctx context.Context, quizID int) error {
	return c.rdb.Del(ctx, config.CacheKey.QuizPayloadKey(quizID)).Err()
}

func (c *QuizCatalog) load(ctx context.Context, quizID int) (*quizPayload, error) {
	key := config.CacheKey.QuizPayloadKey(quizID)

	if p, ok := c.fromCache(ctx, key); ok {
		return p, nil
	}

	v, err, _ := c.sf.Do(strconv.Itoa(quizID), func() (interface{}, error) {
		// Another caller may have filled the cache while we waited.
		if p, ok := c.fromCache(ctx, key); ok {
			return p, nil
		}

		q, err := c.quizzes.GetByID(ctx, quizID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, quiz.ErrQuizNotFound
			}
			return nil, fmt.Errorf("load quiz: %w", err)
		}
		questions, err := c.questions.ListByQuiz(ctx, quizID)
		if err != nil {
			return nil, fmt.Errorf("load questions: %w", err)
		}

		p := &quizPayload{Quiz: *q, Questions: questions}
		raw, err := json.Marshal(p)
		if err == nil {
			err = c.rdb.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		if err != nil {
			c.log.Warn().Err(err).Int("quiz_id", quizID).Msg("Quiz cache fill failed")
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*quizPayload), nil
}

func (c *QuizCatalog) fromCache(ctx context.Context, key string) (*quizPayload, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("Quiz cache read failed")
		}
		return nil, false
	}
	var p quizPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *QuizCatalog) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	return c.ttl + time.Duration(rand.Int64N(int64(c.ttl)/10+1))
}
