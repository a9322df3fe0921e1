package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowlympics/knowlympics-backend/internal/model"
	"github.com/knowlympics/knowlympics-backend/internal/validator"
)

func init() {
	validator.Setup()
}

const sampleSeed = `
subjects:
  - name: Science
    description: Natural sciences
    chapters:
      - name: Chemistry
        quizzes:
          - name: Elements
            difficulty: Easy
            duration_minutes: 5
            start_time: 2026-01-01T00:00:00Z
            end_time: 2026-12-31T00:00:00Z
            questions:
              - prompt: Symbol for gold?
                options: [Ag, Au, Gd, Go]
                correct: 2
              - prompt: H2O is
                options: [Salt, Air, Water, Fire]
                correct: 3
`

func TestParseSeed(t *testing.T) {
	f, err := ParseSeed(strings.NewReader(sampleSeed))
	require.NoError(t, err)

	q := f.Subjects[0].Chapters[0].Quizzes[0]
	assert.Equal(t, "Elements", q.Name)
	assert.Len(t, q.Questions, 2)
	require.NotNil(t, q.StartTime)
	assert.Equal(t, 2026, q.StartTime.Year())
}

func TestParseSeed_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":         "subjects: []\n",
		"unknown field": "subjects:\n  - name: A\n    colour: red\n",
		"bad correct": `
subjects:
  - name: A
    chapters:
      - name: B
        quizzes:
          - name: Quiz
            duration_minutes: 5
            questions:
              - prompt: p
                options: [a, b, c, d]
                correct: 5
`,
		"missing duration": `
subjects:
  - name: A
    chapters:
      - name: B
        quizzes:
          - name: Quiz
`,
		"bad difficulty": `
subjects:
  - name: A
    chapters:
      - name: B
        quizzes:
          - name: Quiz
            difficulty: Extreme
            duration_minutes: 5
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSeed(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

type memCatalog struct {
	subjects    map[string]int
	chapters    map[string]int
	quizzes     map[string]*model.Quiz
	questions   map[int][]model.Question
	invalidated []int
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		subjects:  map[string]int{},
		chapters:  map[string]int{},
		quizzes:   map[string]*model.Quiz{},
		questions: map[int][]model.Question{},
	}
}

type memSubjects struct{ *memCatalog }

func (m memSubjects) GetOrCreate(_ context.Context, name, _ string) (int, error) {
	if id, ok := m.subjects[name]; ok {
		return id, nil
	}
	m.subjects[name] = len(m.subjects) + 1
	return m.subjects[name], nil
}

type memChapters struct{ *memCatalog }

func (m memChapters) GetOrCreate(_ context.Context, _ int, name, _ string) (int, error) {
	if id, ok := m.chapters[name]; ok {
		return id, nil
	}
	m.chapters[name] = len(m.chapters) + 1
	return m.chapters[name], nil
}

func (m *memCatalog) Upsert(_ context.Context, q *model.Quiz) error {
	if existing, ok := m.quizzes[q.Name]; ok {
		q.ID = existing.ID
	} else {
		q.ID = len(m.quizzes) + 1
	}
	m.quizzes[q.Name] = q
	return nil
}

func (m *memCatalog) ReplaceAll(_ context.Context, quizID int, qs []model.Question) error {
	m.questions[quizID] = qs
	return nil
}

func (m *memCatalog) Invalidate(_ context.Context, quizID int) error {
	m.invalidated = append(m.invalidated, quizID)
	return nil
}

func TestSeeder_IsRepeatable(t *testing.T) {
	f, err := ParseSeed(strings.NewReader(sampleSeed))
	require.NoError(t, err)

	mem := newMemCatalog()
	s := &Seeder{
		Subjects:  memSubjects{mem},
		Chapters:  memChapters{mem},
		Quizzes:   mem,
		Questions: mem,
		Cache:     mem,
	}

	st, err := s.Seed(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, SeedStats{Subjects: 1, Chapters: 1, Quizzes: 1, Questions: 2}, st)

	_, err = s.Seed(context.Background(), f)
	require.NoError(t, err)

	assert.Len(t, mem.quizzes, 1)
	qs := mem.questions[1]
	require.Len(t, qs, 2)
	assert.Equal(t, 1, qs[1].Position)
	assert.Equal(t, 3, qs[1].CorrectOption)
	assert.Equal(t, []int{1, 1}, mem.invalidated)
}
