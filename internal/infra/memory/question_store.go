package memory

import (
	"context"
	"sort"
	"sync"

	"mcq-assessment-service/internal/domain"
)

// QuestionStore is an in-memory implementation of app.QuestionRepository.
type QuestionStore struct {
	mu        sync.RWMutex
	seq       int
	questions map[string]storedQuestion
}

type storedQuestion struct {
	q   domain.Question
	seq int
}

func NewQuestionStore() *QuestionStore {
	return &QuestionStore{questions: make(map[string]storedQuestion)}
}

func (s *QuestionStore) Create(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.questions[q.ID] = storedQuestion{q: cloneQuestion(q), seq: s.seq}
	return nil
}

func (s *QuestionStore) Get(_ context.Context, id string) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return cloneQuestion(stored.q), nil
}

func (s *QuestionStore) Update(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.questions[q.ID]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	// Counters are owned by IncrementStats.
	q.TimesAttempted = stored.q.TimesAttempted
	q.TimesCorrect = stored.q.TimesCorrect
	stored.q = cloneQuestion(q)
	s.questions[q.ID] = stored
	return nil
}

func (s *QuestionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(s.questions, id)
	return nil
}

func (s *QuestionStore) List(_ context.Context, filter domain.QuestionFilter, page domain.Page) ([]domain.Question, int, error) {
	s.mu.RLock()
	matched := make([]storedQuestion, 0, len(s.questions))
	for _, stored := range s.questions {
		if filter.Matches(stored.q) {
			matched = append(matched, stored)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if filter.ByDifficulty && a.q.Difficulty.Rank() != b.q.Difficulty.Rank() {
			return a.q.Difficulty.Rank() < b.q.Difficulty.Rank()
		}
		if !a.q.CreatedAt.Equal(b.q.CreatedAt) {
			return a.q.CreatedAt.After(b.q.CreatedAt)
		}
		return a.seq > b.seq
	})

	total := len(matched)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	out := make([]domain.Question, 0, end-start)
	for _, stored := range matched[start:end] {
		out = append(out, cloneQuestion(stored.q))
	}
	return out, total, nil
}

func (s *QuestionStore) IncrementStats(_ context.Context, id string, correct bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.questions[id]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	stored.q.TimesAttempted++
	if correct {
		stored.q.TimesCorrect++
	}
	s.questions[id] = stored
	return nil
}

// LoadAnswerKey lets the store back an answer-key cache.
func (s *QuestionStore) LoadAnswerKey(ctx context.Context, questionID string) (domain.AnswerKey, error) {
	q, err := s.Get(ctx, questionID)
	if err != nil {
		return domain.AnswerKey{}, err
	}
	return domain.KeyOf(q), nil
}

func (s *QuestionStore) lookup(id string) (domain.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.questions[id]
	return stored.q, ok
}

func cloneQuestion(q domain.Question) domain.Question {
	q.Options = append([]domain.Option(nil), q.Options...)
	q.Tags = append([]string(nil), q.Tags...)
	if q.Code != nil {
		code := *q.Code
		q.Code = &code
	}
	return q
}
