package memory

import (
	"context"
	"strings"
	"sync"

	"mcq-assessment-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
// It reads question metadata from a QuestionStore for progress joins.
type AttemptStore struct {
	questions *QuestionStore

	mu       sync.RWMutex
	attempts []domain.Attempt
	counters map[attemptKey]int
}

type attemptKey struct {
	userID     string
	questionID string
}

func NewAttemptStore(questions *QuestionStore) *AttemptStore {
	return &AttemptStore{
		questions: questions,
		counters:  make(map[attemptKey]int),
	}
}

func (s *AttemptStore) NextNumber(_ context.Context, userID, questionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := attemptKey{userID: userID, questionID: questionID}
	s.counters[k]++
	return s.counters[k], nil
}

func (s *AttemptStore) Create(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, attempt)
	return nil
}

// Recent walks attempts newest first; insertion order breaks timestamp ties.
func (s *AttemptStore) Recent(_ context.Context, userID string, filter domain.ProgressFilter, limit int) ([]domain.AttemptView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AttemptView, 0)
	for i := len(s.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		a := s.attempts[i]
		if a.UserID != userID {
			continue
		}
		q, ok := s.questions.lookup(a.QuestionID)
		if !ok {
			continue
		}
		if filter.Category != "" && q.Category != filter.Category {
			continue
		}
		if filter.Skill != "" && !strings.EqualFold(q.Skill, filter.Skill) {
			continue
		}
		out = append(out, domain.AttemptView{Attempt: a, Category: q.Category, Skill: q.Skill, Difficulty: q.Difficulty})
	}
	return out, nil
}

func (s *AttemptStore) DeleteByQuestion(_ context.Context, questionID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.attempts[:0]
	removed := 0
	for _, a := range s.attempts {
		if a.QuestionID == questionID {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	s.attempts = kept
	for k := range s.counters {
		if k.questionID == questionID {
			delete(s.counters, k)
		}
	}
	return removed, nil
}

// Count reports how many attempts are stored.
func (s *AttemptStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.attempts)
}
