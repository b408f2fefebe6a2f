package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"mcq-assessment-service/internal/domain"
)

func TestAttemptStoreNumbersAreUniqueUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore(NewQuestionStore())

	const n = 64
	numbers := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := store.NextNumber(ctx, "u1", "q1")
			if err != nil {
				t.Errorf("next number: %v", err)
				return
			}
			numbers <- num
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int]bool)
	for num := range numbers {
		if seen[num] {
			t.Fatalf("duplicate attempt number %d", num)
		}
		seen[num] = true
	}
	for i := 1; i <= n; i++ {
		if !seen[i] {
			t.Fatalf("missing attempt number %d", i)
		}
	}
}

func TestAttemptStoreRecentJoinsAndFilters(t *testing.T) {
	ctx := context.Background()
	questions := NewQuestionStore()
	skill := sampleQuestion("q-skill", time.Now())
	interview := sampleQuestion("q-interview", time.Now())
	interview.Category = domain.CategoryInterview
	interview.Skill = "go"
	_ = questions.Create(ctx, skill)
	_ = questions.Create(ctx, interview)

	store := NewAttemptStore(questions)
	for i, qid := range []string{"q-skill", "q-interview", "q-skill"} {
		_ = store.Create(ctx, domain.Attempt{ID: string(rune('a' + i)), UserID: "u1", QuestionID: qid, IsCorrect: i == 0})
	}
	_ = store.Create(ctx, domain.Attempt{ID: "other", UserID: "u2", QuestionID: "q-skill"})

	views, _ := store.Recent(ctx, "u1", domain.ProgressFilter{}, 100)
	if len(views) != 3 || views[0].ID != "c" || views[2].ID != "a" {
		t.Fatalf("expected newest first for u1, got %+v", views)
	}
	if views[1].Category != domain.CategoryInterview {
		t.Fatalf("expected joined category, got %q", views[1].Category)
	}

	views, _ = store.Recent(ctx, "u1", domain.ProgressFilter{Category: domain.CategoryInterview}, 100)
	if len(views) != 1 || views[0].QuestionID != "q-interview" {
		t.Fatalf("category filter not applied: %+v", views)
	}
	views, _ = store.Recent(ctx, "u1", domain.ProgressFilter{Skill: "GO"}, 100)
	if len(views) != 1 {
		t.Fatalf("skill filter not applied: %+v", views)
	}
	views, _ = store.Recent(ctx, "u1", domain.ProgressFilter{}, 2)
	if len(views) != 2 {
		t.Fatalf("limit not applied: %d", len(views))
	}
}

func TestAttemptStoreDeleteByQuestion(t *testing.T) {
	ctx := context.Background()
	store := NewAttemptStore(NewQuestionStore())
	_, _ = store.NextNumber(ctx, "u1", "q1")
	_ = store.Create(ctx, domain.Attempt{ID: "a", UserID: "u1", QuestionID: "q1"})
	_ = store.Create(ctx, domain.Attempt{ID: "b", UserID: "u1", QuestionID: "q1"})
	_ = store.Create(ctx, domain.Attempt{ID: "c", UserID: "u1", QuestionID: "q2"})

	removed, err := store.DeleteByQuestion(ctx, "q1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 2 || store.Count() != 1 {
		t.Fatalf("expected 2 removed and 1 left, got %d and %d", removed, store.Count())
	}
	if n, _ := store.NextNumber(ctx, "u1", "q1"); n != 1 {
		t.Fatalf("expected numbering reset after delete, got %d", n)
	}
}
