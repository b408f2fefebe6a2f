package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mcq-assessment-service/internal/domain"
)

func TestQuestionStoreListOrdersNewestFirstAndPaginates(t *testing.T) {
	ctx := context.Background()
	store := NewQuestionStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		_ = store.Create(ctx, sampleQuestion(id, base.Add(time.Duration(i)*time.Minute)))
	}
	hidden := sampleQuestion("hidden", base.Add(time.Hour))
	hidden.IsActive = false
	_ = store.Create(ctx, hidden)

	qs, total, err := store.List(ctx, domain.QuestionFilter{}, domain.NewPage(1, 2))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 active questions, got %d", total)
	}
	if len(qs) != 2 || qs[0].ID != "c" || qs[1].ID != "b" {
		t.Fatalf("unexpected first page %+v", ids(qs))
	}

	qs, _, _ = store.List(ctx, domain.QuestionFilter{}, domain.NewPage(2, 2))
	if len(qs) != 1 || qs[0].ID != "a" {
		t.Fatalf("unexpected second page %+v", ids(qs))
	}

	_, total, _ = store.List(ctx, domain.QuestionFilter{IncludeInactive: true}, domain.NewPage(1, 10))
	if total != 4 {
		t.Fatalf("expected inactive included, got %d", total)
	}
}

func TestQuestionStoreListByDifficulty(t *testing.T) {
	ctx := context.Background()
	store := NewQuestionStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, d := range []domain.Difficulty{domain.DifficultyHard, domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyEasy} {
		q := sampleQuestion(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		q.Difficulty = d
		_ = store.Create(ctx, q)
	}
	qs, _, _ := store.List(ctx, domain.QuestionFilter{ByDifficulty: true}, domain.NewPage(1, 10))
	got := ids(qs)
	want := []string{"d", "b", "c", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestQuestionStoreIncrementStatsConcurrently(t *testing.T) {
	ctx := context.Background()
	store := NewQuestionStore()
	_ = store.Create(ctx, sampleQuestion("q1", time.Now()))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(correct bool) {
			defer wg.Done()
			_ = store.IncrementStats(ctx, "q1", correct)
		}(i%2 == 0)
	}
	wg.Wait()

	q, _ := store.Get(ctx, "q1")
	if q.TimesAttempted != 50 || q.TimesCorrect != 25 {
		t.Fatalf("expected 50/25, got %d/%d", q.TimesAttempted, q.TimesCorrect)
	}
}

func TestQuestionStoreUpdateKeepsCounters(t *testing.T) {
	ctx := context.Background()
	store := NewQuestionStore()
	_ = store.Create(ctx, sampleQuestion("q1", time.Now()))
	_ = store.IncrementStats(ctx, "q1", true)

	q, _ := store.Get(ctx, "q1")
	q.Text = "changed"
	q.TimesAttempted = 0
	if err := store.Update(ctx, q); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := store.Get(ctx, "q1")
	if got.Text != "changed" || got.TimesAttempted != 1 {
		t.Fatalf("unexpected %+v", got)
	}
	if err := store.Update(ctx, domain.Question{ID: "missing"}); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func ids(qs []domain.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}
