package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mcq-assessment-service/internal/app"
	"mcq-assessment-service/internal/domain"
)

func TestCreateAppliesDefaultsAndSyncsFlags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	q, err := f.admin.Create(ctx, "admin-1", domain.Question{
		Text:          "Pick C",
		Options:       []domain.Option{{Text: "A", IsCorrect: true}, {Text: "B"}, {Text: "C"}},
		CorrectAnswer: 2,
		CourseID:      "  ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.ID == "" || q.CreatedBy != "admin-1" || !q.CreatedAt.Equal(f.clock) {
		t.Fatalf("missing identity fields %+v", q)
	}
	if q.Category != domain.CategorySkill || q.Difficulty != domain.DifficultyMedium || q.Points != 10 || q.TimeLimit != 60 {
		t.Fatalf("defaults not applied %+v", q)
	}
	if q.Options[0].IsCorrect || !q.Options[2].IsCorrect {
		t.Fatalf("flags must follow correctAnswer, got %+v", q.Options)
	}
	if q.CourseID != "" {
		t.Fatalf("blank course id should be cleared, got %q", q.CourseID)
	}
}

func TestCreateRejectsInvalidQuestion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cases := map[string]domain.Question{
		"answer out of range": {Text: "x", Options: []domain.Option{{Text: "a"}, {Text: "b"}}, CorrectAnswer: 5},
		"unknown category":    {Text: "x", Options: []domain.Option{{Text: "a"}, {Text: "b"}}, Category: "trivia"},
		"unknown difficulty":  {Text: "x", Options: []domain.Option{{Text: "a"}, {Text: "b"}}, Difficulty: "extreme"},
		"negative points":     {Text: "x", Options: []domain.Option{{Text: "a"}, {Text: "b"}}, Points: -1},
	}
	for name, q := range cases {
		if _, err := f.admin.Create(ctx, "admin", q); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestUpdateKeepsFlagsInSync(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, "q1", 1, func(q *domain.Question) { q.TechnologyID = "go" })

	two := 2
	blank := ""
	updated, err := f.admin.Update(ctx, "q1", app.QuestionPatch{
		Options:       []domain.Option{{Text: "a", IsCorrect: true}, {Text: "b"}, {Text: "c"}},
		CorrectAnswer: &two,
		TechnologyID:  &blank,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	for i, o := range updated.Options {
		if o.IsCorrect != (i == 2) {
			t.Fatalf("option %d flag %v does not match correctAnswer 2", i, o.IsCorrect)
		}
	}
	if updated.TechnologyID != "" {
		t.Fatalf("blank technology should clear the reference, got %q", updated.TechnologyID)
	}

	zero := 0
	updated, err = f.admin.Update(ctx, "q1", app.QuestionPatch{CorrectAnswer: &zero})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Options[0].IsCorrect || updated.Options[2].IsCorrect {
		t.Fatalf("changing only correctAnswer must resync flags, got %+v", updated.Options)
	}

	res, err := f.svc.Submit(ctx, "u1", app.Submission{QuestionID: "q1", SelectedOption: 0})
	if err != nil || !res.IsCorrect {
		t.Fatalf("scoring must see the new answer, got %+v err=%v", res, err)
	}
}

func TestUpdateKeepsCounters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, "q1", 1)
	_, _ = f.svc.Submit(ctx, "u1", app.Submission{QuestionID: "q1", SelectedOption: 1})

	text := "reworded"
	if _, err := f.admin.Update(ctx, "q1", app.QuestionPatch{Text: &text}); err != nil {
		t.Fatalf("update: %v", err)
	}
	q, _ := f.questions.Get(ctx, "q1")
	if q.Text != "reworded" || q.TimesAttempted != 1 || q.TimesCorrect != 1 {
		t.Fatalf("unexpected question after update %+v", q)
	}
}

func TestUpdateMissingAndInvalid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, "q1", 1)

	if _, err := f.admin.Update(ctx, "nope", app.QuestionPatch{}); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	nine := 9
	if _, err := f.admin.Update(ctx, "q1", app.QuestionPatch{CorrectAnswer: &nine}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateAndDeleteReportFailedInvalidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, "q1", 1)
	admin := app.NewQuestionServiceWithClock(f.questions, f.attempts, brokenKeys{f.keys}, func() time.Time { return f.clock })

	zero := 0
	if _, err := admin.Update(ctx, "q1", app.QuestionPatch{CorrectAnswer: &zero}); !errors.Is(err, errCacheDown) {
		t.Fatalf("update must report the failed invalidation, got %v", err)
	}
	if _, err := admin.Delete(ctx, "q1"); !errors.Is(err, errCacheDown) {
		t.Fatalf("delete must report the failed invalidation, got %v", err)
	}
}

var errCacheDown = errors.New("cache unavailable")

type brokenKeys struct {
	app.AnswerKeys
}

func (brokenKeys) Invalidate(context.Context, string) error {
	return errCacheDown
}

func TestUpdateInputToPatch(t *testing.T) {
	in := app.QuestionUpdateInput{
		Options: []app.OptionInput{{Text: "a"}, {Text: "b", IsCorrect: true}},
		Code:    []byte("null"),
	}
	p, err := in.ToPatch()
	if err != nil {
		t.Fatalf("to patch: %v", err)
	}
	if p.CorrectAnswer == nil || *p.CorrectAnswer != 1 {
		t.Fatalf("flagged option should set correctAnswer, got %v", p.CorrectAnswer)
	}
	if p.Code == nil || *p.Code != nil {
		t.Fatalf("null code should clear the snippet")
	}

	zero := 0
	in.CorrectAnswer = &zero
	p, _ = in.ToPatch()
	if *p.CorrectAnswer != 0 {
		t.Fatalf("explicit correctAnswer must win over flags")
	}

	in.Code = []byte(`"not an object"`)
	if _, err := in.ToPatch(); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for bad code, got %v", err)
	}
}

func TestDeleteMissingQuestion(t *testing.T) {
	f := newFixture(t)
	if _, err := f.admin.Delete(context.Background(), "nope"); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func validInput(text string) app.QuestionInput {
	return app.QuestionInput{
		Question: text,
		Options:  []app.OptionInput{{Text: "a"}, {Text: "b", IsCorrect: true}, {Text: "c", IsCorrect: true}},
	}
}

func TestImportMixedBatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	invalid := app.QuestionInput{Question: "one option", Options: []app.OptionInput{{Text: "a", IsCorrect: true}}}
	res := f.admin.Import(ctx, "admin", app.ToQuestions([]app.QuestionInput{validInput("ok"), invalid}))
	if res.Imported != 1 || res.Failed != 1 || len(res.Errors) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if !strings.HasPrefix(res.Errors[0], "item 2: ") {
		t.Fatalf("error should name the item, got %q", res.Errors[0])
	}

	q, err := f.questions.Get(ctx, res.QuestionIDs[0])
	if err != nil {
		t.Fatalf("get imported: %v", err)
	}
	if q.CorrectAnswer != 1 || q.Options[2].IsCorrect || !q.IsActive {
		t.Fatalf("first flagged option should win and flags resync, got %+v", q)
	}
}

func TestImportRejectsEachRule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	items := []app.QuestionInput{
		{Question: "  ", Options: []app.OptionInput{{Text: "a", IsCorrect: true}, {Text: "b"}}},
		{Question: "one", Options: []app.OptionInput{{Text: "a", IsCorrect: true}}},
		{Question: "none", Options: []app.OptionInput{{Text: "a"}, {Text: "b"}}},
	}
	res := f.admin.Import(ctx, "admin", app.ToQuestions(items))
	if res.Imported != 0 || res.Failed != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
	want := []string{"question text is required", "at least two options", "marked correct"}
	for i, w := range want {
		if !strings.Contains(res.Errors[i], w) {
			t.Fatalf("error %d = %q, want it to mention %q", i, res.Errors[i], w)
		}
	}
}

func TestImportBoundsErrorList(t *testing.T) {
	f := newFixture(t)
	items := make([]app.QuestionInput, app.MaxImportErrors+5)
	res := f.admin.Import(context.Background(), "admin", app.ToQuestions(items))
	if res.Failed != len(items) || len(res.Errors) != app.MaxImportErrors {
		t.Fatalf("expected %d failures and %d messages, got %d and %d", len(items), app.MaxImportErrors, res.Failed, len(res.Errors))
	}
}

func TestImportForTechnology(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	in := validInput("stamped")
	in.TechnologyID = "python"
	res, err := f.admin.ImportForTechnology(ctx, "admin", "go", app.ToQuestions([]app.QuestionInput{in}))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	q, _ := f.questions.Get(ctx, res.QuestionIDs[0])
	if q.TechnologyID != "go" {
		t.Fatalf("expected technology go, got %q", q.TechnologyID)
	}
	if _, err := f.admin.ImportForTechnology(ctx, "admin", " ", nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for blank technology, got %v", err)
	}
}

func TestListingStripsSecretsAndHidesInactive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, "active", 1)
	f.add(t, "hidden", 1, func(q *domain.Question) { q.IsActive = false })

	page, err := f.admin.List(ctx, domain.QuestionFilter{}, domain.NewPage(1, 10))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 1 || page.Questions[0].ID != "active" || page.TotalPages != 1 {
		t.Fatalf("unexpected page %+v", page)
	}

	admin, err := f.admin.AdminList(ctx, domain.QuestionFilter{}, domain.NewPage(1, 10))
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if admin.Total != 2 {
		t.Fatalf("admin listing should include inactive questions, got %d", admin.Total)
	}

	if _, err := f.admin.Get(ctx, "missing"); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestInterviewOrdering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	base := f.clock
	interview := func(d domain.Difficulty, age time.Duration) func(*domain.Question) {
		return func(q *domain.Question) {
			q.Category = domain.CategoryInterview
			q.Difficulty = d
			q.CreatedAt = base.Add(-age)
		}
	}
	f.add(t, "hard-new", 0, interview(domain.DifficultyHard, 0))
	f.add(t, "easy-old", 0, interview(domain.DifficultyEasy, 2*time.Hour))
	f.add(t, "easy-new", 0, interview(domain.DifficultyEasy, time.Hour))
	f.add(t, "medium", 0, interview(domain.DifficultyMedium, 3*time.Hour))
	f.add(t, "not-interview", 0)

	page, err := f.admin.Interview(ctx, domain.QuestionFilter{}, domain.NewPage(1, 10))
	if err != nil {
		t.Fatalf("interview: %v", err)
	}
	want := []string{"easy-new", "easy-old", "medium", "hard-new"}
	if len(page.Questions) != len(want) {
		t.Fatalf("expected %d questions, got %d", len(want), len(page.Questions))
	}
	for i, id := range want {
		if page.Questions[i].ID != id {
			t.Fatalf("position %d: want %s, got %s", i, id, page.Questions[i].ID)
		}
	}
}

func TestBySkillMatchesSkillOrTag(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, "by-skill", 0, func(q *domain.Question) { q.Skill = "Go" })
	f.add(t, "by-tag", 0, func(q *domain.Question) { q.Tags = []string{"GoLang", "GO"}; q.Difficulty = domain.DifficultyHard })
	f.add(t, "other", 0, func(q *domain.Question) { q.Skill = "rust" })

	page, err := f.admin.BySkill(ctx, "go", "", domain.NewPage(1, 10))
	if err != nil {
		t.Fatalf("by skill: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected skill and tag matches, got %d", page.Total)
	}

	page, _ = f.admin.BySkill(ctx, "GO", domain.DifficultyHard, domain.NewPage(1, 10))
	if page.Total != 1 || page.Questions[0].ID != "by-tag" {
		t.Fatalf("difficulty filter should narrow to the tagged question, got %+v", page)
	}

	if _, err := f.admin.BySkill(ctx, " ", "", domain.NewPage(1, 10)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
