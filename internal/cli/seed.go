package cli

import (
	"context"
	"time"

	"mcq-assessment-service/internal/auth"
	"mcq-assessment-service/internal/config"
	"mcq-assessment-service/internal/domain"
	"mcq-assessment-service/internal/infra/memory"
)

// Demo data for the in-memory mode; Postgres deployments own their users and catalog.

func sampleUsers() []domain.User {
	return []domain.User{
		{ID: "demo-user", Name: "Demo User", Role: auth.RoleUser},
		{ID: "demo-instructor", Name: "Demo Instructor", Role: auth.RoleInstructor},
		{ID: "demo-admin", Name: "Demo Admin", Role: auth.RoleAdmin},
	}
}

func sampleCourses() map[string]string {
	return map[string]string{"go-basics": "Go Basics"}
}

func sampleTechnologies() map[string]string {
	return map[string]string{"go": "Go"}
}

func seedQuestions(ctx context.Context, store *memory.QuestionStore) {
	now := time.Now()
	questions := []domain.Question{
		{
			ID:            "q-arith",
			Text:          "What is 1 + 2?",
			Options:       []domain.Option{{Text: "2"}, {Text: "3"}, {Text: "4"}},
			CorrectAnswer: 1,
			Explanation:   "1 + 2 = 3",
			Category:      domain.CategorySkill,
			Difficulty:    domain.DifficultyEasy,
			Skill:         "math",
		},
		{
			ID:            "q-go-zero",
			Text:          "What is the zero value of a Go map?",
			Options:       []domain.Option{{Text: "An empty map"}, {Text: "nil", Explanation: "Maps must be made before writes."}},
			CorrectAnswer: 1,
			Category:      domain.CategoryCourse,
			Difficulty:    domain.DifficultyMedium,
			Skill:         "go",
			Tags:          []string{"golang", "maps"},
			CourseID:      "go-basics",
			TechnologyID:  "go",
		},
		{
			ID:   "q-interview-chan",
			Text: "What happens when you send on a closed channel?",
			Code: &domain.CodeSnippet{Language: "go", Source: "ch := make(chan int)\nclose(ch)\nch <- 1"},
			Options: []domain.Option{
				{Text: "The send blocks forever"},
				{Text: "The runtime panics"},
				{Text: "The value is dropped"},
			},
			CorrectAnswer:  1,
			Category:       domain.CategoryInterview,
			Difficulty:     domain.DifficultyHard,
			Skill:          "go",
			InterviewLevel: "senior",
			TechnologyID:   "go",
		},
	}
	for _, q := range questions {
		q.Points = domain.DefaultPoints
		q.TimeLimit = domain.DefaultTimeLimit
		q.IsActive = true
		q.CreatedBy = "demo-admin"
		q.CreatedAt = now
		q.UpdatedAt = now
		q.SyncCorrectFlags()
		if err := store.Create(ctx, q); err != nil {
			config.Logger().WithError(err).WithField("question_id", q.ID).Warn("seed question failed")
		}
	}
}
