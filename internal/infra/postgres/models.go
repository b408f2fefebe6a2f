package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"mcq-assessment-service/internal/domain"
)

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID             string              `bun:"id,pk"`
	Text           string              `bun:"question"`
	Code           *domain.CodeSnippet `bun:"code,type:jsonb"`
	Options        []domain.Option     `bun:"options,type:jsonb"`
	CorrectAnswer  int                 `bun:"correct_answer"`
	Explanation    string              `bun:"explanation"`
	Category       string              `bun:"category"`
	Difficulty     string              `bun:"difficulty"`
	Skill          string              `bun:"skill"`
	Tags           []string            `bun:"tags,array"`
	InterviewLevel string              `bun:"interview_level"`
	CodeLevel      string              `bun:"code_level"`
	CourseID       string              `bun:"course_id,nullzero"`
	TopicID        string              `bun:"topic_id,nullzero"`
	TechnologyID   string              `bun:"technology_id,nullzero"`
	Points         int                 `bun:"points"`
	TimeLimit      int                 `bun:"time_limit"`
	TimesAttempted int                 `bun:"times_attempted"`
	TimesCorrect   int                 `bun:"times_correct"`
	IsActive       bool                `bun:"is_active"`
	CreatedBy      string              `bun:"created_by"`
	CreatedAt      time.Time           `bun:"created_at"`
	UpdatedAt      time.Time           `bun:"updated_at"`
}

func toQuestionRow(q domain.Question) questionRow {
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	return questionRow{
		ID:             q.ID,
		Text:           q.Text,
		Code:           q.Code,
		Options:        q.Options,
		CorrectAnswer:  q.CorrectAnswer,
		Explanation:    q.Explanation,
		Category:       string(q.Category),
		Difficulty:     string(q.Difficulty),
		Skill:          q.Skill,
		Tags:           tags,
		InterviewLevel: q.InterviewLevel,
		CodeLevel:      q.CodeLevel,
		CourseID:       q.CourseID,
		TopicID:        q.TopicID,
		TechnologyID:   q.TechnologyID,
		Points:         q.Points,
		TimeLimit:      q.TimeLimit,
		TimesAttempted: q.TimesAttempted,
		TimesCorrect:   q.TimesCorrect,
		IsActive:       q.IsActive,
		CreatedBy:      q.CreatedBy,
		CreatedAt:      q.CreatedAt,
		UpdatedAt:      q.UpdatedAt,
	}
}

func (r questionRow) toDomain() domain.Question {
	q := domain.Question{
		ID:             r.ID,
		Text:           r.Text,
		Code:           r.Code,
		Options:        r.Options,
		CorrectAnswer:  r.CorrectAnswer,
		Explanation:    r.Explanation,
		Category:       domain.Category(r.Category),
		Difficulty:     domain.Difficulty(r.Difficulty),
		Skill:          r.Skill,
		Tags:           r.Tags,
		InterviewLevel: r.InterviewLevel,
		CodeLevel:      r.CodeLevel,
		CourseID:       r.CourseID,
		TopicID:        r.TopicID,
		TechnologyID:   r.TechnologyID,
		Points:         r.Points,
		TimeLimit:      r.TimeLimit,
		TimesAttempted: r.TimesAttempted,
		TimesCorrect:   r.TimesCorrect,
		IsActive:       r.IsActive,
		CreatedBy:      r.CreatedBy,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	q.SyncCorrectFlags()
	return q
}

type attemptRow struct {
	bun.BaseModel `bun:"table:attempts"`

	ID             string    `bun:"id,pk"`
	UserID         string    `bun:"user_id"`
	QuestionID     string    `bun:"question_id"`
	SelectedOption int       `bun:"selected_option"`
	IsCorrect      bool      `bun:"is_correct"`
	TimeTaken      int       `bun:"time_taken"`
	PointsEarned   int       `bun:"points_earned"`
	AttemptNumber  int       `bun:"attempt_number"`
	CreatedAt      time.Time `bun:"created_at"`
}

type attemptViewRow struct {
	ID             string    `bun:"id"`
	UserID         string    `bun:"user_id"`
	QuestionID     string    `bun:"question_id"`
	SelectedOption int       `bun:"selected_option"`
	IsCorrect      bool      `bun:"is_correct"`
	TimeTaken      int       `bun:"time_taken"`
	PointsEarned   int       `bun:"points_earned"`
	AttemptNumber  int       `bun:"attempt_number"`
	CreatedAt      time.Time `bun:"created_at"`
	Category       string    `bun:"category"`
	Skill          string    `bun:"skill"`
	Difficulty     string    `bun:"difficulty"`
}

func (r attemptViewRow) toDomain() domain.AttemptView {
	return domain.AttemptView{
		Attempt: attemptRow{
			ID:             r.ID,
			UserID:         r.UserID,
			QuestionID:     r.QuestionID,
			SelectedOption: r.SelectedOption,
			IsCorrect:      r.IsCorrect,
			TimeTaken:      r.TimeTaken,
			PointsEarned:   r.PointsEarned,
			AttemptNumber:  r.AttemptNumber,
			CreatedAt:      r.CreatedAt,
		}.toDomain(),
		Category:   domain.Category(r.Category),
		Skill:      r.Skill,
		Difficulty: domain.Difficulty(r.Difficulty),
	}
}

func (r attemptRow) toDomain() domain.Attempt {
	return domain.Attempt{
		ID:             r.ID,
		UserID:         r.UserID,
		QuestionID:     r.QuestionID,
		SelectedOption: r.SelectedOption,
		IsCorrect:      r.IsCorrect,
		TimeTaken:      r.TimeTaken,
		PointsEarned:   r.PointsEarned,
		AttemptNumber:  r.AttemptNumber,
		CreatedAt:      r.CreatedAt,
	}
}

type certificateRow struct {
	bun.BaseModel `bun:"table:certificates"`

	ID             string    `bun:"id,pk"`
	UserID         string    `bun:"user_id"`
	Type           string    `bun:"type"`
	CourseID       string    `bun:"course_id"`
	TechnologyID   string    `bun:"technology_id"`
	TestID         string    `bun:"test_id"`
	Title          string    `bun:"title"`
	Description    string    `bun:"description"`
	Score          int       `bun:"score"`
	TotalQuestions int       `bun:"total_questions"`
	CorrectAnswers int       `bun:"correct_answers"`
	Tags           []string  `bun:"tags,array"`
	Status         string    `bun:"status"`
	IssuedAt       time.Time `bun:"issued_at"`
}

func toCertificateRow(c domain.Certificate) certificateRow {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	status := c.Status
	if status == "" {
		status = domain.CertificateActive
	}
	return certificateRow{
		ID:             c.ID,
		UserID:         c.UserID,
		Type:           string(c.Type),
		CourseID:       c.CourseID,
		TechnologyID:   c.TechnologyID,
		TestID:         c.TestID,
		Title:          c.Title,
		Description:    c.Description,
		Score:          c.Score,
		TotalQuestions: c.TotalQuestions,
		CorrectAnswers: c.CorrectAnswers,
		Tags:           tags,
		Status:         status,
		IssuedAt:       c.IssuedAt,
	}
}

func (r certificateRow) toDomain() domain.Certificate {
	return domain.Certificate{
		ID:             r.ID,
		UserID:         r.UserID,
		Type:           domain.CertificateType(r.Type),
		CourseID:       r.CourseID,
		TechnologyID:   r.TechnologyID,
		TestID:         r.TestID,
		Title:          r.Title,
		Description:    r.Description,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		CorrectAnswers: r.CorrectAnswers,
		Tags:           r.Tags,
		Status:         r.Status,
		IssuedAt:       r.IssuedAt,
	}
}

type userRow struct {
	bun.BaseModel `bun:"table:users"`

	ID           string   `bun:"id,pk"`
	Name         string   `bun:"name"`
	Role         string   `bun:"role"`
	TotalPoints  int      `bun:"total_points"`
	Certificates []string `bun:"certificates,array"`
}
