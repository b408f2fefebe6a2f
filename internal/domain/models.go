package domain

import (
	"strings"
	"time"
)

// Category groups questions by where they are used.
type Category string

const (
	CategoryCourse        Category = "course"
	CategorySkill         Category = "skill"
	CategoryInterview     Category = "interview"
	CategoryCertification Category = "certification"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryCourse, CategorySkill, CategoryInterview, CategoryCertification:
		return true
	}
	return false
}

// Difficulty is the question tier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Rank orders difficulties easy < medium < hard; unknown values sort last.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 0
	case DifficultyMedium:
		return 1
	case DifficultyHard:
		return 2
	}
	return 3
}

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	return d.Rank() < 3
}

const (
	DefaultCategory   = CategorySkill
	DefaultDifficulty = DifficultyMedium
	DefaultPoints     = 10
	DefaultTimeLimit  = 60
)

// CodeSnippet is optional source code shown alongside a question.
type CodeSnippet struct {
	Language string `json:"language"`
	Source   string `json:"source"`
}

// Option represents a possible answer for a question.
// IsCorrect is derived from Question.CorrectAnswer and never trusted on input.
type Option struct {
	Text        string `json:"text"`
	IsCorrect   bool   `json:"isCorrect"`
	Explanation string `json:"explanation,omitempty"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID             string       `json:"id"`
	Text           string       `json:"question"`
	Code           *CodeSnippet `json:"code,omitempty"`
	Options        []Option     `json:"options"`
	CorrectAnswer  int          `json:"correctAnswer"`
	Explanation    string       `json:"explanation,omitempty"`
	Category       Category     `json:"category"`
	Difficulty     Difficulty   `json:"difficulty"`
	Skill          string       `json:"skill,omitempty"`
	Tags           []string     `json:"tags,omitempty"`
	InterviewLevel string       `json:"interviewLevel,omitempty"`
	CodeLevel      string       `json:"codeLevel,omitempty"`
	CourseID       string       `json:"courseId,omitempty"`
	TopicID        string       `json:"topicId,omitempty"`
	TechnologyID   string       `json:"technologyId,omitempty"`
	Points         int          `json:"points"`
	TimeLimit      int          `json:"timeLimit"`
	TimesAttempted int          `json:"timesAttempted"`
	TimesCorrect   int          `json:"timesCorrect"`
	IsActive       bool         `json:"isActive"`
	CreatedBy      string       `json:"createdBy,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// SyncCorrectFlags rewrites every option's IsCorrect from CorrectAnswer.
func (q *Question) SyncCorrectFlags() {
	for i := range q.Options {
		q.Options[i].IsCorrect = i == q.CorrectAnswer
	}
}

// PublicOption is the client-facing option: text only.
type PublicOption struct {
	Text string `json:"text"`
}

// PublicQuestion is a question with the answer, correctness flags and explanations removed.
type PublicQuestion struct {
	ID             string         `json:"id"`
	Text           string         `json:"question"`
	Code           *CodeSnippet   `json:"code,omitempty"`
	Options        []PublicOption `json:"options"`
	Category       Category       `json:"category"`
	Difficulty     Difficulty     `json:"difficulty"`
	Skill          string         `json:"skill,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	InterviewLevel string         `json:"interviewLevel,omitempty"`
	CodeLevel      string         `json:"codeLevel,omitempty"`
	CourseID       string         `json:"courseId,omitempty"`
	TopicID        string         `json:"topicId,omitempty"`
	TechnologyID   string         `json:"technologyId,omitempty"`
	Points         int            `json:"points"`
	TimeLimit      int            `json:"timeLimit"`
	TimesAttempted int            `json:"timesAttempted"`
	TimesCorrect   int            `json:"timesCorrect"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Public strips every secret field from q.
func (q Question) Public() PublicQuestion {
	opts := make([]PublicOption, len(q.Options))
	for i, o := range q.Options {
		opts[i] = PublicOption{Text: o.Text}
	}
	return PublicQuestion{
		ID:             q.ID,
		Text:           q.Text,
		Code:           q.Code,
		Options:        opts,
		Category:       q.Category,
		Difficulty:     q.Difficulty,
		Skill:          q.Skill,
		Tags:           q.Tags,
		InterviewLevel: q.InterviewLevel,
		CodeLevel:      q.CodeLevel,
		CourseID:       q.CourseID,
		TopicID:        q.TopicID,
		TechnologyID:   q.TechnologyID,
		Points:         q.Points,
		TimeLimit:      q.TimeLimit,
		TimesAttempted: q.TimesAttempted,
		TimesCorrect:   q.TimesCorrect,
		CreatedAt:      q.CreatedAt,
	}
}

// AnswerKey is the scoring view of a question, cached separately from the full document.
type AnswerKey struct {
	QuestionID         string   `json:"questionId"`
	CorrectAnswer      int      `json:"correctAnswer"`
	Points             int      `json:"points"`
	Explanation        string   `json:"explanation,omitempty"`
	OptionExplanations []string `json:"optionExplanations,omitempty"`
}

// KeyOf extracts the answer key of q.
func KeyOf(q Question) AnswerKey {
	expl := make([]string, len(q.Options))
	for i, o := range q.Options {
		expl[i] = o.Explanation
	}
	return AnswerKey{
		QuestionID:         q.ID,
		CorrectAnswer:      q.CorrectAnswer,
		Points:             q.Points,
		Explanation:        q.Explanation,
		OptionExplanations: expl,
	}
}

// QuestionFilter narrows question listings. Empty fields do not filter.
type QuestionFilter struct {
	Category       Category
	Difficulty     Difficulty
	Skill          string
	CourseID       string
	TopicID        string
	TechnologyID   string
	InterviewLevel string
	CodeLevel      string
	// SkillOrTag matches the skill or any tag, case-insensitively.
	SkillOrTag string
	// IncludeInactive is only set by admin listings.
	IncludeInactive bool
	// ByDifficulty sorts by difficulty ascending before newest first.
	ByDifficulty bool
}

// Matches reports whether q passes every set field of f.
func (f QuestionFilter) Matches(q Question) bool {
	if !f.IncludeInactive && !q.IsActive {
		return false
	}
	if f.Category != "" && q.Category != f.Category {
		return false
	}
	if f.Difficulty != "" && q.Difficulty != f.Difficulty {
		return false
	}
	if f.Skill != "" && !strings.EqualFold(q.Skill, f.Skill) {
		return false
	}
	if f.CourseID != "" && q.CourseID != f.CourseID {
		return false
	}
	if f.TopicID != "" && q.TopicID != f.TopicID {
		return false
	}
	if f.TechnologyID != "" && q.TechnologyID != f.TechnologyID {
		return false
	}
	if f.InterviewLevel != "" && q.InterviewLevel != f.InterviewLevel {
		return false
	}
	if f.CodeLevel != "" && q.CodeLevel != f.CodeLevel {
		return false
	}
	if f.SkillOrTag != "" && !matchesSkillOrTag(q, f.SkillOrTag) {
		return false
	}
	return true
}

func matchesSkillOrTag(q Question, s string) bool {
	if strings.EqualFold(q.Skill, s) {
		return true
	}
	for _, t := range q.Tags {
		if strings.EqualFold(t, s) {
			return true
		}
	}
	return false
}

// Page is a 1-based page request.
type Page struct {
	Number int
	Limit  int
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// NewPage clamps raw values to sane defaults.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Number: number, Limit: limit}
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Attempt is one user's submission against one question. Immutable once recorded.
type Attempt struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	QuestionID     string    `json:"questionId"`
	SelectedOption int       `json:"selectedOption"`
	IsCorrect      bool      `json:"isCorrect"`
	TimeTaken      int       `json:"timeTaken"`
	PointsEarned   int       `json:"pointsEarned"`
	AttemptNumber  int       `json:"attemptNumber"`
	CreatedAt      time.Time `json:"createdAt"`
}

// AttemptView is an attempt joined with the question fields progress needs.
type AttemptView struct {
	Attempt
	Category   Category   `json:"category"`
	Skill      string     `json:"skill,omitempty"`
	Difficulty Difficulty `json:"difficulty"`
}

// ProgressFilter narrows the attempts considered by progress aggregation.
type ProgressFilter struct {
	Category Category
	Skill    string
}

// CertificateType says what a certificate was issued for.
type CertificateType string

const (
	CertificateCourse     CertificateType = "course"
	CertificateTechnology CertificateType = "technology"
	CertificateTest       CertificateType = "test"
)

const CertificateActive = "active"

// Certificate is proof that a user passed a test batch.
type Certificate struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	Type           CertificateType `json:"type"`
	CourseID       string          `json:"courseId,omitempty"`
	TechnologyID   string          `json:"technologyId,omitempty"`
	TestID         string          `json:"testId"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Score          int             `json:"score"`
	TotalQuestions int             `json:"totalQuestions"`
	CorrectAnswers int             `json:"correctAnswers"`
	Tags           []string        `json:"tags,omitempty"`
	Status         string          `json:"status"`
	IssuedAt       time.Time       `json:"issuedAt"`
}

// CertificateKey identifies the single active certificate a user may hold per test.
type CertificateKey struct {
	UserID       string
	CourseID     string
	TechnologyID string
	TestID       string
}

// Key returns the dedup key of c.
func (c Certificate) Key() CertificateKey {
	return CertificateKey{UserID: c.UserID, CourseID: c.CourseID, TechnologyID: c.TechnologyID, TestID: c.TestID}
}

// String is a stable representation used for cache and lock keys.
func (k CertificateKey) String() string {
	return k.UserID + ":" + k.CourseID + ":" + k.TechnologyID + ":" + k.TestID
}

// User is the part of a platform user this service reads and writes.
type User struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	TotalPoints  int      `json:"totalPoints"`
	Certificates []string `json:"certificates"`
}
