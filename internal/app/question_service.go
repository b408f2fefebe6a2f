package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mcq-assessment-service/internal/config"
	"mcq-assessment-service/internal/domain"
)

// MaxImportErrors bounds the failure messages returned by a bulk import.
const MaxImportErrors = 20

// QuestionService holds question retrieval and admin use cases.
type QuestionService struct {
	questions QuestionRepository
	attempts  AttemptRepository
	keys      AnswerKeys
	now       func() time.Time
}

func NewQuestionService(questions QuestionRepository, attempts AttemptRepository, keys AnswerKeys) *QuestionService {
	return NewQuestionServiceWithClock(questions, attempts, keys, time.Now)
}

// NewQuestionServiceWithClock allows deterministic timestamps in tests.
func NewQuestionServiceWithClock(questions QuestionRepository, attempts AttemptRepository, keys AnswerKeys, now func() time.Time) *QuestionService {
	return &QuestionService{questions: questions, attempts: attempts, keys: keys, now: now}
}

// QuestionPage is one page of public questions.
type QuestionPage struct {
	Questions  []domain.PublicQuestion `json:"questions"`
	Total      int                     `json:"total"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	TotalPages int                     `json:"totalPages"`
}

// AdminQuestionPage is one page of full questions.
type AdminQuestionPage struct {
	Questions  []domain.Question `json:"questions"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
}

func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// List returns active questions with secrets stripped, newest first.
func (s *QuestionService) List(ctx context.Context, filter domain.QuestionFilter, page domain.Page) (QuestionPage, error) {
	filter.IncludeInactive = false
	return s.publicPage(ctx, filter, page)
}

// Interview lists interview questions ordered by difficulty, then newest first.
func (s *QuestionService) Interview(ctx context.Context, filter domain.QuestionFilter, page domain.Page) (QuestionPage, error) {
	filter.Category = domain.CategoryInterview
	filter.ByDifficulty = true
	filter.IncludeInactive = false
	return s.publicPage(ctx, filter, page)
}

// BySkill matches the skill field or any tag case-insensitively.
func (s *QuestionService) BySkill(ctx context.Context, skill string, difficulty domain.Difficulty, page domain.Page) (QuestionPage, error) {
	if strings.TrimSpace(skill) == "" {
		return QuestionPage{}, fmt.Errorf("%w: skill is required", domain.ErrValidation)
	}
	return s.publicPage(ctx, domain.QuestionFilter{SkillOrTag: strings.TrimSpace(skill), Difficulty: difficulty}, page)
}

func (s *QuestionService) publicPage(ctx context.Context, filter domain.QuestionFilter, page domain.Page) (QuestionPage, error) {
	qs, total, err := s.questions.List(ctx, filter, page)
	if err != nil {
		return QuestionPage{}, err
	}
	out := QuestionPage{
		Questions:  make([]domain.PublicQuestion, 0, len(qs)),
		Total:      total,
		Page:       page.Number,
		Limit:      page.Limit,
		TotalPages: totalPages(total, page.Limit),
	}
	for _, q := range qs {
		out.Questions = append(out.Questions, q.Public())
	}
	return out, nil
}

// Get returns one question with secrets stripped.
func (s *QuestionService) Get(ctx context.Context, id string) (domain.PublicQuestion, error) {
	q, err := s.questions.Get(ctx, id)
	if err != nil {
		return domain.PublicQuestion{}, err
	}
	return q.Public(), nil
}

// AdminList returns full questions, including inactive ones.
func (s *QuestionService) AdminList(ctx context.Context, filter domain.QuestionFilter, page domain.Page) (AdminQuestionPage, error) {
	filter.IncludeInactive = true
	qs, total, err := s.questions.List(ctx, filter, page)
	if err != nil {
		return AdminQuestionPage{}, err
	}
	return AdminQuestionPage{
		Questions:  qs,
		Total:      total,
		Page:       page.Number,
		Limit:      page.Limit,
		TotalPages: totalPages(total, page.Limit),
	}, nil
}

// Create stores a new question authored by adminID.
func (s *QuestionService) Create(ctx context.Context, adminID string, q domain.Question) (domain.Question, error) {
	applyDefaults(&q)
	if err := validateQuestion(q); err != nil {
		return domain.Question{}, err
	}
	now := s.now()
	q.ID = uuid.NewString()
	q.CreatedBy = adminID
	q.CreatedAt = now
	q.UpdatedAt = now
	q.TimesAttempted = 0
	q.TimesCorrect = 0
	q.SyncCorrectFlags()
	if err := s.questions.Create(ctx, q); err != nil {
		return domain.Question{}, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// QuestionPatch is a partial update. Nil fields are left unchanged; a pointer to an
// empty string clears a reference.
type QuestionPatch struct {
	Text           *string
	Code           **domain.CodeSnippet
	Options        []domain.Option
	CorrectAnswer  *int
	Explanation    *string
	Category       *domain.Category
	Difficulty     *domain.Difficulty
	Skill          *string
	Tags           *[]string
	InterviewLevel *string
	CodeLevel      *string
	CourseID       *string
	TopicID        *string
	TechnologyID   *string
	Points         *int
	TimeLimit      *int
	IsActive       *bool
}

// Update applies patch to question id and keeps option flags in sync with correctAnswer.
func (s *QuestionService) Update(ctx context.Context, id string, patch QuestionPatch) (domain.Question, error) {
	q, err := s.questions.Get(ctx, id)
	if err != nil {
		return domain.Question{}, err
	}
	applyPatch(&q, patch)
	if err := validateQuestion(q); err != nil {
		return domain.Question{}, err
	}
	q.SyncCorrectFlags()
	q.UpdatedAt = s.now()
	if err := s.questions.Update(ctx, q); err != nil {
		return domain.Question{}, fmt.Errorf("update question: %w", err)
	}
	if err := s.invalidate(ctx, id); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

func applyPatch(q *domain.Question, p QuestionPatch) {
	if p.Text != nil {
		q.Text = *p.Text
	}
	if p.Code != nil {
		q.Code = *p.Code
	}
	if p.Options != nil {
		q.Options = append([]domain.Option(nil), p.Options...)
	}
	if p.CorrectAnswer != nil {
		q.CorrectAnswer = *p.CorrectAnswer
	}
	if p.Explanation != nil {
		q.Explanation = *p.Explanation
	}
	if p.Category != nil {
		q.Category = *p.Category
	}
	if p.Difficulty != nil {
		q.Difficulty = *p.Difficulty
	}
	if p.Skill != nil {
		q.Skill = *p.Skill
	}
	if p.Tags != nil {
		q.Tags = *p.Tags
	}
	if p.InterviewLevel != nil {
		q.InterviewLevel = *p.InterviewLevel
	}
	if p.CodeLevel != nil {
		q.CodeLevel = *p.CodeLevel
	}
	if p.CourseID != nil {
		q.CourseID = strings.TrimSpace(*p.CourseID)
	}
	if p.TopicID != nil {
		q.TopicID = strings.TrimSpace(*p.TopicID)
	}
	if p.TechnologyID != nil {
		q.TechnologyID = strings.TrimSpace(*p.TechnologyID)
	}
	if p.Points != nil {
		q.Points = *p.Points
	}
	if p.TimeLimit != nil {
		q.TimeLimit = *p.TimeLimit
	}
	if p.IsActive != nil {
		q.IsActive = *p.IsActive
	}
}

// Delete removes a question and every attempt recorded against it.
func (s *QuestionService) Delete(ctx context.Context, id string) (int, error) {
	if _, err := s.questions.Get(ctx, id); err != nil {
		return 0, err
	}
	removed, err := s.attempts.DeleteByQuestion(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete attempts: %w", err)
	}
	if err := s.questions.Delete(ctx, id); err != nil {
		return removed, fmt.Errorf("delete question: %w", err)
	}
	if err := s.invalidate(ctx, id); err != nil {
		return removed, err
	}
	return removed, nil
}

// invalidate drops the cached answer key. A failure is returned rather than swallowed:
// a stale key would score answers against the old correctAnswer until it expires.
func (s *QuestionService) invalidate(ctx context.Context, id string) error {
	if err := s.keys.Invalidate(ctx, id); err != nil {
		config.WithContext(ctx).WithError(err).WithField("question_id", id).Error("answer key invalidation failed")
		return fmt.Errorf("invalidate answer key: %w", err)
	}
	return nil
}

// ImportResult reports a bulk import.
type ImportResult struct {
	Imported    int      `json:"imported"`
	Failed      int      `json:"failed"`
	Errors      []string `json:"errors"`
	QuestionIDs []string `json:"questionIds"`
}

// Import validates and stores every item independently; one bad item never aborts the batch.
func (s *QuestionService) Import(ctx context.Context, authorID string, items []domain.Question) ImportResult {
	return s.importItems(ctx, authorID, items, "")
}

// ImportForTechnology stamps every item with technologyID before importing it.
func (s *QuestionService) ImportForTechnology(ctx context.Context, authorID, technologyID string, items []domain.Question) (ImportResult, error) {
	if strings.TrimSpace(technologyID) == "" {
		return ImportResult{}, fmt.Errorf("%w: technology id is required", domain.ErrValidation)
	}
	return s.importItems(ctx, authorID, items, strings.TrimSpace(technologyID)), nil
}

func (s *QuestionService) importItems(ctx context.Context, authorID string, items []domain.Question, technologyID string) ImportResult {
	res := ImportResult{Errors: []string{}, QuestionIDs: []string{}}
	for i, item := range items {
		if technologyID != "" {
			item.TechnologyID = technologyID
		}
		q, err := s.importOne(ctx, authorID, item)
		if err != nil {
			res.Failed++
			if len(res.Errors) < MaxImportErrors {
				res.Errors = append(res.Errors, fmt.Sprintf("item %d: %s", i+1, importReason(err)))
			}
			continue
		}
		res.Imported++
		res.QuestionIDs = append(res.QuestionIDs, q.ID)
	}
	config.WithContext(ctx).WithField("imported", res.Imported).WithField("failed", res.Failed).Info("question import finished")
	return res
}

func (s *QuestionService) importOne(ctx context.Context, authorID string, item domain.Question) (domain.Question, error) {
	if strings.TrimSpace(item.Text) == "" {
		return domain.Question{}, fmt.Errorf("%w: question text is required", domain.ErrValidation)
	}
	if len(item.Options) < 2 {
		return domain.Question{}, fmt.Errorf("%w: at least two options are required", domain.ErrValidation)
	}
	correct := -1
	for i, o := range item.Options {
		if o.IsCorrect {
			correct = i
			break
		}
	}
	if correct < 0 {
		return domain.Question{}, fmt.Errorf("%w: at least one option must be marked correct", domain.ErrValidation)
	}
	item.CorrectAnswer = correct
	return s.Create(ctx, authorID, item)
}

func importReason(err error) string {
	if errors.Is(err, domain.ErrValidation) {
		return strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
	}
	return err.Error()
}

func applyDefaults(q *domain.Question) {
	if q.Category == "" {
		q.Category = domain.DefaultCategory
	}
	if q.Difficulty == "" {
		q.Difficulty = domain.DefaultDifficulty
	}
	if q.Points == 0 {
		q.Points = domain.DefaultPoints
	}
	if q.TimeLimit == 0 {
		q.TimeLimit = domain.DefaultTimeLimit
	}
	q.CourseID = strings.TrimSpace(q.CourseID)
	q.TopicID = strings.TrimSpace(q.TopicID)
	q.TechnologyID = strings.TrimSpace(q.TechnologyID)
}

func validateQuestion(q domain.Question) error {
	switch {
	case strings.TrimSpace(q.Text) == "":
		return fmt.Errorf("%w: question text is required", domain.ErrValidation)
	case len(q.Options) < 2:
		return fmt.Errorf("%w: at least two options are required", domain.ErrValidation)
	case q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options):
		return fmt.Errorf("%w: correctAnswer %d is out of range", domain.ErrValidation, q.CorrectAnswer)
	case !q.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", domain.ErrValidation, q.Category)
	case !q.Difficulty.Valid():
		return fmt.Errorf("%w: unknown difficulty %q", domain.ErrValidation, q.Difficulty)
	case q.Points < 0:
		return fmt.Errorf("%w: points must not be negative", domain.ErrValidation)
	case q.TimeLimit < 0:
		return fmt.Errorf("%w: timeLimit must not be negative", domain.ErrValidation)
	}
	return nil
}
