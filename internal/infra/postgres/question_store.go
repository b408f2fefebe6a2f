package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"mcq-assessment-service/internal/domain"
)

const difficultyOrder = "CASE difficulty WHEN 'easy' THEN 0 WHEN 'medium' THEN 1 WHEN 'hard' THEN 2 ELSE 3 END"

// QuestionStore implements app.QuestionRepository on top of bun.
type QuestionStore struct {
	db bun.IDB
}

func NewQuestionStore(db bun.IDB) *QuestionStore {
	return &QuestionStore{db: db}
}

func (s *QuestionStore) Create(ctx context.Context, q domain.Question) error {
	row := toQuestionRow(q)
	_, err := s.db.NewInsert().Model(&row).Exec(ctx)
	return err
}

func (s *QuestionStore) Get(ctx context.Context, id string) (domain.Question, error) {
	var row questionRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, err
	}
	return row.toDomain(), nil
}

// Update rewrites the authored fields. Counters and authorship are left alone.
func (s *QuestionStore) Update(ctx context.Context, q domain.Question) error {
	row := toQuestionRow(q)
	res, err := s.db.NewUpdate().
		Model(&row).
		ExcludeColumn("times_attempted", "times_correct", "created_by", "created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, domain.ErrQuestionNotFound)
}

func (s *QuestionStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*questionRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, domain.ErrQuestionNotFound)
}

func (s *QuestionStore) List(ctx context.Context, filter domain.QuestionFilter, page domain.Page) ([]domain.Question, int, error) {
	var rows []questionRow
	q := s.db.NewSelect().Model(&rows)
	applyQuestionFilter(q, filter)
	if filter.ByDifficulty {
		q = q.OrderExpr(difficultyOrder)
	}
	total, err := q.
		OrderExpr("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.Question, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, total, nil
}

func applyQuestionFilter(q *bun.SelectQuery, f domain.QuestionFilter) {
	if !f.IncludeInactive {
		q.Where("is_active")
	}
	if f.Category != "" {
		q.Where("category = ?", string(f.Category))
	}
	if f.Difficulty != "" {
		q.Where("difficulty = ?", string(f.Difficulty))
	}
	if f.Skill != "" {
		q.Where("LOWER(skill) = LOWER(?)", f.Skill)
	}
	if f.CourseID != "" {
		q.Where("course_id = ?", f.CourseID)
	}
	if f.TopicID != "" {
		q.Where("topic_id = ?", f.TopicID)
	}
	if f.TechnologyID != "" {
		q.Where("technology_id = ?", f.TechnologyID)
	}
	if f.InterviewLevel != "" {
		q.Where("interview_level = ?", f.InterviewLevel)
	}
	if f.CodeLevel != "" {
		q.Where("code_level = ?", f.CodeLevel)
	}
	if f.SkillOrTag != "" {
		q.Where("(LOWER(skill) = LOWER(?) OR EXISTS (SELECT 1 FROM unnest(tags) AS t(tag) WHERE LOWER(t.tag) = LOWER(?)))", f.SkillOrTag, f.SkillOrTag)
	}
}

// IncrementStats bumps the counters in a single statement so concurrent scorers never lose updates.
func (s *QuestionStore) IncrementStats(ctx context.Context, id string, correct bool) error {
	inc := 0
	if correct {
		inc = 1
	}
	res, err := s.db.NewUpdate().
		Model((*questionRow)(nil)).
		Set("times_attempted = times_attempted + 1").
		Set("times_correct = times_correct + ?", inc).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, domain.ErrQuestionNotFound)
}

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
