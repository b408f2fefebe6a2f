package postgres

import (
	"context"

	"github.com/uptrace/bun"

	"mcq-assessment-service/internal/domain"
)

// AttemptStore implements app.AttemptRepository. Attempt numbers come from the
// attempt_counters table so concurrent submissions never share a number.
type AttemptStore struct {
	db bun.IDB
}

func NewAttemptStore(db bun.IDB) *AttemptStore {
	return &AttemptStore{db: db}
}

func (s *AttemptStore) NextNumber(ctx context.Context, userID, questionID string) (int, error) {
	var n int
	err := s.db.NewRaw(
		`INSERT INTO attempt_counters (user_id, question_id, last_number) VALUES (?, ?, 1)
		 ON CONFLICT (user_id, question_id) DO UPDATE SET last_number = attempt_counters.last_number + 1
		 RETURNING last_number`,
		userID, questionID,
	).Scan(ctx, &n)
	return n, err
}

func (s *AttemptStore) Create(ctx context.Context, attempt domain.Attempt) error {
	row := attemptRow{
		ID:             attempt.ID,
		UserID:         attempt.UserID,
		QuestionID:     attempt.QuestionID,
		SelectedOption: attempt.SelectedOption,
		IsCorrect:      attempt.IsCorrect,
		TimeTaken:      attempt.TimeTaken,
		PointsEarned:   attempt.PointsEarned,
		AttemptNumber:  attempt.AttemptNumber,
		CreatedAt:      attempt.CreatedAt,
	}
	_, err := s.db.NewInsert().Model(&row).Exec(ctx)
	return err
}

func (s *AttemptStore) Recent(ctx context.Context, userID string, filter domain.ProgressFilter, limit int) ([]domain.AttemptView, error) {
	var rows []attemptViewRow
	q := s.db.NewSelect().
		TableExpr("attempts AS a").
		Join("JOIN questions AS q ON q.id = a.question_id").
		ColumnExpr("a.*").
		ColumnExpr("q.category, q.skill, q.difficulty").
		Where("a.user_id = ?", userID)
	if filter.Category != "" {
		q = q.Where("q.category = ?", string(filter.Category))
	}
	if filter.Skill != "" {
		q = q.Where("LOWER(q.skill) = LOWER(?)", filter.Skill)
	}
	err := q.OrderExpr("a.created_at DESC, a.attempt_number DESC").Limit(limit).Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	out := make([]domain.AttemptView, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (s *AttemptStore) DeleteByQuestion(ctx context.Context, questionID string) (int, error) {
	res, err := s.db.NewDelete().Model((*attemptRow)(nil)).Where("question_id = ?", questionID).Exec(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := s.db.NewDelete().TableExpr("attempt_counters").Where("question_id = ?", questionID).Exec(ctx); err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
