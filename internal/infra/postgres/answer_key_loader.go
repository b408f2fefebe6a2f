package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"mcq-assessment-service/internal/domain"
)

// AnswerKeyLoader reads the scoring columns of a question straight from Postgres.
// It sits behind the answer-key cache on the submit path.
type AnswerKeyLoader struct {
	pool *pgxpool.Pool
}

func NewAnswerKeyLoader(pool *pgxpool.Pool) *AnswerKeyLoader {
	return &AnswerKeyLoader{pool: pool}
}

func (l *AnswerKeyLoader) LoadAnswerKey(ctx context.Context, questionID string) (domain.AnswerKey, error) {
	var (
		key     = domain.AnswerKey{QuestionID: questionID}
		options []byte
	)
	err := l.pool.QueryRow(ctx,
		`SELECT correct_answer, points, explanation, options FROM questions WHERE id=$1`,
		questionID,
	).Scan(&key.CorrectAnswer, &key.Points, &key.Explanation, &options)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AnswerKey{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.AnswerKey{}, fmt.Errorf("load answer key: %w", err)
	}
	var opts []domain.Option
	if err := json.Unmarshal(options, &opts); err != nil {
		return domain.AnswerKey{}, fmt.Errorf("unmarshal options: %w", err)
	}
	key.OptionExplanations = make([]string, len(opts))
	for i, o := range opts {
		key.OptionExplanations[i] = o.Explanation
	}
	return key, nil
}
