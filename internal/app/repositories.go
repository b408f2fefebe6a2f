package app

import (
	"context"

	"mcq-assessment-service/internal/domain"
)

// QuestionRepository stores the question bank (in-memory, Postgres, etc).
type QuestionRepository interface {
	Create(ctx context.Context, q domain.Question) error
	Get(ctx context.Context, id string) (domain.Question, error)
	Update(ctx context.Context, q domain.Question) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter domain.QuestionFilter, page domain.Page) ([]domain.Question, int, error)
	// IncrementStats bumps timesAttempted, and timesCorrect when correct, atomically.
	IncrementStats(ctx context.Context, id string, correct bool) error
}

// AttemptRepository stores attempts.
type AttemptRepository interface {
	// NextNumber atomically reserves the next attempt number for (user, question), starting at 1.
	NextNumber(ctx context.Context, userID, questionID string) (int, error)
	Create(ctx context.Context, attempt domain.Attempt) error
	// Recent returns the newest attempts of a user joined with question metadata.
	Recent(ctx context.Context, userID string, filter domain.ProgressFilter, limit int) ([]domain.AttemptView, error)
	// DeleteByQuestion removes every attempt for a question and returns how many were removed.
	DeleteByQuestion(ctx context.Context, questionID string) (int, error)
}

// CertificateRepository stores certificates.
type CertificateRepository interface {
	// IssueOnce inserts cert unless an active certificate with the same key exists.
	// It returns the stored certificate and whether this call created it.
	IssueOnce(ctx context.Context, cert domain.Certificate) (domain.Certificate, bool, error)
	FindActive(ctx context.Context, key domain.CertificateKey) (domain.Certificate, error)
}

// UserRepository is the slice of the user store the assessment flow touches.
type UserRepository interface {
	Get(ctx context.Context, id string) (domain.User, error)
	AddPoints(ctx context.Context, id string, points int) error
	AppendCertificate(ctx context.Context, id, certificateID string) error
}

// Catalog resolves display names used in certificate titles.
type Catalog interface {
	CourseTitle(ctx context.Context, id string) (string, error)
	TechnologyName(ctx context.Context, id string) (string, error)
}

// AnswerKeyLoader fetches the scoring view of a question from a backing store.
type AnswerKeyLoader interface {
	LoadAnswerKey(ctx context.Context, questionID string) (domain.AnswerKey, error)
}

// AnswerKeys serves answer keys on the scoring hot path (cache in front of a loader).
type AnswerKeys interface {
	AnswerKey(ctx context.Context, questionID string) (domain.AnswerKey, error)
	Invalidate(ctx context.Context, questionID string) error
}

// CompletionGuard serializes completions of the same test by the same user.
type CompletionGuard interface {
	// Acquire returns domain.ErrCompletionInProgress when key is already held.
	Acquire(ctx context.Context, key string) (release func(), err error)
}
