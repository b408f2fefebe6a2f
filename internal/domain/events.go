package domain

import "time"

// ProgressEventType names the kind of progress update pushed to live subscribers.
type ProgressEventType string

const (
	EventAttemptRecorded ProgressEventType = "attemptRecorded"
	EventTestCompleted   ProgressEventType = "testCompleted"
)

// ProgressEvent is pushed to a user's live progress subscribers.
type ProgressEvent struct {
	Type          ProgressEventType `json:"type"`
	UserID        string            `json:"userId"`
	QuestionID    string            `json:"questionId,omitempty"`
	IsCorrect     bool              `json:"isCorrect,omitempty"`
	AttemptNumber int               `json:"attemptNumber,omitempty"`
	PointsEarned  int               `json:"pointsEarned"`
	Score         int               `json:"score,omitempty"`
	Passed        bool              `json:"passed,omitempty"`
	CertificateID string            `json:"certificateId,omitempty"`
	At            time.Time         `json:"at"`
}
