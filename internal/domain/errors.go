package domain

import "errors"

var (
	// ErrQuestionNotFound indicates a question id does not resolve.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrUserNotFound is returned when points or certificates target an unknown user.
	ErrUserNotFound = errors.New("user not found")
	// ErrCertificateNotFound is returned by certificate lookups that match nothing.
	ErrCertificateNotFound = errors.New("certificate not found")
	// ErrValidation wraps every input problem the caller can fix.
	ErrValidation = errors.New("validation failed")
	// ErrCompletionInProgress rejects a second concurrent completion of the same test.
	ErrCompletionInProgress = errors.New("test completion already in progress")
)
