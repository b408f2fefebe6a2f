package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"mcq-assessment-service/internal/domain"
)

func TestCompletionGuardSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	guard := NewCompletionGuard(newClient(mr), time.Minute)

	release, err := guard.Acquire(context.Background(), "u1:c1::t1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !mr.Exists("mcq:complete:u1:c1::t1") {
		t.Fatalf("expected redis key to be set")
	}
	if _, err := guard.Acquire(context.Background(), "u1:c1::t1"); !errors.Is(err, domain.ErrCompletionInProgress) {
		t.Fatalf("expected in-progress error, got %v", err)
	}

	release()
	if mr.Exists("mcq:complete:u1:c1::t1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestCompletionGuardExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	guard := NewCompletionGuard(newClient(mr), time.Second)
	if _, err := guard.Acquire(context.Background(), "k"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	mr.FastForward(2 * time.Second)
	if _, err := guard.Acquire(context.Background(), "k"); err != nil {
		t.Fatalf("expected lock to expire, got %v", err)
	}
}
