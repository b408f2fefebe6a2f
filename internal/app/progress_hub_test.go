package app

import (
	"testing"

	"mcq-assessment-service/internal/domain"
)

func TestProgressHubDeliversPerUser(t *testing.T) {
	hub := NewProgressHub()
	u1, cancel1 := hub.Subscribe("u1")
	defer cancel1()
	u2, cancel2 := hub.Subscribe("u2")
	defer cancel2()

	hub.Publish(domain.ProgressEvent{Type: domain.EventAttemptRecorded, UserID: "u1", QuestionID: "q1"})

	select {
	case ev := <-u1:
		if ev.QuestionID != "q1" {
			t.Fatalf("unexpected event %+v", ev)
		}
	default:
		t.Fatalf("expected an event for u1")
	}
	select {
	case ev := <-u2:
		t.Fatalf("u2 must not see u1 events, got %+v", ev)
	default:
	}
}

func TestProgressHubDropsOldestWhenFull(t *testing.T) {
	hub := NewProgressHub()
	ch, cancel := hub.Subscribe("u1")
	defer cancel()

	for i := 1; i <= 10; i++ {
		hub.Publish(domain.ProgressEvent{UserID: "u1", AttemptNumber: i})
	}
	first := <-ch
	if first.AttemptNumber != 3 {
		t.Fatalf("expected the two oldest events dropped, first is %d", first.AttemptNumber)
	}
	var last domain.ProgressEvent
	for len(ch) > 0 {
		last = <-ch
	}
	if last.AttemptNumber != 10 {
		t.Fatalf("expected newest event kept, got %d", last.AttemptNumber)
	}
}

func TestProgressHubCancel(t *testing.T) {
	hub := NewProgressHub()
	ch, cancel := hub.Subscribe("u1")
	if hub.Subscribers("u1") != 1 {
		t.Fatalf("expected one subscriber")
	}
	cancel()
	cancel()
	if hub.Subscribers("u1") != 0 {
		t.Fatalf("expected no subscribers after cancel")
	}
	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed")
	}
	hub.Publish(domain.ProgressEvent{UserID: "u1"})
}
