package domain

import "testing"

func TestSyncCorrectFlags(t *testing.T) {
	q := Question{
		Options: []Option{
			{Text: "2", IsCorrect: true},
			{Text: "3"},
			{Text: "4", IsCorrect: true},
		},
		CorrectAnswer: 1,
	}
	q.SyncCorrectFlags()
	for i, o := range q.Options {
		if o.IsCorrect != (i == 1) {
			t.Fatalf("option %d: expected isCorrect=%v, got %v", i, i == 1, o.IsCorrect)
		}
	}
}

func TestPublicStripsSecrets(t *testing.T) {
	q := Question{
		ID:            "q1",
		Text:          "2 + 1?",
		Options:       []Option{{Text: "2", Explanation: "no"}, {Text: "3", IsCorrect: true, Explanation: "yes"}},
		CorrectAnswer: 1,
		Explanation:   "arithmetic",
	}
	pub := q.Public()
	if len(pub.Options) != 2 || pub.Options[1].Text != "3" {
		t.Fatalf("unexpected options %+v", pub.Options)
	}
}

func TestFilterSkillOrTagIsCaseInsensitive(t *testing.T) {
	q := Question{IsActive: true, Skill: "Go", Tags: []string{"Concurrency"}}
	if !(QuestionFilter{SkillOrTag: "go"}).Matches(q) {
		t.Fatalf("expected skill match")
	}
	if !(QuestionFilter{SkillOrTag: "CONCURRENCY"}).Matches(q) {
		t.Fatalf("expected tag match")
	}
	if (QuestionFilter{SkillOrTag: "rust"}).Matches(q) {
		t.Fatalf("unexpected match")
	}
	q.IsActive = false
	if (QuestionFilter{SkillOrTag: "go"}).Matches(q) {
		t.Fatalf("inactive question must be hidden")
	}
}

func TestNewPageClamps(t *testing.T) {
	p := NewPage(0, 1000)
	if p.Number != 1 || p.Limit != MaxPageLimit {
		t.Fatalf("unexpected page %+v", p)
	}
	if NewPage(3, 0).Offset() != 2*DefaultPageLimit {
		t.Fatalf("unexpected offset")
	}
}
