package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mcq-assessment-service/internal/config"
	"mcq-assessment-service/internal/domain"
)

const (
	// PassingScore is the minimum percentage that passes a test batch.
	PassingScore = 70
	// ProgressWindow bounds how many recent attempts progress aggregation reads.
	ProgressWindow = 100
	// RecentAttempts is how many attempts the progress response lists.
	RecentAttempts = 20
)

// AssessmentDeps wires the stores the assessment flow needs.
type AssessmentDeps struct {
	Questions    QuestionRepository
	AnswerKeys   AnswerKeys
	Attempts     AttemptRepository
	Certificates CertificateRepository
	Users        UserRepository
	Catalog      Catalog
	Guard        CompletionGuard
	Hub          *ProgressHub
}

// AssessmentService scores answers, issues certificates and aggregates progress.
type AssessmentService struct {
	questions    QuestionRepository
	keys         AnswerKeys
	attempts     AttemptRepository
	certificates CertificateRepository
	users        UserRepository
	catalog      Catalog
	guard        CompletionGuard
	hub          *ProgressHub
	now          func() time.Time
}

func NewAssessmentService(deps AssessmentDeps) *AssessmentService {
	return NewAssessmentServiceWithClock(deps, time.Now)
}

// NewAssessmentServiceWithClock allows deterministic timestamps in tests.
func NewAssessmentServiceWithClock(deps AssessmentDeps, now func() time.Time) *AssessmentService {
	hub := deps.Hub
	if hub == nil {
		hub = NewProgressHub()
	}
	return &AssessmentService{
		questions:    deps.Questions,
		keys:         deps.AnswerKeys,
		attempts:     deps.Attempts,
		certificates: deps.Certificates,
		users:        deps.Users,
		catalog:      deps.Catalog,
		guard:        deps.Guard,
		hub:          hub,
		now:          now,
	}
}

// Hub exposes the live progress hub for transports.
func (s *AssessmentService) Hub() *ProgressHub {
	return s.hub
}

// Submission is a single answer to a single question.
type Submission struct {
	QuestionID     string
	SelectedOption int
	TimeTaken      int
}

// SubmitResult is the outcome of one answer.
type SubmitResult struct {
	IsCorrect          bool     `json:"isCorrect"`
	CorrectAnswer      int      `json:"correctAnswer"`
	Explanation        string   `json:"explanation,omitempty"`
	OptionExplanations []string `json:"optionExplanations,omitempty"`
	PointsEarned       int      `json:"pointsEarned"`
	AttemptNumber      int      `json:"attemptNumber"`
}

// Submit scores one answer, records the attempt and awards points on a correct first attempt.
func (s *AssessmentService) Submit(ctx context.Context, userID string, sub Submission) (SubmitResult, error) {
	if sub.SelectedOption < 0 {
		return SubmitResult{}, fmt.Errorf("%w: selectedOption must be a non-negative index", domain.ErrValidation)
	}
	key, err := s.keys.AnswerKey(ctx, sub.QuestionID)
	if err != nil {
		return SubmitResult{}, err
	}

	correct := sub.SelectedOption == key.CorrectAnswer
	attempt, err := s.record(ctx, userID, sub, correct, func(number int) int {
		return firstCorrectPoints(correct, key.Points, number-1)
	})
	if err != nil {
		return SubmitResult{}, err
	}
	earned := attempt.PointsEarned

	if err := s.questions.IncrementStats(ctx, sub.QuestionID, correct); err != nil {
		return SubmitResult{}, fmt.Errorf("increment stats: %w", err)
	}
	if earned > 0 {
		if err := s.users.AddPoints(ctx, userID, earned); err != nil {
			return SubmitResult{}, fmt.Errorf("award points: %w", err)
		}
	}

	s.hub.Publish(domain.ProgressEvent{
		Type:          domain.EventAttemptRecorded,
		UserID:        userID,
		QuestionID:    sub.QuestionID,
		IsCorrect:     correct,
		AttemptNumber: attempt.AttemptNumber,
		PointsEarned:  earned,
		At:            attempt.CreatedAt,
	})

	return SubmitResult{
		IsCorrect:          correct,
		CorrectAnswer:      key.CorrectAnswer,
		Explanation:        key.Explanation,
		OptionExplanations: key.OptionExplanations,
		PointsEarned:       earned,
		AttemptNumber:      attempt.AttemptNumber,
	}, nil
}

// record reserves an attempt number and stores the attempt. points, when set, decides
// PointsEarned from the reserved number.
func (s *AssessmentService) record(ctx context.Context, userID string, sub Submission, correct bool, points func(number int) int) (domain.Attempt, error) {
	number, err := s.attempts.NextNumber(ctx, userID, sub.QuestionID)
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("reserve attempt number: %w", err)
	}
	attempt := domain.Attempt{
		ID:             uuid.NewString(),
		UserID:         userID,
		QuestionID:     sub.QuestionID,
		SelectedOption: sub.SelectedOption,
		IsCorrect:      correct,
		TimeTaken:      sub.TimeTaken,
		AttemptNumber:  number,
		CreatedAt:      s.now(),
	}
	if points != nil {
		attempt.PointsEarned = points(number)
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		return domain.Attempt{}, fmt.Errorf("record attempt: %w", err)
	}
	return attempt, nil
}

// firstCorrectPoints returns the points a correct answer earns given how many attempts preceded it.
func firstCorrectPoints(correct bool, points, prior int) int {
	if !correct || prior != 0 {
		return 0
	}
	return points
}

// CompleteTestRequest is a batch of answers plus what the batch certifies.
type CompleteTestRequest struct {
	Answers      []Submission
	CourseID     string
	TechnologyID string
	TestID       string
}

// QuestionResult is the per-question feedback of a completed test.
type QuestionResult struct {
	QuestionID         string   `json:"questionId"`
	SelectedOption     int      `json:"selectedOption"`
	CorrectAnswer      int      `json:"correctAnswer"`
	IsCorrect          bool     `json:"isCorrect"`
	Explanation        string   `json:"explanation,omitempty"`
	OptionExplanations []string `json:"optionExplanations,omitempty"`
	AttemptNumber      int      `json:"attemptNumber"`
}

// CompleteTestResult summarizes a scored batch.
type CompleteTestResult struct {
	Score          int                 `json:"score"`
	Passed         bool                `json:"passed"`
	CorrectAnswers int                 `json:"correctAnswers"`
	TotalQuestions int                 `json:"totalQuestions"`
	Results        []QuestionResult    `json:"results"`
	Certificate    *domain.Certificate `json:"certificate"`
	NewCertificate bool                `json:"newCertificate"`
	Message        string              `json:"message"`
}

// CompleteTest scores a batch of answers and issues a certificate when it passes.
func (s *AssessmentService) CompleteTest(ctx context.Context, userID string, req CompleteTestRequest) (CompleteTestResult, error) {
	if len(req.Answers) == 0 {
		return CompleteTestResult{}, fmt.Errorf("%w: answers must be a non-empty array", domain.ErrValidation)
	}

	certKey := domain.CertificateKey{UserID: userID, CourseID: req.CourseID, TechnologyID: req.TechnologyID, TestID: req.TestID}
	release, err := s.guard.Acquire(ctx, certKey.String())
	if err != nil {
		return CompleteTestResult{}, err
	}
	defer release()

	log := config.WithContext(ctx)
	correctCount := 0
	results := make([]QuestionResult, 0, len(req.Answers))
	for _, ans := range req.Answers {
		key, err := s.keys.AnswerKey(ctx, ans.QuestionID)
		if errors.Is(err, domain.ErrQuestionNotFound) {
			log.WithField("question_id", ans.QuestionID).Warn("skipping unknown question in test batch")
			continue
		}
		if err != nil {
			return CompleteTestResult{}, err
		}

		correct := ans.SelectedOption == key.CorrectAnswer
		if correct {
			correctCount++
		}
		attempt, err := s.record(ctx, userID, ans, correct, nil)
		if err != nil {
			return CompleteTestResult{}, err
		}
		if err := s.questions.IncrementStats(ctx, ans.QuestionID, correct); err != nil {
			return CompleteTestResult{}, fmt.Errorf("increment stats: %w", err)
		}
		results = append(results, QuestionResult{
			QuestionID:         ans.QuestionID,
			SelectedOption:     ans.SelectedOption,
			CorrectAnswer:      key.CorrectAnswer,
			IsCorrect:          correct,
			Explanation:        key.Explanation,
			OptionExplanations: key.OptionExplanations,
			AttemptNumber:      attempt.AttemptNumber,
		})
	}

	total := len(req.Answers)
	score := Score(correctCount, total)
	out := CompleteTestResult{
		Score:          score,
		Passed:         score >= PassingScore,
		CorrectAnswers: correctCount,
		TotalQuestions: total,
		Results:        results,
	}

	if !out.Passed {
		out.Message = fmt.Sprintf("You scored %d%%. A score of %d%% is required to earn a certificate.", score, PassingScore)
		s.publishCompletion(userID, out)
		return out, nil
	}

	cert, created, err := s.issueCertificate(ctx, certKey, out)
	if err != nil {
		return CompleteTestResult{}, err
	}
	out.Certificate = &cert
	out.NewCertificate = created
	if created {
		out.Message = fmt.Sprintf("Congratulations! You passed with %d%% and earned a certificate.", score)
	} else {
		out.Message = fmt.Sprintf("You passed with %d%%. You already hold a certificate for this test.", score)
	}
	s.publishCompletion(userID, out)
	return out, nil
}

// Score is round(correct / total * 100); zero when total is zero.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func (s *AssessmentService) issueCertificate(ctx context.Context, key domain.CertificateKey, res CompleteTestResult) (domain.Certificate, bool, error) {
	title, description, typ, tags := s.describe(ctx, key, res.Score)
	cert, created, err := s.certificates.IssueOnce(ctx, domain.Certificate{
		ID:             uuid.NewString(),
		UserID:         key.UserID,
		Type:           typ,
		CourseID:       key.CourseID,
		TechnologyID:   key.TechnologyID,
		TestID:         key.TestID,
		Title:          title,
		Description:    description,
		Score:          res.Score,
		TotalQuestions: res.TotalQuestions,
		CorrectAnswers: res.CorrectAnswers,
		Tags:           tags,
		Status:         domain.CertificateActive,
		IssuedAt:       s.now(),
	})
	if err != nil {
		return domain.Certificate{}, false, fmt.Errorf("issue certificate: %w", err)
	}
	if !created {
		return cert, false, nil
	}

	if err := s.users.AppendCertificate(ctx, key.UserID, cert.ID); err != nil {
		return domain.Certificate{}, false, fmt.Errorf("append certificate: %w", err)
	}
	if err := s.users.AddPoints(ctx, key.UserID, res.Score); err != nil {
		return domain.Certificate{}, false, fmt.Errorf("award certificate points: %w", err)
	}
	config.WithContext(ctx).WithFields(logrus.Fields{
		"user_id":        key.UserID,
		"certificate_id": cert.ID,
		"score":          res.Score,
	}).Info("certificate issued")
	return cert, true, nil
}

// describe derives certificate title, description, type and tags from what the test covered.
func (s *AssessmentService) describe(ctx context.Context, key domain.CertificateKey, score int) (string, string, domain.CertificateType, []string) {
	switch {
	case key.CourseID != "":
		name := s.lookup(ctx, key.CourseID, s.catalog.CourseTitle, "Course")
		return "Course Completion: " + name,
			fmt.Sprintf("Successfully completed the %s course assessment with a score of %d%%.", name, score),
			domain.CertificateCourse,
			[]string{"course-completion"}
	case key.TechnologyID != "":
		name := s.lookup(ctx, key.TechnologyID, s.catalog.TechnologyName, "Technology")
		return "Technology Assessment: " + name,
			fmt.Sprintf("Demonstrated proficiency in %s with a score of %d%%.", name, score),
			domain.CertificateTechnology,
			[]string{"technology-assessment"}
	default:
		return "Test Completion Certificate",
			fmt.Sprintf("Successfully completed the assessment with a score of %d%%.", score),
			domain.CertificateTest,
			[]string{"test-completion"}
	}
}

func (s *AssessmentService) lookup(ctx context.Context, id string, fn func(context.Context, string) (string, error), fallback string) string {
	name, err := fn(ctx, id)
	if err != nil || name == "" {
		if err != nil {
			config.WithContext(ctx).WithError(err).WithField("id", id).Warn("catalog lookup failed")
		}
		return fallback
	}
	return name
}

func (s *AssessmentService) publishCompletion(userID string, res CompleteTestResult) {
	ev := domain.ProgressEvent{
		Type:   domain.EventTestCompleted,
		UserID: userID,
		Score:  res.Score,
		Passed: res.Passed,
		At:     s.now(),
	}
	if res.Certificate != nil {
		ev.CertificateID = res.Certificate.ID
		if res.NewCertificate {
			ev.PointsEarned = res.Score
		}
	}
	s.hub.Publish(ev)
}

// CategoryStats tallies attempts within one question category.
type CategoryStats struct {
	Total    int `json:"total"`
	Correct  int `json:"correct"`
	Accuracy int `json:"accuracy"`
}

// ProgressStats aggregates a user's attempt window.
type ProgressStats struct {
	TotalAttempts   int `json:"totalAttempts"`
	CorrectAttempts int `json:"correctAttempts"`
	Accuracy        int `json:"accuracy"`
	TotalPoints     int `json:"totalPoints"`
}

// Progress is the aggregated view of a user's recent attempts.
type Progress struct {
	Stats          ProgressStats                     `json:"stats"`
	CategoryStats  map[domain.Category]CategoryStats `json:"categoryStats"`
	RecentAttempts []domain.AttemptView              `json:"recentAttempts"`
}

// Progress aggregates the user's last ProgressWindow attempts matching filter.
func (s *AssessmentService) Progress(ctx context.Context, userID string, filter domain.ProgressFilter) (Progress, error) {
	views, err := s.attempts.Recent(ctx, userID, filter, ProgressWindow)
	if err != nil {
		return Progress{}, fmt.Errorf("load attempts: %w", err)
	}
	return Aggregate(views), nil
}

// Aggregate folds attempts (newest first) into progress stats.
func Aggregate(views []domain.AttemptView) Progress {
	out := Progress{
		CategoryStats:  make(map[domain.Category]CategoryStats),
		RecentAttempts: make([]domain.AttemptView, 0, RecentAttempts),
	}
	for i, v := range views {
		out.Stats.TotalAttempts++
		out.Stats.TotalPoints += v.PointsEarned
		cs := out.CategoryStats[v.Category]
		cs.Total++
		if v.IsCorrect {
			out.Stats.CorrectAttempts++
			cs.Correct++
		}
		out.CategoryStats[v.Category] = cs
		if i < RecentAttempts {
			out.RecentAttempts = append(out.RecentAttempts, v)
		}
	}
	out.Stats.Accuracy = Score(out.Stats.CorrectAttempts, out.Stats.TotalAttempts)
	for c, cs := range out.CategoryStats {
		cs.Accuracy = Score(cs.Correct, cs.Total)
		out.CategoryStats[c] = cs
	}
	return out
}
