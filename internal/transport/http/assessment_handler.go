package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mcq-assessment-service/internal/app"
	"mcq-assessment-service/internal/auth"
	"mcq-assessment-service/internal/domain"
)

type submitRequest struct {
	SelectedOption *int `json:"selectedOption" validate:"required,gte=0"`
	TimeTaken      int  `json:"timeTaken" validate:"gte=0"`
}

type answerRequest struct {
	QuestionID     string `json:"questionId"`
	SelectedOption *int   `json:"selectedOption" validate:"required,gte=0"`
	TimeTaken      int    `json:"timeTaken" validate:"gte=0"`
}

type completeTestRequest struct {
	Answers      []answerRequest `json:"answers" validate:"required,min=1,dive"`
	CourseID     string          `json:"courseId"`
	TechnologyID string          `json:"technologyId"`
	TestID       string          `json:"testId"`
}

// Submit handles POST /api/mcqs/{id}/submit.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, "submit answer", err)
		return
	}
	res, err := h.assessments.Submit(r.Context(), auth.UserID(r.Context()), app.Submission{
		QuestionID:     chi.URLParam(r, "id"),
		SelectedOption: *req.SelectedOption,
		TimeTaken:      req.TimeTaken,
	})
	if err != nil {
		writeError(w, r, "submit answer", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CompleteTest handles POST /api/mcqs/complete-test.
func (h *Handler) CompleteTest(w http.ResponseWriter, r *http.Request) {
	var req completeTestRequest
	if err := h.decode(r, &req); err != nil {
		writeError(w, r, "complete test", err)
		return
	}
	answers := make([]app.Submission, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = app.Submission{QuestionID: a.QuestionID, SelectedOption: *a.SelectedOption, TimeTaken: a.TimeTaken}
	}
	res, err := h.assessments.CompleteTest(r.Context(), auth.UserID(r.Context()), app.CompleteTestRequest{
		Answers:      answers,
		CourseID:     req.CourseID,
		TechnologyID: req.TechnologyID,
		TestID:       req.TestID,
	})
	if err != nil {
		writeError(w, r, "complete test", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Progress handles GET /api/mcqs/progress.
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if err := h.validate.Var(category, "omitempty,oneof=course skill interview certification"); err != nil {
		writeError(w, r, "fetch progress", err)
		return
	}
	res, err := h.assessments.Progress(r.Context(), auth.UserID(r.Context()), domain.ProgressFilter{
		Category: domain.Category(category),
		Skill:    r.URL.Query().Get("skill"),
	})
	if err != nil {
		writeError(w, r, "fetch progress", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
