package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mcq-assessment-service/internal/app"
	"mcq-assessment-service/internal/auth"
	"mcq-assessment-service/internal/domain"
)

type listQuery struct {
	Category       string `validate:"omitempty,oneof=course skill interview certification"`
	Difficulty     string `validate:"omitempty,oneof=easy medium hard"`
	Skill          string
	CourseID       string
	TopicID        string
	TechnologyID   string
	InterviewLevel string
	CodeLevel      string
}

func (h *Handler) filterFrom(r *http.Request) (domain.QuestionFilter, error) {
	q := r.URL.Query()
	lq := listQuery{
		Category:       q.Get("category"),
		Difficulty:     q.Get("difficulty"),
		Skill:          q.Get("skill"),
		CourseID:       q.Get("courseId"),
		TopicID:        q.Get("topicId"),
		TechnologyID:   q.Get("technologyId"),
		InterviewLevel: q.Get("interviewLevel"),
		CodeLevel:      q.Get("codeLevel"),
	}
	if err := h.validate.Struct(lq); err != nil {
		return domain.QuestionFilter{}, err
	}
	return domain.QuestionFilter{
		Category:       domain.Category(lq.Category),
		Difficulty:     domain.Difficulty(lq.Difficulty),
		Skill:          lq.Skill,
		CourseID:       lq.CourseID,
		TopicID:        lq.TopicID,
		TechnologyID:   lq.TechnologyID,
		InterviewLevel: lq.InterviewLevel,
		CodeLevel:      lq.CodeLevel,
	}, nil
}

// List handles GET /api/mcqs.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filterFrom(r)
	if err != nil {
		writeError(w, r, "fetch questions", err)
		return
	}
	page, err := h.questions.List(r.Context(), filter, pageFrom(r))
	if err != nil {
		writeError(w, r, "fetch questions", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Interview handles GET /api/mcqs/interview.
func (h *Handler) Interview(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filterFrom(r)
	if err != nil {
		writeError(w, r, "fetch interview questions", err)
		return
	}
	page, err := h.questions.Interview(r.Context(), filter, pageFrom(r))
	if err != nil {
		writeError(w, r, "fetch interview questions", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// BySkill handles GET /api/mcqs/skill/{skill}.
func (h *Handler) BySkill(w http.ResponseWriter, r *http.Request) {
	difficulty := r.URL.Query().Get("difficulty")
	if err := h.validate.Var(difficulty, "omitempty,oneof=easy medium hard"); err != nil {
		writeError(w, r, "fetch skill questions", err)
		return
	}
	page, err := h.questions.BySkill(r.Context(), chi.URLParam(r, "skill"), domain.Difficulty(difficulty), pageFrom(r))
	if err != nil {
		writeError(w, r, "fetch skill questions", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Get handles GET /api/mcqs/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.questions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "fetch question", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// AdminList handles GET /api/mcqs/admin/all.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filterFrom(r)
	if err != nil {
		writeError(w, r, "fetch questions", err)
		return
	}
	page, err := h.questions.AdminList(r.Context(), filter, pageFrom(r))
	if err != nil {
		writeError(w, r, "fetch questions", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Create handles POST /api/mcqs.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in app.QuestionInput
	if err := h.decode(r, &in); err != nil {
		writeError(w, r, "create question", err)
		return
	}
	q, err := h.questions.Create(r.Context(), auth.UserID(r.Context()), in.ToQuestion())
	if err != nil {
		writeError(w, r, "create question", err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

// Update handles PUT /api/mcqs/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in app.QuestionUpdateInput
	if err := h.decode(r, &in); err != nil {
		writeError(w, r, "update question", err)
		return
	}
	patch, err := in.ToPatch()
	if err != nil {
		writeError(w, r, "update question", err)
		return
	}
	q, err := h.questions.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, "update question", err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Delete handles DELETE /api/mcqs/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	removed, err := h.questions.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "delete question", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "Question deleted successfully",
		"deletedAttempts": removed,
	})
}

// Import handles POST /api/mcqs/import with a single question or an array.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	items, err := decodeImport(http.MaxBytesReader(w, r.Body, h.importLimit))
	if err != nil {
		writeError(w, r, "import questions", err)
		return
	}
	res := h.questions.Import(r.Context(), auth.UserID(r.Context()), app.ToQuestions(items))
	writeImport(w, res)
}

// ImportForTechnology handles POST /api/mcqs/import/technology/{techId}.
func (h *Handler) ImportForTechnology(w http.ResponseWriter, r *http.Request) {
	items, err := decodeImport(http.MaxBytesReader(w, r.Body, h.importLimit))
	if err != nil {
		writeError(w, r, "import questions", err)
		return
	}
	res, err := h.questions.ImportForTechnology(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "techId"), app.ToQuestions(items))
	if err != nil {
		writeError(w, r, "import questions", err)
		return
	}
	writeImport(w, res)
}

type importResponse struct {
	Message string `json:"message"`
	app.ImportResult
}

func writeImport(w http.ResponseWriter, res app.ImportResult) {
	if res.Imported == 0 {
		writeJSON(w, http.StatusBadRequest, importResponse{Message: "No questions were imported", ImportResult: res})
		return
	}
	writeJSON(w, http.StatusCreated, importResponse{Message: "Questions imported", ImportResult: res})
}

// decodeImport accepts either one question object or an array of them.
func decodeImport(body io.Reader) ([]app.QuestionInput, error) {
	raw, err := io.ReadAll(body)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, err
	}
	if err != nil {
		return nil, invalidBody(err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, invalidBody(io.ErrUnexpectedEOF)
	}
	if raw[0] == '[' {
		var items []app.QuestionInput
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, invalidBody(err)
		}
		return items, nil
	}
	var item app.QuestionInput
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, invalidBody(err)
	}
	return []app.QuestionInput{item}, nil
}
