package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"mcq-assessment-service/internal/config"
	"mcq-assessment-service/internal/domain"
)

type errorBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		config.Logger().WithError(err).Warn("write response failed")
	}
}

// writeStatusError is the auth middleware error hook.
func writeStatusError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Message: err.Error()})
}

// writeError maps a service error onto a status code. action completes the
// "Failed to ..." message shown for unexpected errors.
func writeError(w http.ResponseWriter, r *http.Request, action string, err error) {
	log := config.WithContext(r.Context()).WithError(err)
	var (
		verrs    validator.ValidationErrors
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verrs):
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Validation failed", Errors: fields})
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Message: fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit)})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody{Message: strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")})
	case errors.Is(err, domain.ErrQuestionNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Message: "Question not found"})
	case errors.Is(err, domain.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Message: "User not found"})
	case errors.Is(err, domain.ErrCompletionInProgress):
		writeJSON(w, http.StatusConflict, errorBody{Message: "This test is already being completed"})
	default:
		log.Error("failed to " + action)
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: "Failed to " + action, Error: err.Error()})
	}
}

// decode reads a JSON body and runs struct validation on it.
func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return invalidBody(err)
	}
	return h.validate.Struct(dst)
}

func invalidBody(err error) error {
	return fmt.Errorf("%w: invalid request body: %v", domain.ErrValidation, err)
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

func pageFrom(r *http.Request) domain.Page {
	return domain.NewPage(queryInt(r, "page"), queryInt(r, "limit"))
}
