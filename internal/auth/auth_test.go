package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-that-is-long-enough"

func TestIssueAndParse(t *testing.T) {
	s := NewService(testSecret, "mcq-test", time.Minute)
	tok, err := s.IssueJWT("user-1", RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, err := s.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Sub != "user-1" || c.Role != RoleAdmin {
		t.Fatalf("unexpected claims %+v", c)
	}
}

func TestParseRejectsExpiredAndForeignTokens(t *testing.T) {
	s := NewService(testSecret, "mcq-test", time.Minute)
	s.now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, err := s.IssueJWT("user-1", RoleUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := s.Parse(tok); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}

	other := NewService("another-secret-value", "mcq-test", time.Minute)
	tok, _ = other.IssueJWT("user-1", RoleUser)
	if _, err := s.Parse(tok); err == nil {
		t.Fatalf("expected signature error")
	}
}

func recordError(w http.ResponseWriter, status int, err error) {
	http.Error(w, err.Error(), status)
}

func TestMiddlewareAndRoles(t *testing.T) {
	s := NewService(testSecret, "mcq-test", time.Minute)
	var seen string
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := Middleware(s, false, recordError)(RequireRole(recordError, RoleAdmin, RoleInstructor)(ok))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}

	userTok, _ := s.IssueJWT("u1", RoleUser)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+userTok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("user role: expected 403, got %d", rec.Code)
	}

	instTok, _ := s.IssueJWT("i1", RoleInstructor)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+instTok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || seen != "i1" {
		t.Fatalf("instructor: got %d seen=%q", rec.Code, seen)
	}
}

func TestMiddlewareQueryToken(t *testing.T) {
	s := NewService(testSecret, "mcq-test", time.Minute)
	tok, _ := s.IssueJWT("u1", RoleUser)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/?access_token="+tok, nil)
	rec := httptest.NewRecorder()
	Middleware(s, false, recordError)(ok).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("query token without opt-in: expected 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	Middleware(s, true, recordError)(ok).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("query token with opt-in: expected 200, got %d", rec.Code)
	}
}
