package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleUser       = "user"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims carries the authenticated user id and role.
type Claims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and verifies HS256 bearer tokens.
type Service struct {
	hmac   []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewService(secret, issuer string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Service{hmac: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

func (s *Service) IssueJWT(sub, role string) (string, error) {
	now := s.now()
	claims := &Claims{
		Sub:  sub,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.hmac)
}

func (s *Service) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.hmac, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.Sub == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}

type ctxKey struct{}

// WithClaims stores c on ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the claims placed by Middleware.
func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok && c != nil
}

// UserID returns the authenticated subject or "".
func UserID(ctx context.Context) string {
	if c, ok := FromContext(ctx); ok {
		return c.Sub
	}
	return ""
}

// Middleware requires a valid bearer token. When allowQuery is set the token may also
// arrive as ?access_token=, which browsers need for websocket upgrades.
func Middleware(s *Service, allowQuery bool, onError func(http.ResponseWriter, int, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearer(r)
			if raw == "" && allowQuery {
				raw = r.URL.Query().Get("access_token")
			}
			if raw == "" {
				onError(w, http.StatusUnauthorized, ErrMissingToken)
				return
			}
			claims, err := s.Parse(raw)
			if err != nil {
				onError(w, http.StatusUnauthorized, ErrInvalidToken)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole rejects requests whose role is not listed. It must run after Middleware.
func RequireRole(onError func(http.ResponseWriter, int, error), roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := FromContext(r.Context())
			if !ok {
				onError(w, http.StatusUnauthorized, ErrMissingToken)
				return
			}
			for _, role := range roles {
				if c.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			onError(w, http.StatusForbidden, errors.New("insufficient role"))
		})
	}
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}
