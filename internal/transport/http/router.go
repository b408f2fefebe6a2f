package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"mcq-assessment-service/internal/app"
	"mcq-assessment-service/internal/auth"
)

// RouterConfig wires the use cases into the HTTP surface.
type RouterConfig struct {
	Questions   *app.QuestionService
	Assessments *app.AssessmentService
	Auth        *auth.Service
	CORSOrigins []string
	// MaxImportBytes caps import request bodies; zero means DefaultMaxImportBytes.
	MaxImportBytes int64
	// Health reports backing store reachability; nil means always healthy.
	Health func(ctx context.Context) error
}

// DefaultMaxImportBytes is the import body limit when none is configured.
const DefaultMaxImportBytes = 5 << 20

// Handler serves the /api/mcqs endpoints.
type Handler struct {
	questions   *app.QuestionService
	assessments *app.AssessmentService
	validate    *validator.Validate
	upgrader    websocket.Upgrader
	importLimit int64
}

func NewHandler(questions *app.QuestionService, assessments *app.AssessmentService) *Handler {
	return &Handler{
		questions:   questions,
		assessments: assessments,
		validate:    validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		importLimit: DefaultMaxImportBytes,
	}
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := NewHandler(cfg.Questions, cfg.Assessments)
	if cfg.MaxImportBytes > 0 {
		h.importLimit = cfg.MaxImportBytes
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", healthz(cfg.Health))

	authn := auth.Middleware(cfg.Auth, false, writeStatusError)
	admin := auth.RequireRole(writeStatusError, auth.RoleAdmin)
	importer := auth.RequireRole(writeStatusError, auth.RoleAdmin, auth.RoleInstructor)

	r.Route("/api/mcqs", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/interview", h.Interview)
		r.Get("/skill/{skill}", h.BySkill)

		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Get("/progress", h.Progress)
			r.Post("/complete-test", h.CompleteTest)
			r.Post("/{id}/submit", h.Submit)

			r.With(admin).Post("/", h.Create)
			r.With(admin).Put("/{id}", h.Update)
			r.With(admin).Delete("/{id}", h.Delete)
			r.With(admin).Get("/admin/all", h.AdminList)
			r.With(importer).Post("/import", h.Import)
			r.With(admin).Post("/import/technology/{techId}", h.ImportForTechnology)
		})

		r.With(auth.Middleware(cfg.Auth, true, writeStatusError)).Get("/progress/live", h.ServeProgressWS)

		r.Get("/{id}", h.Get)
	})
	return r
}

func healthz(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
