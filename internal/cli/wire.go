package cli

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"mcq-assessment-service/internal/app"
	"mcq-assessment-service/internal/config"
	"mcq-assessment-service/internal/infra/memory"
	"mcq-assessment-service/internal/infra/postgres"
	rediscache "mcq-assessment-service/internal/infra/redis"
)

// backend holds the wired stores and services for one process.
type backend struct {
	questions   *app.QuestionService
	assessments *app.AssessmentService
	persistent  bool

	db    *bun.DB
	pool  *pgxpool.Pool
	redis *redis.Client
}

// buildBackend picks Postgres and Redis adapters when configured and falls back to
// in-memory ones otherwise.
func buildBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{}
	cacheTTL := config.TTLDuration(cfg.Cache.TTL, 10*time.Minute)
	lockTTL := config.TTLDuration(cfg.Redis.LockTTL, 30*time.Second)

	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var (
		questions    app.QuestionRepository
		attempts     app.AttemptRepository
		certificates app.CertificateRepository
		users        app.UserRepository
		catalog      app.Catalog
		loader       app.AnswerKeyLoader
	)
	if cfg.Postgres.URL != "" {
		db, err := postgres.Open(cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.db = db
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.pool = pool
		b.persistent = true

		questions = postgres.NewQuestionStore(db)
		attempts = postgres.NewAttemptStore(db)
		certificates = postgres.NewCertificateStore(db)
		users = postgres.NewUserStore(db)
		catalog = postgres.NewCatalog(db)
		loader = postgres.NewAnswerKeyLoader(pool)
	} else {
		qs := memory.NewQuestionStore()
		seedQuestions(ctx, qs)
		questions = qs
		attempts = memory.NewAttemptStore(qs)
		certificates = memory.NewCertificateStore()
		users = memory.NewUserStore(sampleUsers()...)
		catalog = memory.NewCatalog(sampleCourses(), sampleTechnologies())
		loader = qs
	}

	var (
		keys  app.AnswerKeys
		guard app.CompletionGuard
	)
	if b.redis != nil {
		keys = rediscache.NewAnswerKeyCache(b.redis, loader, cacheTTL)
		guard = rediscache.NewCompletionGuard(b.redis, lockTTL)
	} else {
		keys = memory.NewAnswerKeyCache(loader, cacheTTL)
		guard = memory.NewCompletionGuard()
	}

	b.questions = app.NewQuestionService(questions, attempts, keys)
	b.assessments = app.NewAssessmentService(app.AssessmentDeps{
		Questions:    questions,
		AnswerKeys:   keys,
		Attempts:     attempts,
		Certificates: certificates,
		Users:        users,
		Catalog:      catalog,
		Guard:        guard,
	})
	return b, nil
}

// Health pings every configured backing store.
func (b *backend) Health(ctx context.Context) error {
	if b.db != nil {
		if err := b.db.PingContext(ctx); err != nil {
			return err
		}
	}
	if b.redis != nil {
		if err := b.redis.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (b *backend) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.db != nil {
		_ = b.db.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
}
