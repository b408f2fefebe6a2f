package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"mcq-assessment-service/internal/domain"
)

// UserStore implements app.UserRepository against the users table.
type UserStore struct {
	db bun.IDB
}

func NewUserStore(db bun.IDB) *UserStore {
	return &UserStore{db: db}
}

// Put inserts or replaces a user profile. Used for seeding.
func (s *UserStore) Put(ctx context.Context, u domain.User) error {
	certs := u.Certificates
	if certs == nil {
		certs = []string{}
	}
	row := userRow{ID: u.ID, Name: u.Name, Role: u.Role, TotalPoints: u.TotalPoints, Certificates: certs}
	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("role = EXCLUDED.role").
		Exec(ctx)
	return err
}

func (s *UserStore) Get(ctx context.Context, id string) (domain.User, error) {
	var row userRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:           row.ID,
		Name:         row.Name,
		Role:         row.Role,
		TotalPoints:  row.TotalPoints,
		Certificates: row.Certificates,
	}, nil
}

func (s *UserStore) AddPoints(ctx context.Context, id string, points int) error {
	res, err := s.db.NewUpdate().
		Model((*userRow)(nil)).
		Set("total_points = total_points + ?", points).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, domain.ErrUserNotFound)
}

func (s *UserStore) AppendCertificate(ctx context.Context, id, certificateID string) error {
	res, err := s.db.NewUpdate().
		Model((*userRow)(nil)).
		Set("certificates = array_append(certificates, ?)", certificateID).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, domain.ErrUserNotFound)
}
