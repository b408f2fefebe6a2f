package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"mcq-assessment-service/internal/domain"
)

// CertificateStore implements app.CertificateRepository. The certificates_active_key
// partial index is what makes IssueOnce safe across processes.
type CertificateStore struct {
	db bun.IDB
}

func NewCertificateStore(db bun.IDB) *CertificateStore {
	return &CertificateStore{db: db}
}

func (s *CertificateStore) IssueOnce(ctx context.Context, cert domain.Certificate) (domain.Certificate, bool, error) {
	row := toCertificateRow(cert)
	res, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (user_id, course_id, technology_id, test_id) WHERE status = 'active' DO NOTHING").
		Exec(ctx)
	if err != nil {
		return domain.Certificate{}, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Certificate{}, false, err
	}
	if n == 1 {
		return row.toDomain(), true, nil
	}
	existing, err := s.FindActive(ctx, cert.Key())
	if err != nil {
		return domain.Certificate{}, false, err
	}
	return existing, false, nil
}

func (s *CertificateStore) FindActive(ctx context.Context, key domain.CertificateKey) (domain.Certificate, error) {
	var row certificateRow
	err := s.db.NewSelect().
		Model(&row).
		Where("user_id = ?", key.UserID).
		Where("course_id = ?", key.CourseID).
		Where("technology_id = ?", key.TechnologyID).
		Where("test_id = ?", key.TestID).
		Where("status = ?", domain.CertificateActive).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Certificate{}, domain.ErrCertificateNotFound
	}
	if err != nil {
		return domain.Certificate{}, err
	}
	return row.toDomain(), nil
}
