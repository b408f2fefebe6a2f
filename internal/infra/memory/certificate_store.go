package memory

import (
	"context"
	"sync"

	"mcq-assessment-service/internal/domain"
)

// CertificateStore is an in-memory implementation of app.CertificateRepository.
type CertificateStore struct {
	mu     sync.Mutex
	byID   map[string]domain.Certificate
	active map[domain.CertificateKey]string
}

func NewCertificateStore() *CertificateStore {
	return &CertificateStore{
		byID:   make(map[string]domain.Certificate),
		active: make(map[domain.CertificateKey]string),
	}
}

// IssueOnce checks and inserts under one lock, so at most one active certificate exists per key.
func (s *CertificateStore) IssueOnce(_ context.Context, cert domain.Certificate) (domain.Certificate, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.active[cert.Key()]; ok {
		return s.byID[id], false, nil
	}
	if cert.Status == "" {
		cert.Status = domain.CertificateActive
	}
	s.byID[cert.ID] = cert
	if cert.Status == domain.CertificateActive {
		s.active[cert.Key()] = cert.ID
	}
	return cert, true, nil
}

func (s *CertificateStore) FindActive(_ context.Context, key domain.CertificateKey) (domain.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.active[key]
	if !ok {
		return domain.Certificate{}, domain.ErrCertificateNotFound
	}
	return s.byID[id], nil
}

// Count reports how many certificates were issued.
func (s *CertificateStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
