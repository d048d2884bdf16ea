package graph

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/medichain-agent-server/internal/domain"
)

// CachedStore wraps a graph store with an expirable in-process cache for
// patient-history reads. Case and diagnosis writes invalidate the
// corresponding patient's entry.
type CachedStore struct {
	inner   domain.GraphStore
	history *expirable.LRU[string, []domain.CaseHistoryEntry]
	// caseOwners maps case IDs to patient IDs so diagnosis writes can
	// invalidate the right history entry
	caseOwners *expirable.LRU[string, string]
	log        *logrus.Logger
}

// NewCachedStore wraps inner with a history cache of the given size and TTL
func NewCachedStore(inner domain.GraphStore, size int, ttl time.Duration, logger *logrus.Logger) *CachedStore {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedStore{
		inner:      inner,
		history:    expirable.NewLRU[string, []domain.CaseHistoryEntry](size, nil, ttl),
		caseOwners: expirable.NewLRU[string, string](size, nil, ttl),
		log:        logger,
	}
}

func (s *CachedStore) CreatePatientNode(ctx context.Context, profile *domain.PatientProfile) error {
	return s.inner.CreatePatientNode(ctx, profile)
}

func (s *CachedStore) CreateCaseNode(ctx context.Context, c *domain.Case) error {
	if err := s.inner.CreateCaseNode(ctx, c); err != nil {
		return err
	}
	s.caseOwners.Add(c.ID, c.PatientID)
	s.history.Remove(c.PatientID)
	return nil
}

func (s *CachedStore) AddDiagnosis(ctx context.Context, caseID string, diagnosis domain.Diagnosis) error {
	if err := s.inner.AddDiagnosis(ctx, caseID, diagnosis); err != nil {
		return err
	}
	if patientID, ok := s.caseOwners.Get(caseID); ok {
		s.history.Remove(patientID)
	}
	return nil
}

func (s *CachedStore) GetPatientHistory(ctx context.Context, patientID string) ([]domain.CaseHistoryEntry, error) {
	if entries, ok := s.history.Get(patientID); ok {
		s.log.WithField("patient_id", patientID).Debug("Patient history cache hit")
		return entries, nil
	}

	entries, err := s.inner.GetPatientHistory(ctx, patientID)
	if err != nil {
		return nil, err
	}

	s.history.Add(patientID, entries)
	return entries, nil
}

func (s *CachedStore) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}
