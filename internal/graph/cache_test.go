package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medichain-agent-server/internal/domain"
)

type recordingStore struct {
	historyCalls int
	history      []domain.CaseHistoryEntry
	historyErr   error
}

func (r *recordingStore) CreatePatientNode(ctx context.Context, p *domain.PatientProfile) error {
	return nil
}
func (r *recordingStore) CreateCaseNode(ctx context.Context, c *domain.Case) error { return nil }
func (r *recordingStore) AddDiagnosis(ctx context.Context, caseID string, d domain.Diagnosis) error {
	return nil
}
func (r *recordingStore) GetPatientHistory(ctx context.Context, patientID string) ([]domain.CaseHistoryEntry, error) {
	r.historyCalls++
	if r.historyErr != nil {
		return nil, r.historyErr
	}
	return r.history, nil
}
func (r *recordingStore) Close(ctx context.Context) error { return nil }

func testGraphLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestCachedStoreServesHistoryFromCache(t *testing.T) {
	inner := &recordingStore{history: []domain.CaseHistoryEntry{{CaseID: "case-1", Status: "completed"}}}
	store := NewCachedStore(inner, 16, time.Minute, testGraphLogger())

	first, err := store.GetPatientHistory(context.Background(), "patient-1")
	require.NoError(t, err)
	second, err := store.GetPatientHistory(context.Background(), "patient-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.historyCalls)
}

func TestCachedStoreInvalidatesOnCaseWrite(t *testing.T) {
	inner := &recordingStore{}
	store := NewCachedStore(inner, 16, time.Minute, testGraphLogger())

	_, err := store.GetPatientHistory(context.Background(), "patient-1")
	require.NoError(t, err)

	err = store.CreateCaseNode(context.Background(), &domain.Case{ID: "case-1", PatientID: "patient-1"})
	require.NoError(t, err)

	_, err = store.GetPatientHistory(context.Background(), "patient-1")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.historyCalls)
}

func TestCachedStoreInvalidatesOnDiagnosisWrite(t *testing.T) {
	inner := &recordingStore{}
	store := NewCachedStore(inner, 16, time.Minute, testGraphLogger())

	err := store.CreateCaseNode(context.Background(), &domain.Case{ID: "case-1", PatientID: "patient-1"})
	require.NoError(t, err)

	_, err = store.GetPatientHistory(context.Background(), "patient-1")
	require.NoError(t, err)

	err = store.AddDiagnosis(context.Background(), "case-1", domain.Diagnosis{Name: "Influenza"})
	require.NoError(t, err)

	_, err = store.GetPatientHistory(context.Background(), "patient-1")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.historyCalls)
}

func TestCachedStoreDoesNotCacheErrors(t *testing.T) {
	inner := &recordingStore{historyErr: errors.New("neo4j down")}
	store := NewCachedStore(inner, 16, time.Minute, testGraphLogger())

	_, err := store.GetPatientHistory(context.Background(), "patient-1")
	require.Error(t, err)
	_, err = store.GetPatientHistory(context.Background(), "patient-1")
	require.Error(t, err)

	assert.Equal(t, 2, inner.historyCalls)
}
