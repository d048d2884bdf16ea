package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medichain-agent-server/internal/domain"
)

const researchReply = `{
	"supported": true,
	"evidence_level": "high",
	"key_findings": ["Well documented presentation"],
	"recommendations": ["Antiviral therapy within 48 hours"]
}`

// countingSearcher records queries and returns canned articles
type countingSearcher struct {
	calls    int
	queries  []string
	articles []domain.Article
	err      error
}

func (s *countingSearcher) Search(ctx context.Context, query string, maxResults int) ([]domain.Article, error) {
	s.calls++
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.articles, nil
}

func newTestValidator(t *testing.T, model ModelClient, searcher domain.LiteratureSearcher) *KnowledgeValidator {
	t.Helper()
	validator, err := NewKnowledgeValidator(model, searcher, 16, 5, quietLogger())
	require.NoError(t, err)
	return validator
}

func TestValidateDiagnosesMapsResearchReply(t *testing.T) {
	model := &scriptedModel{replies: []string{researchReply}}
	searcher := &countingSearcher{articles: []domain.Article{
		{Title: "Influenza management", URL: "https://pubmed.ncbi.nlm.nih.gov/1/"},
	}}
	validator := newTestValidator(t, model, searcher)

	result, err := validator.ValidateDiagnoses(context.Background(), []domain.Diagnosis{influenza()}, testPatient())

	require.NoError(t, err)
	require.Len(t, result.Validations, 1)
	v := result.Validations[0]
	assert.Equal(t, "Influenza", v.Diagnosis)
	assert.True(t, v.Supported)
	assert.Equal(t, domain.EvidenceHigh, v.EvidenceLevel)
	assert.Equal(t, []string{"Antiviral therapy within 48 hours"}, v.Recommendations)
	require.Len(t, v.Sources, 1)
	assert.Equal(t, 1, result.EvidenceSummary.TotalSources)
	assert.Equal(t, domain.EvidenceHigh, result.EvidenceSummary.AvgEvidenceLevel)
	assert.Contains(t, model.requests[0].Prompt, "Influenza diagnosis treatment guidelines")
	assert.Contains(t, model.requests[0].Prompt, "Influenza management")
}

func TestValidateDiagnosesCapsAtTopThree(t *testing.T) {
	model := &scriptedModel{replies: []string{researchReply}}
	searcher := &countingSearcher{}
	validator := newTestValidator(t, model, searcher)

	diagnoses := []domain.Diagnosis{
		{Name: "Influenza"},
		{Name: "Pneumonia"},
		{Name: "Bronchitis"},
		{Name: "COVID-19"},
		{Name: "Common cold"},
	}
	result, err := validator.ValidateDiagnoses(context.Background(), diagnoses, testPatient())

	require.NoError(t, err)
	require.Len(t, result.Validations, 3)
	assert.Equal(t, "Influenza", result.Validations[0].Diagnosis)
	assert.Equal(t, "Pneumonia", result.Validations[1].Diagnosis)
	assert.Equal(t, "Bronchitis", result.Validations[2].Diagnosis)
	assert.Equal(t, 3, searcher.calls)
	assert.Len(t, model.requests, 3)
}

func TestValidateDiagnosesCachesLiteratureLookups(t *testing.T) {
	model := &scriptedModel{replies: []string{researchReply}}
	searcher := &countingSearcher{articles: []domain.Article{{Title: "A"}}}
	validator := newTestValidator(t, model, searcher)
	diagnoses := []domain.Diagnosis{influenza()}

	_, err := validator.ValidateDiagnoses(context.Background(), diagnoses, testPatient())
	require.NoError(t, err)
	_, err = validator.ValidateDiagnoses(context.Background(), diagnoses, testPatient())
	require.NoError(t, err)

	assert.Equal(t, 1, searcher.calls)
}

func TestValidateDiagnosesSearchFailureIsBestEffort(t *testing.T) {
	model := &scriptedModel{replies: []string{researchReply}}
	searcher := &countingSearcher{err: errors.New("pubmed unavailable")}
	validator := newTestValidator(t, model, searcher)

	result, err := validator.ValidateDiagnoses(context.Background(), []domain.Diagnosis{influenza()}, testPatient())

	require.NoError(t, err)
	require.Len(t, result.Validations, 1)
	assert.Empty(t, result.Validations[0].Sources)
	assert.Equal(t, 0, result.EvidenceSummary.TotalSources)
	assert.True(t, result.Validations[0].Supported)
}

func TestValidateDiagnosesNilSearcher(t *testing.T) {
	model := &scriptedModel{replies: []string{researchReply}}
	validator := newTestValidator(t, model, nil)

	result, err := validator.ValidateDiagnoses(context.Background(), []domain.Diagnosis{influenza()}, testPatient())

	require.NoError(t, err)
	require.Len(t, result.Validations, 1)
	assert.Empty(t, result.Validations[0].Sources)
}

func TestValidateDiagnosesModelFailureKeepsUnknownEvidence(t *testing.T) {
	model := &scriptedModel{
		replies: []string{""},
		errs:    []error{&domain.ProviderError{Provider: "fake", Message: "down"}},
	}
	validator := newTestValidator(t, model, &countingSearcher{})

	result, err := validator.ValidateDiagnoses(context.Background(), []domain.Diagnosis{influenza()}, testPatient())

	require.NoError(t, err)
	require.Len(t, result.Validations, 1)
	assert.Equal(t, domain.EvidenceUnknown, result.Validations[0].EvidenceLevel)
	assert.False(t, result.Validations[0].Supported)
	assert.Equal(t, domain.EvidenceUnknown, result.EvidenceSummary.AvgEvidenceLevel)
}

func TestValidateDiagnosesAggregatesMixedEvidence(t *testing.T) {
	highReply := researchReply
	lowReply := `{"supported": false, "evidence_level": "low", "key_findings": [], "recommendations": []}`
	model := &scriptedModel{replies: []string{highReply, lowReply}}
	validator := newTestValidator(t, model, &countingSearcher{})

	diagnoses := []domain.Diagnosis{{Name: "Influenza"}, {Name: "Pneumonia"}}
	result, err := validator.ValidateDiagnoses(context.Background(), diagnoses, testPatient())

	require.NoError(t, err)
	// (3 + 1) / 2 = 2.0 which buckets to medium
	assert.Equal(t, domain.EvidenceMedium, result.EvidenceSummary.AvgEvidenceLevel)
}

func TestValidateDiagnosesHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	validator := newTestValidator(t, &scriptedModel{replies: []string{researchReply}}, &countingSearcher{})

	_, err := validator.ValidateDiagnoses(ctx, []domain.Diagnosis{influenza()}, testPatient())

	assert.ErrorIs(t, err, context.Canceled)
}
