package agents

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"

	"github.com/medichain-agent-server/internal/domain"
	"github.com/medichain-agent-server/internal/llm"
)

// topDiagnosesToValidate caps literature validation at the leading
// diagnoses, in the order the model emitted them
const topDiagnosesToValidate = 3

// KnowledgeValidator validates diagnoses against medical literature. Lookups
// go through an in-process LRU tier before hitting the literature client, so
// repeated validations of common diagnoses skip the network entirely.
type KnowledgeValidator struct {
	model      ModelClient
	literature domain.LiteratureSearcher
	cache      *lru.Cache
	maxResults int
	log        *logrus.Logger
}

// NewKnowledgeValidator creates a knowledge validator. cacheSize bounds the
// in-process literature cache; maxResults caps articles per query.
func NewKnowledgeValidator(model ModelClient, literature domain.LiteratureSearcher, cacheSize, maxResults int, logger *logrus.Logger) (*KnowledgeValidator, error) {
	if cacheSize <= 0 {
		cacheSize = 128
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating literature cache: %w", err)
	}
	return &KnowledgeValidator{
		model:      model,
		literature: literature,
		cache:      cache,
		maxResults: maxResults,
		log:        logger,
	}, nil
}

type researchPayload struct {
	Supported       bool     `json:"supported"`
	EvidenceLevel   string   `json:"evidence_level"`
	KeyFindings     []string `json:"key_findings"`
	Recommendations []string `json:"recommendations"`
}

// ValidateDiagnoses researches the top diagnoses and aggregates an overall
// evidence level. Literature retrieval is best-effort: failures log a
// warning and leave that validation without sources.
func (a *KnowledgeValidator) ValidateDiagnoses(ctx context.Context, diagnoses []domain.Diagnosis, patient domain.PatientProfile) (*domain.ResearchResult, error) {
	top := diagnoses
	if len(top) > topDiagnosesToValidate {
		top = top[:topDiagnosesToValidate]
	}

	a.log.WithField("diagnoses", len(top)).Info("Validating diagnoses against literature")

	result := &domain.ResearchResult{}
	for _, diagnosis := range top {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		validation := a.validateOne(ctx, diagnosis)
		result.Validations = append(result.Validations, validation)
	}

	levels := make([]domain.EvidenceLevel, 0, len(result.Validations))
	totalSources := 0
	for _, v := range result.Validations {
		levels = append(levels, v.EvidenceLevel)
		totalSources += len(v.Sources)
	}
	result.EvidenceSummary = domain.EvidenceSummary{
		TotalSources:     totalSources,
		AvgEvidenceLevel: AverageEvidenceLevel(levels),
	}
	result.CompletedAt = time.Now().UTC()

	return result, nil
}

// validateOne runs the retrieval+model step for a single diagnosis. Any
// failure degrades to an unknown-evidence validation instead of an error.
func (a *KnowledgeValidator) validateOne(ctx context.Context, diagnosis domain.Diagnosis) domain.DiagnosisValidation {
	query := fmt.Sprintf("%s diagnosis treatment guidelines", diagnosis.Name)
	articles := a.searchLiterature(ctx, query)

	prompt := fmt.Sprintf(medicalResearchPrompt, query, mustJSON(diagnosis))
	if len(articles) > 0 {
		prompt += "\n\nRetrieved Sources:"
		for _, art := range articles {
			prompt += fmt.Sprintf("\n- %s (%s)", art.Title, art.URL)
		}
	}

	validation := domain.DiagnosisValidation{
		Diagnosis:     diagnosis.Name,
		EvidenceLevel: domain.EvidenceUnknown,
		Sources:       articles,
	}

	resp, err := a.model.Complete(ctx, &llm.Request{
		Prompt:      prompt,
		Temperature: 0.2,
		MaxTokens:   2000,
		JSONMode:    true,
	})
	if err != nil {
		a.log.WithFields(logrus.Fields{
			"diagnosis": diagnosis.Name,
			"error":     err,
		}).Warn("Research call failed, keeping unknown evidence level")
		return validation
	}

	var payload researchPayload
	if err := decodeModelJSON(resp.Text, &payload); err != nil {
		a.log.WithError(err).Error("Failed to parse research response")
		return validation
	}

	validation.Supported = payload.Supported
	validation.EvidenceLevel = normalizeEvidence(payload.EvidenceLevel)
	validation.KeyFindings = payload.KeyFindings
	validation.Recommendations = payload.Recommendations
	return validation
}

// searchLiterature checks the LRU tier, then the literature client
func (a *KnowledgeValidator) searchLiterature(ctx context.Context, query string) []domain.Article {
	if cached, ok := a.cache.Get(query); ok {
		if articles, ok := cached.([]domain.Article); ok {
			return articles
		}
	}

	if a.literature == nil {
		return nil
	}

	articles, err := a.literature.Search(ctx, query, a.maxResults)
	if err != nil {
		a.log.WithFields(logrus.Fields{
			"query": query,
			"error": err,
		}).Warn("Literature search failed")
		return nil
	}

	a.cache.Add(query, articles)
	return articles
}
