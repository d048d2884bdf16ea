package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"

	"github.com/medichain-agent-server/internal/domain"
)

// Neo4jStore persists the patient/case/diagnosis relationship graph
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	log      *logrus.Logger
}

// NewNeo4jStore creates a graph store and verifies connectivity
func NewNeo4jStore(ctx context.Context, config *domain.GraphConfig, logger *logrus.Logger) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(
		config.URI,
		neo4j.BasicAuth(config.Username, config.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verifying neo4j connectivity: %w", err)
	}

	logger.WithField("uri", config.URI).Info("Graph store connection established")

	return &Neo4jStore{
		driver:   driver,
		database: config.Database,
		log:      logger,
	}, nil
}

// CreatePatientNode creates or updates a patient node
func (s *Neo4jStore) CreatePatientNode(ctx context.Context, profile *domain.PatientProfile) error {
	query := `
		MERGE (p:Patient {id: $id})
		SET p.name = $name, p.age = $age, p.gender = $gender`

	_, err := neo4j.ExecuteQuery(ctx, s.driver, query,
		map[string]any{
			"id":     profile.ID,
			"name":   profile.Name,
			"age":    profile.Age,
			"gender": string(profile.Gender),
		},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
	)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"patient_id": profile.ID,
			"error":      err,
		}).Error("Failed to create patient node")
		return fmt.Errorf("creating patient node: %w", err)
	}

	s.log.WithField("patient_id", profile.ID).Debug("Patient node created")
	return nil
}

// CreateCaseNode creates a case node linked to its patient
func (s *Neo4jStore) CreateCaseNode(ctx context.Context, c *domain.Case) error {
	query := `
		MERGE (p:Patient {id: $patient_id})
		CREATE (c:Case {id: $case_id, status: $status, created_at: $created_at})
		CREATE (p)-[:HAS_CASE]->(c)`

	_, err := neo4j.ExecuteQuery(ctx, s.driver, query,
		map[string]any{
			"patient_id": c.PatientID,
			"case_id":    c.ID,
			"status":     string(c.Status),
			"created_at": c.CreatedAt.UTC().Format(time.RFC3339),
		},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
	)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"case_id": c.ID,
			"error":   err,
		}).Error("Failed to create case node")
		return fmt.Errorf("creating case node: %w", err)
	}

	s.log.WithField("case_id", c.ID).Debug("Case node created")
	return nil
}

// AddDiagnosis creates a diagnosis node linked to a case
func (s *Neo4jStore) AddDiagnosis(ctx context.Context, caseID string, diagnosis domain.Diagnosis) error {
	query := `
		MATCH (c:Case {id: $case_id})
		CREATE (d:Diagnosis {name: $name, icd10_code: $icd10_code, confidence: $confidence})
		CREATE (c)-[:HAS_DIAGNOSIS]->(d)`

	_, err := neo4j.ExecuteQuery(ctx, s.driver, query,
		map[string]any{
			"case_id":    caseID,
			"name":       diagnosis.Name,
			"icd10_code": diagnosis.ICD10Code,
			"confidence": diagnosis.Confidence,
		},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
	)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"case_id":   caseID,
			"diagnosis": diagnosis.Name,
			"error":     err,
		}).Error("Failed to add diagnosis node")
		return fmt.Errorf("adding diagnosis node: %w", err)
	}

	return nil
}

// GetPatientHistory returns the patient's cases with their diagnosis names,
// newest first
func (s *Neo4jStore) GetPatientHistory(ctx context.Context, patientID string) ([]domain.CaseHistoryEntry, error) {
	query := `
		MATCH (p:Patient {id: $patient_id})-[:HAS_CASE]->(c:Case)
		OPTIONAL MATCH (c)-[:HAS_DIAGNOSIS]->(d:Diagnosis)
		RETURN c.id AS case_id, c.status AS status, c.created_at AS created_at,
			   collect(d.name) AS diagnosis_names
		ORDER BY c.created_at DESC`

	result, err := neo4j.ExecuteQuery(ctx, s.driver, query,
		map[string]any{"patient_id": patientID},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
	)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"patient_id": patientID,
			"error":      err,
		}).Error("Failed to get patient history")
		return nil, fmt.Errorf("getting patient history: %w", err)
	}

	entries := make([]domain.CaseHistoryEntry, 0, len(result.Records))
	for _, record := range result.Records {
		var entry domain.CaseHistoryEntry

		if caseID, ok := record.Get("case_id"); ok {
			entry.CaseID, _ = caseID.(string)
		}
		if status, ok := record.Get("status"); ok {
			entry.Status, _ = status.(string)
		}
		if createdAt, ok := record.Get("created_at"); ok {
			if raw, ok := createdAt.(string); ok {
				if ts, err := time.Parse(time.RFC3339, raw); err == nil {
					entry.CreatedAt = ts
				}
			}
		}
		if names, ok := record.Get("diagnosis_names"); ok {
			if list, ok := names.([]any); ok {
				for _, name := range list {
					if s, ok := name.(string); ok {
						entry.DiagnosisNames = append(entry.DiagnosisNames, s)
					}
				}
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// Health verifies connectivity to the Neo4j server
func (s *Neo4jStore) Health(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

// Close shuts down the underlying driver
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
