package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/medichain-agent-server/internal/domain"
)

// CaseRepository handles clinical case persistence. Symptoms, diagnoses,
// and treatment plans are stored as JSONB documents.
type CaseRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *pgxpool.Pool, logger *logrus.Logger) *CaseRepository {
	return &CaseRepository{
		db:  db,
		log: logger,
	}
}

// Create inserts a new case. A missing ID is assigned here and the status
// defaults to pending.
func (r *CaseRepository) Create(ctx context.Context, c *domain.Case) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = domain.StatusPending
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	symptoms, err := json.Marshal(c.Symptoms)
	if err != nil {
		return fmt.Errorf("marshaling symptoms: %w", err)
	}

	query := `
		INSERT INTO cases (
			id, patient_id, symptoms, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)`

	_, err = r.db.Exec(ctx, query,
		c.ID,
		c.PatientID,
		symptoms,
		c.Status,
		c.CreatedAt,
		c.UpdatedAt,
	)

	if err != nil {
		r.log.WithFields(logrus.Fields{
			"case_id":    c.ID,
			"patient_id": c.PatientID,
			"error":      err,
		}).Error("Failed to create case")
		return fmt.Errorf("creating case: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"case_id":    c.ID,
		"patient_id": c.PatientID,
	}).Info("Case created successfully")

	return nil
}

// GetByID retrieves a case by its ID
func (r *CaseRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	query := `
		SELECT id, patient_id, symptoms, diagnoses, treatment, status,
			   created_at, updated_at
		FROM cases
		WHERE id = $1`

	var c domain.Case
	var symptoms []byte
	var diagnoses, treatment []byte

	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.PatientID,
		&symptoms,
		&diagnoses,
		&treatment,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("case not found: %w", domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"case_id": id,
			"error":   err,
		}).Error("Failed to get case by ID")
		return nil, fmt.Errorf("getting case by ID: %w", err)
	}

	if err := json.Unmarshal(symptoms, &c.Symptoms); err != nil {
		return nil, fmt.Errorf("unmarshaling symptoms: %w", err)
	}
	if len(diagnoses) > 0 {
		if err := json.Unmarshal(diagnoses, &c.Diagnoses); err != nil {
			return nil, fmt.Errorf("unmarshaling diagnoses: %w", err)
		}
	}
	if len(treatment) > 0 {
		if err := json.Unmarshal(treatment, &c.Treatment); err != nil {
			return nil, fmt.Errorf("unmarshaling treatment: %w", err)
		}
	}

	return &c, nil
}

// Update writes the case's diagnoses, treatment, and status
func (r *CaseRepository) Update(ctx context.Context, c *domain.Case) error {
	diagnoses, err := json.Marshal(c.Diagnoses)
	if err != nil {
		return fmt.Errorf("marshaling diagnoses: %w", err)
	}
	var treatment []byte
	if c.Treatment != nil {
		treatment, err = json.Marshal(c.Treatment)
		if err != nil {
			return fmt.Errorf("marshaling treatment: %w", err)
		}
	}

	query := `
		UPDATE cases
		SET diagnoses = $2, treatment = $3, status = $4, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query, c.ID, diagnoses, treatment, c.Status)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"case_id": c.ID,
			"error":   err,
		}).Error("Failed to update case")
		return fmt.Errorf("updating case: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("case not found: %w", domain.ErrNotFound)
	}

	r.log.WithFields(logrus.Fields{
		"case_id": c.ID,
		"status":  c.Status,
	}).Info("Case updated successfully")

	return nil
}

// UpdateStatus transitions a case to the given status after checking the
// transition is allowed from the current status
func (r *CaseRepository) UpdateStatus(ctx context.Context, id string, status domain.CaseStatus) error {
	var current domain.CaseStatus
	err := r.db.QueryRow(ctx, `SELECT status FROM cases WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if err == pgx.ErrNoRows {
			return fmt.Errorf("case not found: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("getting case status: %w", err)
	}

	if !current.CanTransitionTo(status) {
		return fmt.Errorf("cannot transition case from %s to %s: %w", current, status, domain.ErrInvalidStatus)
	}

	result, err := r.db.Exec(ctx,
		`UPDATE cases SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"case_id": id,
			"status":  status,
			"error":   err,
		}).Error("Failed to update case status")
		return fmt.Errorf("updating case status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("case not found: %w", domain.ErrNotFound)
	}

	r.log.WithFields(logrus.Fields{
		"case_id": id,
		"status":  status,
	}).Info("Case status updated")

	return nil
}
