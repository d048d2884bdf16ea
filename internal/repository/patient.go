package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/medichain-agent-server/internal/domain"
)

// PatientRepository handles patient profile persistence
type PatientRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *pgxpool.Pool, logger *logrus.Logger) *PatientRepository {
	return &PatientRepository{
		db:  db,
		log: logger,
	}
}

// Create inserts a new patient profile. A missing ID is assigned here.
func (r *PatientRepository) Create(ctx context.Context, profile *domain.PatientProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}

	query := `
		INSERT INTO patients (
			id, name, age, gender, medical_history, allergies,
			current_medications, consent_on_file
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)`

	_, err := r.db.Exec(ctx, query,
		profile.ID,
		profile.Name,
		profile.Age,
		profile.Gender,
		profile.MedicalHistory,
		profile.Allergies,
		profile.CurrentMedications,
		profile.ConsentOnFile,
	)

	if err != nil {
		r.log.WithFields(logrus.Fields{
			"patient_id": profile.ID,
			"error":      err,
		}).Error("Failed to create patient")
		return fmt.Errorf("creating patient: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"patient_id": profile.ID,
		"age":        profile.Age,
	}).Info("Patient created successfully")

	return nil
}

// GetByID retrieves a patient profile by its ID
func (r *PatientRepository) GetByID(ctx context.Context, id string) (*domain.PatientProfile, error) {
	query := `
		SELECT id, name, age, gender, medical_history, allergies,
			   current_medications, consent_on_file
		FROM patients
		WHERE id = $1`

	var profile domain.PatientProfile

	err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.Name,
		&profile.Age,
		&profile.Gender,
		&profile.MedicalHistory,
		&profile.Allergies,
		&profile.CurrentMedications,
		&profile.ConsentOnFile,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("patient not found: %w", domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"patient_id": id,
			"error":      err,
		}).Error("Failed to get patient by ID")
		return nil, fmt.Errorf("getting patient by ID: %w", err)
	}

	return &profile, nil
}
