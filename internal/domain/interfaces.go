package domain

import (
	"context"
)

// PatientRepository defines relational persistence for patient profiles
type PatientRepository interface {
	Create(ctx context.Context, profile *PatientProfile) error
	GetByID(ctx context.Context, id string) (*PatientProfile, error)
}

// CaseRepository defines relational persistence for clinical cases
type CaseRepository interface {
	Create(ctx context.Context, c *Case) error
	GetByID(ctx context.Context, id string) (*Case, error)
	Update(ctx context.Context, c *Case) error
	UpdateStatus(ctx context.Context, id string, status CaseStatus) error
}

// GraphStore defines the patient/case/diagnosis relationship graph
type GraphStore interface {
	CreatePatientNode(ctx context.Context, profile *PatientProfile) error
	CreateCaseNode(ctx context.Context, c *Case) error
	AddDiagnosis(ctx context.Context, caseID string, diagnosis Diagnosis) error
	GetPatientHistory(ctx context.Context, patientID string) ([]CaseHistoryEntry, error)
	Close(ctx context.Context) error
}

// LiteratureSearcher retrieves supporting literature for a diagnosis.
// Implementations are best-effort: an empty slice on failure is acceptable
// and must never abort a workflow.
type LiteratureSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Article, error)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetDatabaseConfig() *DatabaseConfig
	GetServerConfig() *ServerConfig
	GetModelConfig() *ModelConfig
	Reload() error
	Validate() error
	GetDatabaseConnectionString() string
	GetRedisConnectionString() string
	IsProduction() bool
	IsDevelopment() bool
}
