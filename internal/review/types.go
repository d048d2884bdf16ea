// Package review provides clinician review storage for diagnostic cases.
// Reviews record whether a clinician approved, rejected, or asked for
// revisions on a completed case.
package review

import (
	"context"
	"io"
	"time"
)

// Decision represents a clinician's verdict on a diagnostic case.
type Decision string

const (
	DecisionApproved      Decision = "approved"
	DecisionNeedsRevision Decision = "needs_revision"
	DecisionRejected      Decision = "rejected"
)

// ValidDecision reports whether d is one of the known review decisions.
func ValidDecision(d Decision) bool {
	switch d {
	case DecisionApproved, DecisionNeedsRevision, DecisionRejected:
		return true
	}
	return false
}

// Review represents a clinician's sign-off on a diagnostic case.
type Review struct {
	ID        string    `json:"id,omitempty"`
	CaseID    string    `json:"case_id"`
	Reviewer  string    `json:"reviewer"`
	Decision  Decision  `json:"decision"`
	Comments  string    `json:"comments,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the interface for review storage operations.
type Store interface {
	// Save stores a new review. A generated ID and creation timestamp
	// are written back to the review.
	Save(ctx context.Context, review *Review) error

	// ListByCase returns all reviews for a case, newest first.
	ListByCase(ctx context.Context, caseID string) ([]*Review, error)

	// List returns all reviews with pagination, newest first.
	List(ctx context.Context, limit, offset int) ([]*Review, error)

	// Count returns the total number of reviews.
	Count(ctx context.Context) (int64, error)

	// Delete removes a review by ID.
	Delete(ctx context.Context, id string) error

	// ExportJSON exports all reviews to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON imports reviews from a JSON reader.
	// Returns the number of imported and skipped entries.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// Export represents the JSON export format.
type Export struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Reviews    []*Review `json:"reviews"`
}
