package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"flik/internal/models"
)

// SubmissionStore stores post proposals sent by readers.
type SubmissionStore struct {
	db *sql.DB
}

// NewSubmissionStore returns a new SubmissionStore.
func NewSubmissionStore(db *sql.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

// Create stores a submission and returns it with its id and timestamp.
func (s *SubmissionStore) Create(ctx context.Context, sub *models.Submission) (*models.Submission, error) {
	var result models.Submission
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO submissions (id, title, email, category, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, title, email, category, content, submitted_at
	`, uuid.NewString(), sub.Title, sub.Email, sub.Category, sub.Content,
	).Scan(&result.ID, &result.Title, &result.Email, &result.Category, &result.Content, &result.SubmittedAt)
	if err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	return &result, nil
}
