package ports

import (
	"context"

	"github.com/jobtracker/jobtracker-api/internal/core/domain"
)

// ListApplicationsFilter carries the query parameters of a list call.
// OwnerID is always set by the service for user-facing listings; zero means
// every owner and is only used by the admin surface.
type ListApplicationsFilter struct {
	OwnerID     int64
	Status      domain.ApplicationStatus // optional, exact
	Company     string                   // optional, exact
	Search      []string                 // optional, every term must match one searchable field
	SearchOwner bool                     // search job_title, company and owner username instead of job_title, company, location
	Ordering    []domain.Ordering        // empty = domain.DefaultOrdering
}

// ApplicationRepository defines persistence for job applications.
type ApplicationRepository interface {
	// Create assigns the new ID on app.
	Create(ctx context.Context, app *domain.JobApplication) error
	// FindByID looks the record up regardless of owner so callers can tell
	// "missing" apart from "not yours".
	FindByID(ctx context.Context, id int64) (*domain.JobApplication, error)
	List(ctx context.Context, filter ListApplicationsFilter) ([]*domain.JobApplication, error)
	// Update writes every mutable field, matching on both ID and UserID.
	// Returns domain.ErrOwnershipMismatch when no row matches the pair.
	Update(ctx context.Context, app *domain.JobApplication) error
	// Delete removes the record only when it belongs to ownerID.
	Delete(ctx context.Context, id, ownerID int64) error
}
