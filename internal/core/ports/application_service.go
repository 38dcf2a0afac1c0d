package ports

import (
	"context"
	"time"

	"github.com/jobtracker/jobtracker-api/internal/core/domain"
)

// ApplicationInput is the validated create/replace payload. Nil pointers on
// optional fields mean "not provided": null on create, unchanged on replace.
type ApplicationInput struct {
	JobTitle    string
	Company     string
	Location    *string
	DateApplied time.Time
	JobLink     string
	Status      domain.ApplicationStatus // empty: Applied on create, unchanged on replace
	Notes       *string
	// ClearLocation and ClearNotes record an explicit null on replace.
	ClearLocation bool
	ClearNotes    bool
}

// ApplicationPatch is a partial update. Only non-nil fields are applied.
type ApplicationPatch struct {
	JobTitle    *string
	Company     *string
	Location    *string
	DateApplied *time.Time
	JobLink     *string
	Status      *domain.ApplicationStatus
	Notes       *string
	// ClearLocation and ClearNotes set the optional field back to null.
	ClearLocation bool
	ClearNotes    bool
}

// ListApplicationsInput carries the list endpoint's query parameters.
type ListApplicationsInput struct {
	Status   string
	Company  string
	Search   string
	Ordering string
}

// ApplicationService is the ownership-scoped CRUD surface.
type ApplicationService interface {
	List(ctx context.Context, caller domain.Identity, in ListApplicationsInput) ([]*domain.JobApplication, error)
	Get(ctx context.Context, caller domain.Identity, id int64) (*domain.JobApplication, error)
	Create(ctx context.Context, caller domain.Identity, in ApplicationInput) (*domain.JobApplication, error)
	Replace(ctx context.Context, caller domain.Identity, id int64, in ApplicationInput) (*domain.JobApplication, error)
	Patch(ctx context.Context, caller domain.Identity, id int64, patch ApplicationPatch) (*domain.JobApplication, error)
	Delete(ctx context.Context, caller domain.Identity, id int64) error
}

// AdminService backs the staff-only surface.
type AdminService interface {
	ListApplications(ctx context.Context, in ListApplicationsInput) ([]*domain.JobApplication, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}
