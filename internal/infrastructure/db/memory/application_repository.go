package memory

import (
	"context"
	"fmt"

	"github.com/jobtracker/jobtracker-api/internal/core/domain"
	"github.com/jobtracker/jobtracker-api/internal/core/ports"
)

type ApplicationRepository struct {
	s *Store
}

func (r *ApplicationRepository) Create(_ context.Context, app *domain.JobApplication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[app.UserID]; !ok {
		return fmt.Errorf("insert application: owner %d does not exist", app.UserID)
	}

	r.s.nextAppID++
	app.ID = r.s.nextAppID
	r.s.applications[app.ID] = copyApplication(app)
	return nil
}

func (r *ApplicationRepository) FindByID(_ context.Context, id int64) (*domain.JobApplication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.applications[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	return copyApplication(a), nil
}

func (r *ApplicationRepository) List(_ context.Context, filter ports.ListApplicationsFilter) ([]*domain.JobApplication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.JobApplication, 0)
	for _, a := range r.s.applications {
		if r.s.matches(a, filter) {
			out = append(out, copyApplication(a))
		}
	}
	sortApplications(out, filter.Ordering)
	return out, nil
}

// Update replaces the stored record only when both ID and owner match.
func (r *ApplicationRepository) Update(_ context.Context, app *domain.JobApplication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.applications[app.ID]
	if !ok || existing.UserID != app.UserID {
		return domain.ErrOwnershipMismatch
	}
	stored := copyApplication(app)
	stored.CreatedAt = existing.CreatedAt
	r.s.applications[app.ID] = stored
	return nil
}

func (r *ApplicationRepository) Delete(_ context.Context, id, ownerID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.applications[id]
	if !ok || existing.UserID != ownerID {
		return domain.ErrApplicationNotFound
	}
	delete(r.s.applications, id)
	return nil
}
