package service

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jobtracker/jobtracker-api/internal/api/metrics"
	"github.com/jobtracker/jobtracker-api/internal/core/domain"
	"github.com/jobtracker/jobtracker-api/internal/core/ports"
)

// ApplicationService enforces owner scoping on top of the record store.
type ApplicationService struct {
	repo  ports.ApplicationRepository
	clock clockwork.Clock
	log   zerolog.Logger
}

func NewApplicationService(repo ports.ApplicationRepository, clock clockwork.Clock, log zerolog.Logger) *ApplicationService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ApplicationService{repo: repo, clock: clock, log: log}
}

// List returns the caller's applications matching in.
func (s *ApplicationService) List(ctx context.Context, caller domain.Identity, in ports.ListApplicationsInput) ([]*domain.JobApplication, error) {
	filter, err := buildFilter(in)
	if err != nil {
		return nil, err
	}
	filter.OwnerID = caller.UserID

	apps, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, repoErr(err, "list applications")
	}
	return apps, nil
}

// Get returns a single application. A record owned by someone else yields
// ErrForbidden rather than ErrApplicationNotFound.
func (s *ApplicationService) Get(ctx context.Context, caller domain.Identity, id int64) (*domain.JobApplication, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "find application")
	}
	if !app.OwnedBy(caller.UserID) {
		s.log.Warn().Int64("user_id", caller.UserID).Int64("application_id", id).Msg("access to foreign application denied")
		return nil, domain.ErrForbidden
	}
	return app, nil
}

// Create stores a new application owned by the caller.
func (s *ApplicationService) Create(ctx context.Context, caller domain.Identity, in ports.ApplicationInput) (*domain.JobApplication, error) {
	status := in.Status
	if status == "" {
		status = domain.StatusApplied
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	now := s.clock.Now().UTC()
	app := &domain.JobApplication{
		UserID:      caller.UserID,
		JobTitle:    in.JobTitle,
		Company:     in.Company,
		Location:    in.Location,
		DateApplied: dateOnly(in.DateApplied),
		JobLink:     in.JobLink,
		Status:      status,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.log.Info().Str("username", caller.Username).Msg("creating application")
	if err := s.repo.Create(ctx, app); err != nil {
		err = repoErr(err, "create application")
		s.log.Error().Stack().Err(err).Str("username", caller.Username).Msg("error creating job application")
		return nil, err
	}

	metrics.ApplicationsCreatedTotal.WithLabelValues(string(app.Status)).Inc()
	s.log.Info().Int64("application_id", app.ID).Msg("application created")
	return app, nil
}

// Replace overwrites the required fields (PUT semantics). Status, location and
// notes keep their stored values unless the input carries them.
func (s *ApplicationService) Replace(ctx context.Context, caller domain.Identity, id int64, in ports.ApplicationInput) (*domain.JobApplication, error) {
	app, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if in.Status != "" && !in.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	app.JobTitle = in.JobTitle
	app.Company = in.Company
	app.DateApplied = dateOnly(in.DateApplied)
	app.JobLink = in.JobLink
	if in.Status != "" {
		app.Status = in.Status
	}
	if in.ClearLocation {
		app.Location = nil
	} else if in.Location != nil {
		app.Location = in.Location
	}
	if in.ClearNotes {
		app.Notes = nil
	} else if in.Notes != nil {
		app.Notes = in.Notes
	}

	return s.save(ctx, caller, app)
}

// Patch applies only the provided fields (PATCH semantics).
func (s *ApplicationService) Patch(ctx context.Context, caller domain.Identity, id int64, p ports.ApplicationPatch) (*domain.JobApplication, error) {
	app, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if p.Status != nil && !p.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	if p.JobTitle != nil {
		app.JobTitle = *p.JobTitle
	}
	if p.Company != nil {
		app.Company = *p.Company
	}
	if p.ClearLocation {
		app.Location = nil
	} else if p.Location != nil {
		app.Location = p.Location
	}
	if p.DateApplied != nil {
		app.DateApplied = dateOnly(*p.DateApplied)
	}
	if p.JobLink != nil {
		app.JobLink = *p.JobLink
	}
	if p.Status != nil {
		app.Status = *p.Status
	}
	if p.ClearNotes {
		app.Notes = nil
	} else if p.Notes != nil {
		app.Notes = p.Notes
	}

	return s.save(ctx, caller, app)
}

// Delete removes the caller's application permanently.
func (s *ApplicationService) Delete(ctx context.Context, caller domain.Identity, id int64) error {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, caller.UserID); err != nil {
		err = repoErr(err, "delete application")
		s.log.Error().Stack().Err(err).Int64("application_id", id).Msg("error deleting job application")
		return err
	}

	metrics.ApplicationsDeletedTotal.Inc()
	s.log.Info().Int64("application_id", id).Str("username", caller.Username).Msg("application deleted")
	return nil
}

func (s *ApplicationService) save(ctx context.Context, caller domain.Identity, app *domain.JobApplication) (*domain.JobApplication, error) {
	// The store matches on owner as well, so a record that changed hands
	// between the read and the write is rejected.
	app.UserID = caller.UserID
	app.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, app); err != nil {
		err = repoErr(err, "update application")
		s.log.Error().Stack().Err(err).Int64("application_id", app.ID).Msg("error updating job application")
		return nil, err
	}

	metrics.ApplicationsUpdatedTotal.WithLabelValues(string(app.Status)).Inc()
	s.log.Info().Int64("application_id", app.ID).Str("username", caller.Username).Msg("application updated")
	return app, nil
}

func buildFilter(in ports.ListApplicationsInput) (ports.ListApplicationsFilter, error) {
	filter := ports.ListApplicationsFilter{
		Company:  in.Company,
		Search:   domain.SearchTerms(in.Search),
		Ordering: domain.ParseOrdering(in.Ordering),
	}
	if in.Status != "" {
		status := domain.ApplicationStatus(in.Status)
		if !status.Valid() {
			return filter, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	return filter, nil
}

// repoErr passes domain errors through untouched and attaches a stack to
// anything else.
func repoErr(err error, msg string) error {
	if errors.Is(err, domain.ErrApplicationNotFound) ||
		errors.Is(err, domain.ErrUserNotFound) ||
		domain.IsValidation(err) {
		return err
	}
	return pkgerrors.Wrap(err, msg)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
