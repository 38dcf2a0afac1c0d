package handler

import (
	"time"

	"github.com/jobtracker/jobtracker-api/internal/core/domain"
	"github.com/jobtracker/jobtracker-api/internal/core/ports"
)

// --- Request → Service input ---

// toApplicationInput expects a request that already passed validation, so the
// date has the right layout.
func toApplicationInput(r applicationRequest) (ports.ApplicationInput, error) {
	date, err := parseDate(r.DateApplied)
	if err != nil {
		return ports.ApplicationInput{}, err
	}
	return ports.ApplicationInput{
		JobTitle:      r.JobTitle,
		Company:       r.Company,
		Location:      r.Location.Value,
		DateApplied:   date,
		JobLink:       r.JobLink,
		Status:        domain.ApplicationStatus(r.Status),
		Notes:         r.Notes.Value,
		ClearLocation: r.Location.Set && r.Location.Value == nil,
		ClearNotes:    r.Notes.Set && r.Notes.Value == nil,
	}, nil
}

func toApplicationPatch(r applicationPatchRequest) (ports.ApplicationPatch, error) {
	p := ports.ApplicationPatch{
		JobTitle: r.JobTitle,
		Company:  r.Company,
		JobLink:  r.JobLink,
	}
	if r.DateApplied != nil {
		date, err := parseDate(*r.DateApplied)
		if err != nil {
			return p, err
		}
		p.DateApplied = &date
	}
	if r.Status != nil {
		status := domain.ApplicationStatus(*r.Status)
		p.Status = &status
	}
	if r.Location.Set {
		p.Location = r.Location.Value
		p.ClearLocation = r.Location.Value == nil
	}
	if r.Notes.Set {
		p.Notes = r.Notes.Value
		p.ClearNotes = r.Notes.Value == nil
	}
	return p, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, &domain.ValidationError{
			Message: "date_applied must be a date in YYYY-MM-DD format",
			Fields:  map[string]string{"date_applied": "date_applied must be a date in YYYY-MM-DD format"},
		}
	}
	return t, nil
}

// --- Domain → HTTP response ---

func toApplicationResponse(a *domain.JobApplication) applicationResponse {
	return applicationResponse{
		ID:          a.ID,
		JobTitle:    a.JobTitle,
		Company:     a.Company,
		Location:    a.Location,
		DateApplied: a.DateApplied.UTC().Format(domain.DateLayout),
		JobLink:     a.JobLink,
		Status:      string(a.Status),
		Notes:       a.Notes,
		CreatedAt:   a.CreatedAt.UTC(),
		UpdatedAt:   a.UpdatedAt.UTC(),
	}
}

func toApplicationListResponse(apps []*domain.JobApplication) []applicationResponse {
	out := make([]applicationResponse, len(apps))
	for i, a := range apps {
		out[i] = toApplicationResponse(a)
	}
	return out
}

func toAdminApplicationListResponse(apps []*domain.JobApplication) []adminApplicationResponse {
	out := make([]adminApplicationResponse, len(apps))
	for i, a := range apps {
		out[i] = adminApplicationResponse{
			applicationResponse: toApplicationResponse(a),
			UserID:              a.UserID,
		}
	}
	return out
}

func toUserListResponse(users []*domain.User) []userResponse {
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = userResponse{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			Role:      u.Role,
			IsActive:  u.IsActive,
			CreatedAt: u.CreatedAt.UTC(),
		}
	}
	return out
}
