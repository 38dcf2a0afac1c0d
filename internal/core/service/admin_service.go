package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jobtracker/jobtracker-api/internal/core/domain"
	"github.com/jobtracker/jobtracker-api/internal/core/ports"
)

// AdminService is the staff view across every owner.
type AdminService struct {
	users ports.UserRepository
	apps  ports.ApplicationRepository
	log   zerolog.Logger
}

func NewAdminService(users ports.UserRepository, apps ports.ApplicationRepository, log zerolog.Logger) *AdminService {
	return &AdminService{users: users, apps: apps, log: log}
}

// ListApplications searches job title, company and the owner's username.
func (s *AdminService) ListApplications(ctx context.Context, in ports.ListApplicationsInput) ([]*domain.JobApplication, error) {
	filter, err := buildFilter(in)
	if err != nil {
		return nil, err
	}
	filter.SearchOwner = true

	apps, err := s.apps.List(ctx, filter)
	if err != nil {
		return nil, repoErr(err, "admin list applications")
	}
	return apps, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, repoErr(err, "list users")
	}
	return users, nil
}

// DeleteUser removes the account and, by cascade, all of its applications.
func (s *AdminService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return repoErr(err, "delete user")
	}
	s.log.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

// UserByUsername looks an account up for the operator CLI.
func (s *AdminService) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, repoErr(err, "find user")
	}
	return user, nil
}

// SetUserActive enables or disables login for an account. Tokens already
// issued stop working on their next use.
func (s *AdminService) SetUserActive(ctx context.Context, id int64, active bool) error {
	if err := s.users.SetActive(ctx, id, active); err != nil {
		return repoErr(err, "set user active")
	}
	s.log.Info().Int64("user_id", id).Bool("active", active).Msg("user activation changed")
	return nil
}
