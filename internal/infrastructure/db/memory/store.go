// Package memory implements the repositories in process memory. It backs
// STORE_DRIVER=memory for local development and the end-to-end tests.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/jobtracker/jobtracker-api/internal/core/domain"
	"github.com/jobtracker/jobtracker-api/internal/core/ports"
)

// Store holds users and applications behind a single lock so cascades and
// owner-username searches see a consistent view.
type Store struct {
	mu           sync.RWMutex
	users        map[int64]*domain.User
	applications map[int64]*domain.JobApplication
	nextUserID   int64
	nextAppID    int64
}

func NewStore() *Store {
	return &Store{
		users:        make(map[int64]*domain.User),
		applications: make(map[int64]*domain.JobApplication),
	}
}

// Users returns the UserRepository view of the store.
func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}

// Applications returns the ApplicationRepository view of the store.
func (s *Store) Applications() *ApplicationRepository {
	return &ApplicationRepository{s: s}
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func copyApplication(a *domain.JobApplication) *domain.JobApplication {
	c := *a
	if a.Location != nil {
		loc := *a.Location
		c.Location = &loc
	}
	if a.Notes != nil {
		notes := *a.Notes
		c.Notes = &notes
	}
	return &c
}

// matches applies every filter criterion. Caller must hold s.mu.
func (s *Store) matches(a *domain.JobApplication, f ports.ListApplicationsFilter) bool {
	if f.OwnerID != 0 && a.UserID != f.OwnerID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Company != "" && a.Company != f.Company {
		return false
	}
	for _, term := range f.Search {
		fields := []string{a.JobTitle, a.Company}
		if f.SearchOwner {
			if owner, ok := s.users[a.UserID]; ok {
				fields = append(fields, owner.Username)
			}
		} else if a.Location != nil {
			fields = append(fields, *a.Location)
		}
		if !containsFold(fields, term) {
			return false
		}
	}
	return true
}

func containsFold(fields []string, term string) bool {
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func sortApplications(apps []*domain.JobApplication, ordering []domain.Ordering) {
	if len(ordering) == 0 {
		ordering = domain.DefaultOrdering
	}
	sort.SliceStable(apps, func(i, j int) bool {
		a, b := apps[i], apps[j]
		for _, o := range ordering {
			c := compare(a, b, o.Field)
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return a.ID > b.ID
	})
}

func compare(a, b *domain.JobApplication, field domain.OrderField) int {
	switch field {
	case domain.OrderDateApplied:
		return a.DateApplied.Compare(b.DateApplied)
	case domain.OrderCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case domain.OrderCompany:
		return strings.Compare(a.Company, b.Company)
	}
	return 0
}
