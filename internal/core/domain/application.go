package domain

import (
	"strings"
	"time"
)

// ApplicationStatus is where an application stands in the hiring process.
type ApplicationStatus string

const (
	StatusApplied   ApplicationStatus = "Applied"
	StatusInterview ApplicationStatus = "Interview"
	StatusOffer     ApplicationStatus = "Offer"
	StatusRejected  ApplicationStatus = "Rejected"
	StatusGhosted   ApplicationStatus = "Ghosted"
)

// Statuses lists every valid status in display order.
var Statuses = []ApplicationStatus{
	StatusApplied,
	StatusInterview,
	StatusOffer,
	StatusRejected,
	StatusGhosted,
}

// Valid reports whether s is one of the known statuses.
func (s ApplicationStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// DateLayout is the wire format of date_applied.
const DateLayout = "2006-01-02"

// JobApplication is a single application tracked by its owner.
type JobApplication struct {
	ID          int64             `json:"id" bson:"_id"`
	UserID      int64             `json:"-" bson:"user_id"`
	JobTitle    string            `json:"job_title" bson:"job_title"`
	Company     string            `json:"company" bson:"company"`
	Location    *string           `json:"location" bson:"location,omitempty"`
	DateApplied time.Time         `json:"date_applied" bson:"date_applied"`
	JobLink     string            `json:"job_link" bson:"job_link"`
	Status      ApplicationStatus `json:"status" bson:"status"`
	Notes       *string           `json:"notes" bson:"notes,omitempty"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" bson:"updated_at"`
}

func (a *JobApplication) String() string {
	return a.JobTitle + " at " + a.Company
}

// OwnedBy reports whether the application belongs to userID.
func (a *JobApplication) OwnedBy(userID int64) bool {
	return a.UserID == userID
}

// OrderField names a sortable column.
type OrderField string

const (
	OrderDateApplied OrderField = "date_applied"
	OrderCreatedAt   OrderField = "created_at"
	OrderCompany     OrderField = "company"
)

// Ordering is one term of a sort specification.
type Ordering struct {
	Field OrderField
	Desc  bool
}

// DefaultOrdering sorts newest applications first.
var DefaultOrdering = []Ordering{
	{Field: OrderDateApplied, Desc: true},
	{Field: OrderCreatedAt, Desc: true},
}

// ParseOrdering turns "company,-date_applied" into terms. Unknown fields are
// dropped; an empty result falls back to DefaultOrdering.
func ParseOrdering(raw string) []Ordering {
	var out []Ordering
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := strings.HasPrefix(part, "-")
		field := OrderField(strings.TrimPrefix(part, "-"))
		switch field {
		case OrderDateApplied, OrderCreatedAt, OrderCompany:
			out = append(out, Ordering{Field: field, Desc: desc})
		}
	}
	if len(out) == 0 {
		return DefaultOrdering
	}
	return out
}

// SearchTerms splits a free-text query the way the dashboard sends it:
// whitespace and commas separate terms, and every term must match.
func SearchTerms(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
