package handler

import (
	"encoding/json"
	"time"
)

// --- Request types ---

// applicationRequest is the full payload accepted by create and PUT. Unknown
// fields (including any owner/user field) are ignored by the binder. On PUT an
// absent status, location or notes keeps the stored value.
type applicationRequest struct {
	JobTitle    string         `json:"job_title"    validate:"required,max=200"`
	Company     string         `json:"company"      validate:"required,max=200"`
	Location    nullableString `json:"location"     validate:"omitempty,max=200" swaggertype:"string"`
	DateApplied string         `json:"date_applied" validate:"required,datetime=2006-01-02"`
	JobLink     string         `json:"job_link"     validate:"required,http_url,max=200"`
	Status      string         `json:"status"       validate:"omitempty,status"`
	Notes       nullableString `json:"notes"        swaggertype:"string"`
}

// applicationPatchRequest is the PATCH payload; absent fields stay untouched.
type applicationPatchRequest struct {
	JobTitle    *string        `json:"job_title"    validate:"omitempty,min=1,max=200"`
	Company     *string        `json:"company"      validate:"omitempty,min=1,max=200"`
	Location    nullableString `json:"location"     validate:"omitempty,max=200" swaggertype:"string"`
	DateApplied *string        `json:"date_applied" validate:"omitempty,datetime=2006-01-02"`
	JobLink     *string        `json:"job_link"     validate:"omitempty,http_url,max=200"`
	Status      *string        `json:"status"       validate:"omitempty,status"`
	Notes       nullableString `json:"notes"        swaggertype:"string"`
}

// nullableString tells "absent" apart from an explicit null.
type nullableString struct {
	Set   bool
	Value *string
}

func (n *nullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

type listApplicationsQuery struct {
	Status   string `query:"status"`
	Company  string `query:"company"`
	Search   string `query:"search"`
	Ordering string `query:"ordering"`
}

// --- Response types ---

type applicationResponse struct {
	ID          int64     `json:"id"`
	JobTitle    string    `json:"job_title"`
	Company     string    `json:"company"`
	Location    *string   `json:"location"`
	DateApplied string    `json:"date_applied"`
	JobLink     string    `json:"job_link"`
	Status      string    `json:"status"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// adminApplicationResponse exposes the owner, which the user-facing shape never does.
type adminApplicationResponse struct {
	applicationResponse
	UserID int64 `json:"user_id"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
