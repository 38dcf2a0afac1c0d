package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobtracker/jobtracker-api/internal/core/domain"
	"github.com/jobtracker/jobtracker-api/internal/core/ports"
)

const applicationColumns = `a.id, a.user_id, a.job_title, a.company, a.location, a.date_applied,
	a.job_link, a.status, a.notes, a.created_at, a.updated_at`

// orderColumns whitelists the sortable columns; ORDER BY is never built from
// raw input.
var orderColumns = map[domain.OrderField]string{
	domain.OrderDateApplied: "a.date_applied",
	domain.OrderCreatedAt:   "a.created_at",
	domain.OrderCompany:     "a.company",
}

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

func scanApplication(row pgx.Row) (*domain.JobApplication, error) {
	var (
		a      domain.JobApplication
		status string
	)
	err := row.Scan(&a.ID, &a.UserID, &a.JobTitle, &a.Company, &a.Location, &a.DateApplied,
		&a.JobLink, &status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = domain.ApplicationStatus(status)
	a.DateApplied = a.DateApplied.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return &a, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.JobApplication) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err := r.pool.QueryRow(ctx, `
		INSERT INTO job_applications
			(user_id, job_title, company, location, date_applied, job_link, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		app.UserID, app.JobTitle, app.Company, app.Location, app.DateApplied,
		app.JobLink, string(app.Status), app.Notes, app.CreatedAt, app.UpdatedAt,
	).Scan(&app.ID)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id int64) (*domain.JobApplication, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	app, err := scanApplication(r.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM job_applications a WHERE a.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find application: %w", err)
	}
	return app, nil
}

func (r *ApplicationRepository) List(ctx context.Context, filter ports.ListApplicationsFilter) ([]*domain.JobApplication, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query, args := buildListQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*domain.JobApplication, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// buildListQuery renders the filter as a parameterised SELECT.
func buildListQuery(filter ports.ListApplicationsFilter) (string, []any) {
	var (
		sb    strings.Builder
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	sb.WriteString(`SELECT ` + applicationColumns + ` FROM job_applications a`)
	if filter.SearchOwner {
		sb.WriteString(` JOIN users u ON u.id = a.user_id`)
	}

	if filter.OwnerID != 0 {
		where = append(where, "a.user_id = "+arg(filter.OwnerID))
	}
	if filter.Status != "" {
		where = append(where, "a.status = "+arg(string(filter.Status)))
	}
	if filter.Company != "" {
		where = append(where, "a.company = "+arg(filter.Company))
	}
	for _, term := range filter.Search {
		p := arg("%" + escapeLike(term) + "%")
		third := "a.location"
		if filter.SearchOwner {
			third = "u.username"
		}
		where = append(where, fmt.Sprintf("(a.job_title ILIKE %[1]s OR a.company ILIKE %[1]s OR %[2]s ILIKE %[1]s)", p, third))
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	ordering := filter.Ordering
	if len(ordering) == 0 {
		ordering = domain.DefaultOrdering
	}
	terms := make([]string, 0, len(ordering)+1)
	for _, o := range ordering {
		col, ok := orderColumns[o.Field]
		if !ok {
			continue
		}
		if o.Desc {
			col += " DESC"
		}
		terms = append(terms, col)
	}
	terms = append(terms, "a.id DESC")
	sb.WriteString(" ORDER BY ")
	sb.WriteString(strings.Join(terms, ", "))

	return sb.String(), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Update writes the mutable fields, matching on id and owner together.
func (r *ApplicationRepository) Update(ctx context.Context, app *domain.JobApplication) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
		UPDATE job_applications
		SET job_title = $3, company = $4, location = $5, date_applied = $6,
			job_link = $7, status = $8, notes = $9, updated_at = $10
		WHERE id = $1 AND user_id = $2`,
		app.ID, app.UserID, app.JobTitle, app.Company, app.Location, app.DateApplied,
		app.JobLink, string(app.Status), app.Notes, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOwnershipMismatch
	}
	return nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, id, ownerID int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM job_applications WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrApplicationNotFound
	}
	return nil
}
