// Package metrics defines and registers all custom Prometheus metrics for the
// job tracker API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry at package init
// via promauto; HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jobtracker"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// UsersRegisteredTotal counts successful registrations.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of user accounts created through registration.",
	},
)

// TokensIssuedTotal counts signed tokens.
// Label:
//   - type: "access" or "refresh"
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of JWTs issued, by token type.",
	},
	[]string{"type"},
)

// LoginFailuresTotal counts rejected credential exchanges.
// Label:
//   - reason: "unknown_user", "bad_password" or "inactive"
var LoginFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_failures_total",
		Help:      "Total number of failed token requests, by reason.",
	},
	[]string{"reason"},
)

// ── Application metrics ───────────────────────────────────────────────────────

// ApplicationsCreatedTotal counts newly created job applications.
// Label:
//   - status: initial status, usually "Applied"
var ApplicationsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_created_total",
		Help:      "Total number of job applications created, by initial status.",
	},
	[]string{"status"},
)

// ApplicationsUpdatedTotal counts successful updates (PUT and PATCH).
// Label:
//   - status: status after the update
var ApplicationsUpdatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_updated_total",
		Help:      "Total number of job application updates, by resulting status.",
	},
	[]string{"status"},
)

// ApplicationsDeletedTotal counts deleted job applications.
var ApplicationsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "applications_deleted_total",
		Help:      "Total number of job applications deleted by their owners.",
	},
)
