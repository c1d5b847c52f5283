// Package metrics defines and registers all custom Prometheus metrics for the
// marketplace API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// init through promauto; HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "duplicate_email", "invalid", "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenVerificationsTotal counts access-token checks on protected routes.
// Label:
//   - result: "valid", "missing", "malformed", "expired", "bad_signature"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "token_verifications_total",
		Help:      "Total number of access token verifications, by result.",
	},
	[]string{"result"},
)

// PasswordHashDuration measures bcrypt cost as seen by the request.
// Label:
//   - operation: "hash" or "compare"
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of bcrypt hash and compare operations.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1},
	},
	[]string{"operation"},
)

// AuthorizationDenialsTotal counts requests rejected by the access policy.
// Label:
//   - action: "create_job", "submit_proposal", "read_proposals", "decide_proposal", "edit_profile"
var AuthorizationDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "authorization_denials_total",
		Help:      "Total number of operations denied by the access policy.",
	},
	[]string{"action"},
)

// ── Marketplace metrics ───────────────────────────────────────────────────────

// JobsCreatedTotal counts newly created jobs.
var JobsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_created_total",
		Help:      "Total number of jobs created.",
	},
)

// ProposalsSubmittedTotal counts newly submitted proposals.
var ProposalsSubmittedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "proposals_submitted_total",
		Help:      "Total number of proposals submitted.",
	},
)

// ProposalDecisionsTotal counts client decisions on proposals.
// Label:
//   - status: "accepted" or "rejected"
var ProposalDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "proposal_decisions_total",
		Help:      "Total number of proposal decisions, by resulting status.",
	},
	[]string{"status"},
)

// IdempotentReplaysTotal counts create requests answered from a previous result.
// Label:
//   - resource: "job" or "proposal"
var IdempotentReplaysTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotent_replays_total",
		Help:      "Total number of create requests replayed via Idempotency-Key.",
	},
	[]string{"resource"},
)

// ── Storage metrics ───────────────────────────────────────────────────────────

// DBPoolConnections tracks the postgres connection pool state.
// Label:
//   - state: "in_use", "idle", "max"
var DBPoolConnections = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "pool_connections",
		Help:      "Number of database connections by state.",
	},
	[]string{"state"},
)
