// Package metrics provides Prometheus metrics for docvcs
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for docvcs.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Check-in pipeline
	CheckInsQueuedTotal *prometheus.CounterVec
	ApprovalsTotal      *prometheus.CounterVec
	ApprovalDuration    *prometheus.HistogramVec
	ChangesAppliedTotal *prometheus.CounterVec
	RevertsTotal        *prometheus.CounterVec

	// Repository state
	RepoVersion     *prometheus.GaugeVec
	PendingCheckIns *prometheus.GaugeVec
	ReposTotal      prometheus.Gauge
	UsersTotal      prometheus.Gauge

	// Shell
	CommandsTotal *prometheus.CounterVec

	StartTime time.Time
}

// NewMetrics creates all metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{
		StartTime: time.Now(),
	}

	m.CheckInsQueuedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvcs_checkins_queued_total",
			Help: "Total number of check-ins queued for approval",
		},
		[]string{"repo"},
	)

	m.ApprovalsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvcs_approvals_total",
			Help: "Total number of check-in approval attempts by result",
		},
		[]string{"repo", "result"},
	)

	m.ApprovalDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docvcs_approval_duration_seconds",
			Help:    "Time spent applying a check-in",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"repo"},
	)

	m.ChangesAppliedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvcs_changes_applied_total",
			Help: "Total number of document changes applied by approvals",
		},
		[]string{"repo", "type"},
	)

	m.RevertsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvcs_reverts_total",
			Help: "Total number of revert attempts by result",
		},
		[]string{"repo", "result"},
	)

	m.RepoVersion = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "docvcs_repo_version",
			Help: "Current version of each repository",
		},
		[]string{"repo"},
	)

	m.PendingCheckIns = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "docvcs_pending_checkins",
			Help: "Check-ins waiting for admin review",
		},
		[]string{"repo"},
	)

	m.ReposTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "docvcs_repos_total",
			Help: "Number of registered repositories",
		},
	)

	m.UsersTotal = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "docvcs_users_total",
			Help: "Number of registered users",
		},
	)

	m.CommandsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docvcs_shell_commands_total",
			Help: "Shell commands executed by menu and command",
		},
		[]string{"menu", "command"},
	)

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "docvcs_uptime_seconds",
			Help: "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.StartTime).Seconds() },
	)

	return m
}

// RecordCheckInQueued records a check-in entering the queue
func (m *Metrics) RecordCheckInQueued(repo string, pending int) {
	if m == nil {
		return
	}
	m.CheckInsQueuedTotal.WithLabelValues(repo).Inc()
	m.PendingCheckIns.WithLabelValues(repo).Set(float64(pending))
}

// RecordDequeue updates the pending gauge after a check-in leaves the queue
func (m *Metrics) RecordDequeue(repo string, pending int) {
	if m == nil {
		return
	}
	m.PendingCheckIns.WithLabelValues(repo).Set(float64(pending))
}

// RecordApproval records an approval attempt. The version gauge is
// published separately with SetRepoVersion.
func (m *Metrics) RecordApproval(repo, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ApprovalsTotal.WithLabelValues(repo, result).Inc()
	m.ApprovalDuration.WithLabelValues(repo).Observe(duration.Seconds())
}

// RecordChangeApplied counts one applied change of the given type
func (m *Metrics) RecordChangeApplied(repo, changeType string) {
	if m == nil {
		return
	}
	m.ChangesAppliedTotal.WithLabelValues(repo, changeType).Inc()
}

// RecordRevert records a revert attempt
func (m *Metrics) RecordRevert(repo, result string) {
	if m == nil {
		return
	}
	m.RevertsTotal.WithLabelValues(repo, result).Inc()
}

// SetRepoVersion publishes a repository's current version. Callers hold
// the repository lock so concurrent updates land in version order.
func (m *Metrics) SetRepoVersion(repo string, version int) {
	if m == nil {
		return
	}
	m.RepoVersion.WithLabelValues(repo).Set(float64(version))
}

// RecordCommand counts one shell command
func (m *Metrics) RecordCommand(menu, command string) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(menu, command).Inc()
}

// UpdateRegistryStats updates the user and repo gauges
func (m *Metrics) UpdateRegistryStats(users, repos int) {
	if m == nil {
		return
	}
	m.UsersTotal.Set(float64(users))
	m.ReposTotal.Set(float64(repos))
}

// ForgetRepo drops the per-repo series of a deleted repository
func (m *Metrics) ForgetRepo(repo string) {
	if m == nil {
		return
	}
	m.RepoVersion.DeleteLabelValues(repo)
	m.PendingCheckIns.DeleteLabelValues(repo)
}
