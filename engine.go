package authgate

import (
	"context"
	"time"

	"github.com/authgate-dev/authgate/jwt"
	"github.com/authgate-dev/authgate/password"
	"github.com/authgate-dev/authgate/session"
)

// Engine is the authentication core shared by both pipelines. Instances are
// configured through [Builder.Build] and treated as immutable afterwards;
// all methods are safe for concurrent use.
type Engine struct {
	config       Config
	registry     *session.Registry
	userStore    UserStore
	passwordHash *password.Hasher
	tokens       *jwt.Manager
	metrics      *Metrics
	audit        *auditDispatcher
}

// Close drains the audit dispatcher. Safe on a nil Engine.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// SessionTTL reports the configured sliding expiry window.
func (e *Engine) SessionTTL() time.Duration {
	return e.config.Session.TTL
}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports events dropped by the dispatcher under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, username, sessionID string, opErr error, metadata map[string]string) {
	if e == nil || e.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		Username:  username,
		SessionID: sessionID,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}
	e.audit.Emit(ctx, event)
}

const (
	auditEventLoginSuccess       = "login_success"
	auditEventLoginFailure       = "login_failure"
	auditEventTokenIssued        = "token_issued"
	auditEventSessionCreated     = "session_created"
	auditEventSessionInvalidated = "session_invalidated"
	auditEventSessionRefreshed   = "session_refreshed"
	auditEventAccountCreated     = "account_created"
	auditEventAccountDuplicate   = "account_duplicate"
)
