// Package internaldefs holds the metric naming tables shared by the
// Prometheus and OpenTelemetry exporters so both backends agree on names
// and help text.
package internaldefs

import (
	"github.com/authgate-dev/authgate"
)

// CounterDef binds an engine counter to its exported name and help text.
type CounterDef struct {
	ID   authgate.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter reporting audit events the dispatcher
// dropped under backpressure. It sits outside the snapshot counters.
const AuditDroppedName = "authgate_audit_dropped_total"

var CounterDefs = []CounterDef{
	{ID: authgate.MetricLoginSuccess, Name: "authgate_login_success_total", Help: "Successful login attempts."},
	{ID: authgate.MetricLoginFailure, Name: "authgate_login_failure_total", Help: "Failed login attempts."},
	{ID: authgate.MetricTokenIssued, Name: "authgate_token_issued_total", Help: "Issued bearer tokens."},
	{ID: authgate.MetricTokenRejected, Name: "authgate_token_rejected_total", Help: "Bearer tokens rejected during verification."},
	{ID: authgate.MetricSessionCreated, Name: "authgate_session_created_total", Help: "Created sessions."},
	{ID: authgate.MetricSessionResolved, Name: "authgate_session_resolved_total", Help: "Session identifiers resolved to an owner."},
	{ID: authgate.MetricSessionMissing, Name: "authgate_session_missing_total", Help: "Session lookups that found no live session."},
	{ID: authgate.MetricSessionRefreshed, Name: "authgate_session_refreshed_total", Help: "Session expiry extensions."},
	{ID: authgate.MetricSessionInvalidated, Name: "authgate_session_invalidated_total", Help: "Invalidated sessions."},
	{ID: authgate.MetricStoreFallback, Name: "authgate_store_fallback_total", Help: "Session operations served by the fallback store."},
	{ID: authgate.MetricAccountCreationSuccess, Name: "authgate_account_creation_success_total", Help: "Successful account creations."},
	{ID: authgate.MetricAccountCreationDuplicate, Name: "authgate_account_creation_duplicate_total", Help: "Account creation attempts rejected as duplicate."},
}
