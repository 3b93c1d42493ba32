package internaldefs

import (
	goBlog "github.com/MrEthical07/goBlog"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   goBlog.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   goBlog.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter fed by Client.AuditDropped.
const (
	AuditDroppedName = "goblog_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped because the dispatcher buffer was full."
)

var CounterDefs = []CounterDef{
	{ID: goBlog.MetricLoginSuccess, Name: "goblog_login_success_total", Help: "Successful logins."},
	{ID: goBlog.MetricLoginFailure, Name: "goblog_login_failure_total", Help: "Failed logins."},
	{ID: goBlog.MetricRegisterSuccess, Name: "goblog_register_success_total", Help: "Successful registrations."},
	{ID: goBlog.MetricRegisterFailure, Name: "goblog_register_failure_total", Help: "Failed registrations."},
	{ID: goBlog.MetricLogout, Name: "goblog_logout_total", Help: "Logouts."},
	{ID: goBlog.MetricFetchCalls, Name: "goblog_fetch_user_calls_total", Help: "FetchUser invocations, including no-ops."},
	{ID: goBlog.MetricFetchSkipped, Name: "goblog_fetch_user_skipped_total", Help: "FetchUser calls answered from memory."},
	{ID: goBlog.MetricFetchFlights, Name: "goblog_fetch_user_flights_total", Help: "Identity resolutions started."},
	{ID: goBlog.MetricFetchSuccess, Name: "goblog_fetch_user_success_total", Help: "Identity resolutions that returned a user."},
	{ID: goBlog.MetricFetchFailure, Name: "goblog_fetch_user_failure_total", Help: "Identity resolutions that cleared the session."},
	{ID: goBlog.MetricFetchStale, Name: "goblog_fetch_user_stale_total", Help: "Identity resolutions discarded because the session changed."},
	{ID: goBlog.MetricFetchAbandoned, Name: "goblog_fetch_user_abandoned_total", Help: "FetchUser callers whose context ended first."},
	{ID: goBlog.MetricRefreshSuccess, Name: "goblog_refresh_success_total", Help: "Successful token refreshes."},
	{ID: goBlog.MetricRefreshFailure, Name: "goblog_refresh_failure_total", Help: "Failed token refreshes."},
	{ID: goBlog.MetricUnauthorized, Name: "goblog_unauthorized_total", Help: "Sessions cleared after the API answered 401."},
	{ID: goBlog.MetricUnauthorizedIgnored, Name: "goblog_unauthorized_ignored_total", Help: "401 answers for tokens no longer held."},
	{ID: goBlog.MetricRateLimited, Name: "goblog_rate_limited_total", Help: "Calls refused by the local budget or the server."},
	{ID: goBlog.MetricProfileUpdated, Name: "goblog_profile_updated_total", Help: "Profile updates."},
	{ID: goBlog.MetricPasswordChanged, Name: "goblog_password_changed_total", Help: "Password changes."},
	{ID: goBlog.MetricTokenStoreFailure, Name: "goblog_token_store_failure_total", Help: "Durable token store errors."},
}

var HistogramDefs = []HistogramDef{
	{ID: goBlog.MetricFetchLatency, Name: "goblog_fetch_user_latency_seconds", Help: "Identity resolution latency."},
}

// HistogramBounds are the finite upper bounds in seconds. The eighth bucket is
// the +Inf overflow.
var HistogramBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, overflow included, for exporters
// without native histograms.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to the fixed bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	copy(out[:], raw)
	return out
}

func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i, v := range raw {
		running += v
		out[i] = running
	}
	return out
}
