package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	goBlog "github.com/MrEthical07/goBlog"
)

type fakeSource struct {
	snapshot goBlog.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goBlog.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                    { return f.dropped }

func gather(t *testing.T, c *Collector) map[string]*dto.MetricFamily {
	t.Helper()

	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func TestCollectorExportsCountersAndHistogram(t *testing.T) {
	c := NewCollectorFromSource(fakeSource{
		snapshot: goBlog.MetricsSnapshot{
			Counters: map[goBlog.MetricID]uint64{
				goBlog.MetricLoginSuccess: 7,
				goBlog.MetricFetchFlights: 2,
			},
			Histograms: map[goBlog.MetricID][]uint64{
				goBlog.MetricFetchLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 3,
	})

	families := gather(t, c)

	if got := families["goblog_login_success_total"].GetMetric()[0].GetCounter().GetValue(); got != 7 {
		t.Fatalf("expected login counter 7, got %v", got)
	}
	if got := families["goblog_fetch_user_flights_total"].GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected flights 2, got %v", got)
	}
	if got := families["goblog_audit_dropped_total"].GetMetric()[0].GetCounter().GetValue(); got != 3 {
		t.Fatalf("expected dropped 3, got %v", got)
	}

	hist := families["goblog_fetch_user_latency_seconds"].GetMetric()[0].GetHistogram()
	if hist.GetSampleCount() != 36 {
		t.Fatalf("expected 36 samples, got %d", hist.GetSampleCount())
	}
	want := []uint64{1, 3, 6, 10, 15, 21, 28}
	buckets := hist.GetBucket()
	if len(buckets) != len(want) {
		t.Fatalf("expected %d finite buckets, got %d", len(want), len(buckets))
	}
	for i, b := range buckets {
		if b.GetCumulativeCount() != want[i] {
			t.Fatalf("bucket le=%v: got %d want %d", b.GetUpperBound(), b.GetCumulativeCount(), want[i])
		}
	}
}

func TestCollectorZeroWhenMetricsDisabled(t *testing.T) {
	c := NewCollectorFromSource(fakeSource{
		snapshot: goBlog.MetricsSnapshot{
			Counters:   map[goBlog.MetricID]uint64{},
			Histograms: map[goBlog.MetricID][]uint64{},
		},
	})

	families := gather(t, c)
	if got := families["goblog_logout_total"].GetMetric()[0].GetCounter().GetValue(); got != 0 {
		t.Fatalf("expected zero, got %v", got)
	}
	if got := families["goblog_fetch_user_latency_seconds"].GetMetric()[0].GetHistogram().GetSampleCount(); got != 0 {
		t.Fatalf("expected empty histogram, got %d", got)
	}
}

func TestHandlerServesTextFormat(t *testing.T) {
	c := NewCollectorFromSource(fakeSource{
		snapshot: goBlog.MetricsSnapshot{
			Counters: map[goBlog.MetricID]uint64{goBlog.MetricUnauthorized: 4},
		},
	})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "goblog_unauthorized_total 4") {
		t.Fatalf("expected unauthorized counter, got:\n%s", body)
	}
	if !strings.Contains(string(body), `goblog_fetch_user_latency_seconds_bucket{le="+Inf"} 0`) {
		t.Fatalf("expected histogram buckets, got:\n%s", body)
	}
}
