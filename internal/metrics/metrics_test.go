package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"skillbridge/internal/domain"
)

func findCounter(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matchLabels(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("%s%v not found", name, labels)
	return 0
}

func matchLabels(m *dto.Metric, labels map[string]string) bool {
	if len(m.GetLabel()) != len(labels) {
		return false
	}
	for _, lp := range m.GetLabel() {
		if labels[lp.GetName()] != lp.GetValue() {
			return false
		}
	}
	return true
}

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAnalysis(true)
	c.RecordAnalysis(true)
	c.RecordAnalysis(false)
	c.RecordRoadmap("session")
	c.RecordChatMessage(domain.ChatRoleUser)
	c.RecordChatMessage(domain.ChatRoleAI)
	c.RecordProfileWrite("add_course")
	c.RecordHTTPStatus(409)

	cases := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"skillbridge_analyses_total", map[string]string{"has_resume": "true"}, 2},
		{"skillbridge_analyses_total", map[string]string{"has_resume": "false"}, 1},
		{"skillbridge_roadmaps_total", map[string]string{"source": "session"}, 1},
		{"skillbridge_chat_messages_total", map[string]string{"role": "ai"}, 1},
		{"skillbridge_profile_writes_total", map[string]string{"op": "add_course"}, 1},
		{"skillbridge_http_status_total", map[string]string{"status_code": "409"}, 1},
	}
	for _, tc := range cases {
		if got := findCounter(t, reg, tc.name, tc.labels); got != tc.want {
			t.Errorf("%s%v = %v, want %v", tc.name, tc.labels, got, tc.want)
		}
	}
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordHTTPLatency(150 * time.Millisecond)
	c.RecordHTTPStatus(200)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"skillbridge_http_latency_seconds_count 1", `skillbridge_http_status_total{status_code="200"} 1`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("body missing %q", want)
		}
	}
}
