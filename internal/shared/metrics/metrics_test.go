package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	var buf strings.Builder
	snap := h.Snapshot()
	var cumulative uint64
	for i := range snap.buckets {
		cumulative += snap.counts[i]
		buf.WriteString(formatFloat(snap.buckets[i]))
		buf.WriteString("=")
		buf.WriteString(formatFloat(float64(cumulative)))
		buf.WriteString(" ")
	}
	if got := buf.String(); got != "10=1 100=2 " {
		t.Fatalf("unexpected cumulative buckets %q", got)
	}
	if snap.count != 3 || snap.sum != 555 {
		t.Fatalf("unexpected count/sum %d/%v", snap.count, snap.sum)
	}
}

func TestHandlerRendersCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	before := resumesUploaded.value.Load()
	IncResumesUploaded()
	ObserveLLMDuration(1500 * time.Millisecond)

	r := gin.New()
	r.GET("/metrics", Handler())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	want := "resumes_uploaded_total " + formatFloat(float64(before+1))
	if !strings.Contains(body, want) {
		t.Fatalf("expected %q in body:\n%s", want, body)
	}
	for _, name := range []string{"resume_parse_fallback_total", "analysis_fallback_total", "tailor_failed_total", "llm_duration_ms_bucket{le=\"2000\"}"} {
		if !strings.Contains(body, name) {
			t.Fatalf("missing %s in body", name)
		}
	}
}
