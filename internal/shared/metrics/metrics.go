package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

type counter struct {
	name  string
	help  string
	value atomic.Uint64
}

var (
	resumesUploaded     = &counter{name: "resumes_uploaded_total", help: "Resumes uploaded and parsed"}
	parseFallbacks      = &counter{name: "resume_parse_fallback_total", help: "Resume parses served by the rule-based parser"}
	analysesCompleted   = &counter{name: "analysis_completed_total", help: "Analyses persisted onto job applications"}
	analysisFallbacks   = &counter{name: "analysis_fallback_total", help: "Analyses served by the built-in example"}
	tailorFailures      = &counter{name: "tailor_failed_total", help: "Tailoring requests that failed"}
	jobURLParseFailures = &counter{name: "job_url_parse_failed_total", help: "Job posting fetches that failed"}

	counters = []*counter{resumesUploaded, parseFallbacks, analysesCompleted, analysisFallbacks, tailorFailures, jobURLParseFailures}

	llmDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

func IncResumesUploaded() { resumesUploaded.value.Add(1) }
func IncParseFallback() { parseFallbacks.value.Add(1) }
func IncAnalysisCompleted() { analysesCompleted.value.Add(1) }
func IncAnalysisFallback() { analysisFallbacks.value.Add(1) }
func IncTailorFailed() { tailorFailures.value.Add(1) }
func IncJobURLParseFailed() { jobURLParseFailures.value.Add(1) }

// ObserveLLMDuration records one LLM round trip.
func ObserveLLMDuration(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	if ms < 0 {
		ms = 0
	}
	llmDuration.Observe(ms)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	for _, ctr := range counters {
		writeCounter(&buf, ctr.name, ctr.help, ctr.value.Load())
	}
	writeHistogram(&buf, "llm_duration_ms", "LLM completion latency in milliseconds", llmDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records value in the first bucket whose bound contains it; Render accumulates.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
