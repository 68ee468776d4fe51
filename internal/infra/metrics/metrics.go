package metrics

import (
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	jobsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_processed_total",
			Help: "Finished processing attempts by outcome (done/failed).",
		},
		[]string{"outcome"},
	)

	jobsClaimConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobs_claim_conflicts_total",
			Help: "Claim attempts lost to a concurrent worker.",
		},
	)

	jobsStaleSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobs_stale_swept_total",
			Help: "PROCESSING jobs returned to PENDING by the stale sweep.",
		},
	)

	jobsRetried = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobs_retried_total",
			Help: "User-requested reprocessing resets.",
		},
	)

	pipelineDurationMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_duration_ms",
			Help:    "End-to-end per-job pipeline latency in milliseconds.",
			Buckets: []float64{250, 500, 1000, 2000, 4000, 8000, 16000, 30000, 60000},
		},
		[]string{"outcome"},
	)

	ocrDurationMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ocr_duration_ms",
			Help:    "Text extraction latency in milliseconds per engine.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"engine", "success"},
	)

	aiTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_in",
			Help: "Sum of prompt (input) tokens per provider/model.",
		},
		[]string{"provider", "model"},
	)

	aiTokensOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_out",
			Help: "Sum of completion (output) tokens per provider/model.",
		},
		[]string{"provider", "model"},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 16000, 30000},
		},
		[]string{"provider", "model", "success"},
	)

	extractionRepairs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "extraction_repairs_total",
			Help: "Repair rounds triggered by invalid model output.",
		},
	)

	extractionRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "extraction_rejected_total",
			Help: "Extractions abandoned after the repair round also failed.",
		},
	)

	documentsUploaded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "documents_uploaded_total",
			Help: "Accepted document uploads.",
		},
	)

	cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Cache lookups by entity and outcome (hit/miss).",
		},
		[]string{"entity", "outcome"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			jobsProcessed, jobsClaimConflicts, jobsStaleSwept, jobsRetried,
			pipelineDurationMs, ocrDurationMs,
			aiTokensIn, aiTokensOut, aiCallsLatencyMs,
			extractionRepairs, extractionRejected,
			documentsUploaded, cacheRequests,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// -------- Job helpers --------

func JobFinished(outcome string, latencyMs int) {
	jobsProcessed.WithLabelValues(norm(outcome)).Inc()
	pipelineDurationMs.WithLabelValues(norm(outcome)).Observe(float64(latencyMs))
}

func ClaimConflict()     { jobsClaimConflicts.Inc() }
func StaleSwept(n int)   { jobsStaleSwept.Add(float64(n)) }
func JobRetried()        { jobsRetried.Inc() }
func DocumentUploaded()  { documentsUploaded.Inc() }
func ExtractionRepair()  { extractionRepairs.Inc() }
func ExtractionRejected() { extractionRejected.Inc() }

func IncCacheRequest(entity, outcome string) {
	cacheRequests.WithLabelValues(norm(entity), norm(outcome)).Inc()
}

// -------- OCR helpers --------

func ObserveOCR(engine string, latencyMs int, success bool) {
	ocrDurationMs.WithLabelValues(norm(engine), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

// -------- Chat helpers --------

func ObserveChatUsage(provider, model string, tokensIn, tokensOut, latencyMs int, success bool) {
	lbl := []string{norm(provider), norm(model)}
	aiTokensIn.WithLabelValues(lbl...).Add(float64(tokensIn))
	aiTokensOut.WithLabelValues(lbl...).Add(float64(tokensOut))
	aiCallsLatencyMs.WithLabelValues(norm(provider), norm(model), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}
