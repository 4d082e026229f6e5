package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveStepDuration("compile", 2*time.Second)
	pr.IncStepResult("compile", ResultSuccess)
	pr.IncStepResult("compile", ResultSuccess)
	pr.IncStepResult("bindgen", ResultTimeout)
	pr.ObserveBuildDuration(3 * time.Second)
	pr.IncBuildOutcome("completed")
	pr.IncSubmitted("rust")
	pr.IncReaped(2)
	pr.IncReaped(0)

	assert.Equal(t, float64(2), testutil.ToFloat64(pr.stepResults.WithLabelValues("compile", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pr.stepResults.WithLabelValues("bindgen", "timeout")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pr.buildOutcome.WithLabelValues("completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(pr.submitted.WithLabelValues("rust")))
	assert.Equal(t, float64(2), testutil.ToFloat64(pr.reaped))
	assert.Equal(t, 1, testutil.CollectAndCount(pr.stepDuration))
}

func TestPrometheusHandler(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncSubmitted("rust")

	w := httptest.NewRecorder()
	pr.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `wasmbuild_jobs_submitted_total{language="rust"} 1`)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}

	r.ObserveStepDuration("x", time.Second)
	r.IncStepResult("x", ResultFailed)
	r.ObserveBuildDuration(time.Second)
	r.IncBuildOutcome("failed")
	r.IncSubmitted("rust")
	r.IncReaped(1)
}
