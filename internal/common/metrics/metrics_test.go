package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTasksAwarded(t *testing.T) {
	c := TasksAwarded.WithLabelValues("upload_payslip")
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestWorkerJobsActive(t *testing.T) {
	g := WorkerJobsActive.WithLabelValues("submit-assessment")
	g.Inc()
	g.Inc()
	g.Dec()
	assert.Equal(t, 1.0, testutil.ToFloat64(g))
	g.Dec()
}

func TestReadinessScoresRegistered(t *testing.T) {
	ReadinessScores.WithLabelValues("base").Observe(72)
	assert.Equal(t, 1, testutil.CollectAndCount(ReadinessScores, "readiness_score"))
}
