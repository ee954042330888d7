package errortrack

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Capture outcomes.
const (
	outcomeWritten    = "written"
	outcomeSuppressed = "suppressed"
	outcomeFailed     = "failed"
)

var (
	captured     *prometheus.CounterVec //nolint:gochecknoglobals
	capturedOnce sync.Once              //nolint:gochecknoglobals
)

func capturedCounter() *prometheus.CounterVec {
	capturedOnce.Do(func() {
		captured = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "errortrack_captured_total",
				Help: "Number of captured client errors, differentiated by severity and outcome.",
			},
			[]string{"severity", "outcome"},
		)
	})

	return captured
}
