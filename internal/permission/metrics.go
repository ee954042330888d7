package permission

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	denied     *prometheus.CounterVec //nolint:gochecknoglobals
	deniedOnce sync.Once              //nolint:gochecknoglobals
)

func deniedCounter() *prometheus.CounterVec {
	deniedOnce.Do(func() {
		denied = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "permission_denials_total",
				Help: "Number of denied guarded operations, differentiated by permission.",
			},
			[]string{"permission"},
		)
	})

	return denied
}
