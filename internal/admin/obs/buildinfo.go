package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build metadata, value is always 1.",
		},
		[]string{"version", "commit"},
	)

	buildInfoOnce sync.Once
)

// SetBuildInfo publishes the running version as a constant gauge so scrapes
// can join metrics to a release.
func SetBuildInfo(version, commit string) {
	buildInfoOnce.Do(func() {
		prometheus.MustRegister(buildInfo)
	})
	buildInfo.WithLabelValues(version, commit).Set(1)
}
