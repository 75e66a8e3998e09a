package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

var runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "shortcast",
	Subsystem: "pipeline",
	Name:      "runs_total",
	Help:      "Number of pipeline runs per trigger source",
}, []string{"trigger"})

var videosPosted = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "shortcast",
	Subsystem: "pipeline",
	Name:      "videos_posted_total",
	Help:      "Videos successfully posted to the channel",
})

var downloadFailures = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "shortcast",
	Subsystem: "pipeline",
	Name:      "download_failures_total",
	Help:      "Candidates dropped because download or probe failed",
})

var runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
	Namespace: "shortcast",
	Subsystem: "pipeline",
	Name:      "run_duration_seconds",
	Help:      "Wall time of a full pipeline run",
	Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
})

func init() {
	colls := []prometheus.Collector{runsTotal, videosPosted, downloadFailures, runDuration}
	for _, v := range colls {
		if err := prometheus.Register(v); err != nil {
			panic(err)
		}
	}
}
