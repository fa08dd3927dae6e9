package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	MetricPollsCreated    = "quickpoll_polls_created_total"
	MetricVotesApplied    = "quickpoll_votes_applied_total"
	MetricVotesRejected   = "quickpoll_votes_rejected_total"
	MetricRequestDuration = "quickpoll_http_request_duration_seconds"
)

// MetricService owns the collectors. Each service has its own registry so
// tests can build as many routers as they like.
type MetricService struct {
	registry *prometheus.Registry

	pollsCreated    prometheus.Counter
	votesApplied    prometheus.Counter
	votesRejected   prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

func NewMetricService() *MetricService {
	ms := &MetricService{
		registry: prometheus.NewRegistry(),
		pollsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricPollsCreated,
			Help: "Polls created with all of their options",
		}),
		votesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricVotesApplied,
			Help: "Votes that incremented an option",
		}),
		votesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricVotesRejected,
			Help: "Votes for an option that does not belong to the poll",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricRequestDuration,
			Help:    "HTTP request duration by route pattern, method and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	ms.registry.MustRegister(
		ms.pollsCreated,
		ms.votesApplied,
		ms.votesRejected,
		ms.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return ms
}

func (ms *MetricService) PollCreated() {
	ms.pollsCreated.Inc()
}

// VoteRecorded counts a vote attempt by whether it matched an option
func (ms *MetricService) VoteRecorded(applied bool) {
	if applied {
		ms.votesApplied.Inc()
		return
	}
	ms.votesRejected.Inc()
}

func (ms *MetricService) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	ms.requestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format
func (ms *MetricService) Handler() http.Handler {
	return promhttp.HandlerFor(ms.registry, promhttp.HandlerOpts{})
}
