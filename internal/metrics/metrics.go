package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	SuccessfulRequests *prometheus.CounterVec
	FailedRequests     *prometheus.CounterVec
}

// New builds and registers the request counters on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SuccessfulRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "successful_request",
				Help: "Total number of successful (2xx) HTTP requests",
			},
			[]string{"path"},
		),
		FailedRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unsuccessful_request",
				Help: "Total number of unsuccessful (4xx/5xx) HTTP requests",
			},
			[]string{"path"},
		),
	}

	reg.MustRegister(m.SuccessfulRequests)
	reg.MustRegister(m.FailedRequests)

	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Middleware counts every request by path and outcome.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		if recorder.status < http.StatusBadRequest {
			m.SuccessfulRequests.WithLabelValues(r.URL.Path).Inc()
		} else {
			m.FailedRequests.WithLabelValues(r.URL.Path).Inc()
		}
	})
}
