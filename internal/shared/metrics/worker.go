package metrics

import "github.com/prometheus/client_golang/prometheus"

// WorkerMetrics são os contadores dos consumidores Kafka
type WorkerMetrics struct {
	Consumed  prometheus.Counter
	Persisted prometheus.Counter
	Errors    *prometheus.CounterVec
}

func NewWorkerMetrics(reg prometheus.Registerer, worker string) *WorkerMetrics {
	labels := prometheus.Labels{"worker": worker}
	m := &WorkerMetrics{
		Consumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "bet_worker_messages_consumed_total",
			Help:        "Messages read from Kafka.",
			ConstLabels: labels,
		}),
		Persisted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "bet_worker_messages_persisted_total",
			Help:        "Messages persisted after processing.",
			ConstLabels: labels,
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bet_worker_errors_total",
			Help:        "Processing errors by phase.",
			ConstLabels: labels,
		}, []string{"phase"}),
	}
	reg.MustRegister(m.Consumed, m.Persisted, m.Errors)
	return m
}
