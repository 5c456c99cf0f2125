package wsinterface

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "connectd",
		Subsystem: "relay",
		Name:      "requests_total",
		Help:      "Number of connector requests handled, by message type.",
	}, []string{"type"})

	errorsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "connectd",
		Subsystem: "relay",
		Name:      "errors_total",
		Help:      "Number of connector requests answered with an error, by code.",
	}, []string{"code"})

	sessionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "connectd",
		Subsystem: "relay",
		Name:      "open_sessions",
		Help:      "Number of currently connected provider sessions.",
	})
)

func countRequest(msgType string) {
	requestsCounter.WithLabelValues(msgType).Inc()
}

func countError(code int) {
	errorsCounter.WithLabelValues(strconv.Itoa(code)).Inc()
}
