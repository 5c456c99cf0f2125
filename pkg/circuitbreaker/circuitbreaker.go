package circuitbreaker

import (
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

var (
	// MaxNumOfFailingRequests ...
	MaxNumOfFailingRequests = 10
	// FailingRatio ...
	FailingRatio = 0.6
)

// NewCircuitBreaker returns a *gobreaker.CircuitBreaker guarding calls to an
// external service. It trips once the overall number of failing requests has
// reached the tweakable MaxNumOfFailingRequests cap and the failing ratio has
// met FailingRatio.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: name,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return int(counts.Requests) > MaxNumOfFailingRequests && ratio >= FailingRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Debugf("circuit breaker %s moved from %s to %s", name, from, to)
		},
	})
}
