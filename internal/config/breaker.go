package config

import (
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/foodbridge/foodbridge/internal/foodbridge"
)

// NewCircuitBreaker builds the gateway breaker from b. Only failures that wrap
// foodbridge.ErrUnavailable count; a 4xx is a healthy server saying no.
// onChange, when set, is called after the transition is logged.
func (b Breaker) NewCircuitBreaker(name string, log zerolog.Logger, onChange func(name string, to gobreaker.State)) *gobreaker.CircuitBreaker {
	threshold := b.ConsecutiveFailures
	if threshold == 0 {
		threshold = 3
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: b.MaxRequests,
		Interval:    b.Interval,
		Timeout:     b.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: foodbridge.BreakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Error().Str("event", "breaker_state").Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
			if onChange != nil {
				onChange(name, to)
			}
		},
	})
}
