package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Breaker stops calling a failing gateway for a while instead of piling up
// slow requests against it.
type Breaker struct {
	next Gateway
	cb   *gobreaker.CircuitBreaker[Session]
}

func NewBreaker(next Gateway, consecutiveFailures uint32, openFor time.Duration) *Breaker {
	cb := gobreaker.NewCircuitBreaker[Session](gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= consecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &Breaker{next: next, cb: cb}
}

func (b *Breaker) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	s, err := b.cb.Execute(func() (Session, error) {
		return b.next.CreateSession(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Session{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return s, err
}
