// Package payment defines the boundary contract with the payment provider
// and ships the simulated gateway used by this deployment. The gateway never
// mutates booking state; the booking ledger applies the resulting transition.
package payment

import (
	"context"
	"math/rand"
	"sync"
)

// Result is the provider's verdict for one settlement attempt.
type Result struct {
	Success bool
	Message string
}

// Gateway abstracts the external payment provider. Implementations must
// return exactly one of the two outcomes per invocation and must honour
// context cancellation.
type Gateway interface {
	Attempt(ctx context.Context, bookingID string) (Result, error)
}

// OutcomeFunc decides the verdict for a booking id. Injected so tests can
// force success or failure deterministically.
type OutcomeFunc func(bookingID string) bool

// SimulatedGateway approves attempts according to an injected outcome
// strategy. The production strategy approves with a fixed probability.
type SimulatedGateway struct {
	outcome OutcomeFunc
}

// NewSimulatedGateway builds a gateway driven by the supplied strategy. A nil
// strategy approves every attempt.
func NewSimulatedGateway(outcome OutcomeFunc) *SimulatedGateway {
	if outcome == nil {
		outcome = func(string) bool { return true }
	}
	return &SimulatedGateway{outcome: outcome}
}

// RandomOutcome approves with the given probability, clamped to [0, 1].
func RandomOutcome(successRate float64, seed int64) OutcomeFunc {
	if successRate < 0 {
		successRate = 0
	}
	if successRate > 1 {
		successRate = 1
	}
	rng := rand.New(rand.NewSource(seed))
	var mu sync.Mutex
	return func(string) bool {
		mu.Lock()
		defer mu.Unlock()
		return rng.Float64() < successRate
	}
}

// Attempt resolves the settlement outcome for a booking. A cancelled or
// expired context aborts the attempt with the context's error.
func (g *SimulatedGateway) Attempt(ctx context.Context, bookingID string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if g.outcome(bookingID) {
		return Result{Success: true, Message: "Payment processed successfully"}, nil
	}
	return Result{Success: false, Message: "Payment failed. Please try again."}, nil
}
