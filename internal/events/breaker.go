package events

import (
	"errors"
	"log"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker is skipping publishes
var ErrCircuitOpen = errors.New("events: circuit open")

// BreakerPublisher stops calling the wrapped publisher after repeated failures
// and tries again once resetTimeout has passed since the last failure.
type BreakerPublisher struct {
	next             Publisher
	failureThreshold int
	resetTimeout     time.Duration

	mu                  sync.Mutex
	consecutiveFailures int
	skipped             int
	isOpen              bool
	lastFailureTime     time.Time
	now                 func() time.Time
}

// NewBreakerPublisher wraps next with a circuit breaker
func NewBreakerPublisher(next Publisher, failureThreshold int, resetTimeout time.Duration) *BreakerPublisher {
	if failureThreshold <= 0 {
		failureThreshold = 1
	}
	return &BreakerPublisher{
		next:             next,
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
	}
}

// Publish implements Publisher.
func (b *BreakerPublisher) Publish(subject string, event any) error {
	if !b.canProceed() {
		return ErrCircuitOpen
	}

	if err := b.next.Publish(subject, event); err != nil {
		b.recordFailure()
		return err
	}
	b.recordSuccess()
	return nil
}

func (b *BreakerPublisher) canProceed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.isOpen {
		return true
	}

	// half-open: let one publish through
	if b.now().Sub(b.lastFailureTime) > b.resetTimeout {
		log.Printf("[events] circuit half-open after %v, %d events skipped", b.resetTimeout, b.skipped)
		b.isOpen = false
		b.skipped = 0
		return true
	}

	b.skipped++
	return false
}

func (b *BreakerPublisher) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures = 0
}

func (b *BreakerPublisher) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures++
	b.lastFailureTime = b.now()
	if b.consecutiveFailures >= b.failureThreshold && !b.isOpen {
		b.isOpen = true
		log.Printf("[events] circuit open after %d consecutive publish failures, retrying in %v",
			b.consecutiveFailures, b.resetTimeout)
	}
}

// GetStatus returns the breaker state
func (b *BreakerPublisher) GetStatus() (isOpen bool, consecutiveFailures int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isOpen, b.consecutiveFailures
}
