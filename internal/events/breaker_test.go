package events

import (
	"errors"
	"testing"
	"time"
)

type flakyPublisher struct {
	fail  bool
	calls int
}

func (p *flakyPublisher) Publish(string, any) error {
	p.calls++
	if p.fail {
		return errors.New("broker down")
	}
	return nil
}

func TestBreakerPublisher_OpensAndRecovers(t *testing.T) {
	next := &flakyPublisher{fail: true}
	b := NewBreakerPublisher(next, 2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if err := b.Publish(SubjectDealMatched, nil); err == nil {
			t.Fatalf("publish %d: expected error", i+1)
		}
	}
	if open, _ := b.GetStatus(); !open {
		t.Fatal("breaker closed after threshold failures")
	}

	if err := b.Publish(SubjectDealMatched, nil); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
	if next.calls != 2 {
		t.Errorf("wrapped publisher calls = %d, want 2", next.calls)
	}

	now = now.Add(2 * time.Minute)
	next.fail = false
	if err := b.Publish(SubjectDealMatched, nil); err != nil {
		t.Fatalf("half-open publish: %v", err)
	}
	if open, failures := b.GetStatus(); open || failures != 0 {
		t.Errorf("status = open %v failures %d, want closed with 0", open, failures)
	}
}

func TestBreakerPublisher_SuccessResetsCount(t *testing.T) {
	next := &flakyPublisher{fail: true}
	b := NewBreakerPublisher(next, 2, time.Minute)

	b.Publish(SubjectSwipeRequest, nil)
	next.fail = false
	b.Publish(SubjectSwipeRequest, nil)
	next.fail = true
	b.Publish(SubjectSwipeRequest, nil)

	if open, failures := b.GetStatus(); open || failures != 1 {
		t.Errorf("status = open %v failures %d, want closed with 1", open, failures)
	}
}
