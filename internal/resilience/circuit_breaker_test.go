package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFail = errors.New("fail")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestBreaker(clock *fakeClock) *CircuitBreaker {
	return NewCircuitBreaker(CircuitBreakerConfig{
		Name:        "test",
		MaxFailures: 3,
		Timeout:     time.Minute,
		HalfOpenMax: 2,
		Clock:       clock.Now,
	})
}

func fail() error    { return errFail }
func succeed() error { return nil }

func TestCircuitBreaker_StateTransitions(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(cb *CircuitBreaker, clock *fakeClock)
		expectedState State
	}{
		{
			name:          "successful execution stays closed",
			setup:         func(cb *CircuitBreaker, _ *fakeClock) { cb.Execute(succeed) },
			expectedState: StateClosed,
		},
		{
			name: "opens after max failures",
			setup: func(cb *CircuitBreaker, _ *fakeClock) {
				for i := 0; i < 3; i++ {
					cb.Execute(fail)
				}
			},
			expectedState: StateOpen,
		},
		{
			name: "success resets the failure count",
			setup: func(cb *CircuitBreaker, _ *fakeClock) {
				cb.Execute(fail)
				cb.Execute(fail)
				cb.Execute(succeed)
				cb.Execute(fail)
			},
			expectedState: StateClosed,
		},
		{
			name: "half-open after timeout",
			setup: func(cb *CircuitBreaker, clock *fakeClock) {
				for i := 0; i < 3; i++ {
					cb.Execute(fail)
				}
				clock.Advance(2 * time.Minute)
				cb.Execute(succeed)
			},
			expectedState: StateHalfOpen,
		},
		{
			name: "closes after enough half-open successes",
			setup: func(cb *CircuitBreaker, clock *fakeClock) {
				for i := 0; i < 3; i++ {
					cb.Execute(fail)
				}
				clock.Advance(2 * time.Minute)
				cb.Execute(succeed)
				cb.Execute(succeed)
			},
			expectedState: StateClosed,
		},
		{
			name: "half-open failure reopens",
			setup: func(cb *CircuitBreaker, clock *fakeClock) {
				for i := 0; i < 3; i++ {
					cb.Execute(fail)
				}
				clock.Advance(2 * time.Minute)
				cb.Execute(fail)
			},
			expectedState: StateOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)}
			cb := newTestBreaker(clock)

			tt.setup(cb, clock)

			assert.Equal(t, tt.expectedState, cb.State())
		})
	}
}

func TestCircuitBreaker_OpenRejects(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cb := newTestBreaker(clock)
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(fail), errFail)
	}

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_IsFailureFilter(t *testing.T) {
	errIgnored := errors.New("not found")
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures: 1,
		IsFailure:   func(err error) bool { return !errors.Is(err, errIgnored) },
	})

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errIgnored }), errIgnored)
	}

	state, failures, _ := cb.Stats()
	assert.Equal(t, StateClosed, state)
	assert.Zero(t, failures)
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	changes := make(chan [2]State, 4)
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:        "collector",
		MaxFailures: 1,
		OnStateChange: func(name string, from, to State) {
			assert.Equal(t, "collector", name)
			changes <- [2]State{from, to}
		},
	})

	cb.Execute(fail)

	select {
	case change := <-changes:
		assert.Equal(t, [2]State{StateClosed, StateOpen}, change)
	case <-time.After(time.Second):
		t.Fatal("state change callback not called")
	}

	cb.Reset()
	require.Equal(t, StateClosed, cb.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}
