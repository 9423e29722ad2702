package ai

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

var breakerOpen = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "learnora",
	Subsystem: "ai",
	Name:      "breaker_open",
	Help:      "Whether the text generation circuit breaker is open (1) or closed (0)",
})

// ResilienceConfig tunes the retry and circuit breaker behaviour around a
// TextGenerator.
type ResilienceConfig struct {
	MaxAttempts      int
	InitialBackoff   time.Duration
	CallTimeout      time.Duration
	BreakerThreshold uint32
	BreakerCooldown  time.Duration
	Logger           zerolog.Logger
}

// ResilientGenerator decorates a TextGenerator with bounded retries, a
// per-attempt timeout and a circuit breaker. Content blocks and cancelled
// contexts are not retried. When the breaker is open, calls fail immediately
// without touching the provider.
type ResilientGenerator struct {
	next    TextGenerator
	cfg     ResilienceConfig
	breaker *gobreaker.CircuitBreaker[[]json.RawMessage]
	logger  zerolog.Logger
}

// NewResilientGenerator wraps next with the configured resilience policy.
func NewResilientGenerator(next TextGenerator, cfg ResilienceConfig) *ResilientGenerator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 20 * time.Second
	}
	if cfg.BreakerThreshold == 0 {
		cfg.BreakerThreshold = 4
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	settings := gobreaker.Settings{
		Name:    "text-generation",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				breakerOpen.Set(1)
			} else {
				breakerOpen.Set(0)
			}
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	return &ResilientGenerator{
		next:    next,
		cfg:     cfg,
		breaker: gobreaker.NewCircuitBreaker[[]json.RawMessage](settings),
		logger:  logger,
	}
}

// GenerateArray runs the wrapped generator under the breaker. A full retry
// sequence counts as one breaker observation.
func (r *ResilientGenerator) GenerateArray(ctx context.Context, req GenerationRequest) ([]json.RawMessage, error) {
	return r.breaker.Execute(func() ([]json.RawMessage, error) {
		return r.generateWithRetry(ctx, req)
	})
}

func (r *ResilientGenerator) generateWithRetry(ctx context.Context, req GenerationRequest) ([]json.RawMessage, error) {
	backoff := r.cfg.InitialBackoff

	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
		items, err := r.next.GenerateArray(callCtx, req)
		cancel()
		if err == nil {
			return items, nil
		}

		lastErr = err
		if errors.Is(err, ErrContentBlocked) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, err
		}
		if attempt == r.cfg.MaxAttempts {
			break
		}

		r.logger.Warn().
			Int("attempt", attempt).
			Int("max_attempts", r.cfg.MaxAttempts).
			Dur("backoff", backoff).
			Err(err).
			Msg("generation retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, lastErr
}
