package store

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Observer receives the outcome of every store operation.
type Observer interface {
	ObserveStoreOperation(op string, err error, duration time.Duration)
}

// Instrumented reports latency and failures of the wrapped store.
type Instrumented struct {
	next     Store
	observer Observer
	logger   *zap.Logger
}

// NewInstrumented decorates next. A nil observer only logs.
func NewInstrumented(next Store, observer Observer, logger *zap.Logger) *Instrumented {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Instrumented{next: next, observer: observer, logger: logger}
}

func (s *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, found, err := s.next.Get(ctx, key)
	s.record("get", key, err, time.Since(start))
	return value, found, err
}

func (s *Instrumented) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.next.Set(ctx, key, value)
	s.record("set", key, err, time.Since(start))
	return err
}

func (s *Instrumented) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.next.Delete(ctx, key)
	s.record("delete", key, err, time.Since(start))
	return err
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}

func (s *Instrumented) record(op, key string, err error, duration time.Duration) {
	if s.observer != nil {
		s.observer.ObserveStoreOperation(op, err, duration)
	}
	if err != nil {
		s.logger.Warn("store operation failed",
			zap.String("op", op),
			zap.String("key", key),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
	}
}
