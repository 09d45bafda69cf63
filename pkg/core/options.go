package core

import (
	"go.uber.org/zap"
)

const defaultConcurrency = 10

// Option configures an Engine.
type Option func(*Engine)

// Logger sets the logger used by the engine and the arrays it opens.
func Logger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.l = l
		}
	}
}

// Concurrency bounds the number of chunk store operations in flight for
// one region read or write.
func Concurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}
