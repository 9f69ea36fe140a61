package worker

import (
	"github.com/okian/loadwatch/internal/domain/labels"
	"github.com/okian/loadwatch/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithTranslator sets the label translator used for computed records.
func WithTranslator(t labels.Translator) Option {
	return func(w *InMemoryWorker) {
		if t != nil {
			w.translator = t
		}
	}
}
