package fussweg

import (
	"fmt"
	"strings"

	"github.com/yyyoichi/fussweg/via"
	"go.uber.org/zap"
)

type Option func(*Pipeline) error

// WithWorkers bounds the number of documents read at the same time.
// n must be positive.
func WithWorkers(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			return fmt.Errorf("workers must be positive, got %d", n)
		}
		p.workers = n
		return nil
	}
}

// WithLogger sets the logger. Skipped regions are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) error {
		p.zap = l
		return nil
	}
}

// WithConditionPolicy selects how regions with several condition keys
// are resolved.
func WithConditionPolicy(policy via.ConditionPolicy) Option {
	return func(p *Pipeline) error {
		p.policy = policy
		return nil
	}
}

// WithPrefix sets the value of the prefix column. It must not contain tabs
// or line breaks.
func WithPrefix(prefix string) Option {
	return func(p *Pipeline) error {
		if strings.ContainsAny(prefix, "\t\r\n") {
			return fmt.Errorf("invalid prefix %q", prefix)
		}
		p.prefix = prefix
		return nil
	}
}

// WithAllImages keeps images without annotations in the COCO document.
func WithAllImages() Option {
	return func(p *Pipeline) error {
		p.allImages = true
		return nil
	}
}
