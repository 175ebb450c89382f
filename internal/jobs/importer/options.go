package importer

import (
	"time"

	"github.com/ternarybob/subimport/internal/common"
)

// DefaultPollInterval is the fixed interval between poll ticks.
const DefaultPollInterval = time.Second

type options struct {
	interval    time.Duration
	ordering    string
	maxFailures int
}

func defaultOptions() options {
	return options{
		interval: DefaultPollInterval,
		ordering: common.OrderingLastCompleted,
	}
}

// Option configures a Controller.
type Option func(*options)

// WithPollInterval overrides the tick interval. Non-positive values are ignored.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithOrdering selects how out-of-order poll responses are applied:
// common.OrderingLastCompleted (default) or common.OrderingLastIssued.
func WithOrdering(ordering string) Option {
	return func(o *options) {
		o.ordering = ordering
	}
}

// WithMaxConsecutiveFailures publishes an EventImportPollDegraded once a run
// of n failed fetches is reached. Zero disables the warning.
func WithMaxConsecutiveFailures(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxFailures = n
		}
	}
}
