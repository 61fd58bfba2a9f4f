package canq

import "go.uber.org/zap"

// Observer receives queue outcomes. Callbacks run synchronously on the
// goroutine calling the queue and must not call back into it.
type Observer interface {
	// Added is called after a handle with the given key was stored.
	Added(key uint32)
	// Coalesced is called when a Priority add found key already queued.
	Coalesced(key uint32)
	// Overflow is called when an add was refused because the queue is full.
	Overflow(key uint32)
	// Removed is called after a handle with the given key was read.
	Removed(key uint32)
	// Underflow is called when a read found the queue empty.
	Underflow()
	// Rewound is called after Reset.
	Rewound()
}

// NopObserver ignores every outcome.
type NopObserver struct{}

func (NopObserver) Added(uint32)     {}
func (NopObserver) Coalesced(uint32) {}
func (NopObserver) Overflow(uint32)  {}
func (NopObserver) Removed(uint32)   {}
func (NopObserver) Underflow()       {}
func (NopObserver) Rewound()         {}

type options struct {
	obs Observer
	log *zap.Logger
}

// Option configures a Queue at construction.
type Option func(*options)

// WithObserver attaches o to the queue. A nil o is ignored.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		if o != nil {
			opts.obs = o
		}
	}
}

// WithLogger sets the logger used for debug output on Full and coalesced adds.
func WithLogger(l *zap.Logger) Option {
	return func(opts *options) {
		if l != nil {
			opts.log = l
		}
	}
}

func defaultOptions() options {
	return options{
		obs: NopObserver{},
		log: zap.NewNop(),
	}
}
