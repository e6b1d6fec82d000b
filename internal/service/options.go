package service

// ReadOption adjusts how a read uses the cache.
type ReadOption func(*readOptions)

type readOptions struct {
	skipRead  bool
	skipWrite bool
}

// WithoutCache makes a read go to storage instead of the cached value.
// GetTask repopulates the task's cache entry from that read, or evicts it when
// the task is gone; collection reads leave the cache untouched.
func WithoutCache() ReadOption {
	return func(o *readOptions) {
		o.skipRead = true
		o.skipWrite = true
	}
}

// WithForceRefresh skips the cached value but stores the fresh result.
func WithForceRefresh() ReadOption {
	return func(o *readOptions) {
		o.skipRead = true
		o.skipWrite = false
	}
}

func applyReadOptions(opts []ReadOption) readOptions {
	var o readOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
