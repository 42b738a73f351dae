package pool

import "context"

// Config for a worker pool
type Config[J, R any] struct {
	// Size of the pool
	Size int
	// MaxRetry per failed job
	MaxRetry int
	// JobQueueLimit for the jobs channel, SendJobs blocks once full
	JobQueueLimit int
	// ResultQueueLimit for the results channel
	ResultQueueLimit int
	// Worker of the pool
	Worker func(context.Context, J) (R, error)
}

// DefaultConfig returns a Config[J, R] with queue limits of 100 * size and no
// retries
func DefaultConfig[J, R any](size int, worker func(ctx context.Context, job J) (R, error)) *Config[J, R] {
	return &Config[J, R]{
		Size:             size,
		JobQueueLimit:    100 * size,
		ResultQueueLimit: 100 * size,
		MaxRetry:         0,
		Worker:           worker,
	}
}
