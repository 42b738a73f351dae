package pool

import (
	"context"
	"errors"
	"sync"
)

// Pool manages a fixed set of workers draining a job queue
type Pool[J, R any] interface {
	// SendJobs queues jobs for the workers
	SendJobs(jobs ...J)
	// Close closes the job queue and returns the results channel; the results
	// channel is closed once every worker has drained
	Close() <-chan R
	// Errors returns the per-job errors of jobs that exhausted their retries;
	// it waits for the results channel to be closed first
	Errors() []JobError
}

// JobError couples a failed job with its final error
type JobError struct {
	Job any
	Err error
}

type workerPool[J, R any] struct {
	*Config[J, R]

	wg      sync.WaitGroup
	jobs    chan J
	results chan R

	errorsMutex sync.Mutex
	errors      []JobError
}

// NewPool validates the config, starts the workers and returns the running
// pool
func NewPool[J, R any](ctx context.Context, config *Config[J, R]) (Pool[J, R], error) {
	if err := validate(config); err != nil {
		return nil, err
	}

	p := &workerPool[J, R]{
		Config:  config,
		jobs:    make(chan J, config.JobQueueLimit),
		results: make(chan R, config.ResultQueueLimit),
	}

	p.wg.Add(p.Size)
	for i := 0; i < p.Size; i++ {
		go p.runWorker(ctx)
	}
	go func() {
		p.wg.Wait()
		close(p.results)
	}()

	return p, nil
}

func validate[J, R any](config *Config[J, R]) error {
	if config.Size <= 0 {
		return errors.New("expected pool size to be more than 0")
	}
	if config.JobQueueLimit <= 0 {
		return errors.New("expected JobQueueLimit to be more than 0")
	}
	if config.ResultQueueLimit <= 0 {
		return errors.New("expected ResultQueueLimit to be more than 0")
	}
	if config.Worker == nil {
		return errors.New("expected worker func to be not nil")
	}
	return nil
}

func (p *workerPool[J, R]) runWorker(ctx context.Context) {
	defer p.wg.Done()

	for job := range p.jobs {
		var result R
		var err error
		for attempt := 0; attempt <= p.MaxRetry; attempt++ {
			result, err = p.Worker(ctx, job)
			if err == nil {
				break
			}
		}

		if err != nil {
			p.errorsMutex.Lock()
			p.errors = append(p.errors, JobError{Job: job, Err: err})
			p.errorsMutex.Unlock()
			continue
		}

		p.results <- result
	}
}

func (p *workerPool[J, R]) SendJobs(jobs ...J) {
	for _, job := range jobs {
		p.jobs <- job
	}
}

func (p *workerPool[J, R]) Close() <-chan R {
	close(p.jobs)
	return p.results
}

func (p *workerPool[J, R]) Errors() []JobError {
	for range p.results {
		// drain any remaining results so the workers can finish
	}

	p.errorsMutex.Lock()
	defer p.errorsMutex.Unlock()
	return p.errors
}
