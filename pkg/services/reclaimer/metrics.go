package reclaimer

import (
	"context"
	"time"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
	"github.com/go-kit/kit/metrics"
)

// NewMetricsService returns a new instance of a metrics Service.
func NewMetricsService(s Service, requestCount metrics.Counter, requestLatency metrics.Histogram) Service {
	return &metricsService{s, requestCount, requestLatency}
}

type metricsService struct {
	Service        Service
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
}

func (s *metricsService) ClearWorkspace(ctx context.Context, job *contracts.Job) (err error) {
	defer func(begin time.Time) { api.UpdateMetrics(s.requestCount, s.requestLatency, "ClearWorkspace", begin) }(time.Now())

	return s.Service.ClearWorkspace(ctx, job)
}

func (s *metricsService) ClearFolder(ctx context.Context, path string) (err error) {
	defer func(begin time.Time) { api.UpdateMetrics(s.requestCount, s.requestLatency, "ClearFolder", begin) }(time.Now())

	return s.Service.ClearFolder(ctx, path)
}

func (s *metricsService) SweepWorkspaces(ctx context.Context) (err error) {
	defer func(begin time.Time) { api.UpdateMetrics(s.requestCount, s.requestLatency, "SweepWorkspaces", begin) }(time.Now())

	return s.Service.SweepWorkspaces(ctx)
}
