package render

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

func (s *metricsService) RenderStatusPage(ctx context.Context, job *contracts.Job) (err error) {
	defer func(begin time.Time) { api.UpdateMetrics(s.requestCount, s.requestLatency, "RenderStatusPage", begin) }(time.Now())

	return s.Service.RenderStatusPage(ctx, job)
}

func (s *metricsService) RenderBadge(ctx context.Context, job *contracts.Job) (err error) {
	defer func(begin time.Time) { api.UpdateMetrics(s.requestCount, s.requestLatency, "RenderBadge", begin) }(time.Now())

	return s.Service.RenderBadge(ctx, job)
}
