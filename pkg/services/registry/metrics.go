package registry

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

func (s *metricsService) AddBuild(ctx context.Context, job *contracts.Job) (ledger *contracts.Ledger, err error) {
	defer func(begin time.Time) { api.UpdateMetrics(s.requestCount, s.requestLatency, "AddBuild", begin) }(time.Now())

	return s.Service.AddBuild(ctx, job)
}

func (s *metricsService) GetLedger(ctx context.Context, job *contracts.Job) (ledger *contracts.Ledger, err error) {
	defer func(begin time.Time) { api.UpdateMetrics(s.requestCount, s.requestLatency, "GetLedger", begin) }(time.Now())

	return s.Service.GetLedger(ctx, job)
}
