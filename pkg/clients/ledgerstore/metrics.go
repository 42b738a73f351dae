package ledgerstore

import (
	"context"
	"time"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
	"github.com/go-kit/kit/metrics"
)

// NewMetricsClient returns a new instance of a metrics Client.
func NewMetricsClient(c Client, requestCount metrics.Counter, requestLatency metrics.Histogram) Client {
	return &metricsClient{c, requestCount, requestLatency}
}

type metricsClient struct {
	Client         Client
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
}

func (c *metricsClient) GetLedger(ctx context.Context, author, repo, branch string) (ledger *contracts.Ledger, err error) {
	defer func(begin time.Time) { api.UpdateMetrics(c.requestCount, c.requestLatency, "GetLedger", begin) }(time.Now())

	return c.Client.GetLedger(ctx, author, repo, branch)
}

func (c *metricsClient) SaveLedger(ctx context.Context, author, repo, branch string, ledger *contracts.Ledger) (err error) {
	defer func(begin time.Time) { api.UpdateMetrics(c.requestCount, c.requestLatency, "SaveLedger", begin) }(time.Now())

	return c.Client.SaveLedger(ctx, author, repo, branch, ledger)
}
