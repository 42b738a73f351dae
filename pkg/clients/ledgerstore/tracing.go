package ledgerstore

import (
	"context"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
	"github.com/opentracing/opentracing-go"
)

// NewTracingClient returns a new instance of a tracing Client.
func NewTracingClient(c Client) Client {
	return &tracingClient{c, "ledgerstore"}
}

type tracingClient struct {
	Client Client
	prefix string
}

func (c *tracingClient) GetLedger(ctx context.Context, author, repo, branch string) (ledger *contracts.Ledger, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(c.prefix, "GetLedger"))
	defer func() { api.FinishSpanWithError(span, err) }()

	return c.Client.GetLedger(ctx, author, repo, branch)
}

func (c *tracingClient) SaveLedger(ctx context.Context, author, repo, branch string, ledger *contracts.Ledger) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(c.prefix, "SaveLedger"))
	defer func() { api.FinishSpanWithError(span, err) }()

	return c.Client.SaveLedger(ctx, author, repo, branch, ledger)
}
