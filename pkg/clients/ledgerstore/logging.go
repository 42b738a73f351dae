package ledgerstore

import (
	"context"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
)

// NewLoggingClient returns a new instance of a logging Client.
func NewLoggingClient(c Client) Client {
	return &loggingClient{c, "ledgerstore"}
}

type loggingClient struct {
	Client Client
	prefix string
}

func (c *loggingClient) GetLedger(ctx context.Context, author, repo, branch string) (ledger *contracts.Ledger, err error) {
	defer func() { api.HandleLogError(c.prefix, "Client", "GetLedger", err) }()

	return c.Client.GetLedger(ctx, author, repo, branch)
}

func (c *loggingClient) SaveLedger(ctx context.Context, author, repo, branch string, ledger *contracts.Ledger) (err error) {
	defer func() { api.HandleLogError(c.prefix, "Client", "SaveLedger", err) }()

	return c.Client.SaveLedger(ctx, author, repo, branch, ledger)
}
