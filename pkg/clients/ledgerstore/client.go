package ledgerstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
	"github.com/pkg/errors"
)

const ledgerFilename = "builds.json"

// Client is the interface for loading and persisting per-branch ledger
// documents on the workspace filesystem
//
//go:generate mockgen -package=ledgerstore -destination ./mock.go -source=client.go
type Client interface {
	GetLedger(ctx context.Context, author, repo, branch string) (ledger *contracts.Ledger, err error)
	SaveLedger(ctx context.Context, author, repo, branch string, ledger *contracts.Ledger) (err error)
}

// NewClient returns a new ledgerstore.Client storing one JSON document per
// author/repo/branch under the configured workspace dir
func NewClient(config *api.APIConfig) Client {
	return &client{
		config: config,
	}
}

type client struct {
	config *api.APIConfig
}

func (c *client) GetLedger(ctx context.Context, author, repo, branch string) (ledger *contracts.Ledger, err error) {

	ledgerPath := c.ledgerPath(author, repo, branch)

	data, err := os.ReadFile(ledgerPath)
	if err != nil {
		if os.IsNotExist(err) {
			// first build for this project/branch starts from an empty ledger
			return contracts.NewLedger(), nil
		}
		return nil, errors.Wrapf(err, "failed reading ledger at %v", ledgerPath)
	}

	ledger = contracts.NewLedger()
	if err = json.Unmarshal(data, ledger); err != nil {
		return nil, errors.Wrapf(contracts.ErrCorruptLedger, "failed parsing ledger at %v: %v", ledgerPath, err)
	}

	return ledger, nil
}

func (c *client) SaveLedger(ctx context.Context, author, repo, branch string, ledger *contracts.Ledger) (err error) {

	ledgerPath := c.ledgerPath(author, repo, branch)

	data, err := json.Marshal(ledger)
	if err != nil {
		return errors.Wrapf(contracts.ErrPersist, "failed serializing ledger for %v: %v", ledgerPath, err)
	}

	if err = os.MkdirAll(filepath.Dir(ledgerPath), 0755); err != nil {
		return errors.Wrapf(contracts.ErrPersist, "failed creating ledger directory for %v: %v", ledgerPath, err)
	}

	if err = os.WriteFile(ledgerPath, data, 0644); err != nil {
		return errors.Wrapf(contracts.ErrPersist, "failed writing ledger at %v: %v", ledgerPath, err)
	}

	return nil
}

func (c *client) ledgerPath(author, repo, branch string) string {
	return filepath.Join(c.config.Workspace.Dir, author, repo, branch, ledgerFilename)
}
