package ledgerstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func getClientAndConfig(t *testing.T) (Client, *api.APIConfig) {
	config := &api.APIConfig{
		Workspace: &api.WorkspaceConfig{
			Dir: t.TempDir(),
		},
	}

	return NewClient(config), config
}

func TestGetLedger(t *testing.T) {

	t.Run("ReturnsEmptyLedgerIfDocumentDoesNotExist", func(t *testing.T) {

		client, _ := getClientAndConfig(t)

		// act
		ledger, err := client.GetLedger(context.Background(), "conveyr", "conveyr-ci", "main")

		assert.Nil(t, err)
		assert.NotNil(t, ledger)
		assert.Empty(t, ledger.Builds)
		assert.Equal(t, 0, ledger.Latest)
		assert.Equal(t, 0, ledger.LastSuccessful)
	})

	t.Run("ReturnsCorruptLedgerErrorIfDocumentIsNotWellFormed", func(t *testing.T) {

		client, config := getClientAndConfig(t)

		ledgerDir := filepath.Join(config.Workspace.Dir, "conveyr", "conveyr-ci", "main")
		err := os.MkdirAll(ledgerDir, 0755)
		assert.Nil(t, err)
		err = os.WriteFile(filepath.Join(ledgerDir, "builds.json"), []byte("{not json"), 0644)
		assert.Nil(t, err)

		// act
		_, err = client.GetLedger(context.Background(), "conveyr", "conveyr-ci", "main")

		assert.NotNil(t, err)
		assert.True(t, errors.Is(err, contracts.ErrCorruptLedger))
	})
}

func TestSaveLedger(t *testing.T) {

	t.Run("RoundTripsThroughGetLedger", func(t *testing.T) {

		client, _ := getClientAndConfig(t)

		ledger := contracts.NewLedger()
		ledger.Builds[1] = &contracts.BuildRecord{
			ID:        1,
			Sha:       "abc",
			Status:    contracts.StatusSuccess,
			Candidate: contracts.CandidateDevelopment,
		}
		ledger.Latest = 1
		ledger.LastSuccessful = 1

		// act
		err := client.SaveLedger(context.Background(), "conveyr", "conveyr-ci", "main", ledger)

		assert.Nil(t, err)

		loaded, err := client.GetLedger(context.Background(), "conveyr", "conveyr-ci", "main")
		assert.Nil(t, err)
		assert.Equal(t, ledger.Builds[1], loaded.Builds[1])
		assert.Equal(t, 1, loaded.Latest)
		assert.Equal(t, 1, loaded.LastSuccessful)
	})

	t.Run("KeepsLedgersOfDistinctBranchesSeparate", func(t *testing.T) {

		client, _ := getClientAndConfig(t)

		mainLedger := contracts.NewLedger()
		mainLedger.Builds[1] = &contracts.BuildRecord{ID: 1, Status: contracts.StatusSuccess, Candidate: contracts.CandidateDevelopment}
		mainLedger.Latest = 1

		// act
		err := client.SaveLedger(context.Background(), "conveyr", "conveyr-ci", "main", mainLedger)
		assert.Nil(t, err)

		develop, err := client.GetLedger(context.Background(), "conveyr", "conveyr-ci", "develop")
		assert.Nil(t, err)
		assert.Empty(t, develop.Builds)
	})
}
