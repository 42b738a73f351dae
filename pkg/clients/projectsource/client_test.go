package projectsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
	"github.com/stretchr/testify/assert"
)

func getClientAndConfig(t *testing.T) (Client, *api.APIConfig) {
	config := &api.APIConfig{
		Projects: &api.ProjectsConfig{
			Path: filepath.Join(t.TempDir(), "projects.yaml"),
		},
	}

	return NewClient(config), config
}

func TestGetTargets(t *testing.T) {

	t.Run("SplitsCombinedKeysIntoAuthorRepoAndBranch", func(t *testing.T) {

		client, config := getClientAndConfig(t)

		err := os.WriteFile(config.Projects.Path, []byte(
			"conveyr/conveyr-ci:main:\n  notify: true\n"), 0644)
		assert.Nil(t, err)

		// act
		targets, err := client.GetTargets(context.Background())

		assert.Nil(t, err)
		assert.Len(t, targets, 1)
		assert.Equal(t, "conveyr", targets[0].Author)
		assert.Equal(t, "conveyr-ci", targets[0].Repo)
		assert.Equal(t, "main", targets[0].Branch)
	})

	t.Run("ReturnsTargetsInStableOrder", func(t *testing.T) {

		client, config := getClientAndConfig(t)

		err := os.WriteFile(config.Projects.Path, []byte(
			"zeta/one:main: {}\nalpha/two:develop: {}\n"), 0644)
		assert.Nil(t, err)

		// act
		targets, err := client.GetTargets(context.Background())

		assert.Nil(t, err)
		assert.Equal(t, []*contracts.Job{
			{Author: "alpha", Repo: "two", Branch: "develop"},
			{Author: "zeta", Repo: "one", Branch: "main"},
		}, targets)
	})

	t.Run("FailsIfDocumentDoesNotExist", func(t *testing.T) {

		client, _ := getClientAndConfig(t)

		// act
		_, err := client.GetTargets(context.Background())

		assert.NotNil(t, err)
	})

	t.Run("FailsIfDocumentIsNotWellFormed", func(t *testing.T) {

		client, config := getClientAndConfig(t)

		err := os.WriteFile(config.Projects.Path, []byte("\t{nope"), 0644)
		assert.Nil(t, err)

		// act
		_, err = client.GetTargets(context.Background())

		assert.NotNil(t, err)
	})
}

func TestSplitTargetKey(t *testing.T) {

	t.Run("HandlesBranchNamesContainingSlashes", func(t *testing.T) {

		// act
		job := splitTargetKey("conveyr/conveyr-ci:feature/badges")

		assert.Equal(t, "conveyr", job.Author)
		assert.Equal(t, "conveyr-ci", job.Repo)
		assert.Equal(t, "feature/badges", job.Branch)
	})
}
