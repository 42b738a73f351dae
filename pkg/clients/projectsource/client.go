package projectsource

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	yaml "gopkg.in/yaml.v2"
)

// Client is the interface for reading the document that lists the
// project/branch build targets
//
//go:generate mockgen -package=projectsource -destination ./mock.go -source=client.go
type Client interface {
	GetTargets(ctx context.Context) (targets []*contracts.Job, err error)
	WatchTargets(ctx context.Context, stopChannel <-chan struct{}, notify func())
}

// NewClient returns a new projectsource.Client reading targets from the
// configured projects file
func NewClient(config *api.APIConfig) Client {
	return &client{
		config: config,
	}
}

type client struct {
	config *api.APIConfig
}

// GetTargets reads the projects document; every key has the shape
// "author/repo:branch" and maps to arbitrary metadata this client ignores.
func (c *client) GetTargets(ctx context.Context) (targets []*contracts.Job, err error) {

	data, err := os.ReadFile(c.config.Projects.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed reading projects document at %v", c.config.Projects.Path)
	}

	var document map[string]interface{}
	if err = yaml.Unmarshal(data, &document); err != nil {
		return nil, errors.Wrapf(err, "failed parsing projects document at %v", c.config.Projects.Path)
	}

	keys := make([]string, 0, len(document))
	for key := range document {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	targets = make([]*contracts.Job, 0, len(keys))
	for _, key := range keys {
		targets = append(targets, splitTargetKey(key))
	}

	return targets, nil
}

// WatchTargets notifies the subscriber whenever the projects document changes
// on disk; it returns once the stop channel closes.
func (c *client) WatchTargets(ctx context.Context, stopChannel <-chan struct{}, notify func()) {

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn().Err(err).Msg("Failed creating watcher for projects document")
		return
	}
	defer watcher.Close()

	if err = watcher.Add(c.config.Projects.Path); err != nil {
		log.Warn().Err(err).Msgf("Failed watching projects document at %v", c.config.Projects.Path)
		return
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				log.Info().Msgf("Projects document at %v changed, notifying", c.config.Projects.Path)
				notify()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("Error watching projects document")
		case <-stopChannel:
			return
		}
	}
}

// splitTargetKey splits a combined "author/repo:branch" key on / then :.
func splitTargetKey(key string) *contracts.Job {
	author, remainder, _ := strings.Cut(key, "/")
	repo, branch, _ := strings.Cut(remainder, ":")

	return &contracts.Job{
		Author: author,
		Repo:   repo,
		Branch: branch,
	}
}
