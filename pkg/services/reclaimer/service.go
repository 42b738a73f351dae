package reclaimer

import (
	"context"
	"os"
	"path/filepath"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/clients/projectsource"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
	"github.com/conveyr/conveyr-ci/pkg/pool"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const workingFilesDirname = "files"

// Service encapsulates reclaiming build workspace storage
//
//go:generate mockgen -package=reclaimer -destination ./mock.go -source=service.go
type Service interface {
	ClearWorkspace(ctx context.Context, job *contracts.Job) (err error)
	ClearFolder(ctx context.Context, path string) (err error)
	SweepWorkspaces(ctx context.Context) (err error)
}

// NewService returns a new reclaimer.Service
func NewService(config *api.APIConfig, projectsourceClient projectsource.Client) Service {
	return &service{
		config:              config,
		projectsourceClient: projectsourceClient,
		sweepConcurrency:    5,
	}
}

type service struct {
	config              *api.APIConfig
	projectsourceClient projectsource.Client
	sweepConcurrency    int
}

// ClearWorkspace removes the working-files subtree for the job's
// project/branch; the ledger and rendered artifacts that live next to it are
// left untouched. An absent subtree is not an error.
func (s *service) ClearWorkspace(ctx context.Context, job *contracts.Job) (err error) {

	if !job.IsValid() {
		return errors.Wrap(contracts.ErrInvalidJob, "cannot clear workspace")
	}

	workingFilesDir := filepath.Join(s.config.Workspace.Dir, job.Author, job.Repo, job.Branch, workingFilesDirname)

	if _, err = os.Lstat(workingFilesDir); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "failed inspecting working files at %v", workingFilesDir)
	}

	return s.ClearFolder(ctx, workingFilesDir)
}

// ClearFolder deletes the subtree rooted at path bottom-up; children of a
// directory are removed concurrently and the directory itself only after every
// child has completed. On partial failure the first observed child error is
// surfaced and the parent directory is kept.
func (s *service) ClearFolder(ctx context.Context, path string) (err error) {

	info, err := os.Lstat(path)
	if err != nil {
		return errors.Wrapf(err, "failed inspecting %v", path)
	}

	if !info.IsDir() {
		if err = os.Remove(path); err != nil {
			return errors.Wrapf(err, "failed removing file %v", path)
		}
		return nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return errors.Wrapf(err, "failed listing directory %v", path)
	}

	if len(entries) > 0 {
		// fan out one deletion per child; Wait blocks until all have reported
		// and returns the first error
		g := new(errgroup.Group)
		for _, entry := range entries {
			childPath := filepath.Join(path, entry.Name())
			g.Go(func() error {
				return s.ClearFolder(ctx, childPath)
			})
		}
		if err = g.Wait(); err != nil {
			return err
		}
	}

	if err = os.Remove(path); err != nil {
		return errors.Wrapf(err, "failed removing directory %v", path)
	}

	return nil
}

// SweepWorkspaces clears the working files of every project/branch target
// known to the project source; distinct targets are independent, so they are
// processed by a bounded worker pool and a failing target does not prevent the
// others from being swept.
func (s *service) SweepWorkspaces(ctx context.Context) (err error) {

	targets, err := s.projectsourceClient.GetTargets(ctx)
	if err != nil {
		return err
	}

	worker := func(ctx context.Context, job *contracts.Job) (string, error) {
		if err := s.ClearWorkspace(ctx, job); err != nil {
			return "", errors.Wrapf(err, "failed clearing workspace for %v", job.Path())
		}
		return job.Path(), nil
	}

	p, err := pool.NewPool(ctx, pool.DefaultConfig(s.sweepConcurrency, worker))
	if err != nil {
		return errors.Wrap(err, "failed creating sweep pool")
	}

	p.SendJobs(targets...)
	results := p.Close()
	for path := range results {
		log.Debug().Msgf("Swept workspace for %v", path)
	}

	poolErrors := p.Errors()
	if len(poolErrors) > 0 {
		for _, jobError := range poolErrors {
			log.Warn().Err(jobError.Err).Msg("Sweeping workspace failed")
		}
		return errors.Wrapf(poolErrors[0].Err, "sweep failed for %v of %v workspaces", len(poolErrors), len(targets))
	}

	return nil
}
