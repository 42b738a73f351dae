package registry

import (
	"context"
	"sync"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/clients/ledgerstore"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Service encapsulates mutating and reading the per-branch build ledgers
//
//go:generate mockgen -package=registry -destination ./mock.go -source=service.go
type Service interface {
	AddBuild(ctx context.Context, job *contracts.Job) (ledger *contracts.Ledger, err error)
	GetLedger(ctx context.Context, job *contracts.Job) (ledger *contracts.Ledger, err error)
}

// NewService returns a new registry.Service
func NewService(config *api.APIConfig, ledgerstoreClient ledgerstore.Client) Service {
	return &service{
		config:            config,
		ledgerstoreClient: ledgerstoreClient,
		branchLocks:       map[string]*sync.Mutex{},
	}
}

type service struct {
	config            *api.APIConfig
	ledgerstoreClient ledgerstore.Client

	// the load-mutate-persist sequence is not atomic, so writers targeting the
	// same project/branch ledger are serialized; distinct branches proceed
	// concurrently
	branchLocksMutex sync.Mutex
	branchLocks      map[string]*sync.Mutex
}

// AddBuild appends the completed job's outcome to its project/branch ledger,
// re-evaluates release candidates across the whole history and persists the
// full document.
func (s *service) AddBuild(ctx context.Context, job *contracts.Job) (ledger *contracts.Ledger, err error) {

	if !job.IsComplete() {
		return nil, errors.Wrap(contracts.ErrInvalidJob, "cannot add build")
	}

	branchLock := s.getBranchLock(job.Path())
	branchLock.Lock()
	defer branchLock.Unlock()

	ledger, err = s.ledgerstoreClient.GetLedger(ctx, job.Author, job.Repo, job.Branch)
	if err != nil {
		return nil, err
	}

	record, err := contracts.NewBuildRecord(job)
	if err != nil {
		return nil, errors.Wrapf(err, "failed deriving build record for %v build %v", job.Path(), job.ID)
	}

	// callers supply unique ids; an id collision silently overwrites
	ledger.Builds[job.ID] = record

	ledger.Latest = job.ID
	if job.Success {
		ledger.LastSuccessful = job.ID
	}

	ledger.ResolveCandidates(job.Tags)

	if err = s.ledgerstoreClient.SaveLedger(ctx, job.Author, job.Repo, job.Branch, ledger); err != nil {
		return nil, err
	}

	log.Info().Msgf("Added build %v to ledger for %v", job.ID, job.Path())

	return ledger, nil
}

// GetLedger loads the ledger for the job's project/branch without mutating it.
func (s *service) GetLedger(ctx context.Context, job *contracts.Job) (ledger *contracts.Ledger, err error) {

	if !job.IsValid() {
		return nil, errors.Wrap(contracts.ErrInvalidJob, "cannot get ledger")
	}

	return s.ledgerstoreClient.GetLedger(ctx, job.Author, job.Repo, job.Branch)
}

func (s *service) getBranchLock(path string) *sync.Mutex {
	s.branchLocksMutex.Lock()
	defer s.branchLocksMutex.Unlock()

	if _, ok := s.branchLocks[path]; !ok {
		s.branchLocks[path] = &sync.Mutex{}
	}

	return s.branchLocks[path]
}
