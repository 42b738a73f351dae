package registry

import (
	"context"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
)

// NewLoggingService returns a new instance of a logging Service.
func NewLoggingService(s Service) Service {
	return &loggingService{s, "registry"}
}

type loggingService struct {
	Service Service
	prefix  string
}

func (s *loggingService) AddBuild(ctx context.Context, job *contracts.Job) (ledger *contracts.Ledger, err error) {
	defer func() { api.HandleLogError(s.prefix, "Service", "AddBuild", err) }()

	return s.Service.AddBuild(ctx, job)
}

func (s *loggingService) GetLedger(ctx context.Context, job *contracts.Job) (ledger *contracts.Ledger, err error) {
	defer func() { api.HandleLogError(s.prefix, "Service", "GetLedger", err) }()

	return s.Service.GetLedger(ctx, job)
}
