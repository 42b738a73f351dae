package reclaimer

import (
	"context"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
)

// NewLoggingService returns a new instance of a logging Service.
func NewLoggingService(s Service) Service {
	return &loggingService{s, "reclaimer"}
}

type loggingService struct {
	Service Service
	prefix  string
}

func (s *loggingService) ClearWorkspace(ctx context.Context, job *contracts.Job) (err error) {
	defer func() { api.HandleLogError(s.prefix, "Service", "ClearWorkspace", err) }()

	return s.Service.ClearWorkspace(ctx, job)
}

func (s *loggingService) ClearFolder(ctx context.Context, path string) (err error) {
	defer func() { api.HandleLogError(s.prefix, "Service", "ClearFolder", err) }()

	return s.Service.ClearFolder(ctx, path)
}

func (s *loggingService) SweepWorkspaces(ctx context.Context) (err error) {
	defer func() { api.HandleLogError(s.prefix, "Service", "SweepWorkspaces", err) }()

	return s.Service.SweepWorkspaces(ctx)
}
