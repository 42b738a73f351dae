package render

import (
	"context"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
)

// NewLoggingService returns a new instance of a logging Service.
func NewLoggingService(s Service) Service {
	return &loggingService{s, "render"}
}

type loggingService struct {
	Service Service
	prefix  string
}

func (s *loggingService) RenderStatusPage(ctx context.Context, job *contracts.Job) (err error) {
	defer func() { api.HandleLogError(s.prefix, "Service", "RenderStatusPage", err) }()

	return s.Service.RenderStatusPage(ctx, job)
}

func (s *loggingService) RenderBadge(ctx context.Context, job *contracts.Job) (err error) {
	defer func() { api.HandleLogError(s.prefix, "Service", "RenderBadge", err) }()

	return s.Service.RenderBadge(ctx, job)
}
