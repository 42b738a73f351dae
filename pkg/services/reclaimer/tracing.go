package reclaimer

import (
	"context"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
	"github.com/opentracing/opentracing-go"
)

// NewTracingService returns a new instance of a tracing Service.
func NewTracingService(s Service) Service {
	return &tracingService{s, "reclaimer"}
}

type tracingService struct {
	Service Service
	prefix  string
}

func (s *tracingService) ClearWorkspace(ctx context.Context, job *contracts.Job) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(s.prefix, "ClearWorkspace"))
	defer func() { api.FinishSpanWithError(span, err) }()

	return s.Service.ClearWorkspace(ctx, job)
}

func (s *tracingService) ClearFolder(ctx context.Context, path string) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(s.prefix, "ClearFolder"))
	defer func() { api.FinishSpanWithError(span, err) }()

	return s.Service.ClearFolder(ctx, path)
}

func (s *tracingService) SweepWorkspaces(ctx context.Context) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(s.prefix, "SweepWorkspaces"))
	defer func() { api.FinishSpanWithError(span, err) }()

	return s.Service.SweepWorkspaces(ctx)
}
