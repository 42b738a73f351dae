package render

import (
	"context"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
	"github.com/opentracing/opentracing-go"
)

// NewTracingService returns a new instance of a tracing Service.
func NewTracingService(s Service) Service {
	return &tracingService{s, "render"}
}

type tracingService struct {
	Service Service
	prefix  string
}

func (s *tracingService) RenderStatusPage(ctx context.Context, job *contracts.Job) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(s.prefix, "RenderStatusPage"))
	defer func() { api.FinishSpanWithError(span, err) }()

	return s.Service.RenderStatusPage(ctx, job)
}

func (s *tracingService) RenderBadge(ctx context.Context, job *contracts.Job) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(s.prefix, "RenderBadge"))
	defer func() { api.FinishSpanWithError(span, err) }()

	return s.Service.RenderBadge(ctx, job)
}
