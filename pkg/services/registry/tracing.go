package registry

import (
	"context"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
	"github.com/opentracing/opentracing-go"
)

// NewTracingService returns a new instance of a tracing Service.
func NewTracingService(s Service) Service {
	return &tracingService{s, "registry"}
}

type tracingService struct {
	Service Service
	prefix  string
}

func (s *tracingService) AddBuild(ctx context.Context, job *contracts.Job) (ledger *contracts.Ledger, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(s.prefix, "AddBuild"))
	defer func() { api.FinishSpanWithError(span, err) }()

	return s.Service.AddBuild(ctx, job)
}

func (s *tracingService) GetLedger(ctx context.Context, job *contracts.Job) (ledger *contracts.Ledger, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(s.prefix, "GetLedger"))
	defer func() { api.FinishSpanWithError(span, err) }()

	return s.Service.GetLedger(ctx, job)
}
