package render

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"text/template"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	statusPageTemplate = "status-page.html"
	badgeTemplate      = "badge.svg"

	statusPageFilename = "index.html"
	badgeFilename      = "badge.svg"

	successColor = "#44cc11"
	failureColor = "#e05d44"
)

// Service renders the per-branch status page and badge from the static
// templates and persists them next to the branch's ledger
//
//go:generate mockgen -package=render -destination ./mock.go -source=service.go
type Service interface {
	RenderStatusPage(ctx context.Context, job *contracts.Job) (err error)
	RenderBadge(ctx context.Context, job *contracts.Job) (err error)
}

// NewService returns a new render.Service
func NewService(config *api.APIConfig) Service {
	return &service{
		config: config,
	}
}

type service struct {
	config *api.APIConfig
}

type statusPagePlaceholders struct {
	Owner      string
	Repository string
	Branch     string
}

type badgePlaceholders struct {
	Status string
	Color  string
}

// RenderStatusPage substitutes the owner, repository and branch placeholders
// into the status page template and writes the result into the branch's
// output directory.
func (s *service) RenderStatusPage(ctx context.Context, job *contracts.Job) (err error) {

	if !job.IsValid() {
		return errors.Wrap(contracts.ErrInvalidJob, "cannot render status page")
	}

	placeholders := statusPagePlaceholders{
		Owner:      job.Author,
		Repository: job.Repo,
		Branch:     job.Branch,
	}

	return s.renderToFile(job, statusPageTemplate, statusPageFilename, placeholders)
}

// RenderBadge substitutes the status and its fixed color into the badge
// template and writes the result into the branch's output directory.
func (s *service) RenderBadge(ctx context.Context, job *contracts.Job) (err error) {

	if !job.IsValid() {
		return errors.Wrap(contracts.ErrInvalidJob, "cannot render badge")
	}

	placeholders := badgePlaceholders{
		Status: "failing",
		Color:  failureColor,
	}
	if job.Success {
		placeholders.Status = "passing"
		placeholders.Color = successColor
	}

	return s.renderToFile(job, badgeTemplate, badgeFilename, placeholders)
}

func (s *service) renderToFile(job *contracts.Job, templateName, outputName string, placeholders interface{}) (err error) {

	templatePath := filepath.Join(s.config.APIServer.TemplatesPath, templateName)

	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return errors.Wrapf(err, "failed parsing template %v", templatePath)
	}

	var rendered bytes.Buffer
	if err = tmpl.Execute(&rendered, placeholders); err != nil {
		return errors.Wrapf(err, "failed rendering template %v for %v", templateName, job.Path())
	}

	outputDir := filepath.Join(s.config.Workspace.Dir, job.Author, job.Repo, job.Branch)
	if err = os.MkdirAll(outputDir, 0755); err != nil {
		return errors.Wrapf(err, "failed creating output directory %v", outputDir)
	}

	outputPath := filepath.Join(outputDir, outputName)
	if err = os.WriteFile(outputPath, rendered.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "failed writing %v", outputPath)
	}

	log.Debug().Msgf("Rendered %v for %v", outputName, job.Path())

	return nil
}
