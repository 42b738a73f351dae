package registry

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/clients/projectsource"
	"github.com/conveyr/conveyr-ci/pkg/clients/slackapi"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
	"github.com/conveyr/conveyr-ci/pkg/services/reclaimer"
	"github.com/conveyr/conveyr-ci/pkg/services/render"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// NewHandler returns a new registry.Handler
func NewHandler(config *api.APIConfig, buildService Service, renderService render.Service, reclaimerService reclaimer.Service, projectsourceClient projectsource.Client, slackapiClient slackapi.Client) Handler {
	return Handler{
		config:              config,
		buildService:        buildService,
		renderService:       renderService,
		reclaimerService:    reclaimerService,
		projectsourceClient: projectsourceClient,
		slackapiClient:      slackapiClient,
	}
}

type Handler struct {
	config              *api.APIConfig
	buildService        Service
	renderService       render.Service
	reclaimerService    reclaimer.Service
	projectsourceClient projectsource.Client
	slackapiClient      slackapi.Client
}

// ReportBuild receives a completed job from the external build driver, appends
// it to the ledger and refreshes the derived artifacts. Ledger failures fail
// the request; artifact rendering, reclamation and notification failures do
// not, each build report is independent of the others.
func (h *Handler) ReportBuild(c *gin.Context) {

	eventID := uuid.New().String()

	var job contracts.Job
	if err := c.BindJSON(&job); err != nil {
		log.Warn().Err(err).Str("eventID", eventID).Msg("Failed binding build report")
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_BODY", "message": "Failed binding build report"})
		return
	}

	ctx := c.Request.Context()

	ledger, err := h.buildService.AddBuild(ctx, &job)
	if err != nil {
		if errors.Is(err, contracts.ErrInvalidJob) {
			log.Warn().Err(err).Str("eventID", eventID).Msg("Build report failed validation")
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_JOB", "message": err.Error()})
			return
		}

		log.Error().Err(err).Str("eventID", eventID).Msgf("Failed adding build %v for %v", job.ID, job.Path())
		c.JSON(http.StatusInternalServerError, gin.H{"code": "LEDGER_UPDATE_FAILED", "message": err.Error()})
		return
	}

	if err = h.renderService.RenderStatusPage(ctx, &job); err != nil {
		log.Warn().Err(err).Str("eventID", eventID).Msgf("Failed rendering status page for %v", job.Path())
	}
	if err = h.renderService.RenderBadge(ctx, &job); err != nil {
		log.Warn().Err(err).Str("eventID", eventID).Msgf("Failed rendering badge for %v", job.Path())
	}
	if err = h.reclaimerService.ClearWorkspace(ctx, &job); err != nil {
		log.Warn().Err(err).Str("eventID", eventID).Msgf("Failed clearing workspace for %v", job.Path())
	}
	if err = h.slackapiClient.NotifyBuildStatus(ctx, &job); err != nil {
		log.Warn().Err(err).Str("eventID", eventID).Msgf("Failed notifying build status for %v", job.Path())
	}

	c.JSON(http.StatusOK, ledger)
}

// GetBuilds returns the full ledger for a project/branch.
func (h *Handler) GetBuilds(c *gin.Context) {

	job := contracts.Job{
		Author: c.Param("owner"),
		Repo:   c.Param("repo"),
		Branch: c.Param("branch"),
	}

	ledger, err := h.buildService.GetLedger(c.Request.Context(), &job)
	if err != nil {
		if errors.Is(err, contracts.ErrInvalidJob) {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_JOB", "message": err.Error()})
			return
		}

		log.Error().Err(err).Msgf("Failed retrieving ledger for %v", job.Path())
		c.JSON(http.StatusInternalServerError, gin.H{"code": "LEDGER_READ_FAILED", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ledger)
}

// GetBadge serves the rendered status badge for a project/branch.
func (h *Handler) GetBadge(c *gin.Context) {
	h.serveArtifact(c, "badge.svg", "image/svg+xml")
}

// GetStatusPage serves the rendered status page for a project/branch.
func (h *Handler) GetStatusPage(c *gin.Context) {
	h.serveArtifact(c, "index.html", "text/html; charset=utf-8")
}

// GetProjects returns the project/branch targets known to the project source.
func (h *Handler) GetProjects(c *gin.Context) {

	targets, err := h.projectsourceClient.GetTargets(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed retrieving project targets")
		c.JSON(http.StatusInternalServerError, gin.H{"code": "PROJECTS_READ_FAILED", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, targets)
}

func (h *Handler) serveArtifact(c *gin.Context, filename, contentType string) {

	artifactPath := filepath.Join(h.config.Workspace.Dir, c.Param("owner"), c.Param("repo"), c.Param("branch"), filename)

	data, err := os.ReadFile(artifactPath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": "PAGE_NOT_FOUND", "message": "Artifact not found"})
		return
	}

	c.Data(http.StatusOK, contentType, data)
}
