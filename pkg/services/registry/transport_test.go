package registry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/clients/ledgerstore"
	"github.com/conveyr/conveyr-ci/pkg/clients/projectsource"
	"github.com/conveyr/conveyr-ci/pkg/clients/slackapi"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
	"github.com/conveyr/conveyr-ci/pkg/services/reclaimer"
	"github.com/conveyr/conveyr-ci/pkg/services/render"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func getRouterAndConfig(t *testing.T) (*gin.Engine, *api.APIConfig) {

	templatesPath := t.TempDir()
	err := os.WriteFile(filepath.Join(templatesPath, "status-page.html"),
		[]byte("<h1>{{.Owner}}/{{.Repository}} {{.Branch}}</h1>"), 0644)
	assert.Nil(t, err)
	err = os.WriteFile(filepath.Join(templatesPath, "badge.svg"),
		[]byte(`<svg fill="{{.Color}}">{{.Status}}</svg>`), 0644)
	assert.Nil(t, err)

	config := &api.APIConfig{
		APIServer: &api.APIServerConfig{
			TemplatesPath: templatesPath,
		},
		Workspace: &api.WorkspaceConfig{
			Dir: t.TempDir(),
		},
		Projects: &api.ProjectsConfig{
			Path: filepath.Join(t.TempDir(), "projects.yaml"),
		},
	}

	projectsourceClient := projectsource.NewClient(config)
	slackapiClient := slackapi.NewClient(nil)

	buildService := NewService(config, ledgerstore.NewClient(config))
	renderService := render.NewService(config)
	reclaimerService := reclaimer.NewService(config, projectsourceClient)

	handler := NewHandler(config, buildService, renderService, reclaimerService, projectsourceClient, slackapiClient)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/builds", handler.ReportBuild)
	router.GET("/api/projects", handler.GetProjects)
	router.GET("/api/pipelines/:owner/:repo/:branch/builds", handler.GetBuilds)
	router.GET("/api/pipelines/:owner/:repo/:branch/badge.svg", handler.GetBadge)
	router.GET("/api/pipelines/:owner/:repo/:branch/page", handler.GetStatusPage)

	return router, config
}

func TestReportBuild(t *testing.T) {

	t.Run("ReturnsBadRequestForIncompleteJob", func(t *testing.T) {

		router, _ := getRouterAndConfig(t)

		body := `{"author": "conveyr", "repo": "conveyr-ci", "branch": "main"}`

		// act
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest("POST", "/api/builds", strings.NewReader(body))
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("AppendsBuildAndRendersArtifacts", func(t *testing.T) {

		router, config := getRouterAndConfig(t)

		// leave some working files behind so reclamation has something to do
		filesDir := filepath.Join(config.Workspace.Dir, "conveyr", "conveyr-ci", "main", "files")
		err := os.MkdirAll(filesDir, 0755)
		assert.Nil(t, err)
		err = os.WriteFile(filepath.Join(filesDir, "main.o"), []byte("bin"), 0644)
		assert.Nil(t, err)

		body := `{"author": "conveyr", "repo": "conveyr-ci", "branch": "main", "id": 1, "success": true, "commit": {"sha": "abc"}}`

		// act
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest("POST", "/api/builds", strings.NewReader(body))
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)

		branchDir := filepath.Join(config.Workspace.Dir, "conveyr", "conveyr-ci", "main")
		_, err = os.Lstat(filepath.Join(branchDir, "builds.json"))
		assert.Nil(t, err)
		_, err = os.Lstat(filepath.Join(branchDir, "index.html"))
		assert.Nil(t, err)
		_, err = os.Lstat(filepath.Join(branchDir, "badge.svg"))
		assert.Nil(t, err)
		_, err = os.Lstat(filesDir)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestGetBuilds(t *testing.T) {

	t.Run("ReturnsLedgerForBranch", func(t *testing.T) {

		router, _ := getRouterAndConfig(t)

		body := `{"author": "conveyr", "repo": "conveyr-ci", "branch": "main", "id": 1, "success": true, "commit": {"sha": "abc"}}`
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest("POST", "/api/builds", strings.NewReader(body))
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)

		// act
		recorder = httptest.NewRecorder()
		request = httptest.NewRequest("GET", "/api/pipelines/conveyr/conveyr-ci/main/builds", nil)
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)

		ledger := contracts.NewLedger()
		err := json.Unmarshal(recorder.Body.Bytes(), ledger)
		assert.Nil(t, err)
		assert.Equal(t, 1, ledger.Latest)
		assert.Equal(t, 1, ledger.LastSuccessful)
		assert.Equal(t, "abc", ledger.Builds[1].Sha)
	})
}

func TestGetBadge(t *testing.T) {

	t.Run("ServesRenderedBadge", func(t *testing.T) {

		router, _ := getRouterAndConfig(t)

		body := `{"author": "conveyr", "repo": "conveyr-ci", "branch": "main", "id": 1, "success": true}`
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest("POST", "/api/builds", strings.NewReader(body))
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)

		// act
		recorder = httptest.NewRecorder()
		request = httptest.NewRequest("GET", "/api/pipelines/conveyr/conveyr-ci/main/badge.svg", nil)
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "image/svg+xml", recorder.Header().Get("Content-Type"))
		assert.Contains(t, recorder.Body.String(), "passing")
	})

	t.Run("ReturnsNotFoundIfNeverRendered", func(t *testing.T) {

		router, _ := getRouterAndConfig(t)

		// act
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest("GET", "/api/pipelines/conveyr/conveyr-ci/main/badge.svg", nil)
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestGetProjects(t *testing.T) {

	t.Run("ReturnsTargetsFromProjectSource", func(t *testing.T) {

		router, config := getRouterAndConfig(t)

		err := os.WriteFile(config.Projects.Path, []byte("conveyr/conveyr-ci:main: {}\n"), 0644)
		assert.Nil(t, err)

		// act
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest("GET", "/api/projects", nil)
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)

		var targets []*contracts.Job
		err = json.Unmarshal(recorder.Body.Bytes(), &targets)
		assert.Nil(t, err)
		assert.Len(t, targets, 1)
		assert.Equal(t, "main", targets[0].Branch)
	})
}
