package api

import (
	"github.com/pkg/errors"
)

// APIConfig represents the configuration for the entire application
type APIConfig struct {
	APIServer    *APIServerConfig       `yaml:"apiServer,omitempty"`
	Workspace    *WorkspaceConfig       `yaml:"workspace,omitempty"`
	Projects     *ProjectsConfig        `yaml:"projects,omitempty"`
	Integrations *APIConfigIntegrations `yaml:"integrations,omitempty"`
}

func (c *APIConfig) SetDefaults() {
	if c.APIServer == nil {
		c.APIServer = &APIServerConfig{}
	}
	c.APIServer.SetDefaults()

	if c.Workspace == nil {
		c.Workspace = &WorkspaceConfig{}
	}
	c.Workspace.SetDefaults()

	if c.Projects == nil {
		c.Projects = &ProjectsConfig{}
	}
	c.Projects.SetDefaults()

	if c.Integrations == nil {
		c.Integrations = &APIConfigIntegrations{}
	}
	c.Integrations.SetDefaults()
}

func (c *APIConfig) Validate() (err error) {
	err = c.Workspace.Validate()
	if err != nil {
		return
	}
	err = c.Projects.Validate()
	if err != nil {
		return
	}
	err = c.Integrations.Validate()
	if err != nil {
		return
	}

	return nil
}

// APIServerConfig configures the server and the location of its templates
type APIServerConfig struct {
	BaseURL       string `yaml:"baseURL,omitempty" env:"BASE_URL"`
	TemplatesPath string `yaml:"templatesPath,omitempty" env:"TEMPLATES_PATH"`
}

func (c *APIServerConfig) SetDefaults() {
	if c.TemplatesPath == "" {
		c.TemplatesPath = "templates"
	}
}

// WorkspaceConfig configures where per-branch ledgers, rendered artifacts and
// build working files live on disk
type WorkspaceConfig struct {
	Dir string `yaml:"dir,omitempty" env:"WORKSPACE_DIR"`
}

func (c *WorkspaceConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "workspace"
	}
}

func (c *WorkspaceConfig) Validate() (err error) {
	if c.Dir == "" {
		return errors.New("workspace dir is required; please set workspace.dir")
	}

	return nil
}

// ProjectsConfig configures the document listing the project/branch targets
type ProjectsConfig struct {
	Path string `yaml:"path,omitempty" env:"PROJECTS_PATH"`
}

func (c *ProjectsConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "projects.yaml"
	}
}

func (c *ProjectsConfig) Validate() (err error) {
	if c.Path == "" {
		return errors.New("projects path is required; please set projects.path")
	}

	return nil
}

// APIConfigIntegrations holds the configuration for the optional outbound
// integrations
type APIConfigIntegrations struct {
	Slack *SlackConfig `yaml:"slack,omitempty"`
}

func (c *APIConfigIntegrations) SetDefaults() {
	if c.Slack == nil {
		c.Slack = &SlackConfig{}
	}
}

func (c *APIConfigIntegrations) Validate() (err error) {
	if c.Slack.Enable && c.Slack.WebhookURL == "" {
		return errors.New("slack integration is enabled but has no webhook url; please set integrations.slack.webhookURL")
	}

	return nil
}

// SlackConfig configures the build status notification webhook
type SlackConfig struct {
	Enable     bool   `yaml:"enable,omitempty" env:"SLACK_ENABLE"`
	WebhookURL string `yaml:"webhookURL,omitempty" env:"SLACK_WEBHOOK_URL"`
	Channel    string `yaml:"channel,omitempty" env:"SLACK_CHANNEL"`
}
