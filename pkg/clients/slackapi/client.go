package slackapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/conveyr/conveyr-ci/pkg/api"
	"github.com/conveyr/conveyr-ci/pkg/contracts"
	"github.com/opentracing-contrib/go-stdlib/nethttp"
	"github.com/opentracing/opentracing-go"
	"github.com/sethgrid/pester"
)

// Client is the interface for sending build status notifications to a Slack
// webhook
//
//go:generate mockgen -package=slackapi -destination ./mock.go -source=client.go
type Client interface {
	NotifyBuildStatus(ctx context.Context, job *contracts.Job) (err error)
}

// NewClient returns a slackapi.Client posting to the configured webhook; when
// the integration is disabled every call is a no-op
func NewClient(config *api.APIConfig) Client {
	if config == nil || config.Integrations == nil || config.Integrations.Slack == nil || !config.Integrations.Slack.Enable {
		return &client{
			enabled: false,
		}
	}

	return &client{
		enabled: true,
		config:  config,
	}
}

type client struct {
	enabled bool
	config  *api.APIConfig
}

// NotifyBuildStatus posts a message with the build outcome for a project/branch
func (c *client) NotifyBuildStatus(ctx context.Context, job *contracts.Job) (err error) {

	if !c.enabled {
		return nil
	}

	status := "succeeded"
	color := "good"
	if !job.Success {
		status = "failed"
		color = "danger"
	}

	message := webhookMessage{
		Channel: c.config.Integrations.Slack.Channel,
		Attachments: []messageAttachment{
			{
				Color: color,
				Text:  fmt.Sprintf("Build #%v of %v %v for commit %v", job.ID, job.Path(), status, job.Commit.Sha),
			},
		},
	}

	body, err := json.Marshal(message)
	if err != nil {
		return
	}

	// create client, in order to add headers
	client := pester.NewExtendedClient(&http.Client{Transport: &nethttp.Transport{}})
	client.MaxRetries = 3
	client.Backoff = pester.ExponentialJitterBackoff
	client.KeepLog = true
	client.Timeout = time.Second * 10
	request, err := http.NewRequest("POST", c.config.Integrations.Slack.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return
	}

	span := opentracing.SpanFromContext(ctx)
	var ht *nethttp.Tracer
	if span != nil {
		// add tracing context
		request = request.WithContext(opentracing.ContextWithSpan(request.Context(), span))

		// collect additional information on setting up connections
		request, ht = nethttp.TraceRequest(span.Tracer(), request)
	}

	// add headers
	request.Header.Add("Content-Type", "application/json")

	// perform actual request
	response, err := client.Do(request)
	if err != nil {
		return
	}
	defer response.Body.Close()
	if ht != nil {
		ht.Finish()
	}

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook responded with status code %v", response.StatusCode)
	}

	return nil
}

type webhookMessage struct {
	Channel     string              `json:"channel,omitempty"`
	Attachments []messageAttachment `json:"attachments,omitempty"`
}

type messageAttachment struct {
	Color string `json:"color,omitempty"`
	Text  string `json:"text,omitempty"`
}
