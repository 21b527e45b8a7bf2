package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNoWebhook is returned when the client was built without a target URL.
var ErrNoWebhook = errors.New("notify webhook not configured")

// Client posts plain-text notifications to a chat webhook.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Message is the JSON body posted to the webhook. Text is understood by
// Slack, Mattermost and Rocket.Chat incoming hooks.
type Message struct {
	Text    string `json:"text"`
	Title   string `json:"title,omitempty"`
	Pending int    `json:"pending"`
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewWebhookClient builds a client posting to url.
func NewWebhookClient(url string) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &WebhookClient{httpClient: restyClient, url: url}
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Send posts msg and fails on any non-2xx answer.
func (c *WebhookClient) Send(ctx context.Context, msg Message) error {
	if c.url == "" {
		return ErrNoWebhook
	}

	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(msg).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		if message == "" {
			message = resp.String()
		}
		return fmt.Errorf("webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}
