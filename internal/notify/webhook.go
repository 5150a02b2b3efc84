package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// WebhookNotifier posts messages to a Slack-compatible webhook.
type WebhookNotifier struct {
	webhookURL string
	client     *http.Client
}

// payload is the webhook message body.
type payload struct {
	Text    string `json:"text"`
	Channel string `json:"channel,omitempty"`
}

// NewWebhookNotifier creates a notifier for the given webhook URL.
func NewWebhookNotifier(webhookURL string) *WebhookNotifier {
	return &WebhookNotifier{
		webhookURL: webhookURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send posts the message. Literal \n sequences written by template
// authors become real newlines on the wire. A non-2xx response is a
// delivery error; there is no retry.
func (w *WebhookNotifier) Send(message, channel string) error {
	body, err := json.Marshal(payload{
		Text:    strings.ReplaceAll(message, `\n`, "\n"),
		Channel: channel,
	})
	if err != nil {
		return err
	}

	resp, err := w.client.Post(w.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
