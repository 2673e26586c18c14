package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/akolanti/DocsBot/internal/config"
	"github.com/akolanti/DocsBot/pkg/logger_i"
)

// Notifier delivers a finished answer back to the chat platform.
type Notifier interface {
	Send(ctx context.Context, threadID string, text string) error
}

var pooledTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// WebhookNotifier posts the answer to the chat platform's incoming webhook.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger *logger_i.Logger
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Transport: pooledTransport},
		logger: logger_i.NewLogger("WebhookNotifier"),
	}
}

func (n *WebhookNotifier) Send(ctx context.Context, threadID string, text string) error {
	payload, err := json.Marshal(map[string]string{
		"thread_ts": threadID,
		"text":      text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			n.logger.Error("Couldn't close webhook response body", "err", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// LogNotifier is the fallback when no outbound webhook is configured: the
// answer still reaches the synchronous HTTP caller, delivery just gets logged.
type LogNotifier struct {
	logger *logger_i.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: logger_i.NewLogger("LogNotifier")}
}

func (n *LogNotifier) Send(ctx context.Context, threadID string, text string) error {
	n.logger.Info("Answer ready", "threadId", threadID, "chars", len(text))
	return nil
}
