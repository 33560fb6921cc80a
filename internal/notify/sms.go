package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// SMSGateway posts messages to an external SMS provider. With no URL or
// key configured it degrades to a logging stub, which keeps dev
// environments working without a provider account.
type SMSGateway struct {
	apiURL string
	apiKey string
	client *http.Client
	logger *slog.Logger
}

func NewSMSGateway(apiURL, apiKey string, logger *slog.Logger) *SMSGateway {
	return &SMSGateway{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

func (g *SMSGateway) Send(ctx context.Context, phone string, text string) error {
	if g.apiURL == "" || g.apiKey == "" {
		g.logger.InfoContext(ctx, "sms gateway not configured, skipping send", "phone", phone)
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"phone": phone,
		"text":  text,
	})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("client.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms provider returned status %d", resp.StatusCode)
	}

	return nil
}
