package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Delivery summarizes one push dispatch.
type Delivery struct {
	TotalTargets int `json:"total_targets"`
	Sent         int `json:"sent"`
	Failed       int `json:"failed"`
}

// Sender dispatches admin pushes. Failures are recorded by callers but
// never block the attendance write path.
type Sender interface {
	Send(ctx context.Context, title, body string, data map[string]string) (Delivery, error)
}

// HTTPSender posts push requests to an external gateway that owns the
// actual transport (tokens, platforms, retries).
type HTTPSender struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPSender(baseURL, apiKey string) *HTTPSender {
	return &HTTPSender{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type sendRequest struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

func (s *HTTPSender) Send(ctx context.Context, title, body string, data map[string]string) (Delivery, error) {
	payload, err := json.Marshal(sendRequest{Title: title, Body: body, Data: data})
	if err != nil {
		return Delivery{}, fmt.Errorf("marshal push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/push/admins", bytes.NewReader(payload))
	if err != nil {
		return Delivery{}, fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return Delivery{}, fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Delivery{}, fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}

	var delivery Delivery
	if err := json.NewDecoder(resp.Body).Decode(&delivery); err != nil {
		return Delivery{}, fmt.Errorf("decode push response: %w", err)
	}
	return delivery, nil
}

// NopSender swallows pushes; used when no gateway is configured and in tests.
type NopSender struct{}

func (NopSender) Send(context.Context, string, string, map[string]string) (Delivery, error) {
	return Delivery{}, nil
}
