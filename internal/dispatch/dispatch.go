// Package dispatch delivers outbound topic messages to the collaborator
// mapped to each logical topic name. Delivery is synchronous and single
// attempt; retry policy belongs to callers that need it.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNoRoute indicates that no endpoint is configured for a topic name.
var ErrNoRoute = errors.New("no route for topic")

// Dispatcher posts JSON payloads to per-topic HTTP endpoints. The routing
// table is fixed at construction; routes come from configuration.
type Dispatcher struct {
	routes map[string]string
	client *http.Client
}

// New builds a Dispatcher over a topic -> endpoint URL table. Topics absent
// from the table fail with ErrNoRoute at send time.
func New(routes map[string]string) *Dispatcher {
	return &Dispatcher{
		routes: routes,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send marshals the payload and posts it to the endpoint mapped to
// topicName. A non-2xx response is an error; the body is drained so the
// connection can be reused. One attempt only, no backoff.
func (d *Dispatcher) Send(ctx context.Context, topicName string, payload any) error {
	endpoint, ok := d.routes[topicName]
	if !ok || endpoint == "" {
		return fmt.Errorf("%w: %s", ErrNoRoute, topicName)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", topicName, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("post %s: unexpected status %d", topicName, resp.StatusCode)
	}
	return nil
}
