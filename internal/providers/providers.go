// README: Shared pieces of the provider adapters (transport error, JSON round-trip helpers).
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrTransport covers network failures and non-2xx replies from a provider
// endpoint. Workers retry it with backoff; everything else propagates as-is.
var ErrTransport = errors.New("provider transport failure")

// Doer is the subset of *http.Client the adapters need; tests swap in fakes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

func DefaultClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// PostJSON sends body as JSON and decodes the 2xx response into out.
func PostJSON(ctx context.Context, c Doer, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return do(c, req, out)
}

// GetJSON decodes the 2xx response for url into out.
func GetJSON(ctx context.Context, c Doer, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return do(c, req, out)
}

func do(c Doer, req *http.Request, out any) error {
	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %v: %w", req.Method, req.URL, err, ErrTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: status %d: %w", req.Method, req.URL, resp.StatusCode, ErrTransport)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", req.Method, req.URL, err)
	}
	return nil
}
