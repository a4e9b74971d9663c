// README: Uklon delivery adapter (order creation + webhook-driven status updates).
package uklon

import (
	"context"
	"fmt"

	"catering/internal/providers"
)

// Uklon status vocabulary as returned on the wire.
const (
	StatusNotStarted = "not started"
	StatusDelivery   = "delivery"
	StatusDelivered  = "delivered"
)

type OrderRequestBody struct {
	Addresses []string `json:"addresses"`
	Comments  []string `json:"comments"`
}

type OrderResponse struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	Location  [2]float64 `json:"location"`
	Addresses []string   `json:"addresses"`
	Comments  []string   `json:"comments"`
}

type Client struct {
	baseURL string
	http    providers.Doer
}

func NewClient(baseURL string, doer providers.Doer) *Client {
	if doer == nil {
		doer = providers.DefaultClient()
	}
	return &Client{baseURL: baseURL, http: doer}
}

func (c *Client) CreateOrder(ctx context.Context, body OrderRequestBody) (*OrderResponse, error) {
	var out OrderResponse
	if err := providers.PostJSON(ctx, c.http, c.baseURL+"/drivers/orders", body, &out); err != nil {
		return nil, fmt.Errorf("uklon: create order: %w", err)
	}
	return &out, nil
}

func (c *Client) GetOrder(ctx context.Context, externalID string) (*OrderResponse, error) {
	var out OrderResponse
	if err := providers.GetJSON(ctx, c.http, c.baseURL+"/drivers/orders/"+externalID, &out); err != nil {
		return nil, fmt.Errorf("uklon: get order %s: %w", externalID, err)
	}
	return &out, nil
}
