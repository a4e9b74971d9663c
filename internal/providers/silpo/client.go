// README: Silpo restaurant adapter (short-polling integration, no push channel).
package silpo

import (
	"context"
	"fmt"

	"catering/internal/providers"
)

// Silpo status vocabulary as returned on the wire.
const (
	StatusNotStarted = "not_started"
	StatusCooking    = "cooking"
	StatusCooked     = "cooked"
)

type OrderItem struct {
	Dish     string `json:"dish"`
	Quantity int    `json:"quantity"`
}

type OrderRequestBody struct {
	Order []OrderItem `json:"order"`
}

type OrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
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
	if err := providers.PostJSON(ctx, c.http, c.baseURL+"/api/orders", body, &out); err != nil {
		return nil, fmt.Errorf("silpo: create order: %w", err)
	}
	return &out, nil
}

func (c *Client) GetOrder(ctx context.Context, externalID string) (*OrderResponse, error) {
	var out OrderResponse
	if err := providers.GetJSON(ctx, c.http, c.baseURL+"/api/orders/"+externalID, &out); err != nil {
		return nil, fmt.Errorf("silpo: get order %s: %w", externalID, err)
	}
	return &out, nil
}
