// README: KFC restaurant adapter. Order creation works; status feedback does not
// exist yet on their side, so the worker treats created orders as terminal and
// the webhook route stays ready for when their push integration ships.
package kfc

import (
	"context"
	"fmt"

	"catering/internal/providers"
)

// KFC status vocabulary as returned on the wire.
const (
	StatusNotStarted = "not started"
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
		return nil, fmt.Errorf("kfc: create order: %w", err)
	}
	return &out, nil
}
