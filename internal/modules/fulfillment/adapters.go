// README: Shims binding the typed provider clients to the provider-neutral
// worker contracts.
package fulfillment

import (
	"context"
	"errors"

	"catering/internal/modules/order"
	"catering/internal/providers/kfc"
	"catering/internal/providers/silpo"
	"catering/internal/providers/uklon"
)

type SilpoAPI struct {
	Client *silpo.Client
}

func (a SilpoAPI) CreateOrder(ctx context.Context, items []order.Item) (string, string, error) {
	body := silpo.OrderRequestBody{Order: make([]silpo.OrderItem, len(items))}
	for i, item := range items {
		body.Order[i] = silpo.OrderItem{Dish: item.DishName, Quantity: item.Quantity}
	}
	resp, err := a.Client.CreateOrder(ctx, body)
	if err != nil {
		return "", "", err
	}
	return resp.ID, resp.Status, nil
}

func (a SilpoAPI) GetOrder(ctx context.Context, externalID string) (string, error) {
	resp, err := a.Client.GetOrder(ctx, externalID)
	if err != nil {
		return "", err
	}
	return resp.Status, nil
}

type KfcAPI struct {
	Client *kfc.Client
}

func (a KfcAPI) CreateOrder(ctx context.Context, items []order.Item) (string, string, error) {
	body := kfc.OrderRequestBody{Order: make([]kfc.OrderItem, len(items))}
	for i, item := range items {
		body.Order[i] = kfc.OrderItem{Dish: item.DishName, Quantity: item.Quantity}
	}
	resp, err := a.Client.CreateOrder(ctx, body)
	if err != nil {
		return "", "", err
	}
	return resp.ID, resp.Status, nil
}

// GetOrder is unreachable for the single-shot strategy; KFC has no status
// endpoint yet.
func (a KfcAPI) GetOrder(ctx context.Context, externalID string) (string, error) {
	return "", errors.New("kfc: status endpoint not available")
}

type UklonAPI struct {
	Client *uklon.Client
}

func (a UklonAPI) CreateOrder(ctx context.Context, addresses, comments []string) (*DeliveryOrder, error) {
	resp, err := a.Client.CreateOrder(ctx, uklon.OrderRequestBody{Addresses: addresses, Comments: comments})
	if err != nil {
		return nil, err
	}
	return &DeliveryOrder{ExternalID: resp.ID, Status: resp.Status, Location: resp.Location}, nil
}
