// README: Fulfillment core; shared contracts and errors for the scheduler,
// workers, aggregator, and dispatcher.
package fulfillment

import (
	"context"
	"errors"

	"catering/internal/modules/order"
	"catering/internal/modules/status"
)

// ErrUnsupportedRestaurant means the scheduler met a restaurant with no
// registered worker. That leg is abandoned; legs already dispatched keep
// running and the partial state stays visible in the ledger.
var ErrUnsupportedRestaurant = errors.New("restaurant is not available for processing")

// Worker is one fan-out strategy for a single restaurant leg.
type Worker interface {
	Run(ctx context.Context, orderID int64, leg order.RestaurantItems) error
}

// RestaurantAPI is the provider-neutral adapter contract restaurant workers
// call. Implementations live in adapters.go, one shim per provider client.
type RestaurantAPI interface {
	CreateOrder(ctx context.Context, items []order.Item) (externalID, providerStatus string, err error)
	GetOrder(ctx context.Context, externalID string) (providerStatus string, err error)
}

// DeliveryAPI is the delivery-provider contract the dispatcher calls.
type DeliveryAPI interface {
	CreateOrder(ctx context.Context, addresses, comments []string) (*DeliveryOrder, error)
}

// DeliveryOrder is the provider reply the dispatcher needs.
type DeliveryOrder struct {
	ExternalID string
	Status     string
	Location   [2]float64
}

// Projection updates the relational order row at stage boundaries. The ledger
// stays the source of truth; this is write-only denormalization.
type Projection interface {
	UpdateStatus(ctx context.Context, orderID int64, st status.OrderStatus) error
}

// Notifier fans order status changes out to customers. May be nil-wrapped via
// NopNotifier when messaging is disabled.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, orderID int64, st status.OrderStatus) error
}

// NopNotifier discards events.
type NopNotifier struct{}

func (NopNotifier) OrderStatusChanged(context.Context, int64, status.OrderStatus) error {
	return nil
}
