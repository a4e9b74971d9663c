// README: Order entity as consumed from the relational store. The ledger owns
// in-flight status; these rows are only a denormalized projection updated at
// stage boundaries.
package order

import (
	"time"

	"catering/internal/modules/status"
)

type Order struct {
	ID               int64
	Status           status.OrderStatus
	ETA              time.Time
	DeliveryProvider string
}

// Item is one dish line inside a leg.
type Item struct {
	DishName string
	Quantity int
}

// RestaurantItems groups an order's line items under the restaurant that
// cooks them; one value per leg.
type RestaurantItems struct {
	RestaurantID   int64
	RestaurantName string
	Items          []Item
}

// DeliveryLeg is the (restaurant, address) pair handed to the delivery
// provider for one pickup.
type DeliveryLeg struct {
	RestaurantName string
	Address        string
}
