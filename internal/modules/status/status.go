// README: Canonical order status taxonomy shared by all providers.
package status

// OrderStatus is the provider-agnostic order lifecycle value. Provider
// vocabularies are translated into it by the Mapper and never stored raw.
type OrderStatus string

const (
	NotStarted     OrderStatus = "not_started"
	Cooking        OrderStatus = "cooking"
	Cooked         OrderStatus = "cooked"
	DeliveryLookup OrderStatus = "delivery_lookup"
	Delivery       OrderStatus = "delivery"
	Delivered      OrderStatus = "delivered"
)

// rank encodes the canonical lifecycle ordering. Monotonicity checks on
// tracking legs compare ranks, not strings.
var rank = map[OrderStatus]int{
	NotStarted:     0,
	Cooking:        1,
	Cooked:         2,
	DeliveryLookup: 3,
	Delivery:       4,
	Delivered:      5,
}

// Rank returns the position of s in the canonical lifecycle and whether s is
// a known status at all.
func Rank(s OrderStatus) (int, bool) {
	r, ok := rank[s]
	return r, ok
}

// Before reports whether a precedes b in the canonical lifecycle. Unknown
// statuses never precede anything.
func Before(a, b OrderStatus) bool {
	ra, aok := rank[a]
	rb, bok := rank[b]
	return aok && bok && ra < rb
}
