// README: Tracking record model; the one mutable document per order shared by
// every worker and webhook handler. All mutation goes through merge methods so
// a writer can only touch its own sub-key.
package tracking

import (
	"fmt"

	"catering/internal/modules/status"
)

// Leg is the per-restaurant slice of an order.
type Leg struct {
	Status     status.OrderStatus `json:"status"`
	ExternalID *string            `json:"external_id,omitempty"`
}

// Delivery is the second-stage sub-record. Status stays nil until the
// completion aggregator opens the delivery stage; that nil->set transition is
// the exactly-once dispatch guard.
type Delivery struct {
	Status   *status.OrderStatus `json:"status,omitempty"`
	Location *[2]float64         `json:"location,omitempty"`
}

// Record is the ledger document for one order.
type Record struct {
	Restaurants map[string]*Leg `json:"restaurants"`
	Delivery    Delivery        `json:"delivery"`
}

// NewRecord builds the schedule-time record: one not_started leg per
// restaurant, no external ids, no delivery sub-record.
func NewRecord(restaurantIDs []string) *Record {
	legs := make(map[string]*Leg, len(restaurantIDs))
	for _, id := range restaurantIDs {
		legs[id] = &Leg{Status: status.NotStarted}
	}
	return &Record{Restaurants: legs}
}

// Leg returns the slice owned by one restaurant.
func (r *Record) Leg(restaurantID string) (*Leg, bool) {
	leg, ok := r.Restaurants[restaurantID]
	return leg, ok
}

// ApplyLegStatus advances one leg, refusing to move backwards. Repeated or
// out-of-order notifications are idempotent no-ops, so it reports whether
// anything actually changed.
func (r *Record) ApplyLegStatus(restaurantID string, s status.OrderStatus) (bool, error) {
	leg, ok := r.Restaurants[restaurantID]
	if !ok {
		return false, fmt.Errorf("restaurant %s is not part of this order", restaurantID)
	}
	if !status.Before(leg.Status, s) {
		return false, nil
	}
	leg.Status = s
	return true, nil
}

// SetLegExternalID records the provider-side order id. It transitions from
// absent to present at most once and never reverts.
func (r *Record) SetLegExternalID(restaurantID, externalID string) (bool, error) {
	leg, ok := r.Restaurants[restaurantID]
	if !ok {
		return false, fmt.Errorf("restaurant %s is not part of this order", restaurantID)
	}
	if leg.ExternalID != nil {
		return false, nil
	}
	leg.ExternalID = &externalID
	return true, nil
}

// LegByExternalID finds the leg a provider push notification refers to;
// webhooks carry only the provider-side order id.
func (r *Record) LegByExternalID(externalID string) (string, *Leg, bool) {
	for restaurantID, leg := range r.Restaurants {
		if leg.ExternalID != nil && *leg.ExternalID == externalID {
			return restaurantID, leg, true
		}
	}
	return "", nil, false
}

// AllCooked reports whether every leg reached the terminal cooked state.
// Vacuously true for zero legs; the scheduler refuses to produce such records.
func (r *Record) AllCooked() bool {
	for _, leg := range r.Restaurants {
		if leg.Status != status.Cooked {
			return false
		}
	}
	return true
}

// OpenDelivery marks the delivery stage as started. Only the first caller
// gets true; everyone else sees the stage already open.
func (r *Record) OpenDelivery() bool {
	if r.Delivery.Status != nil {
		return false
	}
	s := status.NotStarted
	r.Delivery.Status = &s
	return true
}

// ApplyDeliveryStatus advances the delivery sub-record, monotonic like legs.
func (r *Record) ApplyDeliveryStatus(s status.OrderStatus) bool {
	if r.Delivery.Status == nil {
		r.Delivery.Status = &s
		return true
	}
	if !status.Before(*r.Delivery.Status, s) {
		return false
	}
	r.Delivery.Status = &s
	return true
}

// SetDeliveryLocation overwrites the courier position. Locations are not
// ordered, last report wins.
func (r *Record) SetDeliveryLocation(lat, lon float64) {
	r.Delivery.Location = &[2]float64{lat, lon}
}
