// README: Delivery dispatcher; second pipeline stage, runs once per order
// after the aggregator confirms every leg is cooked.
package fulfillment

import (
	"context"
	"fmt"
	"log/slog"

	"catering/internal/modules/order"
	"catering/internal/modules/status"
	"catering/internal/modules/tracking"
)

// DeliveryMetaSource yields the (restaurant, address) pickup pairs for an
// order. Satisfied by the order store.
type DeliveryMetaSource interface {
	DeliveryMeta(ctx context.Context, orderID int64) ([]order.DeliveryLeg, error)
}

type Dispatcher struct {
	provider   string
	client     DeliveryAPI
	ledger     *tracking.Ledger
	mapper     *status.Mapper
	projection Projection
	notifier   Notifier
	meta       DeliveryMetaSource
	log        *slog.Logger
}

func NewDispatcher(
	provider string,
	client DeliveryAPI,
	ledger *tracking.Ledger,
	mapper *status.Mapper,
	projection Projection,
	notifier Notifier,
	meta DeliveryMetaSource,
	log *slog.Logger,
) *Dispatcher {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Dispatcher{
		provider:   provider,
		client:     client,
		ledger:     ledger,
		mapper:     mapper,
		projection: projection,
		notifier:   notifier,
		meta:       meta,
		log:        log.With("component", "dispatcher", "provider", provider),
	}
}

// Dispatch creates the delivery-provider order for every pickup leg and
// seeds the delivery sub-record. The order entity is deliberately left at
// delivery_lookup; only the webhook path moves it to delivered.
func (d *Dispatcher) Dispatch(ctx context.Context, orderID int64) error {
	if err := d.projection.UpdateStatus(ctx, orderID, status.DeliveryLookup); err != nil {
		return err
	}
	if err := d.notifier.OrderStatusChanged(ctx, orderID, status.DeliveryLookup); err != nil {
		d.log.Error("publish status event", "order_id", orderID, "error", err)
	}

	legs, err := d.meta.DeliveryMeta(ctx, orderID)
	if err != nil {
		return fmt.Errorf("order %d: delivery metadata: %w", orderID, err)
	}
	addresses := make([]string, len(legs))
	comments := make([]string, len(legs))
	for i, leg := range legs {
		addresses[i] = leg.Address
		comments[i] = fmt.Sprintf("Order %d: pickup from %s", orderID, leg.RestaurantName)
	}

	created, err := callWithRetry(ctx, func() (*DeliveryOrder, error) {
		return d.client.CreateOrder(ctx, addresses, comments)
	})
	if err != nil {
		return err
	}
	mapped, err := d.mapper.Translate(d.provider, created.Status)
	if err != nil {
		return err
	}

	if err := d.ledger.MapExternalID(ctx, d.provider, created.ExternalID, orderID); err != nil {
		return err
	}
	if _, err := d.ledger.Update(ctx, orderID, func(r *tracking.Record) (bool, error) {
		r.ApplyDeliveryStatus(mapped)
		r.SetDeliveryLocation(created.Location[0], created.Location[1])
		return true, nil
	}); err != nil {
		return err
	}

	d.log.Info("delivery order created",
		"order_id", orderID,
		"external_id", created.ExternalID,
		"status", mapped,
		"pickups", len(addresses),
	)
	return nil
}
