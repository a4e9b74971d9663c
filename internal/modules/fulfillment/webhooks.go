// README: Webhook ingestion service; translates provider push notifications
// and merges them into the ledger next to the concurrently running workers.
package fulfillment

import (
	"context"
	"log/slog"

	"catering/internal/modules/status"
	"catering/internal/modules/tracking"
)

type WebhookService struct {
	ledger     *tracking.Ledger
	mapper     *status.Mapper
	projection Projection
	notifier   Notifier
	aggregator *Aggregator
	log        *slog.Logger
}

func NewWebhookService(
	ledger *tracking.Ledger,
	mapper *status.Mapper,
	projection Projection,
	notifier Notifier,
	aggregator *Aggregator,
	log *slog.Logger,
) *WebhookService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &WebhookService{
		ledger:     ledger,
		mapper:     mapper,
		projection: projection,
		notifier:   notifier,
		aggregator: aggregator,
		log:        log.With("component", "webhooks"),
	}
}

// ApplyDeliveryUpdate handles a delivery-provider push: resolve the external
// id, translate the status, merge into the delivery sub-record, and on
// terminal delivered project that onto the order entity.
func (s *WebhookService) ApplyDeliveryUpdate(ctx context.Context, provider, externalID, providerStatus string, location *[2]float64) error {
	orderID, err := s.ledger.ResolveExternalID(ctx, provider, externalID)
	if err != nil {
		return err
	}
	mapped, err := s.mapper.Translate(provider, providerStatus)
	if err != nil {
		return err
	}

	advanced := false
	if _, err := s.ledger.Update(ctx, orderID, func(r *tracking.Record) (bool, error) {
		advanced = r.ApplyDeliveryStatus(mapped)
		if location != nil {
			r.SetDeliveryLocation(location[0], location[1])
		}
		return advanced || location != nil, nil
	}); err != nil {
		return err
	}
	s.log.Info("delivery update", "order_id", orderID, "status", mapped, "changed", advanced)

	if advanced && mapped == status.Delivered {
		if err := s.projection.UpdateStatus(ctx, orderID, status.Delivered); err != nil {
			return err
		}
		if err := s.notifier.OrderStatusChanged(ctx, orderID, status.Delivered); err != nil {
			s.log.Error("publish status event", "order_id", orderID, "error", err)
		}
	}
	return nil
}

// ApplyKitchenUpdate handles a restaurant-provider push for a single leg,
// identified by its external order id. The merge is monotonic, so replayed or
// stale notifications are no-ops. A leg pushed to cooked goes through the
// same aggregation path as a polled one.
func (s *WebhookService) ApplyKitchenUpdate(ctx context.Context, provider, externalID, providerStatus string) error {
	orderID, err := s.ledger.ResolveExternalID(ctx, provider, externalID)
	if err != nil {
		return err
	}
	mapped, err := s.mapper.Translate(provider, providerStatus)
	if err != nil {
		return err
	}

	changed := false
	if _, err := s.ledger.Update(ctx, orderID, func(r *tracking.Record) (bool, error) {
		restaurantID, _, ok := r.LegByExternalID(externalID)
		if !ok {
			return false, nil
		}
		var applyErr error
		changed, applyErr = r.ApplyLegStatus(restaurantID, mapped)
		return changed, applyErr
	}); err != nil {
		return err
	}
	s.log.Info("kitchen update", "order_id", orderID, "status", mapped, "changed", changed)

	if !changed {
		return nil
	}
	if mapped == status.Cooking {
		if err := s.projection.UpdateStatus(ctx, orderID, status.Cooking); err != nil {
			return err
		}
		if err := s.notifier.OrderStatusChanged(ctx, orderID, status.Cooking); err != nil {
			s.log.Error("publish status event", "order_id", orderID, "error", err)
		}
	}
	if mapped == status.Cooked {
		return s.aggregator.Complete(ctx, orderID)
	}
	return nil
}
