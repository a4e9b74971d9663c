// README: Poll-until-terminal worker; short-polls a restaurant API with a
// fixed delay until its leg reaches cooked, then hands off to the aggregator.
package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"catering/internal/modules/order"
	"catering/internal/modules/status"
	"catering/internal/modules/tracking"
)

type PollWorker struct {
	provider   string
	client     RestaurantAPI
	ledger     *tracking.Ledger
	mapper     *status.Mapper
	projection Projection
	notifier   Notifier
	aggregator *Aggregator
	interval   time.Duration
	log        *slog.Logger
}

func NewPollWorker(
	provider string,
	client RestaurantAPI,
	ledger *tracking.Ledger,
	mapper *status.Mapper,
	projection Projection,
	notifier Notifier,
	aggregator *Aggregator,
	interval time.Duration,
	log *slog.Logger,
) *PollWorker {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &PollWorker{
		provider:   provider,
		client:     client,
		ledger:     ledger,
		mapper:     mapper,
		projection: projection,
		notifier:   notifier,
		aggregator: aggregator,
		interval:   interval,
		log:        log.With("component", "poll_worker", "provider", provider),
	}
}

func (w *PollWorker) Run(ctx context.Context, orderID int64, leg order.RestaurantItems) error {
	restaurantID := strconv.FormatInt(leg.RestaurantID, 10)
	log := w.log.With("order_id", orderID, "restaurant_id", restaurantID)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		cooked, err := w.poll(ctx, orderID, restaurantID, leg, log)
		if err != nil {
			return err
		}
		if cooked {
			log.Info("leg cooked, invoking aggregator")
			return w.aggregator.Complete(ctx, orderID)
		}
	}
}

// poll runs one iteration: create the provider order if this leg has no
// external id yet, otherwise fetch its current status and merge any change
// into the ledger. Reports whether the leg reached cooked.
func (w *PollWorker) poll(ctx context.Context, orderID int64, restaurantID string, leg order.RestaurantItems, log *slog.Logger) (bool, error) {
	rec, err := w.ledger.Get(ctx, orderID)
	if err != nil {
		return false, err
	}
	legState, ok := rec.Leg(restaurantID)
	if !ok {
		return false, fmt.Errorf("order %d: restaurant %s not in record: %w", orderID, restaurantID, tracking.ErrMissingTrackingRecord)
	}
	log.Debug("current leg status", "status", legState.Status)

	if legState.ExternalID == nil {
		return w.createOrder(ctx, orderID, restaurantID, leg, log)
	}

	providerStatus, err := callWithRetry(ctx, func() (string, error) {
		return w.client.GetOrder(ctx, *legState.ExternalID)
	})
	if err != nil {
		return false, err
	}
	mapped, err := w.mapper.Translate(w.provider, providerStatus)
	if err != nil {
		return false, err
	}

	if mapped != legState.Status {
		changed := false
		if _, err := w.ledger.Update(ctx, orderID, func(r *tracking.Record) (bool, error) {
			var applyErr error
			changed, applyErr = r.ApplyLegStatus(restaurantID, mapped)
			return changed, applyErr
		}); err != nil {
			return false, err
		}
		if changed {
			log.Info("leg status changed", "status", mapped)
		}
		if changed && mapped == status.Cooking {
			if err := w.projection.UpdateStatus(ctx, orderID, status.Cooking); err != nil {
				return false, err
			}
			if err := w.notifier.OrderStatusChanged(ctx, orderID, status.Cooking); err != nil {
				log.Error("publish status event", "error", err)
			}
		}
	}
	return mapped == status.Cooked, nil
}

// createOrder makes the first provider request for this leg and stores the
// returned external id and status. The external id is set at most once.
func (w *PollWorker) createOrder(ctx context.Context, orderID int64, restaurantID string, leg order.RestaurantItems, log *slog.Logger) (bool, error) {
	created, err := callWithRetry(ctx, func() (createResult, error) {
		externalID, providerStatus, err := w.client.CreateOrder(ctx, leg.Items)
		return createResult{externalID: externalID, status: providerStatus}, err
	})
	if err != nil {
		return false, err
	}
	mapped, err := w.mapper.Translate(w.provider, created.status)
	if err != nil {
		return false, err
	}

	if _, err := w.ledger.Update(ctx, orderID, func(r *tracking.Record) (bool, error) {
		set, err := r.SetLegExternalID(restaurantID, created.externalID)
		if err != nil {
			return false, err
		}
		advanced, err := r.ApplyLegStatus(restaurantID, mapped)
		return set || advanced, err
	}); err != nil {
		return false, err
	}
	if err := w.ledger.MapExternalID(ctx, w.provider, created.externalID, orderID); err != nil {
		return false, err
	}
	log.Info("provider order created", "external_id", created.externalID, "status", mapped)
	return mapped == status.Cooked, nil
}

type createResult struct {
	externalID string
	status     string
}
