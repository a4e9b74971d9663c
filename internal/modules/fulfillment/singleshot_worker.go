// README: Fire-and-forget worker for providers with no poll or push feedback;
// status is fixed at creation time.
package fulfillment

import (
	"context"
	"log/slog"
	"strconv"

	"catering/internal/modules/order"
	"catering/internal/modules/status"
	"catering/internal/modules/tracking"
)

type SingleShotWorker struct {
	provider   string
	client     RestaurantAPI
	ledger     *tracking.Ledger
	mapper     *status.Mapper
	aggregator *Aggregator
	log        *slog.Logger
}

func NewSingleShotWorker(
	provider string,
	client RestaurantAPI,
	ledger *tracking.Ledger,
	mapper *status.Mapper,
	aggregator *Aggregator,
	log *slog.Logger,
) *SingleShotWorker {
	return &SingleShotWorker{
		provider:   provider,
		client:     client,
		ledger:     ledger,
		mapper:     mapper,
		aggregator: aggregator,
		log:        log.With("component", "singleshot_worker", "provider", provider),
	}
}

// Run creates the provider order once and immediately records the leg as
// cooked. Until the provider ships a status channel, creation is the only
// observable event, so the terminal status is mocked at creation time.
func (w *SingleShotWorker) Run(ctx context.Context, orderID int64, leg order.RestaurantItems) error {
	restaurantID := strconv.FormatInt(leg.RestaurantID, 10)
	log := w.log.With("order_id", orderID, "restaurant_id", restaurantID)

	created, err := callWithRetry(ctx, func() (createResult, error) {
		externalID, providerStatus, err := w.client.CreateOrder(ctx, leg.Items)
		return createResult{externalID: externalID, status: providerStatus}, err
	})
	if err != nil {
		return err
	}
	// Validate the returned status against the declared vocabulary even
	// though the stored status is mocked; silently accepting unknown values
	// would hide a provider contract change.
	if _, err := w.mapper.Translate(w.provider, created.status); err != nil {
		return err
	}

	if _, err := w.ledger.Update(ctx, orderID, func(r *tracking.Record) (bool, error) {
		set, err := r.SetLegExternalID(restaurantID, created.externalID)
		if err != nil {
			return false, err
		}
		advanced, err := r.ApplyLegStatus(restaurantID, status.Cooked)
		return set || advanced, err
	}); err != nil {
		return err
	}
	if err := w.ledger.MapExternalID(ctx, w.provider, created.externalID, orderID); err != nil {
		return err
	}

	log.Info("provider order created, leg marked cooked", "external_id", created.externalID)
	return w.aggregator.Complete(ctx, orderID)
}
