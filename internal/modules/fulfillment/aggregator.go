// README: Completion aggregator; every finishing worker calls it, exactly one
// call wins the transition into the delivery stage.
package fulfillment

import (
	"context"
	"log/slog"

	"catering/internal/modules/status"
	"catering/internal/modules/tracking"
)

type Aggregator struct {
	ledger     *tracking.Ledger
	projection Projection
	notifier   Notifier
	dispatcher *Dispatcher
	log        *slog.Logger
}

func NewAggregator(
	ledger *tracking.Ledger,
	projection Projection,
	notifier Notifier,
	dispatcher *Dispatcher,
	log *slog.Logger,
) *Aggregator {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Aggregator{
		ledger:     ledger,
		projection: projection,
		notifier:   notifier,
		dispatcher: dispatcher,
		log:        log.With("component", "aggregator"),
	}
}

// Complete checks whether every restaurant leg is cooked, and if so advances
// the order and triggers delivery dispatch. Redundant calls are the intended
// convergence pattern: callers that find legs still in flight, or find the
// delivery stage already opened by a sibling, are silent no-ops.
func (a *Aggregator) Complete(ctx context.Context, orderID int64) error {
	opened := false
	_, err := a.ledger.Update(ctx, orderID, func(r *tracking.Record) (bool, error) {
		if !r.AllCooked() {
			return false, nil
		}
		opened = r.OpenDelivery()
		return opened, nil
	})
	if err != nil {
		return err
	}
	if !opened {
		return nil
	}

	a.log.Info("all legs cooked", "order_id", orderID)
	if err := a.projection.UpdateStatus(ctx, orderID, status.Cooked); err != nil {
		return err
	}
	if err := a.notifier.OrderStatusChanged(ctx, orderID, status.Cooked); err != nil {
		a.log.Error("publish status event", "order_id", orderID, "error", err)
	}
	return a.dispatcher.Dispatch(ctx, orderID)
}
