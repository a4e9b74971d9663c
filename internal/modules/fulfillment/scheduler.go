// README: Order scheduler; writes the full tracking record first, then fans
// out one worker goroutine per restaurant leg. The write-then-fan-out order is
// what guarantees workers never observe a missing record.
package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"catering/internal/modules/order"
	"catering/internal/modules/tracking"
)

type Scheduler struct {
	// workerCtx bounds every dispatched worker; it is the process lifetime
	// context, not the HTTP request that triggered scheduling.
	workerCtx context.Context
	ledger    *tracking.Ledger
	workers   map[string]Worker
	log       *slog.Logger

	wg sync.WaitGroup
}

func NewScheduler(workerCtx context.Context, ledger *tracking.Ledger, log *slog.Logger) *Scheduler {
	return &Scheduler{
		workerCtx: workerCtx,
		ledger:    ledger,
		workers:   make(map[string]Worker),
		log:       log.With("component", "scheduler"),
	}
}

// Register binds a worker strategy to a restaurant name. Called once at
// startup; unknown names fail fast at schedule time. Lookups are
// case-insensitive so "KFC" rows match a "kfc" registration.
func (s *Scheduler) Register(restaurantName string, w Worker) {
	s.workers[strings.ToLower(restaurantName)] = w
}

// Schedule initializes the tracking record for the order and dispatches one
// worker per leg. A leg without a registered worker aborts dispatch for that
// leg and every leg after it, without rolling back legs already running.
func (s *Scheduler) Schedule(ctx context.Context, orderID int64, legs []order.RestaurantItems) error {
	if len(legs) == 0 {
		return fmt.Errorf("order %d has no restaurant legs", orderID)
	}

	ids := make([]string, len(legs))
	for i, leg := range legs {
		ids[i] = strconv.FormatInt(leg.RestaurantID, 10)
	}
	if err := s.ledger.Create(ctx, orderID, tracking.NewRecord(ids)); err != nil {
		return fmt.Errorf("order %d: init tracking record: %w", orderID, err)
	}

	for _, leg := range legs {
		w, ok := s.workers[strings.ToLower(leg.RestaurantName)]
		if !ok {
			return fmt.Errorf("order %d: restaurant %q: %w", orderID, leg.RestaurantName, ErrUnsupportedRestaurant)
		}
		s.log.Info("dispatching leg",
			"order_id", orderID,
			"restaurant", leg.RestaurantName,
			"items", len(leg.Items),
		)
		s.wg.Add(1)
		go func(leg order.RestaurantItems) {
			defer s.wg.Done()
			if err := w.Run(s.workerCtx, orderID, leg); err != nil {
				s.log.Error("leg worker exited",
					"order_id", orderID,
					"restaurant", leg.RestaurantName,
					"error", err,
				)
			}
		}(leg)
	}
	return nil
}

// Wait blocks until every dispatched worker has exited. Used on shutdown and
// in tests.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
