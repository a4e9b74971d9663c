// README: Webhook ingestion tests (idempotence + terminal projection).
package fulfillment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"catering/internal/modules/status"
	"catering/internal/modules/tracking"
)

func newWebhookHarness(t *testing.T) (*harness, *WebhookService) {
	t.Helper()
	h := newHarness()
	return h, NewWebhookService(h.ledger, status.NewMapper(), h.projection, nil, h.aggregator, h.log)
}

func TestDeliveryWebhookTerminalProjection(t *testing.T) {
	ctx := context.Background()
	h, svc := newWebhookHarness(t)

	if err := h.ledger.Create(ctx, 17, tracking.NewRecord([]string{"1"})); err != nil {
		t.Fatalf("create record: %v", err)
	}
	if err := h.ledger.MapExternalID(ctx, "uklon", "abc", 17); err != nil {
		t.Fatalf("map external id: %v", err)
	}

	loc := [2]float64{50.45, 30.52}
	if err := svc.ApplyDeliveryUpdate(ctx, "uklon", "abc", "delivery", &loc); err != nil {
		t.Fatalf("delivery update: %v", err)
	}
	if got := h.projection.seen(); len(got) != 0 {
		t.Errorf("non-terminal delivery status must not project, saw %v", got)
	}

	if err := svc.ApplyDeliveryUpdate(ctx, "uklon", "abc", "delivered", nil); err != nil {
		t.Fatalf("delivered update: %v", err)
	}
	rec, err := h.ledger.Get(ctx, 17)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if rec.Delivery.Status == nil || *rec.Delivery.Status != status.Delivered {
		t.Error("delivery status must be delivered")
	}
	if rec.Delivery.Location == nil || rec.Delivery.Location[0] != 50.45 {
		t.Error("location from the earlier push must survive")
	}
	if got := h.projection.seen(); len(got) != 1 || got[0] != status.Delivered {
		t.Errorf("projected = %v, want [delivered]", got)
	}

	// Replayed terminal notification: no observable change.
	if err := svc.ApplyDeliveryUpdate(ctx, "uklon", "abc", "delivered", nil); err != nil {
		t.Fatalf("replayed update: %v", err)
	}
	if got := h.projection.seen(); len(got) != 1 {
		t.Errorf("replay must not project again, saw %v", got)
	}
}

func TestDeliveryWebhookUnknownExternalID(t *testing.T) {
	_, svc := newWebhookHarness(t)
	err := svc.ApplyDeliveryUpdate(context.Background(), "uklon", "ghost", "delivery", nil)
	if !errors.Is(err, tracking.ErrUnknownExternalOrder) {
		t.Fatalf("expected ErrUnknownExternalOrder, got %v", err)
	}
}

func TestDeliveryWebhookUnmappedStatus(t *testing.T) {
	ctx := context.Background()
	h, svc := newWebhookHarness(t)
	if err := h.ledger.Create(ctx, 17, tracking.NewRecord([]string{"1"})); err != nil {
		t.Fatalf("create record: %v", err)
	}
	if err := h.ledger.MapExternalID(ctx, "uklon", "abc", 17); err != nil {
		t.Fatalf("map external id: %v", err)
	}
	err := svc.ApplyDeliveryUpdate(ctx, "uklon", "abc", "teleported", nil)
	if !errors.Is(err, status.ErrUnmappedStatus) {
		t.Fatalf("expected ErrUnmappedStatus, got %v", err)
	}
}

func TestKitchenWebhookDrivesAggregation(t *testing.T) {
	ctx := context.Background()
	h, svc := newWebhookHarness(t)

	if err := h.ledger.Create(ctx, 18, tracking.NewRecord([]string{"2"})); err != nil {
		t.Fatalf("create record: %v", err)
	}
	if _, err := h.ledger.Update(ctx, 18, func(r *tracking.Record) (bool, error) {
		return r.SetLegExternalID("2", "KFC-1")
	}); err != nil {
		t.Fatalf("set external id: %v", err)
	}
	if err := h.ledger.MapExternalID(ctx, "kfc", "KFC-1", 18); err != nil {
		t.Fatalf("map external id: %v", err)
	}

	if err := svc.ApplyKitchenUpdate(ctx, "kfc", "KFC-1", "cooking"); err != nil {
		t.Fatalf("cooking push: %v", err)
	}
	if got := h.projection.seen(); len(got) != 1 || got[0] != status.Cooking {
		t.Errorf("projected = %v, want [cooking]", got)
	}

	if err := svc.ApplyKitchenUpdate(ctx, "kfc", "KFC-1", "cooked"); err != nil {
		t.Fatalf("cooked push: %v", err)
	}
	if got := h.delivery.callCount(); got != 1 {
		t.Errorf("delivery created %d times, want 1", got)
	}

	// Feeding the terminal status again is a no-op: no second dispatch, no
	// extra projection.
	if err := svc.ApplyKitchenUpdate(ctx, "kfc", "KFC-1", "cooked"); err != nil {
		t.Fatalf("replayed cooked push: %v", err)
	}
	if got := h.delivery.callCount(); got != 1 {
		t.Errorf("replay dispatched delivery again (%d calls)", got)
	}
}

// A webhook and a poll-style leg writer hitting the same record concurrently
// must both land (the merge-not-replace contract).
func TestWebhookAndWorkerConcurrentMerge(t *testing.T) {
	ctx := context.Background()
	h, svc := newWebhookHarness(t)

	if err := h.ledger.Create(ctx, 19, tracking.NewRecord([]string{"1", "2"})); err != nil {
		t.Fatalf("create record: %v", err)
	}
	if _, err := h.ledger.Update(ctx, 19, func(r *tracking.Record) (bool, error) {
		return r.SetLegExternalID("2", "KFC-1")
	}); err != nil {
		t.Fatalf("set external id: %v", err)
	}
	if err := h.ledger.MapExternalID(ctx, "kfc", "KFC-1", 19); err != nil {
		t.Fatalf("map external id: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for _, s := range []status.OrderStatus{status.Cooking, status.Cooked} {
			_, err := h.ledger.Update(ctx, 19, func(r *tracking.Record) (bool, error) {
				return r.ApplyLegStatus("1", s)
			})
			if err != nil {
				t.Errorf("leg writer: %v", err)
			}
			time.Sleep(time.Millisecond)
		}
	}()
	go func() {
		defer wg.Done()
		for _, s := range []string{"cooking", "cooked"} {
			if err := svc.ApplyKitchenUpdate(ctx, "kfc", "KFC-1", s); err != nil {
				t.Errorf("webhook writer: %v", err)
			}
			time.Sleep(time.Millisecond)
		}
	}()
	wg.Wait()

	rec, err := h.ledger.Get(ctx, 19)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if rec.Restaurants["1"].Status != status.Cooked {
		t.Errorf("polled leg = %s, want cooked", rec.Restaurants["1"].Status)
	}
	if rec.Restaurants["2"].Status != status.Cooked {
		t.Errorf("pushed leg = %s, want cooked", rec.Restaurants["2"].Status)
	}
}
