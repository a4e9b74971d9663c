// README: Taxonomy and mapper tests.
package status

import (
	"errors"
	"testing"
)

func TestCanonicalOrdering(t *testing.T) {
	ordered := []OrderStatus{NotStarted, Cooking, Cooked, DeliveryLookup, Delivery, Delivered}
	for i := 0; i < len(ordered)-1; i++ {
		if !Before(ordered[i], ordered[i+1]) {
			t.Errorf("Before(%s, %s) = false, want true", ordered[i], ordered[i+1])
		}
		if Before(ordered[i+1], ordered[i]) {
			t.Errorf("Before(%s, %s) = true, want false", ordered[i+1], ordered[i])
		}
	}
	if Before(Cooked, Cooked) {
		t.Error("a status must not precede itself")
	}
	if Before("burnt", Cooked) || Before(Cooked, "burnt") {
		t.Error("unknown statuses must not be ordered")
	}
	if _, ok := Rank("burnt"); ok {
		t.Error("Rank must reject unknown statuses")
	}
}

func TestTranslate(t *testing.T) {
	m := NewMapper()
	cases := []struct {
		provider, external string
		want               OrderStatus
	}{
		{"silpo", "not_started", NotStarted},
		{"silpo", "cooking", Cooking},
		{"silpo", "cooked", Cooked},
		{"kfc", "not started", NotStarted},
		{"kfc", "cooked", Cooked},
		{"uklon", "not started", NotStarted},
		{"uklon", "delivery", Delivery},
		{"uklon", "delivered", Delivered},
	}
	for _, tc := range cases {
		got, err := m.Translate(tc.provider, tc.external)
		if err != nil {
			t.Errorf("Translate(%s, %q): %v", tc.provider, tc.external, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Translate(%s, %q) = %s, want %s", tc.provider, tc.external, got, tc.want)
		}
	}
}

func TestTranslateUnmapped(t *testing.T) {
	m := NewMapper()

	if _, err := m.Translate("silpo", "burnt"); !errors.Is(err, ErrUnmappedStatus) {
		t.Errorf("expected ErrUnmappedStatus for unknown status, got %v", err)
	}
	// Delivery statuses are not part of a restaurant vocabulary.
	if _, err := m.Translate("silpo", "delivery"); !errors.Is(err, ErrUnmappedStatus) {
		t.Errorf("expected ErrUnmappedStatus for foreign vocabulary, got %v", err)
	}
	if _, err := m.Translate("glovo", "cooked"); !errors.Is(err, ErrUnmappedStatus) {
		t.Errorf("expected ErrUnmappedStatus for unknown provider, got %v", err)
	}
}
