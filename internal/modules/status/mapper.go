// README: Per-provider status translation tables (external status -> canonical).
package status

import (
	"errors"
	"fmt"

	"catering/internal/providers/kfc"
	"catering/internal/providers/silpo"
	"catering/internal/providers/uklon"
)

// ErrUnmappedStatus means a provider returned a value outside its declared
// vocabulary. Callers must treat it as fatal for the current iteration and
// never coerce it to a default.
var ErrUnmappedStatus = errors.New("unmapped provider status")

// Mapper holds one total translation table per provider name. Tables are
// declared once at startup and never mutated afterwards.
type Mapper struct {
	tables map[string]map[string]OrderStatus
}

// NewMapper builds the registry for every provider this deployment talks to.
func NewMapper() *Mapper {
	return &Mapper{
		tables: map[string]map[string]OrderStatus{
			"silpo": {
				silpo.StatusNotStarted: NotStarted,
				silpo.StatusCooking:    Cooking,
				silpo.StatusCooked:     Cooked,
			},
			"kfc": {
				kfc.StatusNotStarted: NotStarted,
				kfc.StatusCooking:    Cooking,
				kfc.StatusCooked:     Cooked,
			},
			"uklon": {
				uklon.StatusNotStarted: NotStarted,
				uklon.StatusDelivery:   Delivery,
				uklon.StatusDelivered:  Delivered,
			},
		},
	}
}

// Translate maps a provider-native status string to the canonical taxonomy.
func (m *Mapper) Translate(provider, external string) (OrderStatus, error) {
	table, ok := m.tables[provider]
	if !ok {
		return "", fmt.Errorf("provider %q has no status table: %w", provider, ErrUnmappedStatus)
	}
	internal, ok := table[external]
	if !ok {
		return "", fmt.Errorf("provider %q returned %q: %w", provider, external, ErrUnmappedStatus)
	}
	return internal, nil
}
