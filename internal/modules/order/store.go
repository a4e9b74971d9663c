// README: Order store backed by PostgreSQL (only the queries the fulfillment
// core needs; the CRUD API owns the rest of the schema).
package order

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"catering/internal/modules/status"
)

var ErrNotFound = errors.New("order not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, id int64) (*Order, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, status, eta, delivery_provider
		FROM orders
		WHERE id = $1`, id,
	)

	var o Order
	err := row.Scan(&o.ID, &o.Status, &o.ETA, &o.DeliveryProvider)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus projects a canonical status onto the order row. Called only at
// stage boundaries (cooking, cooked, delivery_lookup, delivered).
func (s *Store) UpdateStatus(ctx context.Context, id int64, st status.OrderStatus) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE orders SET status = $1 WHERE id = $2`,
		string(st), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ItemsByRestaurant returns the order's line items grouped per restaurant
// leg, ordered by restaurant id for deterministic fan-out.
func (s *Store) ItemsByRestaurant(ctx context.Context, orderID int64) ([]RestaurantItems, error) {
	rows, err := s.db.Query(ctx, `
		SELECT r.id, r.name, d.name, oi.quantity
		FROM order_items oi
		JOIN dishes d ON d.id = oi.dish_id
		JOIN restaurants r ON r.id = d.restaurant_id
		WHERE oi.order_id = $1
		ORDER BY r.id`, orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []RestaurantItems
	for rows.Next() {
		var restaurantID int64
		var restaurantName, dishName string
		var quantity int
		if err := rows.Scan(&restaurantID, &restaurantName, &dishName, &quantity); err != nil {
			return nil, err
		}
		if len(groups) == 0 || groups[len(groups)-1].RestaurantID != restaurantID {
			groups = append(groups, RestaurantItems{
				RestaurantID:   restaurantID,
				RestaurantName: restaurantName,
			})
		}
		last := &groups[len(groups)-1]
		last.Items = append(last.Items, Item{DishName: dishName, Quantity: quantity})
	}
	return groups, rows.Err()
}

// DeliveryMeta yields one (restaurant, pickup address) pair per leg.
func (s *Store) DeliveryMeta(ctx context.Context, orderID int64) ([]DeliveryLeg, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT r.name, r.address
		FROM order_items oi
		JOIN dishes d ON d.id = oi.dish_id
		JOIN restaurants r ON r.id = d.restaurant_id
		WHERE oi.order_id = $1
		ORDER BY r.name`, orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var legs []DeliveryLeg
	for rows.Next() {
		var leg DeliveryLeg
		if err := rows.Scan(&leg.RestaurantName, &leg.Address); err != nil {
			return nil, err
		}
		legs = append(legs, leg)
	}
	return legs, rows.Err()
}
