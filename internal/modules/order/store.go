// README: Order store backed by PostgreSQL; owns the surprise-order transaction.
package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travelbook/internal/modules/catalog"
	"travelbook/internal/modules/user"
	"travelbook/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// WithTx begins a transaction on the pool. The deferred rollback is a no-op after a
// successful commit and runs detached from ctx so a cancelled request still releases
// the connection.
func (s *Store) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Trips() TripFinder    { return catalog.NewStore(t.tx) }
func (t *pgTx) Users() UserDirectory { return user.NewStore(t.tx) }

func (t *pgTx) CreateOrder(ctx context.Context, o *Order) error {
	return t.tx.QueryRow(ctx, `
		INSERT INTO orders (
			ordered_at, trip_at, participants, driver_id, traveler_id,
			trip_name, trip_address, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		o.OrderedAt,
		o.TripAt,
		o.Participants,
		int64(o.DriverID),
		int64(o.TravelerID),
		o.TripName,
		o.TripAddress,
		string(o.Status),
	).Scan(&o.ID)
}

func (t *pgTx) CreateDelivery(ctx context.Context, d *Delivery) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO driver_deliveries (order_id, driver_name, traveler_phone, pickup_address)
		VALUES ($1, $2, $3, $4)`,
		int64(d.OrderID), d.DriverName, d.TravelerPhone, d.PickupAddress,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Order, error) {
	var o Order
	var status string
	err := s.db.QueryRow(ctx, `
		SELECT id, ordered_at, trip_at, participants, driver_id, traveler_id,
		       trip_name, trip_address, status
		FROM orders
		WHERE id = $1`, int64(id),
	).Scan(
		&o.ID, &o.OrderedAt, &o.TripAt, &o.Participants, &o.DriverID, &o.TravelerID,
		&o.TripName, &o.TripAddress, &status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = Status(status)
	return &o, nil
}

func (s *Store) ListByDriver(ctx context.Context, driverID types.ID) ([]Assignment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT o.id, o.ordered_at, o.trip_at, o.participants, o.driver_id, o.traveler_id,
		       o.trip_name, o.trip_address, o.status,
		       d.driver_name, d.traveler_phone, d.pickup_address
		FROM orders o
		JOIN driver_deliveries d ON d.order_id = o.id
		WHERE o.driver_id = $1
		ORDER BY o.trip_at ASC`, int64(driverID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Assignment
	for rows.Next() {
		var a Assignment
		var status string
		if err := rows.Scan(
			&a.Order.ID, &a.Order.OrderedAt, &a.Order.TripAt, &a.Order.Participants,
			&a.Order.DriverID, &a.Order.TravelerID, &a.Order.TripName, &a.Order.TripAddress, &status,
			&a.Delivery.DriverName, &a.Delivery.TravelerPhone, &a.Delivery.PickupAddress,
		); err != nil {
			return nil, err
		}
		a.Order.Status = Status(status)
		a.Delivery.OrderID = a.Order.ID
		list = append(list, a)
	}
	return list, rows.Err()
}

// UpdateStatus applies the transition only if the order is still in from.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE orders
		SET status = $1
		WHERE id = $2 AND status = $3`,
		string(to), int64(id), string(from),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
