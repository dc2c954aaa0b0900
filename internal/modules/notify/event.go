// README: Domain events published after an order commits.
package notify

import (
	"time"

	"travelbook/internal/modules/order"
	"travelbook/internal/types"
)

const RoutingOrderCreated = "order.created"

// OrderCreated carries what the confirmation mail needs. The trip name is left out so
// the destination stays a surprise.
type OrderCreated struct {
	OrderID       types.ID  `json:"order_id"`
	TravelerName  string    `json:"traveler_name"`
	TravelerEmail string    `json:"traveler_email"`
	Region        string    `json:"region"`
	TripAt        time.Time `json:"trip_at"`
	TripDate      string    `json:"trip_date"`
	TripAddress   string    `json:"trip_address"`
	Participants  int       `json:"participants"`
	DriverName    string    `json:"driver_name"`
	DriverPhone   string    `json:"driver_phone"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func OrderCreatedFrom(c *order.Confirmation, now time.Time) OrderCreated {
	return OrderCreated{
		OrderID:       c.OrderID,
		TravelerName:  c.TravelerName,
		TravelerEmail: c.TravelerEmail,
		Region:        c.Trip.Region,
		TripAt:        c.TripAt,
		TripDate:      c.TripDate,
		TripAddress:   c.TripAddress,
		Participants:  c.Participants,
		DriverName:    c.Driver.Name,
		DriverPhone:   c.Driver.Phone,
		OccurredAt:    now.UTC(),
	}
}
