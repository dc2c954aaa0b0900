// README: Order aggregate, driver delivery record and status definitions.
package order

import (
	"time"

	"travelbook/internal/types"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusDeclined  Status = "declined"
)

// Order is one booking. TripAt and OrderedAt are wall-clock values in the service's zone.
type Order struct {
	ID           types.ID
	OrderedAt    time.Time
	TripAt       time.Time
	Participants int
	DriverID     types.ID
	TravelerID   types.ID
	TripName     string
	TripAddress  string
	Status       Status
}

// Delivery links an order to its driver with the contact details needed for pickup.
type Delivery struct {
	OrderID       types.ID
	DriverName    string
	TravelerPhone string
	PickupAddress string
}

// Assignment is an order joined with its delivery record, as shown on the driver dashboard.
type Assignment struct {
	Order    Order
	Delivery Delivery
}

// AllowedTransitions represents the order state flow as code. Every order starts pending.
var AllowedTransitions = map[Status][]Status{
	StatusPending: {StatusCompleted, StatusCancelled, StatusDeclined},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled, StatusDeclined:
		return true
	}
	return false
}

type DriverContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// HiddenTrip is all a traveler learns about the chosen destination.
type HiddenTrip struct {
	ID     types.ID `json:"id"`
	Name   string   `json:"name"`
	Region string   `json:"region"`
	Hidden bool     `json:"hidden"`
}

// Confirmation is returned after a surprise order commits.
type Confirmation struct {
	OrderID     types.ID      `json:"orderId"`
	Driver      DriverContact `json:"driver"`
	Trip        HiddenTrip    `json:"trip"`
	TripDate    string        `json:"trip_date"`
	TripAddress string        `json:"trip_address"`

	// Kept for the after-commit notification, never serialized.
	TripAt        time.Time `json:"-"`
	Participants  int       `json:"-"`
	DriverID      types.ID  `json:"-"`
	TravelerID    types.ID  `json:"-"`
	TravelerName  string    `json:"-"`
	TravelerEmail string    `json:"-"`
}
