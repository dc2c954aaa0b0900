// README: Order service: surprise-trip assignment transaction plus the order lifecycle.
package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"travelbook/internal/logger"
	"travelbook/internal/modules/catalog"
	"travelbook/internal/modules/matching"
	"travelbook/internal/modules/user"
	"travelbook/internal/types"
)

// Repository is the storage client injected into the service.
type Repository interface {
	// WithTx runs fn inside one transaction. It commits only when fn returns nil and
	// rolls back on every other exit path.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	Get(ctx context.Context, id types.ID) (*Order, error)
	ListByDriver(ctx context.Context, driverID types.ID) ([]Assignment, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status) (bool, error)
}

// Tx is the unit of work of one surprise order.
type Tx interface {
	Trips() TripFinder
	Users() UserDirectory
	CreateOrder(ctx context.Context, o *Order) error
	CreateDelivery(ctx context.Context, d *Delivery) error
}

type TripFinder interface {
	Candidates(ctx context.Context, style, region string) ([]catalog.Trip, error)
}

type UserDirectory interface {
	Drivers(ctx context.Context) ([]user.Driver, error)
	FindByIdentifier(ctx context.Context, ident string) (*user.User, error)
}

type Service struct {
	repo Repository
	rand matching.Rand
	loc  *time.Location
	now  func() time.Time
	log  logger.ILogger
}

func NewService(repo Repository, rnd matching.Rand, loc *time.Location, log logger.ILogger) *Service {
	if rnd == nil {
		rnd = matching.DefaultRand
	}
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, rand: rnd, loc: loc, now: time.Now, log: log}
}

// SurpriseCommand is the canonical preference request; the HTTP layer maps every
// accepted field alias onto it.
type SurpriseCommand struct {
	TravelerIdentifier string
	ParticipantsNum    int
	Style              string
	Activity           string
	GroupType          string
	PreferredDateRaw   string
	Region             string
	TripAddress        string
}

type StatusCommand struct {
	OrderID   types.ID
	ActorID   types.ID
	ActorRole user.Role
	To        Status
}

type GetQuery struct {
	OrderID   types.ID
	ActorID   types.ID
	ActorRole user.Role
}

// CreateSurprise picks a random matching trip and driver for the traveler and stores the
// order with its delivery record atomically. Failures are *Error values; match them with
// errors.Is against ErrValidation, ErrPastDate, ErrNoMatchingTrips and the other kinds.
//
// The call is not idempotent: resubmitting creates a new order with a fresh draw.
func (s *Service) CreateSurprise(ctx context.Context, cmd SurpriseCommand) (*Confirmation, error) {
	cmd = trimCommand(cmd)
	tripAt, verr := s.validate(cmd)
	if verr != nil {
		surpriseOrders.WithLabelValues(string(verr.Kind)).Inc()
		return nil, verr
	}

	var conf *Confirmation
	err := s.repo.WithTx(ctx, func(tx Tx) error {
		trips, err := tx.Trips().Candidates(ctx, cmd.Style, cmd.Region)
		if err != nil {
			return unexpectedError("trip lookup", err)
		}
		if len(trips) == 0 {
			return ErrNoMatchingTrips
		}
		trip := matching.PickOne(s.rand, trips)

		drivers, err := tx.Users().Drivers(ctx)
		if err != nil {
			return unexpectedError("driver lookup", err)
		}
		if len(drivers) == 0 {
			return ErrNoDrivers
		}
		driver := matching.PickOne(s.rand, drivers)

		traveler, err := tx.Users().FindByIdentifier(ctx, cmd.TravelerIdentifier)
		if errors.Is(err, user.ErrNotFound) {
			return ErrTravelerNotFound
		}
		if err != nil {
			return unexpectedError("traveler lookup", err)
		}

		o := &Order{
			OrderedAt:    s.now().In(s.loc),
			TripAt:       tripAt,
			Participants: cmd.ParticipantsNum,
			DriverID:     driver.ID,
			TravelerID:   traveler.ID,
			TripName:     trip.Name,
			TripAddress:  cmd.TripAddress,
			Status:       StatusPending,
		}
		if err := tx.CreateOrder(ctx, o); err != nil {
			return persistenceError("insert order", err)
		}
		d := &Delivery{
			OrderID:       o.ID,
			DriverName:    driver.Name,
			TravelerPhone: traveler.Phone,
			PickupAddress: cmd.TripAddress,
		}
		if err := tx.CreateDelivery(ctx, d); err != nil {
			return persistenceError("insert delivery", err)
		}

		conf = &Confirmation{
			OrderID:       o.ID,
			Driver:        DriverContact{Name: driver.Name, Phone: driver.Phone},
			Trip:          HiddenTrip{ID: trip.ID, Name: trip.Name, Region: trip.Region, Hidden: true},
			TripDate:      FormatTripDate(tripAt),
			TripAddress:   cmd.TripAddress,
			TripAt:        tripAt,
			Participants:  cmd.ParticipantsNum,
			DriverID:      driver.ID,
			TravelerID:    traveler.ID,
			TravelerName:  traveler.Name,
			TravelerEmail: traveler.Email,
		}
		return nil
	})
	if err != nil {
		e := classify(err)
		surpriseOrders.WithLabelValues(string(e.Kind)).Inc()
		switch e.Kind {
		case KindPersistence, KindUnexpected:
			s.log.Error("surprise order failed",
				logger.String("kind", string(e.Kind)),
				logger.String("traveler", cmd.TravelerIdentifier),
				logger.String("style", cmd.Style),
				logger.String("region", cmd.Region),
				logger.String("sql_code", e.SQLCode),
				logger.Error(err),
			)
		default:
			s.log.Info("surprise order rejected", logger.String("kind", string(e.Kind)), logger.String("region", cmd.Region))
		}
		return nil, e
	}

	surpriseOrders.WithLabelValues("created").Inc()
	s.log.Info("surprise order created",
		logger.Int64("order_id", int64(conf.OrderID)),
		logger.Int64("driver_id", int64(conf.DriverID)),
		logger.Int64("traveler_id", int64(conf.TravelerID)),
	)
	return conf, nil
}

// Check runs the same validation and future-date check as CreateSurprise without
// touching storage, so callers can reject a request before charging for it.
func (s *Service) Check(cmd SurpriseCommand) error {
	if _, err := s.validate(trimCommand(cmd)); err != nil {
		return err
	}
	return nil
}

// validate collects every missing or malformed field before failing, then checks the
// trip date is strictly after the server clock.
func (s *Service) validate(cmd SurpriseCommand) (time.Time, *Error) {
	var missing []string
	if cmd.TravelerIdentifier == "" {
		missing = append(missing, "travelerId")
	}
	if cmd.ParticipantsNum <= 0 {
		missing = append(missing, "participantsNum")
	}
	if cmd.Style == "" {
		missing = append(missing, "style")
	}
	if cmd.Activity == "" {
		missing = append(missing, "activity")
	}
	if cmd.GroupType == "" {
		missing = append(missing, "groupType")
	}
	canonical, ok := NormalizeTripDate(cmd.PreferredDateRaw, s.loc)
	if !ok {
		missing = append(missing, "trip_date")
	}
	if cmd.Region == "" {
		missing = append(missing, "region")
	}
	if cmd.TripAddress == "" {
		missing = append(missing, "trip_address")
	}
	if len(missing) > 0 {
		return time.Time{}, validationError(missing)
	}

	tripAt, err := ParseTripDate(canonical, s.loc)
	if err != nil {
		return time.Time{}, validationError([]string{"trip_date"})
	}
	if !tripAt.After(s.now()) {
		return time.Time{}, ErrPastDate
	}
	return tripAt, nil
}

func trimCommand(cmd SurpriseCommand) SurpriseCommand {
	cmd.TravelerIdentifier = strings.TrimSpace(cmd.TravelerIdentifier)
	cmd.Style = strings.TrimSpace(cmd.Style)
	cmd.Activity = strings.TrimSpace(cmd.Activity)
	cmd.GroupType = strings.TrimSpace(cmd.GroupType)
	cmd.Region = strings.TrimSpace(cmd.Region)
	cmd.TripAddress = strings.TrimSpace(cmd.TripAddress)
	return cmd
}

// Get returns an order to its traveler, its driver or an admin. Travelers never see the
// destination name.
func (s *Service) Get(ctx context.Context, q GetQuery) (*Order, error) {
	o, err := s.repo.Get(ctx, q.OrderID)
	if err != nil {
		return nil, err
	}
	switch {
	case q.ActorRole == user.RoleAdmin:
	case q.ActorRole == user.RoleDriver && o.DriverID == q.ActorID:
	case o.TravelerID == q.ActorID:
		o.TripName = ""
	default:
		return nil, ErrForbidden
	}
	s.anchor(o)
	return o, nil
}

func (s *Service) ListDeliveries(ctx context.Context, driverID types.ID) ([]Assignment, error) {
	if driverID == 0 {
		return nil, ErrBadRequest
	}
	list, err := s.repo.ListByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		s.anchor(&list[i].Order)
	}
	return list, nil
}

// UpdateStatus moves a pending order to a final status. Drivers may only touch their
// own orders; admins may touch any.
func (s *Service) UpdateStatus(ctx context.Context, cmd StatusCommand) error {
	if cmd.OrderID == 0 || !cmd.To.Valid() {
		return ErrBadRequest
	}
	o, err := s.repo.Get(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	switch cmd.ActorRole {
	case user.RoleAdmin:
	case user.RoleDriver:
		if o.DriverID != cmd.ActorID {
			return ErrForbidden
		}
	default:
		return ErrForbidden
	}
	if !CanTransition(o.Status, cmd.To) {
		return ErrInvalidState
	}
	ok, err := s.repo.UpdateStatus(ctx, o.ID, o.Status, cmd.To)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	s.log.Info("order status updated",
		logger.Int64("order_id", int64(o.ID)),
		logger.String("from", string(o.Status)),
		logger.String("to", string(cmd.To)),
		logger.String("actor_role", string(cmd.ActorRole)),
	)
	return nil
}

func (s *Service) anchor(o *Order) {
	o.TripAt = wallClock(o.TripAt, s.loc)
	o.OrderedAt = wallClock(o.OrderedAt, s.loc)
}
