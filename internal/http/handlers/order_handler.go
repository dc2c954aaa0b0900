// README: Order handlers: surprise booking with payment capture, lookup, status updates.
package handlers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"travelbook/internal/http/middleware"
	"travelbook/internal/logger"
	"travelbook/internal/modules/order"
	"travelbook/internal/modules/payment"
	"travelbook/internal/modules/user"
	"travelbook/internal/types"
)

type OrderService interface {
	Check(cmd order.SurpriseCommand) error
	CreateSurprise(ctx context.Context, cmd order.SurpriseCommand) (*order.Confirmation, error)
	Get(ctx context.Context, q order.GetQuery) (*order.Order, error)
	UpdateStatus(ctx context.Context, cmd order.StatusCommand) error
	ListDeliveries(ctx context.Context, driverID types.ID) ([]order.Assignment, error)
}

type PaymentService interface {
	Capture(ctx context.Context, paypalOrderID string, quote types.Money) (*payment.Capture, error)
	Bind(ctx context.Context, paypalOrderID string, orderID types.ID) error
}

type Quoter interface {
	Quote(participants int) types.Money
}

type Notifier interface {
	OrderCreated(ctx context.Context, c *order.Confirmation) error
}

type OrderHandlerDeps struct {
	Orders   OrderService
	Payments PaymentService // nil disables payment capture
	Pricing  Quoter
	Notifier Notifier // nil disables notifications
	Log      logger.ILogger
}

type OrderHandler struct {
	orders   OrderService
	payments PaymentService
	pricing  Quoter
	notifier Notifier
	log      logger.ILogger
}

func NewOrderHandler(deps OrderHandlerDeps) *OrderHandler {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &OrderHandler{
		orders:   deps.Orders,
		payments: deps.Payments,
		pricing:  deps.Pricing,
		notifier: deps.Notifier,
		log:      log,
	}
}

// surpriseReq lists every accepted spelling of each field. Only toCommand reads it.
type surpriseReq struct {
	TravelerID      any `json:"travelerId"`
	UserName        any `json:"userName"`
	IDNumber        any `json:"idNumber"`
	ParticipantsNum any `json:"participantsNum"`
	Participants    any `json:"participants"`
	Preferences     struct {
		Style         string `json:"style"`
		Activity      string `json:"activity"`
		GroupType     string `json:"groupType"`
		PreferredDate string `json:"preferredDate"`
	} `json:"preferences"`
	PreferredDate string `json:"preferredDate"`
	TripDatetime  string `json:"trip_datetime"`
	TripDate      string `json:"trip_date"`
	Region        string `json:"region"`
	TripAddress   string `json:"trip_address"`
	TripAddress2  string `json:"tripAddress"`
	Address       string `json:"address"`
	PayPalOrderID string `json:"paypalOrderId"`
}

// toCommand maps the aliases onto the canonical request. callerUID is used when no
// traveler identifier was sent.
func (r surpriseReq) toCommand(callerUID string) order.SurpriseCommand {
	return order.SurpriseCommand{
		TravelerIdentifier: firstNonEmpty(anyString(r.TravelerID), anyString(r.UserName), anyString(r.IDNumber), callerUID),
		ParticipantsNum:    firstPositive(r.ParticipantsNum, r.Participants),
		Style:              r.Preferences.Style,
		Activity:           r.Preferences.Activity,
		GroupType:          r.Preferences.GroupType,
		PreferredDateRaw:   firstNonEmpty(r.Preferences.PreferredDate, r.PreferredDate, r.TripDatetime, r.TripDate),
		Region:             r.Region,
		TripAddress:        firstNonEmpty(r.TripAddress, r.TripAddress2, r.Address),
	}
}

type surpriseResp struct {
	Success bool `json:"success"`
	*order.Confirmation
}

// CreateSurprise books a surprise trip. With payments enabled the PayPal order is
// captured first and the booking only runs after the capture succeeds.
func (h *OrderHandler) CreateSurprise(c *gin.Context) {
	var req surpriseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	ctx := c.Request.Context()
	cmd := req.toCommand(middleware.CallerUID(c))

	if err := h.orders.Check(cmd); err != nil {
		writeOrderError(c, err)
		return
	}

	paypalID := strings.TrimSpace(req.PayPalOrderID)
	if h.payments != nil {
		if _, err := h.payments.Capture(ctx, paypalID, h.pricing.Quote(cmd.ParticipantsNum)); err != nil {
			writePaymentError(c, err)
			return
		}
	}

	conf, err := h.orders.CreateSurprise(ctx, cmd)
	if err != nil {
		if h.payments != nil {
			h.log.Error("booking failed after payment capture; refund needed",
				logger.String("paypal_order_id", paypalID),
				logger.String("request_id", middleware.RequestIDFrom(c)),
				logger.Error(err),
			)
		}
		writeOrderError(c, err)
		return
	}

	if h.payments != nil {
		if err := h.payments.Bind(ctx, paypalID, conf.OrderID); err != nil {
			h.log.Error("captured payment not bound to order",
				logger.String("paypal_order_id", paypalID),
				logger.Int64("order_id", int64(conf.OrderID)),
				logger.String("request_id", middleware.RequestIDFrom(c)),
				logger.Error(err),
			)
		}
	}
	if h.notifier != nil {
		if err := h.notifier.OrderCreated(ctx, conf); err != nil {
			h.log.Warning("order notification not sent", logger.Int64("order_id", int64(conf.OrderID)), logger.Error(err))
		}
	}
	writeJSON(c, http.StatusCreated, surpriseResp{Success: true, Confirmation: conf})
}

type orderResp struct {
	ID           int64  `json:"id"`
	OrderedAt    string `json:"ordered_at"`
	TripDate     string `json:"trip_date"`
	Participants int    `json:"participants"`
	DriverID     int64  `json:"driver_id"`
	TravelerID   int64  `json:"traveler_id"`
	TripName     string `json:"trip_name,omitempty"`
	TripHidden   bool   `json:"trip_hidden"`
	TripAddress  string `json:"trip_address"`
	Status       string `json:"status"`
}

func toOrderResp(o *order.Order) orderResp {
	return orderResp{
		ID:           int64(o.ID),
		OrderedAt:    order.FormatTripDate(o.OrderedAt),
		TripDate:     order.FormatTripDate(o.TripAt),
		Participants: o.Participants,
		DriverID:     int64(o.DriverID),
		TravelerID:   int64(o.TravelerID),
		TripName:     o.TripName,
		TripHidden:   o.TripName == "",
		TripAddress:  o.TripAddress,
		Status:       string(o.Status),
	}
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	o, err := h.orders.Get(c.Request.Context(), order.GetQuery{
		OrderID:   id,
		ActorID:   middleware.CallerID(c),
		ActorRole: user.Role(middleware.CallerRole(c)),
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toOrderResp(o))
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.orders.UpdateStatus(c.Request.Context(), order.StatusCommand{
		OrderID:   id,
		ActorID:   middleware.CallerID(c),
		ActorRole: user.Role(middleware.CallerRole(c)),
		To:        order.Status(strings.ToLower(strings.TrimSpace(req.Status))),
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"id": int64(id), "status": strings.ToLower(strings.TrimSpace(req.Status))})
}

func anyString(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// firstPositive returns the first value that is a positive whole number, or 0.
func firstPositive(vals ...any) int {
	for _, v := range vals {
		if n := wholeNumber(v); n > 0 {
			return n
		}
	}
	return 0
}

// wholeNumber accepts JSON numbers without a fraction and base-10 digit strings.
// Fractions, bools and prefixed forms like "0x10" yield 0.
func wholeNumber(v any) int {
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) || math.Abs(x) > math.MaxInt32 {
			return 0
		}
		return int(x)
	case json.Number:
		n, err := strconv.Atoi(x.String())
		if err != nil {
			return 0
		}
		return n
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}
