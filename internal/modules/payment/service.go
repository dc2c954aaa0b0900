// README: Payment service captures the traveler's PayPal order before a booking is made.
package payment

import (
	"context"
	"errors"
	"fmt"

	"travelbook/internal/logger"
	"travelbook/internal/types"
)

var (
	ErrBadRequest   = errors.New("paypal order id required")
	ErrAlreadyUsed  = errors.New("payment already used for another booking")
	ErrNotCompleted = errors.New("payment not completed")
	ErrInsufficient = errors.New("captured amount does not cover the quote")
	ErrGateway      = errors.New("payment gateway unavailable")
)

type Gateway interface {
	Capture(ctx context.Context, paypalOrderID string) (*Capture, error)
}

type Ledger interface {
	Claim(ctx context.Context, paypalOrderID string) (bool, error)
	Release(ctx context.Context, paypalOrderID string) error
	Bind(ctx context.Context, paypalOrderID string, orderID types.ID) error
}

type Service struct {
	gateway Gateway
	ledger  Ledger
	log     logger.ILogger
}

func NewService(gateway Gateway, ledger Ledger, log logger.ILogger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{gateway: gateway, ledger: ledger, log: log}
}

// Capture claims the PayPal order, captures it and checks it covers quote. The claim is
// released when nothing was charged so the traveler can retry with the same order.
func (s *Service) Capture(ctx context.Context, paypalOrderID string, quote types.Money) (*Capture, error) {
	if paypalOrderID == "" {
		return nil, ErrBadRequest
	}
	ok, err := s.ledger.Claim(ctx, paypalOrderID)
	if err != nil {
		return nil, fmt.Errorf("claim payment: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyUsed
	}

	c, err := s.gateway.Capture(ctx, paypalOrderID)
	if err != nil {
		s.release(ctx, paypalOrderID)
		s.log.Warning("paypal capture failed", logger.String("paypal_order_id", paypalOrderID), logger.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if c.Status != StatusCompleted {
		s.release(ctx, paypalOrderID)
		return nil, fmt.Errorf("%w: status %s", ErrNotCompleted, c.Status)
	}
	if !c.Amount.Covers(quote) {
		s.log.Error("captured amount below quote; refund needed",
			logger.String("paypal_order_id", paypalOrderID),
			logger.String("captured", c.Amount.String()),
			logger.String("quote", quote.String()),
		)
		return nil, ErrInsufficient
	}
	s.log.Info("payment captured",
		logger.String("paypal_order_id", paypalOrderID),
		logger.String("capture_id", c.CaptureID),
		logger.String("amount", c.Amount.String()),
	)
	return c, nil
}

// Bind ties a captured payment to the booking it paid for.
func (s *Service) Bind(ctx context.Context, paypalOrderID string, orderID types.ID) error {
	if err := s.ledger.Bind(ctx, paypalOrderID, orderID); err != nil {
		s.log.Error("bind payment failed",
			logger.String("paypal_order_id", paypalOrderID),
			logger.Int64("order_id", int64(orderID)),
			logger.Error(err),
		)
		return err
	}
	return nil
}

func (s *Service) release(ctx context.Context, paypalOrderID string) {
	if err := s.ledger.Release(context.WithoutCancel(ctx), paypalOrderID); err != nil {
		s.log.Error("release payment claim failed", logger.String("paypal_order_id", paypalOrderID), logger.Error(err))
	}
}
