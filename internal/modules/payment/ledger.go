// README: Redis ledger guaranteeing one booking per captured PayPal order.
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"travelbook/internal/types"
)

const (
	ledgerPrefix = "payment:paypal:"
	claimPending = "pending"
	ledgerTTL    = 90 * 24 * time.Hour
)

type RedisLedger struct {
	rdb *redis.Client
}

func NewRedisLedger(rdb *redis.Client) *RedisLedger {
	return &RedisLedger{rdb: rdb}
}

// Claim marks the PayPal order as in use. It reports false when another request
// already claimed it.
func (l *RedisLedger) Claim(ctx context.Context, paypalOrderID string) (bool, error) {
	return l.rdb.SetNX(ctx, ledgerPrefix+paypalOrderID, claimPending, ledgerTTL).Result()
}

func (l *RedisLedger) Release(ctx context.Context, paypalOrderID string) error {
	return l.rdb.Del(ctx, ledgerPrefix+paypalOrderID).Err()
}

// Bind records which booking the payment paid for.
func (l *RedisLedger) Bind(ctx context.Context, paypalOrderID string, orderID types.ID) error {
	return l.rdb.SetXX(ctx, ledgerPrefix+paypalOrderID, orderID.String(), ledgerTTL).Err()
}

// Lookup returns the stored value: "pending" or the bound order id.
func (l *RedisLedger) Lookup(ctx context.Context, paypalOrderID string) (string, error) {
	v, err := l.rdb.Get(ctx, ledgerPrefix+paypalOrderID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}
