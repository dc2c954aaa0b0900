// README: Common value objects shared across modules (ids, money).
package types

import (
	"fmt"
	"strconv"
)

// ID is a surrogate key as issued by Postgres bigserial columns.
type ID int64

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Money is an amount in minor units (cents / agorot).
type Money struct {
	Amount   int64
	Currency string
}

// Covers reports whether m pays for at least want in the same currency.
func (m Money) Covers(want Money) bool {
	return m.Currency == want.Currency && m.Amount >= want.Amount
}

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.Amount/100, m.Amount%100, m.Currency)
}
