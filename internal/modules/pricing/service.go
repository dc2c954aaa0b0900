// README: Pricing service quotes what a surprise trip must be paid before booking.
package pricing

import "travelbook/internal/types"

type Service struct {
	rate Rate
}

func NewService(rate Rate) *Service {
	return &Service{rate: rate}
}

// Quote returns the amount owed for participants people. Non-positive counts quote zero;
// the ordering flow rejects them on its own.
func (s *Service) Quote(participants int) types.Money {
	if participants <= 0 {
		return types.Money{Amount: 0, Currency: s.rate.Currency}
	}
	return types.Money{Amount: s.rate.PerParticipant * int64(participants), Currency: s.rate.Currency}
}

func (s *Service) Rate() Rate { return s.rate }
