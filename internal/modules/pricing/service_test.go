package pricing

import (
	"testing"

	"travelbook/internal/types"
)

func TestService_Quote(t *testing.T) {
	svc := NewService(Rate{PerParticipant: 25000, Currency: "ILS"})

	tests := []struct {
		name         string
		participants int
		want         types.Money
	}{
		{name: "single traveler", participants: 1, want: types.Money{Amount: 25000, Currency: "ILS"}},
		{name: "family of four", participants: 4, want: types.Money{Amount: 100000, Currency: "ILS"}},
		{name: "zero participants", participants: 0, want: types.Money{Amount: 0, Currency: "ILS"}},
		{name: "negative participants", participants: -3, want: types.Money{Amount: 0, Currency: "ILS"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.Quote(tt.participants); got != tt.want {
				t.Errorf("Quote(%d) = %v, want %v", tt.participants, got, tt.want)
			}
		})
	}
}

func TestMoneyCovers(t *testing.T) {
	quote := NewService(Rate{PerParticipant: 12050, Currency: "ILS"}).Quote(2)
	if quote.String() != "241.00 ILS" {
		t.Fatalf("quote = %s", quote)
	}
	if !(types.Money{Amount: 24100, Currency: "ILS"}).Covers(quote) {
		t.Error("exact amount must cover the quote")
	}
	if (types.Money{Amount: 24099, Currency: "ILS"}).Covers(quote) {
		t.Error("short amount must not cover the quote")
	}
	if (types.Money{Amount: 99999, Currency: "USD"}).Covers(quote) {
		t.Error("other currency must not cover the quote")
	}
}
