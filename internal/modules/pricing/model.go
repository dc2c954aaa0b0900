// README: Pricing rate for surprise trips.
package pricing

// Rate is the flat price of one participant, in minor units.
type Rate struct {
	PerParticipant int64
	Currency       string
}
