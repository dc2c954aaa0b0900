// README: Payment capture records returned by the PayPal gateway.
package payment

import "travelbook/internal/types"

const StatusCompleted = "COMPLETED"

// Capture is the outcome of capturing one approved PayPal order.
type Capture struct {
	PayPalOrderID string
	CaptureID     string
	Status        string
	Amount        types.Money
}
