// README: Driver dashboard handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelbook/internal/http/middleware"
)

type DriverHandler struct {
	orders OrderService
}

func NewDriverHandler(svc OrderService) *DriverHandler {
	return &DriverHandler{orders: svc}
}

type deliveryResp struct {
	orderResp
	TravelerPhone string `json:"traveler_phone"`
	PickupAddress string `json:"pickup_address"`
}

// ListDeliveries returns the orders assigned to the calling driver.
func (h *DriverHandler) ListDeliveries(c *gin.Context) {
	list, err := h.orders.ListDeliveries(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	out := make([]deliveryResp, 0, len(list))
	for i := range list {
		a := list[i]
		out = append(out, deliveryResp{
			orderResp:     toOrderResp(&a.Order),
			TravelerPhone: a.Delivery.TravelerPhone,
			PickupAddress: a.Delivery.PickupAddress,
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"deliveries": out})
}
