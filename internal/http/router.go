// README: HTTP router registration.
package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"travelbook/internal/auth"
	"travelbook/internal/http/handlers"
	"travelbook/internal/http/middleware"
	"travelbook/internal/logger"
)

type RouterDeps struct {
	Accounts    handlers.AccountService
	Orders      handlers.OrderService
	Payments    handlers.PaymentService
	Pricing     handlers.Quoter
	Notifier    handlers.Notifier
	Verifier    auth.TokenVerifier
	Log         logger.ILogger
	CORSOrigins []string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(deps.Log),
		middleware.Logging(deps.Log),
		middleware.Metrics(),
	)
	if len(deps.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
			AllowHeaders:     []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	authHandler := handlers.NewAuthHandler(deps.Accounts)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("", middleware.Auth(deps.Verifier))

	orderHandler := handlers.NewOrderHandler(handlers.OrderHandlerDeps{
		Orders:   deps.Orders,
		Payments: deps.Payments,
		Pricing:  deps.Pricing,
		Notifier: deps.Notifier,
		Log:      deps.Log,
	})
	secured.POST("/orders/surprise", orderHandler.CreateSurprise)
	secured.GET("/orders/:id", orderHandler.Get)
	secured.PATCH("/orders/:id/status", middleware.RequireRole("driver", "admin"), orderHandler.UpdateStatus)

	driverHandler := handlers.NewDriverHandler(deps.Orders)
	secured.GET("/driver/deliveries", middleware.RequireRole("driver"), driverHandler.ListDeliveries)

	return r
}
