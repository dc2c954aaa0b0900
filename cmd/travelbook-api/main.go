// README: Entry point; loads config, wires services, starts the HTTP server and the notification consumer.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"

	"travelbook/internal/auth"
	"travelbook/internal/config"
	httptransport "travelbook/internal/http"
	"travelbook/internal/http/handlers"
	"travelbook/internal/infra"
	"travelbook/internal/logger"
	"travelbook/internal/modules/matching"
	"travelbook/internal/modules/notify"
	"travelbook/internal/modules/order"
	"travelbook/internal/modules/payment"
	"travelbook/internal/modules/pricing"
	"travelbook/internal/modules/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg := logger.New(cfg.ServiceName, cfg.LogLevel)
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		lg.Error("invalid timezone", logger.String("zone", cfg.Time.Zone), logger.Error(err))
		os.Exit(1)
	}

	if err := infra.Migrate(cfg.DB.DSN, cfg.DB.MigrationsPath); err != nil {
		lg.Error("migrations failed", logger.Error(err))
		os.Exit(1)
	}
	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		lg.Error("postgres unavailable", logger.Error(err))
		os.Exit(1)
	}
	defer dbPool.Close()

	tokens := auth.NewJWT(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	userSvc := user.NewService(user.NewStore(dbPool), tokens, lg.With(logger.String("module", "user")))
	orderSvc := order.NewService(order.NewStore(dbPool), matching.DefaultRand, loc, lg.With(logger.String("module", "order")))
	pricingSvc := pricing.NewService(pricing.Rate{PerParticipant: cfg.Pricing.PerParticipant, Currency: cfg.Pricing.Currency})

	var payments handlers.PaymentService
	if cfg.PayPal.Enabled() {
		redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			lg.Error("redis unavailable", logger.Error(err))
			os.Exit(1)
		}
		defer redisClient.Close()
		payments = payment.NewService(
			payment.NewPayPal(cfg.PayPal.BaseURL, cfg.PayPal.ClientID, cfg.PayPal.Secret),
			payment.NewRedisLedger(redisClient),
			lg.With(logger.String("module", "payment")),
		)
	} else {
		lg.Warning("paypal not configured; orders are created without payment capture")
	}

	var notifier handlers.Notifier
	if cfg.RabbitMQ.URL != "" {
		mq, err := infra.DialRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			lg.Error("rabbitmq unavailable", logger.Error(err))
			os.Exit(1)
		}
		defer mq.Close()
		notifier = notify.NewPublisher(mq, lg.With(logger.String("module", "notify")))

		mailer := notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		consumer := notify.NewConsumer(mq, mailer, lg.With(logger.String("module", "notify")))
		go func() {
			if err := consumer.Run(ctx); err != nil {
				lg.Error("notification consumer stopped", logger.Error(err))
			}
		}()
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httptransport.NewRouter(httptransport.RouterDeps{
		Accounts:    userSvc,
		Orders:      orderSvc,
		Payments:    payments,
		Pricing:     pricingSvc,
		Notifier:    notifier,
		Verifier:    tokens,
		Log:         lg,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})

	server := httptransport.NewServer(cfg.HTTP.Addr, router, lg)
	if err := server.Run(ctx); err != nil {
		lg.Error("http server failed", logger.Error(err))
		os.Exit(1)
	}
}
