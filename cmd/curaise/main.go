package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	. "github.com/cornell-dti/curaise-sub000/internal"
)

func main() {
	//decimals at json as string
	//https://github.com/shopspring/decimal/issues/21
	decimal.MarshalJSONWithoutQuotes = true

	cfg := NewConfig()
	z, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	sugaredLogger := z.Sugar()

	repository, err := NewRepository(cfg.DatabaseURI, sugaredLogger)
	if err != nil {
		sugaredLogger.Fatal(err)
	}

	service := NewService(repository, cfg.AllowedSender, sugaredLogger)
	handlers := NewHandlers(service, cfg.InboundSigningKey, cfg.JWTSecret, sugaredLogger)

	app := fiber.New()
	app.Use(logger.New())

	api := app.Group("/api")

	api.Post("/email/parse", handlers.InboundEmail)

	fundraisers := api.Group("/fundraisers")
	fundraisers.Get("/:id/analytics", handlers.GetAnalytics)
	fundraisers.Get("/:id/orders", handlers.GetOrders)

	api.Post("/orders/:id/pickup", handlers.CompletePickup)

	go func() {
		if err := app.Listen(cfg.RunAddress); err != nil {
			sugaredLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugaredLogger.Info("Shutting down service...")
	_ = app.Shutdown()
}
