package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/seatflow/seating-service/internal/booking"
	"github.com/seatflow/seating-service/internal/config"
	"github.com/seatflow/seating-service/internal/database"
	"github.com/seatflow/seating-service/internal/dispatch"
	"github.com/seatflow/seating-service/internal/handler"
	"github.com/seatflow/seating-service/internal/ledger"
	"github.com/seatflow/seating-service/internal/middleware"
	"github.com/seatflow/seating-service/internal/queue"
	"github.com/seatflow/seating-service/internal/repository"
	"github.com/seatflow/seating-service/internal/router"
	queue_publisher "github.com/seatflow/seating-service/internal/service"
	"github.com/seatflow/seating-service/internal/topic"
)

func main() {
	_ = godotenv.Load() // optional .env for local development
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	showings := repository.NewShowingRepo(db)
	lgr := ledger.New()

	routes := map[string]string{}
	bcfg := booking.Config{
		HoldTTL: cfg.HoldTTL,
		Events:  queue_publisher.BookedPublisher{},
	}
	if cfg.PaymentTopicURL != "" {
		routes[topic.PaymentRequestTopic] = cfg.PaymentTopicURL
		bcfg.PaymentTopic = topic.PaymentRequestTopic
	}
	if cfg.ResponseTopicURL != "" {
		routes[topic.SeatResponseTopic] = cfg.ResponseTopicURL
		bcfg.ResponseTopic = topic.SeatResponseTopic
	}
	var dispatcher booking.Dispatcher
	if len(routes) > 0 {
		dispatcher = dispatch.New(routes)
	}
	coord := booking.New(showings, lgr, dispatcher, bcfg)

	// Background work: expired hold sweep and asynchronous payment
	// confirmations from the broker.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go lgr.Sweep(ctx, showings, cfg.SweepInterval)
	go func() {
		if err := queue.StartPaymentConsumer(coord); err != nil {
			log.Printf("payment-consumer: %v", err)
		}
	}()

	e := echo.New()
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), config.NewRedisClient())
	router.RegisterRoutes(e, handler.NewTopicHandler(coord), handler.NewCatalogHandler(showings), cfg.JWTSecret, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
