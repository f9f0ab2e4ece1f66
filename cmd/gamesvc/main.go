package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	log "github.com/sirupsen/logrus"
	config "github.com/teamwar/battle-services/configs"
	"github.com/teamwar/battle-services/internal/gamesvc/archive"
	"github.com/teamwar/battle-services/internal/gamesvc/broker"
	"github.com/teamwar/battle-services/internal/gamesvc/cache"
	"github.com/teamwar/battle-services/internal/gamesvc/db"
	handlers "github.com/teamwar/battle-services/internal/gamesvc/handlers"
	"github.com/teamwar/battle-services/internal/gamesvc/service"
	"github.com/teamwar/battle-services/internal/gamesvc/store"
	nats "github.com/teamwar/battle-services/internal/nats"
)

const SERVICE_NAME = "game"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {

	// pg connection
	dbpool, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	ctx := context.Background()
	if err := db.Migrate(ctx, dbpool); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	gameStore := store.NewGameStore(dbpool)
	gamePlayerStore := store.NewGamePlayerStore(dbpool)
	balanceStore := store.NewBalanceStore(dbpool)

	// settlement archive; the service degrades to ledger-only without it
	arch, err := archive.Connect()
	if err != nil {
		log.Warnf("mongo archive unavailable, settlements will not be archived: %v", err)
		arch = nil
	} else {
		defer arch.Close(ctx)
		log.Printf("mongo archive connection established successfully")
	}

	// read-replica view cache
	if err := cache.ConnectRedis(); err != nil {
		log.Warnf("redis unavailable, views will be served from the registry only: %v", err)
	} else {
		log.Printf("redis connection established successfully")
	}

	gameService := service.NewGameService(dbpool, gameStore, gamePlayerStore, balanceStore, arch)
	if err := gameService.Hydrate(ctx); err != nil {
		log.Fatalf("Failed to hydrate game registry: %v", err)
	}

	// Connect to NATS
	n, err := nats.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// init peer message broker
	broker := broker.NewBroker(n.Conn, gameService)

	// subscribe to socket service
	topic := "socket.service"
	sub, err := broker.SubscribSocketService(topic)
	if err != nil {
		log.Errorf("Error: unable to subscribe to queue %v", err)
		os.Exit(0)
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(gameService)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("GAME_SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	sub.Unsubscribe()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
