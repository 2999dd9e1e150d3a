// README: Entry point; loads config, wires services and the secret store, serves HTTP until signalled.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"wayfarer/internal/ai"
	"wayfarer/internal/chat"
	"wayfarer/internal/config"
	"wayfarer/internal/flights"
	httptransport "wayfarer/internal/http"
	"wayfarer/internal/infra"
	"wayfarer/internal/itinerary"
	"wayfarer/internal/logging"
	"wayfarer/internal/maps"
	"wayfarer/internal/markdown"
	"wayfarer/internal/secrets"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}
	logging.Init(cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store secrets.Chain
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			logrus.WithError(err).Fatal("secret store init")
		}
		defer dbPool.Close()
		store = append(store, secrets.NewPostgresStore(dbPool))
	} else {
		logrus.Warn("WAYFARER_DB_DSN not set, credentials come from the environment only")
	}
	store = append(store, secrets.NewEnvStore(map[string]string{
		secrets.GeminiAPIKey: cfg.AI.FallbackGeminiKey,
	}))

	var sessions chat.Store
	if cfg.Redis.Addr != "" {
		redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			logrus.WithError(err).Fatal("session store init")
		}
		defer redisClient.Close()
		sessions = chat.NewRedisStore(redisClient, cfg.Chat.SessionTTL)
	} else {
		sessions = chat.NewMemoryStore(cfg.Chat.SessionTTL)
	}

	generator := ai.NewGeminiGenerator(cfg.AI.Model)
	flightClient := flights.NewClient(cfg.Flights.APIURL, cfg.Flights.Currency, cfg.Flights.MaxResults, nil)
	itinerarySvc := itinerary.NewService(store, generator, flightClient, cfg.Flights.Policy)
	chatSvc := chat.NewService(sessions, itinerarySvc, cfg.Chat.HistoryWindow)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Itinerary: itinerarySvc,
		Chat:      chatSvc,
		Places:    maps.NewPlacesService(store, 5),
		Renderer:  markdown.NewRenderer(),
		Currency:  cfg.Flights.Currency,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("http shutdown")
		}
	}()

	logrus.WithFields(logrus.Fields{
		"addr":          cfg.HTTP.Addr,
		"flight_policy": cfg.Flights.Policy,
		"model":         cfg.AI.Model,
	}).Info("wayfarer api listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Fatal("http server")
	}
}
