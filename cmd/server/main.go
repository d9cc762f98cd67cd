package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/matink112/TradeEngine/api"
	"github.com/matink112/TradeEngine/config"
	"github.com/matink112/TradeEngine/engine"
	"github.com/matink112/TradeEngine/logging"
	"github.com/matink112/TradeEngine/ratelimit"
	"github.com/matink112/TradeEngine/tradelog"
)

func main() {
	cfg := config.Load()

	if cfg.LogLevel != "" {
		_ = os.Setenv("LOG_LEVEL", cfg.LogLevel)
	}
	log := logging.InitLogger()

	tradeLog := tradelog.NewLog()
	book := engine.NewOrderBook(cfg.Market, tradeLog)

	limiter := ratelimit.NewLimiter(ratelimit.Config{
		PerSecond: cfg.RateLimitPerSec,
		Burst:     cfg.RateLimitBurst,
		SkipPaths: []string{"/healthz", "/metrics", "/stream"},
	})

	router := api.NewRouter(cfg.Market, book, tradeLog, limiter)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logging.LogServerStarted(cfg.Port, cfg.Market)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithField("error", err.Error()).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithField("error", err.Error()).Error("Graceful shutdown failed")
	}

	log.WithFields(logrus.Fields{
		"event": logging.EventServerStopped,
	}).Info("Trade engine server stopped")
}
