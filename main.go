package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/snehendu098/ghost/galasigner/pkg/galachain"
	"github.com/snehendu098/ghost/galasigner/pkg/log"
)

func main() {
	config, err := LoadConfig()
	if err != nil {
		log.NewZapLogger(log.Config{}).Fatal("failed to load configuration", "error", err)
	}
	logger := log.NewZapLogger(config.Log).WithName("galasigner")
	config.LogSummary(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 {
		// If a CLI command is provided, run it and exit
		if err := runCli(ctx, logger, config, os.Args[1:], os.Stdin, os.Stdout); err != nil {
			logger.Fatal("CLI command failed", "command", os.Args[1], "error", err)
		}
		return
	}

	metrics := NewMetrics()
	service, key := newSigningService(config.PrivateKeyHex, logger)
	metrics.SetSignerReady(key != nil)

	resolver := galachain.NewClient(config.PublicKey, nil, logger)

	gin.SetMode(gin.ReleaseMode)
	server := NewServer(service, resolver, metrics, logger, config.BodyLimit)

	apiServer := &http.Server{
		Addr:              config.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Set up a separate mux for metrics
	metricsMux := http.NewServeMux()
	metricsMux.Handle(config.MetricsEndpoint, promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              config.MetricsAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Prometheus metrics available", "listenAddr", config.MetricsAddr, "endpoint", config.MetricsEndpoint)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failure", "error", err)
		}
	}()

	go func() {
		logger.Info("Gala signer running", "url", "http://"+config.ListenAddr)
		if key == nil {
			logger.Warn("no usable " + privateKeyEnv + " set: /sign will fail until it is configured, /pubkey and /health still work")
		}
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("API server failure", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down metrics server", "error", err)
	}
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down API server", "error", err)
	}

	logger.Info("shutdown complete")
}
