// Command booking-mcp-http serves the restaurant booking MCP tools over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"booking-mcp/internal/booking"
	"booking-mcp/internal/logging"
	"booking-mcp/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
	}

	logger := logging.New(os.Stdout, logging.Config{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	})
	cfg := server.Config{
		Port:              getEnv("PORT", "3000"),
		BookingAPIBaseURL: getEnv("BOOKING_API_BASE_URL", booking.DefaultBaseURL),
		BackendTimeout:    time.Duration(getEnvInt("BOOKING_API_TIMEOUT_SECONDS", 0)) * time.Second,
		Logger:            logger,
	}
	if cfg.BackendTimeout == 0 {
		logger.Info("BOOKING_API_TIMEOUT_SECONDS not set; backend requests have no timeout")
	}

	srv := server.New(cfg)
	httpSrv := &http.Server{Addr: ":" + cfg.Port, Handler: srv.Router()}

	certFile := os.Getenv("TLS_CERT_FILE")
	keyFile := os.Getenv("TLS_KEY_FILE")
	go func() {
		var err error
		if certFile != "" && keyFile != "" {
			logger.WithField("port", cfg.Port).Info("starting MCP HTTP server with TLS")
			err = httpSrv.ListenAndServeTLS(certFile, keyFile)
		} else {
			logger.WithField("port", cfg.Port).Info("starting MCP HTTP server")
			err = httpSrv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server error")
		}
	}()
	logger.WithField("backend", cfg.BookingAPIBaseURL).Info("forwarding tool calls to booking API")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("mcp transport shutdown")
	}
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("http server shutdown")
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
