package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/loan-calculator/internal/config"
	"github.com/iwvelando/loan-calculator/internal/logging"
	"github.com/iwvelando/loan-calculator/internal/report"
	"github.com/iwvelando/loan-calculator/internal/server"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	addressFlag := flag.String("address", "", "listen address override")
	maxBodySizeFlag := flag.String("max-body-size", "", "request body limit override, e.g. 64K or 1M")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	serverConf, err := server.LoadConfig(*serverConfigLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *serverConfigLocation, err)
		os.Exit(1)
	}
	if err := applyOverrides(serverConf, *addressFlag, *maxBodySizeFlag); err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"invalid server flag\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(serverConf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	conf, err := loadPolicyConfiguration(serverConf.ConfigFile)
	if err != nil {
		logger.Fatal("failed to load configuration",
			zap.String("op", "main"),
			zap.String("path", serverConf.ConfigFile),
			zap.Error(err),
		)
	}
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	calc, err := conf.NewCalculator()
	if err != nil {
		logger.Fatal("invalid lending policy",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	exporter := report.NewPDFExporter(logger,
		report.WithInstitution(conf.Report.Institution),
		report.WithSchedule(conf.Report.IncludeSchedule),
	)

	srv := &http.Server{
		Addr: serverConf.Address,
		Handler: server.NewHandler(logger, calc, exporter, server.Options{
			MaxBodySize: serverConf.BodySizeBytes(),
			Version:     version,
			RateLimit:   serverConf.RateLimit,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("op", "main"),
			zap.String("address", srv.Addr),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Fatal("server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	case <-ctx.Done():
		logger.Info("shutting down server",
			zap.String("op", "main"),
		)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during server shutdown",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// applyOverrides applies command line overrides on top of the server file.
// Empty values leave the file settings in place.
func applyOverrides(conf *server.Config, address, maxBodySize string) error {
	if address != "" {
		conf.Address = address
	}
	if maxBodySize != "" {
		size, err := server.ParseSize(maxBodySize)
		if err != nil {
			return fmt.Errorf("invalid -max-body-size: %w", err)
		}
		if size <= 0 {
			return fmt.Errorf("invalid -max-body-size %q: must be positive", maxBodySize)
		}
		conf.SetBodySizeBytes(size)
	}
	return nil
}

// loadPolicyConfiguration reads the lending policy file. An empty or missing
// path falls back to built-in defaults.
func loadPolicyConfiguration(path string) (*config.Configuration, error) {
	if path == "" {
		return config.Default(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return config.LoadConfiguration(path)
}
