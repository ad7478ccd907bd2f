package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

var (
	serverURL = flag.String("server", "http://localhost:8080", "API server base URL")
	terminals = flag.Int("terminals", 3, "Number of concurrent POS terminals")
	interval  = flag.Duration("interval", 2*time.Second, "Delay between sales per terminal")
	maxLines  = flag.Int("max-lines", 5, "Maximum line items per sale")
	seed      = flag.Bool("seed", true, "Seed a demo product catalog before starting")
	duration  = flag.Duration("duration", 0, "Stop after this long (0 = run until interrupted)")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	// Setup logger
	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	config := &SimulatorConfig{
		ServerURL: *serverURL,
		Terminals: *terminals,
		Interval:  *interval,
		MaxLines:  *maxLines,
		Seed:      *seed,
	}

	sim := NewSimulator(config, logger)

	if err := sim.Start(); err != nil {
		logger.Fatal("Simulator failed to start", zap.Error(err))
	}

	logger.Info("Simulator running",
		zap.String("server", config.ServerURL),
		zap.Int("terminals", config.Terminals),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if *duration > 0 {
		select {
		case <-quit:
		case <-time.After(*duration):
		}
	} else {
		<-quit
	}

	sim.Stop()
	sim.Report()
}
