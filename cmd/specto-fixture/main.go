package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spectolabs/specto/internal/common"
	"github.com/spectolabs/specto/internal/fixture"
)

var (
	port        = flag.Int("port", 4173, "Port to serve the fixture application on")
	portP       = flag.Int("p", 0, "Port (shorthand, overrides -port)")
	showVersion = flag.Bool("version", false, "Print version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Specto fixture version %s\n", common.GetVersion())
		os.Exit(0)
	}

	finalPort := *port
	if *portP != 0 {
		finalPort = *portP
	}

	logger := common.GetLogger()

	server := fixture.Start(finalPort)
	logger.Info().
		Str("url", fmt.Sprintf("http://localhost:%d/login", finalPort)).
		Msg("Fixture application ready - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Shutting down fixture server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Fixture server shutdown failed")
	}
}
