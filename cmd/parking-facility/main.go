package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parking-facility/internal/facility"
	"parking-facility/internal/logging"
	"parking-facility/internal/server"
)

var (
	mode        = flag.String("mode", "cli", "Mode to run: cli, server, or both")
	port        = flag.String("port", "8080", "Port for HTTP server")
	defaultRate = flag.Float64("rate", 2.0, "Default fee rate in currency per minute")
	dev         = flag.Bool("dev", false, "Enable development (console) logging")
)

func main() {
	flag.Parse()

	logging.Init(*dev)
	log := logging.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider, err := facility.NewTelemetryProvider()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}

	instrumented, err := facility.NewInstrumentedFacility(facility.FirstFit{}, telemetryProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create facility")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch *mode {
	case "cli":
		runCLI(ctx, cancel, instrumented, telemetryProvider, sigChan)
	case "server":
		runServer(ctx, cancel, instrumented, telemetryProvider, sigChan)
	case "both":
		runBoth(ctx, cancel, instrumented, telemetryProvider, sigChan)
	default:
		log.Fatal().Str("mode", *mode).Msg("invalid mode, must be cli, server, or both")
	}
}

func runCLI(ctx context.Context, cancel context.CancelFunc, f *facility.InstrumentedFacility, telemetryProvider *facility.TelemetryProvider, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logging.Logger().Info().Msg("shutting down")
		cancel()
	}()

	shell := facility.NewShell(f, telemetryProvider, *defaultRate)
	shell.Run(ctx)

	shutdownTelemetry(telemetryProvider)
}

func runServer(ctx context.Context, cancel context.CancelFunc, f *facility.InstrumentedFacility, telemetryProvider *facility.TelemetryProvider, sigChan chan os.Signal) {
	srv := server.NewServer(*port, f, *defaultRate)

	go func() {
		<-sigChan
		logging.Logger().Info().Msg("received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Logger().Error().Err(err).Msg("server shutdown error")
		}

		cancel()
	}()

	if err := srv.Start(); err != nil && err != context.Canceled {
		logging.Logger().Error().Err(err).Msg("server error")
	}

	shutdownTelemetry(telemetryProvider)
}

func runBoth(ctx context.Context, cancel context.CancelFunc, f *facility.InstrumentedFacility, telemetryProvider *facility.TelemetryProvider, sigChan chan os.Signal) {
	srv := server.NewServer(*port, f, *defaultRate)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan bool, 1)
	go func() {
		shell := facility.NewShell(f, telemetryProvider, *defaultRate)
		shell.Run(ctx)
		cliDone <- true
	}()

	go func() {
		<-sigChan
		logging.Logger().Info().Msg("received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Logger().Error().Err(err).Msg("server shutdown error")
		}

		cancel()
	}()

	select {
	case err := <-serverDone:
		if err != nil && err != context.Canceled {
			logging.Logger().Error().Err(err).Msg("server error")
		}
	case <-cliDone:
		logging.Logger().Info().Msg("CLI exited")
	case <-ctx.Done():
		logging.Logger().Info().Msg("context cancelled")
	}

	shutdownTelemetry(telemetryProvider)
}

func shutdownTelemetry(telemetryProvider *facility.TelemetryProvider) {
	logging.Logger().Info().Msg("shutting down telemetry")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		logging.Logger().Error().Err(err).Msg("error shutting down telemetry")
	}
}
