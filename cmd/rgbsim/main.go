package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/rgbprofile/pkg/api"
	"github.com/urmzd/rgbprofile/pkg/db"
	"github.com/urmzd/rgbprofile/pkg/device"
	"github.com/urmzd/rgbprofile/pkg/device/schema"
	"github.com/urmzd/rgbprofile/pkg/sim"
)

var _ sim.ProfileStore = (*db.ProfileStore)(nil)

func main() {
	// Configure logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Parse flags
	dbPath := flag.String("db", "", "Path to database file (default: ~/.config/rgbsim/rgbsim.db)")
	fixturePath := flag.String("fixture", "", "Path to a device fixture JSON file (default: built-in devices)")
	listenAddr := flag.String("listen", "", "SDK listen address (overrides the stored config)")
	adminAddr := flag.String("admin", "", "Admin API listen address (overrides the stored config)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx := context.Background()

	// Open database
	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	log.Info().Str("path", database.Path()).Msg("Database opened")

	// Run migrations
	if err := database.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Bootstrap if needed (first run)
	needsBootstrap, err := database.NeedsBootstrap(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to check bootstrap status")
	}
	if needsBootstrap {
		log.Info().Msg("First run detected, bootstrapping database...")
		if err := database.Bootstrap(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to bootstrap database")
		}
	}

	// Load configuration
	cfg, err := database.ActiveConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	sdkAddr := cfg.SDKAddress()
	if *listenAddr != "" {
		sdkAddr = *listenAddr
	}
	httpAddr := cfg.AdminAddress()
	if *adminAddr != "" {
		httpAddr = *adminAddr
	}

	// Devices come from the fixture when given
	devices := sim.DefaultDevices()
	if *fixturePath != "" {
		devices, err = sim.LoadFixture(*fixturePath, schema.NewValidator())
		if err != nil {
			log.Fatal().Err(err).Str("fixture", *fixturePath).Msg("Failed to load device fixture")
		}
	}
	logDevices(devices)

	server := sim.NewServer(database.Profiles(), devices)
	if err := server.Listen(sdkAddr); err != nil {
		log.Fatal().Err(err).Msg("Failed to start SDK server")
	}

	router := api.NewRouter(server)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("address", httpAddr).Msg("Starting admin API")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Admin API failed")
		}
	}()

	// Handle shutdown gracefully
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		_ = server.Close()
	}()

	if err := server.Serve(); err != nil {
		log.Fatal().Err(err).Msg("SDK server failed")
	}
}

func logDevices(devices []device.Device) {
	for i, d := range devices {
		log.Info().
			Int("index", i).
			Str("name", d.Name).
			Stringer("type", d.Type).
			Int("modes", len(d.Modes)).
			Int("leds", len(d.LEDs)).
			Msg("Device")
	}
}
