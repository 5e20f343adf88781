package main

import (
	"context"
	"flag"
	"net"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/rgbprofile/pkg/cli"
	"github.com/urmzd/rgbprofile/pkg/device"
	"github.com/urmzd/rgbprofile/pkg/device/schema"
	rgbmcp "github.com/urmzd/rgbprofile/pkg/mcp"
	"github.com/urmzd/rgbprofile/pkg/openrgb"
)

func main() {
	// Logging must go to stderr; stdout is the MCP transport
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Parse flags
	host := flag.String("host", cli.HostFromEnv(), "OpenRGB server host")
	port := flag.Int("port", cli.PortFromEnv(), "OpenRGB server port")
	clientName := flag.String("client-name", openrgb.DefaultClientName, "client name announced to the server")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := cli.CheckPort(*port); err != nil {
		log.Fatal().Err(err).Msg("Invalid port")
	}

	addr := net.JoinHostPort(*host, strconv.Itoa(*port))
	dial := func(ctx context.Context) (device.Controller, error) {
		return cli.DialOpenRGB(ctx, addr, *clientName)
	}

	mcpServer := rgbmcp.NewServer(dial, schema.NewValidator())

	log.Info().Str("openrgb", addr).Msg("Starting MCP server on stdio")

	if err := mcpServer.ServeStdio(); err != nil {
		log.Fatal().Err(err).Msg("MCP server failed")
	}
}
