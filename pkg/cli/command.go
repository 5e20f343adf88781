package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/urmzd/rgbprofile/pkg/openrgb"
)

// Environment variables that override the --host and --port defaults.
const (
	EnvHost = "OPENRGB_HOST"
	EnvPort = "OPENRGB_PORT"
)

// Execute parses args and runs the selected action, returning the process
// exit code. Usage errors are reported before any connection is attempted.
func (a *App) Execute(ctx context.Context, args []string) int {
	code := ExitOK
	cmd := a.newCommand(&code)
	cmd.SetArgs(args)
	cmd.SetOut(a.Stdout)
	cmd.SetErr(a.Stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		return ExitFailure
	}
	return code
}

func (a *App) newCommand(code *int) *cobra.Command {
	var (
		opts  Options
		debug bool
	)

	cmd := &cobra.Command{
		Use:   "rgbprofile",
		Short: "OpenRGB Profile Manager",
		Long: `Connects to an OpenRGB SDK server and loads, saves, deletes or lists
lighting profiles, or lists the DRAM RGB devices it controls.`,
		Args: cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.WarnLevel
			if debug {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := actionFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			if err := CheckPort(opts.Port); err != nil {
				return err
			}
			opts.Action = action

			cmd.SilenceUsage = true
			*code = a.Run(cmd.Context(), opts)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Host, "host", HostFromEnv(), "OpenRGB server host")
	flags.IntVar(&opts.Port, "port", PortFromEnv(), "OpenRGB server port")
	flags.StringVar(&opts.ClientName, "client-name", openrgb.DefaultClientName, "client name announced to the server")
	flags.BoolVar(&debug, "debug", false, "log protocol traffic to stderr")

	flags.String(flagLoad, "", "load the profile `PROFILE_NAME`")
	flags.String(flagSave, "", "save current state as profile `PROFILE_NAME`")
	flags.String(flagDelete, "", "delete the profile `PROFILE_NAME`")
	flags.Bool(flagListProfiles, false, "list available profiles")
	flags.Bool(flagListDevices, false, "list connected RGB devices")

	cmd.MarkFlagsMutuallyExclusive(actionFlags...)
	cmd.MarkFlagsOneRequired(actionFlags...)

	return cmd
}

// HostFromEnv returns $OPENRGB_HOST or the default host.
func HostFromEnv() string {
	if h := os.Getenv(EnvHost); h != "" {
		return h
	}
	return openrgb.DefaultHost
}

// PortFromEnv returns $OPENRGB_PORT or the default port. A value that is not
// a number is logged and ignored.
func PortFromEnv() int {
	raw := os.Getenv(EnvPort)
	if raw == "" {
		return openrgb.DefaultPort
	}
	port, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str(EnvPort, raw).Msg("Ignoring invalid port from environment")
		return openrgb.DefaultPort
	}
	return port
}

// CheckPort rejects ports outside 1-65535.
func CheckPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("--port must be between 1 and 65535, got %d", port)
	}
	return nil
}
