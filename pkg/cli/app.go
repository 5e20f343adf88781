package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/rgbprofile/pkg/device"
	"github.com/urmzd/rgbprofile/pkg/openrgb"
)

// Exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
)

// DialFunc opens a session with the daemon at addr.
type DialFunc func(ctx context.Context, addr, clientName string) (device.Controller, error)

// DialOpenRGB is the DialFunc used outside tests.
func DialOpenRGB(ctx context.Context, addr, clientName string) (device.Controller, error) {
	return openrgb.Dial(ctx, addr, openrgb.WithClientName(clientName))
}

// Options is everything one run needs.
type Options struct {
	Host       string
	Port       int
	ClientName string
	Action     Action
}

// Address returns host:port.
func (o Options) Address() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// App runs the profile manager against an RGB daemon.
type App struct {
	Stdout io.Writer
	Stderr io.Writer
	Dial   DialFunc
}

// NewApp creates an App that dials real OpenRGB servers.
func NewApp(stdout, stderr io.Writer) *App {
	return &App{
		Stdout: stdout,
		Stderr: stderr,
		Dial:   DialOpenRGB,
	}
}

// Run connects, performs opts.Action and disconnects, returning the process
// exit code. Cancelling ctx (an interrupt) closes the session, which unblocks
// any in-flight call, and yields ExitFailure.
func (a *App) Run(ctx context.Context, opts Options) int {
	addr := opts.Address()
	fmt.Fprintf(a.Stdout, "Connecting to OpenRGB server at %s...\n", addr)

	ctrl, err := a.Dial(ctx, addr, opts.ClientName)
	if err != nil {
		fmt.Fprintf(a.Stderr, "Failed to connect to OpenRGB server: %v\n", err)
		return ExitFailure
	}
	defer func() {
		if err := ctrl.Close(); err != nil {
			log.Debug().Err(err).Msg("Close failed")
		}
	}()
	fmt.Fprintln(a.Stdout, "Successfully connected to OpenRGB server")

	stdout := &gatedWriter{w: a.Stdout}
	stderr := &gatedWriter{w: a.Stderr}
	done := make(chan bool, 1)
	go func() {
		d := &dispatcher{ctrl: ctrl, stdout: stdout, stderr: stderr}
		done <- d.dispatch(ctx, opts.Action)
	}()

	select {
	case ok := <-done:
		if ok {
			return ExitOK
		}
		return ExitFailure
	case <-ctx.Done():
		stdout.mute()
		stderr.mute()
		_ = ctrl.Close()
		<-done
		fmt.Fprintln(a.Stdout, "\nOperation cancelled by user")
		return ExitFailure
	}
}

// gatedWriter forwards writes until muted. The dispatch goroutine writes
// through it so nothing it prints after an interrupt reaches the user.
type gatedWriter struct {
	mu    sync.Mutex
	w     io.Writer
	muted bool
}

func (g *gatedWriter) Write(p []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.muted {
		return len(p), nil
	}
	return g.w.Write(p)
}

func (g *gatedWriter) mute() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.muted = true
}
