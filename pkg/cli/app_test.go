package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/urmzd/rgbprofile/pkg/device"
	"github.com/urmzd/rgbprofile/pkg/openrgb"
	"github.com/urmzd/rgbprofile/pkg/sim"
)

func startSim(t *testing.T, store sim.ProfileStore, opts ...sim.Option) *sim.Server {
	t.Helper()
	srv := sim.NewServer(store, sim.DefaultDevices(), opts...)
	if err := srv.Listen("127.0.0.1:0"); err != nil {
		t.Fatal(err)
	}
	go func() { _ = srv.Serve() }()
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

// simArgs points a run at srv.
func simArgs(srv *sim.Server, action ...string) []string {
	host, port, _ := strings.Cut(srv.Addr().String(), ":")
	return append([]string{"--host", host, "--port", port}, action...)
}

type result struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, ctx context.Context, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := NewApp(&stdout, &stderr).Execute(ctx, args)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestExecute_UsageErrorsNeverDial(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no action", nil},
		{"two actions", []string{"--load", "A", "--save", "B"}},
		{"action plus listing", []string{"--delete", "A", "--list-devices"}},
		{"two listings", []string{"--list-profiles", "--list-devices"}},
		{"empty profile name", []string{"--load", ""}},
		{"missing profile name", []string{"--save"}},
		{"listing switched off", []string{"--list-profiles=false"}},
		{"positional argument", []string{"--list-profiles", "extra"}},
		{"unknown flag", []string{"--frobnicate"}},
		{"port out of range", []string{"--list-profiles", "--port", "70000"}},
		{"port not a number", []string{"--list-profiles", "--port", "http"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dials atomic.Int32
			var stdout, stderr bytes.Buffer
			app := NewApp(&stdout, &stderr)
			app.Dial = func(ctx context.Context, addr, clientName string) (device.Controller, error) {
				dials.Add(1)
				return nil, errors.New("should not dial")
			}

			if code := app.Execute(context.Background(), tt.args); code != ExitFailure {
				t.Errorf("expected exit %d, got %d", ExitFailure, code)
			}
			if n := dials.Load(); n != 0 {
				t.Errorf("expected no connection attempt, got %d", n)
			}
			if stderr.Len() == 0 {
				t.Error("expected a usage message on stderr")
			}
			if strings.Contains(stdout.String(), "Connecting") {
				t.Errorf("unexpected connection output %q", stdout.String())
			}
		})
	}
}

func TestExecute_Help(t *testing.T) {
	res := execute(t, context.Background(), "--help")
	if res.code != ExitOK {
		t.Errorf("expected exit 0 for --help, got %d", res.code)
	}
	for _, flag := range []string{"--load", "--save", "--delete", "--list-profiles", "--list-devices", "--host", "--port"} {
		if !strings.Contains(res.stdout, flag) {
			t.Errorf("help output is missing %s", flag)
		}
	}
}

func TestExecute_ConnectionRefused(t *testing.T) {
	srv := startSim(t, sim.NewMemoryStore("Gaming"))
	args := simArgs(srv, "--list-profiles")
	_ = srv.Close()

	res := execute(t, context.Background(), args...)
	if res.code != ExitFailure {
		t.Errorf("expected exit 1, got %d", res.code)
	}
	if !strings.Contains(res.stderr, "Failed to connect to OpenRGB server") {
		t.Errorf("expected connection failure on stderr, got %q", res.stderr)
	}
	if strings.Contains(res.stdout, "Available profiles") {
		t.Error("no action should run without a connection")
	}
}

func TestExecute_ListProfilesEmpty(t *testing.T) {
	srv := startSim(t, sim.NewMemoryStore())

	res := execute(t, context.Background(), simArgs(srv, "--list-profiles")...)
	if res.code != ExitOK {
		t.Fatalf("expected exit 0, got %d (stderr %q)", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "No profiles found") {
		t.Errorf("unexpected output %q", res.stdout)
	}
}

func TestExecute_ListProfiles(t *testing.T) {
	srv := startSim(t, sim.NewMemoryStore("Gaming", "Quiet"))

	res := execute(t, context.Background(), simArgs(srv, "--list-profiles")...)
	if res.code != ExitOK {
		t.Fatalf("expected exit 0, got %d (stderr %q)", res.code, res.stderr)
	}
	want := "Successfully connected to OpenRGB server\n\nAvailable profiles:\n  0: Gaming\n  1: Quiet\n"
	if !strings.HasSuffix(res.stdout, want) {
		t.Errorf("expected output ending in %q, got %q", want, res.stdout)
	}
	if !strings.HasPrefix(res.stdout, "Connecting to OpenRGB server at 127.0.0.1:") {
		t.Errorf("unexpected connect line in %q", res.stdout)
	}
}

func TestExecute_ListProfilesUnsupportedStillSucceeds(t *testing.T) {
	srv := startSim(t, sim.NewMemoryStore("Gaming"), sim.WithProtocolVersion(1))

	res := execute(t, context.Background(), simArgs(srv, "--list-profiles")...)
	if res.code != ExitOK {
		t.Errorf("expected listing to exit 0, got %d", res.code)
	}
	if !strings.Contains(res.stderr, "Error listing profiles") {
		t.Errorf("expected listing error on stderr, got %q", res.stderr)
	}
}

func TestExecute_LoadUnknownProfile(t *testing.T) {
	srv := startSim(t, sim.NewMemoryStore("Gaming"))

	res := execute(t, context.Background(), simArgs(srv, "--load", "PROFILE_X")...)
	if res.code != ExitFailure {
		t.Errorf("expected exit 1, got %d", res.code)
	}
	if !strings.Contains(res.stdout, "Loading profile: PROFILE_X") {
		t.Errorf("expected loading line, got %q", res.stdout)
	}
	if !strings.Contains(res.stderr, "Error loading profile 'PROFILE_X'") {
		t.Errorf("expected error naming the profile, got %q", res.stderr)
	}
	if strings.Contains(res.stdout, "Successfully loaded") {
		t.Error("unexpected success line")
	}
}

func TestExecute_LoadProfile(t *testing.T) {
	srv := startSim(t, sim.NewMemoryStore("Gaming"))

	res := execute(t, context.Background(), simArgs(srv, "--load", "Gaming")...)
	if res.code != ExitOK {
		t.Fatalf("expected exit 0, got %d (stderr %q)", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "Successfully loaded profile: Gaming") {
		t.Errorf("unexpected output %q", res.stdout)
	}
}

func TestExecute_SaveThenListThenDelete(t *testing.T) {
	srv := startSim(t, sim.NewMemoryStore("Gaming"))
	ctx := context.Background()

	res := execute(t, ctx, simArgs(srv, "--save", "PROFILE_Y")...)
	if res.code != ExitOK {
		t.Fatalf("save: expected exit 0, got %d (stderr %q)", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "Successfully saved profile: PROFILE_Y") {
		t.Errorf("unexpected save output %q", res.stdout)
	}

	waitUntil(t, "profile saved", func() bool {
		names, _ := srv.Profiles(ctx)
		return len(names) == 2
	})
	res = execute(t, ctx, simArgs(srv, "--list-profiles")...)
	if !strings.Contains(res.stdout, "  1: PROFILE_Y") {
		t.Errorf("expected saved profile in a later listing, got %q", res.stdout)
	}

	res = execute(t, ctx, simArgs(srv, "--delete", "PROFILE_Y")...)
	if res.code != ExitOK {
		t.Fatalf("delete: expected exit 0, got %d (stderr %q)", res.code, res.stderr)
	}

	waitUntil(t, "profile deleted", func() bool {
		names, _ := srv.Profiles(ctx)
		return len(names) == 1
	})
	res = execute(t, ctx, simArgs(srv, "--list-profiles")...)
	if strings.Contains(res.stdout, "PROFILE_Y") {
		t.Errorf("expected deleted profile to be gone, got %q", res.stdout)
	}

	res = execute(t, ctx, simArgs(srv, "--delete", "PROFILE_Y")...)
	if res.code != ExitFailure || !strings.Contains(res.stderr, "Error deleting profile 'PROFILE_Y'") {
		t.Errorf("expected second delete to fail, got %d %q", res.code, res.stderr)
	}
}

func TestExecute_ListDevices(t *testing.T) {
	srv := startSim(t, sim.NewMemoryStore())

	res := execute(t, context.Background(), simArgs(srv, "--list-devices")...)
	if res.code != ExitOK {
		t.Fatalf("expected exit 0, got %d (stderr %q)", res.code, res.stderr)
	}
	want := "\nFound 2 RGB device(s):\n" +
		"  0: Corsair Vengeance Pro RGB (DRAM)\n" +
		"     Modes: 4, LEDs: 10\n" +
		"  1: Corsair Vengeance Pro RGB (DRAM)\n" +
		"     Modes: 4, LEDs: 10\n"
	if !strings.HasSuffix(res.stdout, want) {
		t.Errorf("expected output ending in %q, got %q", want, res.stdout)
	}
	if strings.Contains(res.stdout, "RTX 3080") {
		t.Error("non-DRAM device should not be listed")
	}
}

func TestExecute_ListDevicesNone(t *testing.T) {
	srv := sim.NewServer(sim.NewMemoryStore(), nil)
	if err := srv.Listen("127.0.0.1:0"); err != nil {
		t.Fatal(err)
	}
	go func() { _ = srv.Serve() }()
	t.Cleanup(func() { _ = srv.Close() })

	res := execute(t, context.Background(), simArgs(srv, "--list-devices")...)
	if res.code != ExitOK {
		t.Errorf("expected exit 0, got %d", res.code)
	}
	if !strings.Contains(res.stdout, "No RGB devices found") {
		t.Errorf("unexpected output %q", res.stdout)
	}
}

func TestExecute_ClientName(t *testing.T) {
	hold := make(chan struct{})
	srv := startSim(t, sim.NewMemoryStore(), sim.WithHold(hold))

	done := make(chan result, 1)
	go func() {
		done <- execute(t, context.Background(), simArgs(srv, "--list-profiles", "--client-name", "Desk Lights")...)
	}()

	waitUntil(t, "client name", func() bool {
		c := srv.Clients()
		return len(c) == 1 && c[0] == "Desk Lights"
	})
	close(hold)

	if res := <-done; res.code != ExitOK {
		t.Errorf("expected exit 0, got %d", res.code)
	}
}

func TestExecute_EnvironmentDefaults(t *testing.T) {
	srv := startSim(t, sim.NewMemoryStore("Gaming"))
	host, port, _ := strings.Cut(srv.Addr().String(), ":")
	t.Setenv(EnvHost, host)
	t.Setenv(EnvPort, port)

	res := execute(t, context.Background(), "--list-profiles")
	if res.code != ExitOK {
		t.Fatalf("expected exit 0, got %d (stderr %q)", res.code, res.stderr)
	}
	if !strings.Contains(res.stdout, "  0: Gaming") {
		t.Errorf("unexpected output %q", res.stdout)
	}
}

func TestPortFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int
	}{
		{"unset", "", openrgb.DefaultPort},
		{"number", "7000", 7000},
		{"not a number", "http", openrgb.DefaultPort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvPort, tt.env)
			if got := PortFromEnv(); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestCheckPort(t *testing.T) {
	for _, port := range []int{1, 6742, 65535} {
		if err := CheckPort(port); err != nil {
			t.Errorf("expected %d to be valid, got %v", port, err)
		}
	}
	for _, port := range []int{0, -1, 65536} {
		if err := CheckPort(port); err == nil {
			t.Errorf("expected %d to be rejected", port)
		}
	}
}

func TestExecute_InterruptReleasesSession(t *testing.T) {
	hold := make(chan struct{})
	defer close(hold)
	srv := startSim(t, sim.NewMemoryStore("Gaming"), sim.WithHold(hold))
	before := srv.Sessions()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan result, 1)
	go func() {
		done <- execute(t, ctx, simArgs(srv, "--list-profiles")...)
	}()

	waitUntil(t, "handshake", func() bool {
		c := srv.Clients()
		return len(c) == 1 && c[0] == "ProfileChanger"
	})
	time.Sleep(50 * time.Millisecond)
	cancel()

	var res result
	select {
	case res = <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("run did not return after interrupt")
	}

	if res.code != ExitFailure {
		t.Errorf("expected exit 1, got %d", res.code)
	}
	if !strings.HasSuffix(res.stdout, "\nOperation cancelled by user\n") {
		t.Errorf("expected cancellation notice, got %q", res.stdout)
	}
	if strings.Contains(res.stdout, "Available profiles") || res.stderr != "" {
		t.Errorf("unexpected output after interrupt: %q %q", res.stdout, res.stderr)
	}
	waitUntil(t, "session release", func() bool { return srv.Sessions() == before })
}

func TestRun_ClosesOnEveryPath(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		fail   error
		code   int
	}{
		{"load ok", Load("Gaming"), nil, ExitOK},
		{"load fails", Load("Gaming"), device.ErrProfileNotFound, ExitFailure},
		{"list profiles", ListProfiles(), nil, ExitOK},
		{"list profiles fails", ListProfiles(), errors.New("boom"), ExitOK},
		{"list devices", ListDevices(), nil, ExitOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeController{fail: tt.fail}
			var stdout, stderr bytes.Buffer
			app := &App{
				Stdout: &stdout,
				Stderr: &stderr,
				Dial: func(ctx context.Context, addr, clientName string) (device.Controller, error) {
					if addr != "localhost:1234" || clientName != "t" {
						t.Errorf("unexpected dial %s %s", addr, clientName)
					}
					return ctrl, nil
				},
			}

			code := app.Run(context.Background(), Options{Host: "localhost", Port: 1234, ClientName: "t", Action: tt.action})
			if code != tt.code {
				t.Errorf("expected exit %d, got %d", tt.code, code)
			}
			if ctrl.closed.Load() != 1 {
				t.Errorf("expected exactly one Close, got %d", ctrl.closed.Load())
			}
		})
	}
}

type fakeController struct {
	fail   error
	closed atomic.Int32
}

func (f *fakeController) DevicesByType(ctx context.Context, t device.DeviceType) ([]device.Device, error) {
	return nil, f.fail
}

func (f *fakeController) Profiles(ctx context.Context) ([]string, error) {
	return []string{"Gaming"}, f.fail
}

func (f *fakeController) LoadProfile(ctx context.Context, name string) error {
	return f.fail
}

func (f *fakeController) SaveProfile(ctx context.Context, name string) error {
	return f.fail
}

func (f *fakeController) DeleteProfile(ctx context.Context, name string) error {
	return f.fail
}

func (f *fakeController) Close() error {
	f.closed.Add(1)
	return nil
}
