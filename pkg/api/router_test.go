package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/urmzd/rgbprofile/pkg/api"
	"github.com/urmzd/rgbprofile/pkg/api/types"
	"github.com/urmzd/rgbprofile/pkg/device"
	"github.com/urmzd/rgbprofile/pkg/sim"
)

type fakeDaemon struct {
	sessions []sim.SessionInfo
	devices  []device.Device
	profiles []string
	err      error
}

func (f *fakeDaemon) Sessions() int {
	return len(f.sessions)
}

func (f *fakeDaemon) SessionInfo() []sim.SessionInfo {
	return f.sessions
}

func (f *fakeDaemon) Devices() []device.Device {
	return f.devices
}

func (f *fakeDaemon) Profiles(ctx context.Context) ([]string, error) {
	return f.profiles, f.err
}

func newFakeDaemon() *fakeDaemon {
	devices := sim.DefaultDevices()
	for i := range devices {
		devices[i].Index = i
	}
	devices[2].ActiveMode = 2
	return &fakeDaemon{
		sessions: []sim.SessionInfo{{
			ID:       "5f0c2a7e-2f44-4a7b-9d0e-0c1d2e3f4a5b",
			Client:   "ProfileChanger",
			Remote:   "127.0.0.1:51000",
			OpenedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}},
		devices:  devices,
		profiles: []string{"Gaming", "Quiet"},
	}
}

func get(t *testing.T, h http.Handler, path string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s: %v (body %q)", path, err, rec.Body.String())
		}
	}
	return rec.Code
}

func TestHealth(t *testing.T) {
	h := api.NewRouter(newFakeDaemon()).Handler()

	for _, path := range []string{"/health", "/api/v1/health"} {
		var resp types.HealthResponse
		if code := get(t, h, path, &resp); code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, code)
		}
		if resp.Status != "healthy" || resp.Sessions != 1 {
			t.Errorf("%s: unexpected response %+v", path, resp)
		}
	}
}

func TestListSessions(t *testing.T) {
	h := api.NewRouter(newFakeDaemon()).Handler()

	var resp types.SessionsResponse
	if code := get(t, h, "/api/v1/sessions", &resp); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp.Count != 1 || len(resp.Sessions) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	s := resp.Sessions[0]
	if s.Client != "ProfileChanger" || s.ID == "" || s.Remote != "127.0.0.1:51000" {
		t.Errorf("unexpected session %+v", s)
	}
	if !s.OpenedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("unexpected opened_at %v", s.OpenedAt)
	}
}

func TestListProfiles(t *testing.T) {
	d := newFakeDaemon()
	h := api.NewRouter(d).Handler()

	var resp types.ListProfilesResponse
	if code := get(t, h, "/api/v1/profiles", &resp); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp.Count != 2 || resp.Profiles[1] != "Quiet" {
		t.Errorf("unexpected response %+v", resp)
	}

	d.profiles = nil
	var empty types.ListProfilesResponse
	get(t, h, "/api/v1/profiles", &empty)
	if empty.Profiles == nil || empty.Count != 0 {
		t.Errorf("expected empty non-null list, got %+v", empty)
	}

	d.err = errors.New("disk on fire")
	var errResp types.ErrorResponse
	if code := get(t, h, "/api/v1/profiles", &errResp); code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", code)
	}
	if errResp.Error != "store_error" {
		t.Errorf("unexpected error response %+v", errResp)
	}
}

func TestListDevices(t *testing.T) {
	h := api.NewRouter(newFakeDaemon()).Handler()

	var all types.ListDevicesResponse
	if code := get(t, h, "/api/v1/devices", &all); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if all.Count != 3 {
		t.Errorf("expected 3 devices, got %d", all.Count)
	}

	var dram types.ListDevicesResponse
	get(t, h, "/api/v1/devices?type=dram", &dram)
	if dram.Count != 2 {
		t.Errorf("expected 2 DRAM devices, got %d", dram.Count)
	}
	for _, d := range dram.Devices {
		if d.Type != "DRAM" || d.ModeCount != 4 || d.LEDCount != 10 {
			t.Errorf("unexpected DRAM summary %+v", d)
		}
	}

	var keyboards types.ListDevicesResponse
	get(t, h, "/api/v1/devices?type=keyboard", &keyboards)
	if keyboards.Devices == nil || keyboards.Count != 0 {
		t.Errorf("expected empty non-null list, got %+v", keyboards)
	}

	if code := get(t, h, "/api/v1/devices?type=toaster", nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown type, got %d", code)
	}
}

func TestGetDevice(t *testing.T) {
	h := api.NewRouter(newFakeDaemon()).Handler()

	var resp types.DeviceResponse
	if code := get(t, h, "/api/v1/devices/2", &resp); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp.Device.Name != "ASUS ROG STRIX RTX 3080" || resp.Device.ActiveMode != "Spectrum Cycle" {
		t.Errorf("unexpected device %+v", resp.Device)
	}
	if len(resp.Colors) != 22 {
		t.Errorf("expected 22 colors, got %d", len(resp.Colors))
	}

	if code := get(t, h, "/api/v1/devices/9", nil); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
	if code := get(t, h, "/api/v1/devices/abc", nil); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := api.NewRouter(newFakeDaemon()).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/profiles", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS allow-origin header")
	}
}
