package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/rgbprofile/pkg/device"
)

func (s *Server) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := GetHealthOutput{
		Status:    "healthy",
		Server:    "connected",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	ctrl, err := s.dial(ctx)
	if err != nil {
		out.Status = "unhealthy"
		out.Server = "unreachable"
		out.Error = err.Error()
	} else {
		closeController(ctrl)
	}

	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleListProfiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var names []string
	err := s.withController(ctx, func(ctrl device.Controller) error {
		var err error
		names, err = ctrl.Profiles(ctx)
		return err
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list profiles: %s", err)), nil
	}
	if names == nil {
		names = []string{}
	}

	out := ListProfilesOutput{
		Profiles: names,
		Count:    len(names),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleLoadProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.profileAction(ctx, request, "load", "loaded", device.Controller.LoadProfile)
}

func (s *Server) handleSaveProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.profileAction(ctx, request, "save", "saved", device.Controller.SaveProfile)
}

func (s *Server) handleDeleteProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.profileAction(ctx, request, "delete", "deleted", device.Controller.DeleteProfile)
}

func (s *Server) profileAction(
	ctx context.Context,
	request mcp.CallToolRequest,
	verb, past string,
	op func(device.Controller, context.Context, string) error,
) (*mcp.CallToolResult, error) {
	if s.validator != nil {
		if err := s.validator.Validate(json.RawMessage(profileNameSchema), request.GetArguments()); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("validation error: %s", err)), nil
		}
	}
	name, err := requiredString(request, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	err = s.withController(ctx, func(ctrl device.Controller) error {
		return op(ctrl, ctx, name)
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to %s profile %q: %s", verb, name, err)), nil
	}

	out := ProfileActionOutput{
		Success: true,
		Profile: name,
		Message: fmt.Sprintf("Profile %q %s", name, past),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleListDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t := device.TypeDRAM
	if raw, ok := request.GetArguments()["type"].(string); ok && raw != "" {
		parsed, err := device.ParseDeviceType(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		t = parsed
	}

	var devices []device.Device
	err := s.withController(ctx, func(ctrl device.Controller) error {
		var err error
		devices, err = ctrl.DevicesByType(ctx, t)
		return err
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list devices: %s", err)), nil
	}

	infos := make([]DeviceInfo, 0, len(devices))
	for _, d := range devices {
		infos = append(infos, deviceToInfo(d))
	}

	out := ListDevicesOutput{
		Type:    t.String(),
		Devices: infos,
		Count:   len(infos),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

// --- helpers ---

// withController runs fn against a fresh session and always closes it.
func (s *Server) withController(ctx context.Context, fn func(device.Controller) error) error {
	ctrl, err := s.dial(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer closeController(ctrl)
	return fn(ctrl)
}

func closeController(ctrl device.Controller) {
	if err := ctrl.Close(); err != nil {
		log.Debug().Err(err).Msg("Close failed")
	}
}

func deviceToInfo(d device.Device) DeviceInfo {
	info := DeviceInfo{
		Index:  d.Index,
		Name:   d.Name,
		Type:   d.Type.String(),
		Vendor: d.Vendor,
		Modes:  len(d.Modes),
		LEDs:   len(d.LEDs),
	}
	if d.ActiveMode >= 0 && int(d.ActiveMode) < len(d.Modes) {
		info.ActiveMode = d.Modes[d.ActiveMode].Name
	}
	return info
}

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("required parameter %q is missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

func formatJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}
