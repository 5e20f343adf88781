package db

import (
	"context"
	"errors"
	"fmt"
)

// Default listen addresses written on first run.
const (
	DefaultSDKHost   = "127.0.0.1"
	DefaultSDKPort   = 6742
	DefaultAdminHost = "127.0.0.1"
	DefaultAdminPort = 6743
)

// Config represents the simulator configuration loaded from the database.
type Config struct {
	SDK   *Listener
	Admin *Listener
}

// SDKAddress returns the SDK listen address.
func (c *Config) SDKAddress() string {
	if c.SDK == nil {
		return (&Listener{Host: DefaultSDKHost, Port: DefaultSDKPort}).Address()
	}
	return c.SDK.Address()
}

// AdminAddress returns the admin API listen address.
func (c *Config) AdminAddress() string {
	if c.Admin == nil {
		return (&Listener{Host: DefaultAdminHost, Port: DefaultAdminPort}).Address()
	}
	return c.Admin.Address()
}

// ActiveConfig loads the listener configuration. Missing rows fall back to
// the defaults.
func (db *DB) ActiveConfig(ctx context.Context) (*Config, error) {
	config := &Config{}

	sdk, err := db.Listeners().Get(ctx, RoleSDK)
	if err != nil && !errors.Is(err, ErrListenerNotFound) {
		return nil, fmt.Errorf("failed to get SDK listener: %w", err)
	}
	config.SDK = sdk

	admin, err := db.Listeners().Get(ctx, RoleAdmin)
	if err != nil && !errors.Is(err, ErrListenerNotFound) {
		return nil, fmt.Errorf("failed to get admin listener: %w", err)
	}
	config.Admin = admin

	return config, nil
}
