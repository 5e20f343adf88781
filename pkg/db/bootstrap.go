package db

import (
	"context"
	"fmt"
)

// Bootstrap writes the default listener rows if the database has none.
// This is called after migrations and handles first-run setup.
func (db *DB) Bootstrap(ctx context.Context) error {
	needs, err := db.NeedsBootstrap(ctx)
	if err != nil {
		return fmt.Errorf("failed to check listeners: %w", err)
	}
	if !needs {
		return nil // Already bootstrapped
	}

	defaults := []*Listener{
		{Role: RoleSDK, Host: DefaultSDKHost, Port: DefaultSDKPort},
		{Role: RoleAdmin, Host: DefaultAdminHost, Port: DefaultAdminPort},
	}
	for _, l := range defaults {
		if err := db.Listeners().Put(ctx, l); err != nil {
			return fmt.Errorf("failed to create default %s listener: %w", l.Role, err)
		}
	}
	return nil
}

// NeedsBootstrap returns true if the database needs initial setup.
func (db *DB) NeedsBootstrap(ctx context.Context) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listeners`).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
