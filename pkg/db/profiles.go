package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/urmzd/rgbprofile/pkg/device"
)

// ErrProfileNotFound is device.ErrProfileNotFound so callers can match either.
var ErrProfileNotFound = device.ErrProfileNotFound

// Profile is a saved lighting snapshot.
type Profile struct {
	ID        int64
	Name      string
	Snapshot  device.Snapshot
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileStore provides profile CRUD operations keyed by name.
type ProfileStore struct {
	db *DB
}

// Profiles returns a ProfileStore for this database.
func (db *DB) Profiles() *ProfileStore {
	return &ProfileStore{db: db}
}

// List returns profile names in creation order.
func (s *ProfileStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM profiles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Lookup returns the full profile row.
func (s *ProfileStore) Lookup(ctx context.Context, name string) (*Profile, error) {
	p := &Profile{}
	var snapshot, createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, snapshot, created_at, updated_at
		FROM profiles WHERE name = ?
	`, name).Scan(&p.ID, &p.Name, &snapshot, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(snapshot), &p.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot of %q: %w", name, err)
	}
	p.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	p.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return p, nil
}

// Get returns the snapshot saved under name.
func (s *ProfileStore) Get(ctx context.Context, name string) (device.Snapshot, error) {
	p, err := s.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	return p.Snapshot, nil
}

// Save creates the profile or replaces its snapshot.
func (s *ProfileStore) Save(ctx context.Context, name string, snap device.Snapshot) error {
	if snap == nil {
		snap = device.Snapshot{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (name, snapshot) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET
			snapshot = excluded.snapshot,
			updated_at = datetime('now')
	`, name, string(data))
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Delete removes the profile.
func (s *ProfileStore) Delete(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE name = ?`, name)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	return nil
}
