package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

var ErrListenerNotFound = errors.New("listener config not found")

// Listener roles
const (
	RoleSDK   = "sdk"
	RoleAdmin = "admin"
)

// Listener is a stored listen address.
type Listener struct {
	ID        int64
	Role      string
	Host      string
	Port      int
	CreatedAt time.Time
}

// Address returns the listen address (host:port).
func (l *Listener) Address() string {
	return net.JoinHostPort(l.Host, strconv.Itoa(l.Port))
}

// ListenerStore provides listener config operations.
type ListenerStore interface {
	Get(ctx context.Context, role string) (*Listener, error)
	Put(ctx context.Context, l *Listener) error
}

// Listeners returns a ListenerStore for this database.
func (db *DB) Listeners() ListenerStore {
	return &listenerStore{db: db}
}

type listenerStore struct {
	db *DB
}

func (s *listenerStore) Get(ctx context.Context, role string) (*Listener, error) {
	l := &Listener{}
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, role, host, port, created_at
		FROM listeners WHERE role = ?
	`, role).Scan(&l.ID, &l.Role, &l.Host, &l.Port, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListenerNotFound
	}
	if err != nil {
		return nil, err
	}
	l.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	return l, nil
}

// Put creates or replaces the listener for l.Role.
func (s *listenerStore) Put(ctx context.Context, l *Listener) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO listeners (role, host, port) VALUES (?, ?, ?)
		ON CONFLICT(role) DO UPDATE SET host = excluded.host, port = excluded.port
	`, l.Role, l.Host, l.Port)
	if err != nil {
		return fmt.Errorf("failed to save %s listener: %w", l.Role, err)
	}
	if id, err := result.LastInsertId(); err == nil && id != 0 {
		l.ID = id
	}
	return nil
}
