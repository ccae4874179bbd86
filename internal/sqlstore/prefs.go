package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goliatone/go-portal/pkg/prefs"
)

// Prefs stores user settings. It implements prefs.Scopes.
type Prefs struct {
	db *sql.DB
}

var _ prefs.Scopes = (*Prefs)(nil)

// ForUser implements prefs.Scopes.
func (p *Prefs) ForUser(userID string) prefs.Store {
	return userSettings{db: p.db, userID: userID}
}

type userSettings struct {
	db     *sql.DB
	userID string
}

func (s userSettings) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM user_settings WHERE user_id = ? AND key = ?`, s.userID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlstore: get %s: %w", key, err)
	}
	return value, true, nil
}

func (s userSettings) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT (user_id, key) DO UPDATE SET value = excluded.value`,
		s.userID, key, value)
	if err != nil {
		return fmt.Errorf("sqlstore: set %s: %w", key, err)
	}
	return nil
}

func (s userSettings) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM user_settings WHERE user_id = ? AND key = ?`, s.userID, key); err != nil {
		return fmt.Errorf("sqlstore: delete %s: %w", key, err)
	}
	return nil
}
