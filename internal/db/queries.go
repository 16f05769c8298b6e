package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Transient is one row of the transients table. Times are unix seconds.
type Transient struct {
	Name      string
	Value     string
	ExpiresAt int64
	CreatedAt int64
}

// TransientStats summarizes the rows under a name prefix.
type TransientStats struct {
	Live    int
	Expired int
	Bytes   int64
}

// SetTransient inserts or replaces a transient.
func SetTransient(ctx context.Context, db *sql.DB, t Transient) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO transients (name, value, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at
	`, t.Name, t.Value, t.ExpiresAt, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to set transient %s: %w", t.Name, err)
	}
	return nil
}

// GetTransient returns the transient named name if it has not expired at now.
func GetTransient(ctx context.Context, db *sql.DB, name string, now int64) (*Transient, bool, error) {
	var t Transient
	err := db.QueryRowContext(ctx, `
		SELECT name, value, expires_at, created_at
		FROM transients
		WHERE name = ? AND expires_at > ?
	`, name, now).Scan(&t.Name, &t.Value, &t.ExpiresAt, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get transient %s: %w", name, err)
	}
	return &t, true, nil
}

// DeleteTransient removes one transient. Deleting a missing name is not an error.
func DeleteTransient(ctx context.Context, db *sql.DB, name string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM transients WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete transient %s: %w", name, err)
	}
	return nil
}

// DeletePrefix removes every transient whose name starts with prefix and
// returns how many were removed.
func DeletePrefix(ctx context.Context, db *sql.DB, prefix string) (int64, error) {
	res, err := db.ExecContext(ctx,
		`DELETE FROM transients WHERE name LIKE ? ESCAPE '\'`, likePrefix(prefix))
	if err != nil {
		return 0, fmt.Errorf("failed to delete transients %s*: %w", prefix, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// PurgeExpired removes transients under prefix that expired at or before now.
func PurgeExpired(ctx context.Context, db *sql.DB, prefix string, now int64) (int64, error) {
	res, err := db.ExecContext(ctx,
		`DELETE FROM transients WHERE name LIKE ? ESCAPE '\' AND expires_at <= ?`, likePrefix(prefix), now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired transients: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// StatsPrefix counts live and expired transients under prefix, and the
// total size of the live values.
func StatsPrefix(ctx context.Context, db *sql.DB, prefix string, now int64) (TransientStats, error) {
	var s TransientStats
	err := db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN expires_at > ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN expires_at > ? THEN LENGTH(CAST(value AS BLOB)) ELSE 0 END), 0)
		FROM transients
		WHERE name LIKE ? ESCAPE '\'
	`, now, now, now, likePrefix(prefix)).Scan(&s.Live, &s.Expired, &s.Bytes)
	if err != nil {
		return TransientStats{}, fmt.Errorf("failed to get transient stats: %w", err)
	}
	return s, nil
}

// likePrefix escapes LIKE wildcards in prefix and appends %.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
