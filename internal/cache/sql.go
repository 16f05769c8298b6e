package cache

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/shogun/internal/db"
)

// SQLStore keeps entries in the sqlite transients table, under Prefix.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLStore returns a store over an initialized database. now defaults
// to time.Now.
func NewSQLStore(database *sql.DB, now func() time.Time) *SQLStore {
	if now == nil {
		now = time.Now
	}
	return &SQLStore{db: database, now: now}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	t, ok, err := db.GetTransient(ctx, s.db, Prefix+key, s.now().Unix())
	if err != nil || !ok {
		return "", false, err
	}
	return t.Value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, css string, ttl time.Duration) error {
	now := s.now()
	return db.SetTransient(ctx, s.db, db.Transient{
		Name:      Prefix + key,
		Value:     css,
		ExpiresAt: now.Add(ttl).Unix(),
		CreatedAt: now.Unix(),
	})
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	return db.DeleteTransient(ctx, s.db, Prefix+key)
}

func (s *SQLStore) Clear(ctx context.Context) error {
	_, err := db.DeletePrefix(ctx, s.db, Prefix)
	return err
}

func (s *SQLStore) Stats(ctx context.Context) (Stats, error) {
	ts, err := db.StatsPrefix(ctx, s.db, Prefix, s.now().Unix())
	if err != nil {
		return Stats{}, err
	}
	return Stats{Entries: ts.Live, Expired: ts.Expired, Bytes: ts.Bytes}, nil
}

func (s *SQLStore) PurgeExpired(ctx context.Context) (int, error) {
	n, err := db.PurgeExpired(ctx, s.db, Prefix, s.now().Unix())
	return int(n), err
}
