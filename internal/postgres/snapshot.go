package postgres

import (
	"context"

	"github.com/ariefcatur/go-watch-orders/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ store.Backend = (*SnapshotBackend)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS kv_slots (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// SnapshotBackend stores each snapshot slot as one row of kv_slots.
type SnapshotBackend struct{ DB *pgxpool.Pool }

// Migrate creates the slot table when missing.
func (b *SnapshotBackend) Migrate(ctx context.Context) error {
	_, err := b.DB.Exec(ctx, schema)
	return err
}

func (b *SnapshotBackend) Load(ctx context.Context, keys []string) (map[string][]byte, error) {
	rows, err := b.DB.Query(ctx, `SELECT key, value FROM kv_slots WHERE key = ANY($1)`, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]byte, len(keys))
	for rows.Next() {
		var (
			k string
			v []byte
		)
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Save upserts every slot in one transaction; either the whole snapshot
// lands or none of it does.
func (b *SnapshotBackend) Save(ctx context.Context, slots map[string][]byte) error {
	tx, err := b.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for k, v := range slots {
		batch.Queue(`
			INSERT INTO kv_slots(key, value, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, k, v)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
