package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wildtrail/wildtrail/internal/domain"
)

// ─── Snapshot Store ─────────────────────────────────────────────────────────

// Load returns the snapshot blob saved for userID, or nil when there is none.
func (d *DB) Load(ctx context.Context, userID string) ([]byte, error) {
	var blob []byte
	err := d.db.QueryRowContext(ctx,
		`SELECT blob FROM snapshots WHERE user_id = ?`, userID,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return blob, nil
}

// Save replaces the snapshot blob for userID.
func (d *DB) Save(ctx context.Context, userID string, blob []byte) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO snapshots (user_id, blob, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			blob=excluded.blob,
			saved_at=excluded.saved_at`,
		userID, blob, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Users lists every user with a saved snapshot, alphabetically.
func (d *DB) Users(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT user_id FROM snapshots ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
