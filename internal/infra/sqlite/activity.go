package sqlite

import (
	"github.com/wildtrail/wildtrail/internal/domain"
)

// ─── Activity Journal ───────────────────────────────────────────────────────

// AppendActivity journals one processed event.
func (d *DB) AppendActivity(r domain.ActivityRecord) (int64, error) {
	result, err := d.db.Exec(
		`INSERT INTO activity_log (user_id, kind, at, accepted, points, reason)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.UserID, string(r.Kind), unixMilli(r.At), r.Accepted, r.Points, r.Reason,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListActivity returns userID's most recent journal entries, newest first.
func (d *DB) ListActivity(userID string, limit int) ([]domain.ActivityRecord, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, kind, at, accepted, points, reason
		 FROM activity_log WHERE user_id = ?
		 ORDER BY at DESC, id DESC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.ActivityRecord
	for rows.Next() {
		r, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

func scanActivity(s scanner) (*domain.ActivityRecord, error) {
	var r domain.ActivityRecord
	var at int64
	if err := s.Scan(&r.ID, &r.UserID, &r.Kind, &at, &r.Accepted, &r.Points, &r.Reason); err != nil {
		return nil, err
	}
	r.At = fromUnixMilli(at)
	return &r, nil
}
