package database

import (
	"context"
	"fmt"
	"time"
)

var _ SeenRepository = (*seenRepository)(nil)

type seenRepository struct {
	db  *DB
	now func() time.Time
}

func NewSeenRepository(db *DB) SeenRepository {
	return &seenRepository{db: db, now: time.Now}
}

// CheckAndMark runs as one statement, so the presence check and the insert
// cannot interleave with another caller sharing the database.
func (r *seenRepository) CheckAndMark(ctx context.Context, fingerprint string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO seen (fp, ts) VALUES (?, ?)
		ON CONFLICT (fp) DO NOTHING
	`, fingerprint, r.now().Unix())
	if err != nil {
		return false, fmt.Errorf("failed to mark fingerprint: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return inserted == 0, nil
}

func (r *seenRepository) GetSeenCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM seen").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get seen count: %w", err)
	}
	return count, nil
}
