package database

import (
	"context"
	"fmt"
	"time"
)

var _ HitRepository = (*hitRepository)(nil)

type hitRepository struct {
	db *DB
}

func NewHitRepository(db *DB) HitRepository {
	return &hitRepository{db: db}
}

func (r *hitRepository) InsertHitIfAbsent(ctx context.Context, hit Hit) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO hits (id, ts, person, url, title, feed, snippet)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, hit.ID, hit.PublishedAt.Unix(), hit.Subject, hit.URL, hit.Title, hit.SourceFeed, hit.Snippet)
	if err != nil {
		return false, fmt.Errorf("failed to insert hit: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return inserted > 0, nil
}

func (r *hitRepository) GetRecentHits(ctx context.Context, limit int) ([]Hit, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, COALESCE(ts, 0), COALESCE(person, ''), COALESCE(url, ''),
		       COALESCE(title, ''), COALESCE(feed, ''), COALESCE(snippet, '')
		FROM hits
		ORDER BY ts DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent hits: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var hit Hit
		var ts int64
		err := rows.Scan(&hit.ID, &ts, &hit.Subject, &hit.URL, &hit.Title, &hit.SourceFeed, &hit.Snippet)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hit row: %w", err)
		}
		hit.PublishedAt = time.Unix(ts, 0).UTC()
		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hit rows: %w", err)
	}

	return hits, nil
}

func (r *hitRepository) GetHitCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM hits").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get hit count: %w", err)
	}
	return count, nil
}
