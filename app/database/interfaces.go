package database

import "context"

type SeenRepository interface {
	// CheckAndMark reports whether fingerprint was already recorded, recording it if not.
	CheckAndMark(ctx context.Context, fingerprint string) (bool, error)
	GetSeenCount(ctx context.Context) (int, error)
}

type HitRepository interface {
	// InsertHitIfAbsent stores hit unless its ID exists and reports whether a row was written.
	InsertHitIfAbsent(ctx context.Context, hit Hit) (bool, error)
	GetRecentHits(ctx context.Context, limit int) ([]Hit, error)
	GetHitCount(ctx context.Context) (int, error)
}
