package usecase

import "time"

const (
	// PreviewCacheTTL bounds how stale a cached preview may be. Creating,
	// posting or reversing a run within the window simply recomputes.
	PreviewCacheTTL = 5 * time.Minute

	// IdempotencyKeyTTL is how long replayed mutation responses are kept.
	IdempotencyKeyTTL = 24 * time.Hour
)
