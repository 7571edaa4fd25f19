package manager

import (
	"context"
	"time"
)

const DefaultSearchLimit = 50

// Repository describes manager roster persistence needs from use cases.
type Repository interface {
	Upsert(ctx context.Context, managers []Manager) (int, error)
	// CommitPage stores the page records and advances the checkpoint atomically.
	CommitPage(ctx context.Context, page int, managers []Manager) (Progress, error)
	AdvanceProgress(ctx context.Context, page, fetchedCount int) (Progress, error)
	FindByName(ctx context.Context, query string, limit int) ([]Manager, error)
	FindByID(ctx context.Context, id int64) (Manager, bool, error)
	Count(ctx context.Context) (int, error)

	GetProgress(ctx context.Context) (Progress, error)
	MarkBatchStarted(ctx context.Context, at time.Time) error
	MarkBatchFinished(ctx context.Context, at time.Time) error

	RecordSkippedPage(ctx context.Context, page int, reason string) error
	ListSkippedPages(ctx context.Context) ([]SkippedPage, error)
}
