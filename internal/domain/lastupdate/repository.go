package lastupdate

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports that no run record exists for the requested date, or
// that no capture has ever completed.
var ErrNotFound = errors.New("lastupdate: run not found")

type Repository interface {
	Start(ctx context.Context, date time.Time) error
	MarkDownloadComplete(ctx context.Context, date time.Time) error
	MarkParsingComplete(ctx context.Context, date time.Time) error
	Get(ctx context.Context, date time.Time) (Run, error)
	// LatestComplete returns the most recent date whose run finished both
	// stages, or ErrNotFound when no capture has ever completed.
	LatestComplete(ctx context.Context) (Run, error)
}
