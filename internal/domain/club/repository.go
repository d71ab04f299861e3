package club

import "context"

type Repository interface {
	UpsertMany(ctx context.Context, members []Member) error
	ListByClub(ctx context.Context, clubID string) ([]Member, error)
	// ListHiddenIDs returns player ids that must never appear on a board.
	ListHiddenIDs(ctx context.Context) ([]string, error)
}
