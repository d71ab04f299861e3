// Package cache provides read-through caching decorators over the postgres
// repositories. Writes pass through and invalidate the affected keys.
package cache

import (
	"context"
	"time"

	"github.com/fightstreet/cfn-stats/internal/domain/club"
	"github.com/fightstreet/cfn-stats/internal/domain/ranking"
	basecache "github.com/fightstreet/cfn-stats/internal/platform/cache"
)

type ClubMemberRepository struct {
	next  club.Repository
	cache *basecache.Store
}

func NewClubMemberRepository(next club.Repository, cache *basecache.Store) *ClubMemberRepository {
	return &ClubMemberRepository{next: next, cache: cache}
}

func (r *ClubMemberRepository) UpsertMany(ctx context.Context, members []club.Member) error {
	if err := r.next.UpsertMany(ctx, members); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "club:members:")
	r.cache.Delete(ctx, "club:hidden")
	return nil
}

func (r *ClubMemberRepository) ListByClub(ctx context.Context, clubID string) ([]club.Member, error) {
	key := "club:members:" + clubID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByClub(ctx, clubID)
		if err != nil {
			return nil, err
		}
		return append([]club.Member(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]club.Member)
	return append([]club.Member(nil), items...), nil
}

func (r *ClubMemberRepository) ListHiddenIDs(ctx context.Context) ([]string, error) {
	v, err := r.cache.GetOrLoad(ctx, "club:hidden", func(ctx context.Context) (any, error) {
		ids, err := r.next.ListHiddenIDs(ctx)
		if err != nil {
			return nil, err
		}
		return append([]string(nil), ids...), nil
	})
	if err != nil {
		return nil, err
	}

	ids, _ := v.([]string)
	return append([]string(nil), ids...), nil
}

type RankingRepository struct {
	next  ranking.Repository
	cache *basecache.Store
}

func NewRankingRepository(next ranking.Repository, cache *basecache.Store) *RankingRepository {
	return &RankingRepository{next: next, cache: cache}
}

func (r *RankingRepository) InsertMany(ctx context.Context, snapshots []ranking.Snapshot) error {
	if err := r.next.InsertMany(ctx, snapshots); err != nil {
		return err
	}
	r.cache.Delete(ctx, "ranking:dates")
	for _, snapshot := range snapshots {
		r.cache.Delete(ctx, rankingDateKey(snapshot.Date))
	}
	return nil
}

func (r *RankingRepository) ListByDate(ctx context.Context, date time.Time) ([]ranking.Snapshot, error) {
	v, err := r.cache.GetOrLoad(ctx, rankingDateKey(date), func(ctx context.Context) (any, error) {
		items, err := r.next.ListByDate(ctx, date)
		if err != nil {
			return nil, err
		}
		return append([]ranking.Snapshot(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]ranking.Snapshot)
	return append([]ranking.Snapshot(nil), items...), nil
}

func (r *RankingRepository) ListDates(ctx context.Context) ([]time.Time, error) {
	v, err := r.cache.GetOrLoad(ctx, "ranking:dates", func(ctx context.Context) (any, error) {
		dates, err := r.next.ListDates(ctx)
		if err != nil {
			return nil, err
		}
		return append([]time.Time(nil), dates...), nil
	})
	if err != nil {
		return nil, err
	}

	dates, _ := v.([]time.Time)
	return append([]time.Time(nil), dates...), nil
}

func rankingDateKey(date time.Time) string {
	return "ranking:date:" + date.Format(time.DateOnly)
}
