package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fightstreet/cfn-stats/internal/domain/ranking"
)

type rankingKey struct {
	date     string
	playerID string
	charID   string
}

type RankingRepository struct {
	mu    sync.RWMutex
	items map[rankingKey]ranking.Snapshot
}

func NewRankingRepository() *RankingRepository {
	return &RankingRepository{items: map[rankingKey]ranking.Snapshot{}}
}

func (r *RankingRepository) InsertMany(_ context.Context, snapshots []ranking.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range snapshots {
		key := rankingKey{
			date:     item.Date.Format(time.DateOnly),
			playerID: item.PlayerID,
			charID:   item.CharID,
		}
		if _, exists := r.items[key]; exists {
			continue
		}
		r.items[key] = item
	}
	return nil
}

func (r *RankingRepository) ListByDate(_ context.Context, date time.Time) ([]ranking.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := date.Format(time.DateOnly)
	out := []ranking.Snapshot{}
	for key, item := range r.items {
		if key.date == day {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].CharID < out[j].CharID
	})
	return out, nil
}

func (r *RankingRepository) ListDates(_ context.Context) ([]time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]time.Time{}
	for key, item := range r.items {
		if _, ok := seen[key.date]; !ok {
			seen[key.date] = item.Date
		}
	}

	out := make([]time.Time, 0, len(seen))
	for _, date := range seen {
		out = append(out, date)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out, nil
}
