package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fightstreet/cfn-stats/internal/domain/historic"
)

type historicKey struct {
	date     string
	playerID string
}

type HistoricRepository struct {
	mu    sync.RWMutex
	items map[historicKey]historic.Stats
}

func NewHistoricRepository() *HistoricRepository {
	return &HistoricRepository{items: map[historicKey]historic.Stats{}}
}

func (r *HistoricRepository) InsertMany(_ context.Context, rows []historic.Stats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range rows {
		key := historicKey{date: item.Date.Format(time.DateOnly), playerID: item.PlayerID}
		if _, exists := r.items[key]; exists {
			continue
		}
		r.items[key] = item
	}
	return nil
}

func (r *HistoricRepository) ListByDate(_ context.Context, date time.Time) ([]historic.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := date.Format(time.DateOnly)
	out := []historic.Stats{}
	for key, item := range r.items {
		if key.date == day {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}
