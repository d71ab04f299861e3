package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fightstreet/cfn-stats/internal/domain/lastupdate"
)

type LastUpdateRepository struct {
	mu   sync.RWMutex
	runs map[string]lastupdate.Run
}

func NewLastUpdateRepository() *LastUpdateRepository {
	return &LastUpdateRepository{runs: map[string]lastupdate.Run{}}
}

func (r *LastUpdateRepository) Start(_ context.Context, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := date.Format(time.DateOnly)
	if _, exists := r.runs[key]; !exists {
		r.runs[key] = lastupdate.Run{Date: date}
	}
	return nil
}

func (r *LastUpdateRepository) MarkDownloadComplete(ctx context.Context, date time.Time) error {
	return r.mark(date, func(run *lastupdate.Run) { run.DownloadComplete = true })
}

func (r *LastUpdateRepository) MarkParsingComplete(ctx context.Context, date time.Time) error {
	return r.mark(date, func(run *lastupdate.Run) { run.ParsingComplete = true })
}

func (r *LastUpdateRepository) mark(date time.Time, apply func(*lastupdate.Run)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := date.Format(time.DateOnly)
	run, exists := r.runs[key]
	if !exists {
		return lastupdate.ErrNotFound
	}
	apply(&run)
	r.runs[key] = run
	return nil
}

func (r *LastUpdateRepository) Get(_ context.Context, date time.Time) (lastupdate.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, exists := r.runs[date.Format(time.DateOnly)]
	if !exists {
		return lastupdate.Run{}, lastupdate.ErrNotFound
	}
	return run, nil
}

func (r *LastUpdateRepository) LatestComplete(_ context.Context) (lastupdate.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *lastupdate.Run
	for key := range r.runs {
		run := r.runs[key]
		if !run.Complete() {
			continue
		}
		if best == nil || run.Date.After(best.Date) {
			best = &run
		}
	}
	if best == nil {
		return lastupdate.Run{}, lastupdate.ErrNotFound
	}
	return *best, nil
}
