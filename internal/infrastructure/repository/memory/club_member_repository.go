package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fightstreet/cfn-stats/internal/domain/club"
)

type clubMemberKey struct {
	clubID   string
	playerID string
}

type ClubMemberRepository struct {
	mu    sync.RWMutex
	items map[clubMemberKey]club.Member
}

func NewClubMemberRepository() *ClubMemberRepository {
	return &ClubMemberRepository{items: map[clubMemberKey]club.Member{}}
}

func (r *ClubMemberRepository) UpsertMany(_ context.Context, members []club.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range members {
		r.items[clubMemberKey{clubID: item.ClubID, playerID: item.PlayerID}] = item
	}
	return nil
}

func (r *ClubMemberRepository) ListByClub(_ context.Context, clubID string) ([]club.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []club.Member{}
	for key, item := range r.items {
		if key.clubID == clubID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

func (r *ClubMemberRepository) ListHiddenIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []string{}
	for _, item := range r.items {
		if item.Hidden {
			out = append(out, item.PlayerID)
		}
	}
	sort.Strings(out)
	return out, nil
}
