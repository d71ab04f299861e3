package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fightstreet/cfn-stats/internal/domain/club"
	qb "github.com/fightstreet/cfn-stats/internal/platform/querybuilder"
)

type ClubMemberRepository struct {
	db *sqlx.DB
}

func NewClubMemberRepository(db *sqlx.DB) *ClubMemberRepository {
	return &ClubMemberRepository{db: db}
}

// UpsertMany refreshes the roster. Members keep their row across captures;
// name changes and hidden flips overwrite in place.
func (r *ClubMemberRepository) UpsertMany(ctx context.Context, members []club.Member) error {
	if len(members) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert club members: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range members {
		insertModel := clubMemberInsertModel{
			ClubID:     item.ClubID,
			PlayerID:   item.PlayerID,
			PlayerName: item.PlayerName,
			JoinedAt:   item.JoinedAt,
			Position:   item.Position,
			Hidden:     item.Hidden,
		}
		query, args, err := qb.InsertModel("club_members", insertModel, `ON CONFLICT (club_id, player_id)
DO UPDATE SET
    player_name = EXCLUDED.player_name,
    position = EXCLUDED.position,
    hidden = EXCLUDED.hidden,
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert club member query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert club member player=%s: %w", item.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert club members tx: %w", err)
	}
	return nil
}

func (r *ClubMemberRepository) ListByClub(ctx context.Context, clubID string) ([]club.Member, error) {
	query, args, err := qb.Select("*").From("club_members").
		Where(qb.Eq("club_id", clubID)).
		OrderBy("position", "joined_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list club members query: %w", err)
	}

	var rows []clubMemberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list club members: %w", err)
	}

	out := make([]club.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, club.Member{
			ClubID:     row.ClubID,
			PlayerID:   row.PlayerID,
			PlayerName: row.PlayerName,
			JoinedAt:   row.JoinedAt,
			Position:   row.Position,
			Hidden:     row.Hidden,
		})
	}
	return out, nil
}

func (r *ClubMemberRepository) ListHiddenIDs(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("player_id").From("club_members").
		Where(qb.Eq("hidden", true)).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list hidden members query: %w", err)
	}

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list hidden members: %w", err)
	}
	return ids, nil
}
