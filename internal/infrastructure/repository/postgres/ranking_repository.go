package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fightstreet/cfn-stats/internal/domain/ranking"
	qb "github.com/fightstreet/cfn-stats/internal/platform/querybuilder"
)

type RankingRepository struct {
	db *sqlx.DB
}

func NewRankingRepository(db *sqlx.DB) *RankingRepository {
	return &RankingRepository{db: db}
}

// InsertMany writes one snapshot row per ranked character. A row that already
// exists for the same date, player, and character is left untouched, so a
// rerun of the same capture day is a no-op.
func (r *RankingRepository) InsertMany(ctx context.Context, snapshots []ranking.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx insert ranking snapshots: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range snapshots {
		insertModel := rankingInsertModel{
			CapturedOn:   item.Date.Format(time.DateOnly),
			PlayerID:     item.PlayerID,
			PlayerName:   item.PlayerName,
			CharID:       item.CharID,
			LeaguePoints: item.LeaguePoints,
			MasterRating: item.MasterRating,
			Phase:        item.Phase,
		}
		query, args, err := qb.InsertModel("ranking", insertModel,
			"ON CONFLICT (captured_on, player_id, char_id) DO NOTHING")
		if err != nil {
			return fmt.Errorf("build insert ranking snapshot query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert ranking snapshot player=%s char=%s: %w", item.PlayerID, item.CharID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert ranking snapshots tx: %w", err)
	}
	return nil
}

func (r *RankingRepository) ListByDate(ctx context.Context, date time.Time) ([]ranking.Snapshot, error) {
	query, args, err := qb.Select("*").From("ranking").
		Where(qb.Eq("captured_on", date.Format(time.DateOnly))).
		OrderBy("player_id", "char_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list ranking snapshots query: %w", err)
	}

	var rows []rankingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list ranking snapshots: %w", err)
	}

	out := make([]ranking.Snapshot, 0, len(rows))
	for _, row := range rows {
		out = append(out, ranking.Snapshot{
			Date:         row.CapturedOn,
			PlayerID:     row.PlayerID,
			PlayerName:   row.PlayerName,
			CharID:       row.CharID,
			LeaguePoints: row.LeaguePoints,
			MasterRating: row.MasterRating,
			Phase:        row.Phase,
		})
	}
	return out, nil
}

func (r *RankingRepository) ListDates(ctx context.Context) ([]time.Time, error) {
	query, args, err := qb.Select("captured_on").From("ranking").
		GroupBy("captured_on").
		OrderBy("captured_on DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list capture dates query: %w", err)
	}

	var dates []time.Time
	if err := r.db.SelectContext(ctx, &dates, query, args...); err != nil {
		return nil, fmt.Errorf("list capture dates: %w", err)
	}
	return dates, nil
}
