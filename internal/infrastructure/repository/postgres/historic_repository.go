package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fightstreet/cfn-stats/internal/domain/historic"
	qb "github.com/fightstreet/cfn-stats/internal/platform/querybuilder"
)

type HistoricRepository struct {
	db *sqlx.DB
}

func NewHistoricRepository(db *sqlx.DB) *HistoricRepository {
	return &HistoricRepository{db: db}
}

func (r *HistoricRepository) InsertMany(ctx context.Context, rows []historic.Stats) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx insert historic stats: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range rows {
		insertModel := historicInsertModel{
			CapturedOn:    item.Date.Format(time.DateOnly),
			PlayerID:      item.PlayerID,
			PlayerName:    item.PlayerName,
			SelectedChar:  item.SelectedChar,
			LeaguePoints:  item.LeaguePoints,
			MasterRating:  item.MasterRating,
			HubMatches:    item.HubMatches,
			RankedMatches: item.RankedMatches,
			CasualMatches: item.CasualMatches,
			CustomMatches: item.CustomMatches,
			HubTime:       item.HubTime,
			RankedTime:    item.RankedTime,
			CasualTime:    item.CasualTime,
			CustomTime:    item.CustomTime,
			ExtremeTime:   item.ExtremeTime,
			VersusTime:    item.VersusTime,
			PracticeTime:  item.PracticeTime,
			ArcadeTime:    item.ArcadeTime,
			WorldTourTime: item.WorldTourTime,
			TotalKudos:    item.TotalKudos,
			Thumbs:        item.Thumbs,
			LastPlayed:    item.LastPlayed,
			Tagline:       item.Tagline,
			TitleText:     item.TitleText,
			TitlePlate:    item.TitlePlate,
		}
		query, args, err := qb.InsertModel("historic_stats", insertModel,
			"ON CONFLICT (captured_on, player_id) DO NOTHING")
		if err != nil {
			return fmt.Errorf("build insert historic stats query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert historic stats player=%s: %w", item.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert historic stats tx: %w", err)
	}
	return nil
}

func (r *HistoricRepository) ListByDate(ctx context.Context, date time.Time) ([]historic.Stats, error) {
	query, args, err := qb.Select("*").From("historic_stats").
		Where(qb.Eq("captured_on", date.Format(time.DateOnly))).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list historic stats query: %w", err)
	}

	var rows []historicTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list historic stats: %w", err)
	}

	out := make([]historic.Stats, 0, len(rows))
	for _, row := range rows {
		out = append(out, historic.Stats{
			Date:          row.CapturedOn,
			PlayerID:      row.PlayerID,
			PlayerName:    row.PlayerName,
			SelectedChar:  row.SelectedChar,
			LeaguePoints:  row.LeaguePoints,
			MasterRating:  row.MasterRating,
			HubMatches:    row.HubMatches,
			RankedMatches: row.RankedMatches,
			CasualMatches: row.CasualMatches,
			CustomMatches: row.CustomMatches,
			HubTime:       row.HubTime,
			RankedTime:    row.RankedTime,
			CasualTime:    row.CasualTime,
			CustomTime:    row.CustomTime,
			ExtremeTime:   row.ExtremeTime,
			VersusTime:    row.VersusTime,
			PracticeTime:  row.PracticeTime,
			ArcadeTime:    row.ArcadeTime,
			WorldTourTime: row.WorldTourTime,
			TotalKudos:    row.TotalKudos,
			Thumbs:        row.Thumbs,
			LastPlayed:    row.LastPlayed,
			Tagline:       row.Tagline,
			TitleText:     row.TitleText,
			TitlePlate:    row.TitlePlate,
		})
	}
	return out, nil
}
