package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fightstreet/cfn-stats/internal/domain/lastupdate"
	qb "github.com/fightstreet/cfn-stats/internal/platform/querybuilder"
)

type lastUpdateTableModel struct {
	CapturedOn       time.Time `db:"captured_on"`
	DownloadComplete bool      `db:"download_complete"`
	ParsingComplete  bool      `db:"parsing_complete"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

type lastUpdateInsertModel struct {
	CapturedOn       string `db:"captured_on"`
	DownloadComplete bool   `db:"download_complete"`
	ParsingComplete  bool   `db:"parsing_complete"`
}

type LastUpdateRepository struct {
	db *sqlx.DB
}

func NewLastUpdateRepository(db *sqlx.DB) *LastUpdateRepository {
	return &LastUpdateRepository{db: db}
}

// Start records that a capture for the date began. Restarting an existing
// date keeps its progress flags; a rerun must not erase a finished stage.
func (r *LastUpdateRepository) Start(ctx context.Context, date time.Time) error {
	insertModel := lastUpdateInsertModel{CapturedOn: date.Format(time.DateOnly)}
	query, args, err := qb.InsertModel("last_update", insertModel,
		"ON CONFLICT (captured_on) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build start capture run query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("start capture run: %w", err)
	}
	return nil
}

func (r *LastUpdateRepository) MarkDownloadComplete(ctx context.Context, date time.Time) error {
	return r.markStage(ctx, date, "download_complete")
}

func (r *LastUpdateRepository) MarkParsingComplete(ctx context.Context, date time.Time) error {
	return r.markStage(ctx, date, "parsing_complete")
}

func (r *LastUpdateRepository) markStage(ctx context.Context, date time.Time, column string) error {
	query, args, err := qb.Update("last_update").
		Set(column, true).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("captured_on", date.Format(time.DateOnly))).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark %s query: %w", column, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark %s: %w", column, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("mark %s for %s: %w", column, date.Format(time.DateOnly), lastupdate.ErrNotFound)
	}
	return nil
}

func (r *LastUpdateRepository) Get(ctx context.Context, date time.Time) (lastupdate.Run, error) {
	query, args, err := qb.Select("*").From("last_update").
		Where(qb.Eq("captured_on", date.Format(time.DateOnly))).
		ToSQL()
	if err != nil {
		return lastupdate.Run{}, fmt.Errorf("build get capture run query: %w", err)
	}

	var row lastUpdateTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return lastupdate.Run{}, lastupdate.ErrNotFound
		}
		return lastupdate.Run{}, fmt.Errorf("get capture run: %w", err)
	}
	return runFromRow(row), nil
}

func (r *LastUpdateRepository) LatestComplete(ctx context.Context) (lastupdate.Run, error) {
	query, args, err := qb.Select("*").From("last_update").
		Where(
			qb.Eq("download_complete", true),
			qb.Eq("parsing_complete", true),
		).
		OrderBy("captured_on DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return lastupdate.Run{}, fmt.Errorf("build latest complete run query: %w", err)
	}

	var row lastUpdateTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return lastupdate.Run{}, lastupdate.ErrNotFound
		}
		return lastupdate.Run{}, fmt.Errorf("get latest complete run: %w", err)
	}
	return runFromRow(row), nil
}

func runFromRow(row lastUpdateTableModel) lastupdate.Run {
	return lastupdate.Run{
		Date:             row.CapturedOn,
		DownloadComplete: row.DownloadComplete,
		ParsingComplete:  row.ParsingComplete,
	}
}
