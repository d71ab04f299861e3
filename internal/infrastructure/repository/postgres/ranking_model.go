package postgres

import "time"

type rankingTableModel struct {
	ID           int64     `db:"id"`
	CapturedOn   time.Time `db:"captured_on"`
	PlayerID     string    `db:"player_id"`
	PlayerName   string    `db:"player_name"`
	CharID       string    `db:"char_id"`
	LeaguePoints int       `db:"league_points"`
	MasterRating int       `db:"master_rating"`
	Phase        int       `db:"phase"`
	CreatedAt    time.Time `db:"created_at"`
}

type rankingInsertModel struct {
	CapturedOn   string `db:"captured_on"`
	PlayerID     string `db:"player_id"`
	PlayerName   string `db:"player_name"`
	CharID       string `db:"char_id"`
	LeaguePoints int    `db:"league_points"`
	MasterRating int    `db:"master_rating"`
	Phase        int    `db:"phase"`
}
