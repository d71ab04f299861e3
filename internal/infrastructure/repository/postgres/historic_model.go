package postgres

import "time"

type historicTableModel struct {
	ID            int64     `db:"id"`
	CapturedOn    time.Time `db:"captured_on"`
	PlayerID      string    `db:"player_id"`
	PlayerName    string    `db:"player_name"`
	SelectedChar  string    `db:"selected_char"`
	LeaguePoints  int       `db:"league_points"`
	MasterRating  int       `db:"master_rating"`
	HubMatches    int       `db:"hub_matches"`
	RankedMatches int       `db:"ranked_matches"`
	CasualMatches int       `db:"casual_matches"`
	CustomMatches int       `db:"custom_matches"`
	HubTime       int       `db:"hub_time"`
	RankedTime    int       `db:"ranked_time"`
	CasualTime    int       `db:"casual_time"`
	CustomTime    int       `db:"custom_time"`
	ExtremeTime   int       `db:"extreme_time"`
	VersusTime    int       `db:"versus_time"`
	PracticeTime  int       `db:"practice_time"`
	ArcadeTime    int       `db:"arcade_time"`
	WorldTourTime int       `db:"world_tour_time"`
	TotalKudos    int       `db:"total_kudos"`
	Thumbs        int       `db:"thumbs"`
	LastPlayed    time.Time `db:"last_played"`
	Tagline       string    `db:"tagline"`
	TitleText     string    `db:"title_text"`
	TitlePlate    string    `db:"title_plate"`
	CreatedAt     time.Time `db:"created_at"`
}

type historicInsertModel struct {
	CapturedOn    string    `db:"captured_on"`
	PlayerID      string    `db:"player_id"`
	PlayerName    string    `db:"player_name"`
	SelectedChar  string    `db:"selected_char"`
	LeaguePoints  int       `db:"league_points"`
	MasterRating  int       `db:"master_rating"`
	HubMatches    int       `db:"hub_matches"`
	RankedMatches int       `db:"ranked_matches"`
	CasualMatches int       `db:"casual_matches"`
	CustomMatches int       `db:"custom_matches"`
	HubTime       int       `db:"hub_time"`
	RankedTime    int       `db:"ranked_time"`
	CasualTime    int       `db:"casual_time"`
	CustomTime    int       `db:"custom_time"`
	ExtremeTime   int       `db:"extreme_time"`
	VersusTime    int       `db:"versus_time"`
	PracticeTime  int       `db:"practice_time"`
	ArcadeTime    int       `db:"arcade_time"`
	WorldTourTime int       `db:"world_tour_time"`
	TotalKudos    int       `db:"total_kudos"`
	Thumbs        int       `db:"thumbs"`
	LastPlayed    time.Time `db:"last_played"`
	Tagline       string    `db:"tagline"`
	TitleText     string    `db:"title_text"`
	TitlePlate    string    `db:"title_plate"`
}
