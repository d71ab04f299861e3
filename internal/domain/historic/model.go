package historic

import "time"

// Stats is the per-player daily summary: one row per player per capture date
// regardless of how many characters they play. SelectedChar carries the rating
// of whichever character the player had equipped when the profile was captured.
type Stats struct {
	Date         time.Time
	PlayerID     string
	PlayerName   string
	SelectedChar string
	LeaguePoints int
	MasterRating int

	HubMatches    int
	RankedMatches int
	CasualMatches int
	CustomMatches int

	HubTime      int
	RankedTime   int
	CasualTime   int
	CustomTime   int
	ExtremeTime  int
	VersusTime   int
	PracticeTime int
	ArcadeTime   int
	WorldTourTime int

	TotalKudos int
	Thumbs     int
	LastPlayed time.Time
	Tagline    string
	TitleText  string
	TitlePlate string
}
