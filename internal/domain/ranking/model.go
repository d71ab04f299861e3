package ranking

import "time"

// Snapshot is one character's league standing for one player on one capture date.
// A player produces one row per character that has ranked points; characters the
// player never took into ranked simply have no row.
type Snapshot struct {
	Date         time.Time
	PlayerID     string
	PlayerName   string
	CharID       string
	LeaguePoints int
	MasterRating int
	Phase        int
}
