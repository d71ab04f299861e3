package club

import "time"

// Member is one entry in a club roster. Hidden members stay in the roster so
// their stats keep being captured, but they are excluded from every board.
type Member struct {
	ClubID     string
	PlayerID   string
	PlayerName string
	JoinedAt   time.Time
	Position   int
	Hidden     bool
}
