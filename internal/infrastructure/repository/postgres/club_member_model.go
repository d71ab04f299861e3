package postgres

import "time"

type clubMemberTableModel struct {
	ID         int64     `db:"id"`
	ClubID     string    `db:"club_id"`
	PlayerID   string    `db:"player_id"`
	PlayerName string    `db:"player_name"`
	JoinedAt   time.Time `db:"joined_at"`
	Position   int       `db:"position"`
	Hidden     bool      `db:"hidden"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type clubMemberInsertModel struct {
	ClubID     string    `db:"club_id"`
	PlayerID   string    `db:"player_id"`
	PlayerName string    `db:"player_name"`
	JoinedAt   time.Time `db:"joined_at"`
	Position   int       `db:"position"`
	Hidden     bool      `db:"hidden"`
}
