package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/fightstreet/cfn-stats/internal/domain/club"
	"github.com/fightstreet/cfn-stats/internal/domain/historic"
	"github.com/fightstreet/cfn-stats/internal/domain/lastupdate"
	"github.com/fightstreet/cfn-stats/internal/domain/ranking"
	"github.com/fightstreet/cfn-stats/internal/platform/cache"
	"github.com/fightstreet/cfn-stats/internal/platform/logging"
)

// LeaderboardEntry is one board row. Rank is zero in grouped and kudos lists,
// which carry no competition rank.
type LeaderboardEntry struct {
	Rank       int    `json:"rank,omitempty"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Character  string `json:"char_id,omitempty"`
	Value      int    `json:"value"`
	LeagueName string `json:"league_name,omitempty"`
	Class      string `json:"class"`
}

// Board pairs the exhaustive per-character list with the one-row-per-player
// view.
type Board struct {
	All     []LeaderboardEntry `json:"all"`
	Grouped []LeaderboardEntry `json:"grouped"`
}

type Leaderboards struct {
	Date         string             `json:"date"`
	LeaguePoints Board              `json:"league_points"`
	MasterRating Board              `json:"master_rating"`
	Kudos        []LeaderboardEntry `json:"kudos"`
}

type LeaderboardService struct {
	rankingRepo    ranking.Repository
	historicRepo   historic.Repository
	clubRepo       club.Repository
	lastUpdateRepo lastupdate.Repository
	boardCache     *cache.Store
	logger         *logging.Logger
}

func NewLeaderboardService(
	rankingRepo ranking.Repository,
	historicRepo historic.Repository,
	clubRepo club.Repository,
	lastUpdateRepo lastupdate.Repository,
	boardCache *cache.Store,
	logger *logging.Logger,
) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeaderboardService{
		rankingRepo:    rankingRepo,
		historicRepo:   historicRepo,
		clubRepo:       clubRepo,
		lastUpdateRepo: lastUpdateRepo,
		boardCache:     boardCache,
		logger:         logger,
	}
}

// Leaderboard builds the full board set for one capture date. A date with no
// rows yields empty boards, never an error; read requests must not surface
// ingestion trouble.
func (s *LeaderboardService) Leaderboard(ctx context.Context, date time.Time) (Leaderboards, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Leaderboard")
	defer span.End()

	key := "leaderboard:" + date.Format(time.DateOnly)
	if s.boardCache != nil {
		out, err := s.boardCache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
			return s.buildLeaderboards(ctx, date)
		})
		if err != nil {
			return Leaderboards{}, err
		}
		boards, ok := out.(Leaderboards)
		if !ok {
			return Leaderboards{}, fmt.Errorf("unexpected cached board type %T", out)
		}
		return boards, nil
	}
	return s.buildLeaderboards(ctx, date)
}

// LatestLeaderboard builds boards for the most recent fully captured date.
func (s *LeaderboardService) LatestLeaderboard(ctx context.Context) (Leaderboards, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.LatestLeaderboard")
	defer span.End()

	run, err := s.lastUpdateRepo.LatestComplete(ctx)
	if err != nil {
		if stderrors.Is(err, lastupdate.ErrNotFound) {
			return Leaderboards{}, nil
		}
		return Leaderboards{}, fmt.Errorf("find latest complete capture: %w", err)
	}
	return s.Leaderboard(ctx, run.Date)
}

// ListDates returns every date with ranking data, newest first.
func (s *LeaderboardService) ListDates(ctx context.Context) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.ListDates")
	defer span.End()

	dates, err := s.rankingRepo.ListDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list capture dates: %w", err)
	}
	out := make([]string, 0, len(dates))
	for _, date := range dates {
		out = append(out, date.Format(time.DateOnly))
	}
	return out, nil
}

// ratingRow is the reconciled per-character rating the boards rank on.
type ratingRow struct {
	playerID   string
	playerName string
	charID     string
	lp         int
	mr         int
}

func (s *LeaderboardService) buildLeaderboards(ctx context.Context, date time.Time) (Leaderboards, error) {
	rankRows, err := s.rankingRepo.ListByDate(ctx, date)
	if err != nil {
		return Leaderboards{}, fmt.Errorf("list ranking snapshots: %w", err)
	}
	histRows, err := s.historicRepo.ListByDate(ctx, date)
	if err != nil {
		return Leaderboards{}, fmt.Errorf("list historic summaries: %w", err)
	}
	hiddenIDs, err := s.clubRepo.ListHiddenIDs(ctx)
	if err != nil {
		return Leaderboards{}, fmt.Errorf("list hidden members: %w", err)
	}
	hidden := make(map[string]struct{}, len(hiddenIDs))
	for _, id := range hiddenIDs {
		hidden[id] = struct{}{}
	}

	rows := reconcileRatings(rankRows, histRows, hidden)

	boards := Leaderboards{
		Date:         date.Format(time.DateOnly),
		LeaguePoints: buildBoard(rows, func(r ratingRow) int { return r.lp }, ranking.LeagueTier),
		MasterRating: buildBoard(
			filterRows(rows, func(r ratingRow) bool { return r.mr > 0 }),
			func(r ratingRow) int { return r.mr },
			ranking.MasterTier,
		),
		Kudos: buildKudosBoard(histRows, hidden),
	}

	s.logger.DebugContext(ctx, "leaderboards built",
		"date", boards.Date,
		"entries", len(boards.LeaguePoints.All),
		"kudos_entries", len(boards.Kudos))
	return boards, nil
}

// reconcileRatings unions the current-phase ranking snapshots with each
// player's selected-character rating from the daily summaries. The summary
// side covers players inactive this phase; on a key collision the
// current-phase snapshot wins. Rows at the unranked sentinel (-1) and rows
// for hidden members are dropped.
func reconcileRatings(rankRows []ranking.Snapshot, histRows []historic.Stats, hidden map[string]struct{}) []ratingRow {
	type key struct {
		playerID string
		charID   string
	}
	merged := make(map[key]ratingRow, len(rankRows)+len(histRows))

	for _, row := range histRows {
		if row.LeaguePoints == -1 {
			continue
		}
		if _, skip := hidden[row.PlayerID]; skip {
			continue
		}
		merged[key{row.PlayerID, row.SelectedChar}] = ratingRow{
			playerID:   row.PlayerID,
			playerName: row.PlayerName,
			charID:     row.SelectedChar,
			lp:         row.LeaguePoints,
			mr:         row.MasterRating,
		}
	}

	for _, row := range rankRows {
		if row.LeaguePoints == -1 {
			continue
		}
		if _, skip := hidden[row.PlayerID]; skip {
			continue
		}
		merged[key{row.PlayerID, row.CharID}] = ratingRow{
			playerID:   row.PlayerID,
			playerName: row.PlayerName,
			charID:     row.CharID,
			lp:         row.LeaguePoints,
			mr:         row.MasterRating,
		}
	}

	rows := make([]ratingRow, 0, len(merged))
	for _, row := range merged {
		rows = append(rows, row)
	}
	return rows
}

func filterRows(rows []ratingRow, keep func(ratingRow) bool) []ratingRow {
	out := make([]ratingRow, 0, len(rows))
	for _, row := range rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

// buildBoard sorts by the metric and assigns compressed competition ranks:
// tied metrics share the rank of the position where the tie run started.
// Ties sort by player id then character id so output is deterministic.
func buildBoard(rows []ratingRow, metric func(ratingRow) int, tier func(int) ranking.Tier) Board {
	sorted := make([]ratingRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		mi, mj := metric(sorted[i]), metric(sorted[j])
		if mi != mj {
			return mi > mj
		}
		if sorted[i].playerID != sorted[j].playerID {
			return sorted[i].playerID < sorted[j].playerID
		}
		return sorted[i].charID < sorted[j].charID
	})

	board := Board{
		All:     make([]LeaderboardEntry, 0, len(sorted)),
		Grouped: make([]LeaderboardEntry, 0, len(sorted)),
	}
	seen := make(map[string]struct{}, len(sorted))

	displayRank := 1
	previous := 0
	streak := 0
	for i, row := range sorted {
		position := i + 1
		value := metric(row)

		if i == 0 || value != previous {
			displayRank = position
			streak = 0
		} else {
			streak++
			displayRank = position - streak
		}
		previous = value

		bucket := tier(value)
		entry := LeaderboardEntry{
			Rank:       displayRank,
			PlayerID:   row.playerID,
			PlayerName: row.playerName,
			Character:  characterLabel(row.charID),
			Value:      value,
			LeagueName: bucket.Name,
			Class:      bucket.Class,
		}
		board.All = append(board.All, entry)

		if _, ok := seen[row.playerName]; !ok {
			seen[row.playerName] = struct{}{}
			grouped := entry
			grouped.Rank = 0
			board.Grouped = append(board.Grouped, grouped)
		}
	}
	return board
}

// buildKudosBoard ranks total kudos without competition ranks. Every entry
// stays on the board; rows past the leaders just pick up a muted class.
func buildKudosBoard(histRows []historic.Stats, hidden map[string]struct{}) []LeaderboardEntry {
	rows := make([]historic.Stats, 0, len(histRows))
	for _, row := range histRows {
		if _, skip := hidden[row.PlayerID]; skip {
			continue
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalKudos != rows[j].TotalKudos {
			return rows[i].TotalKudos > rows[j].TotalKudos
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})

	board := make([]LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		class := ranking.KudosTier(row.TotalKudos).Class
		if i > 10 {
			class = "bottom " + class
		}
		board = append(board, LeaderboardEntry{
			PlayerID:   row.PlayerID,
			PlayerName: row.PlayerName,
			Value:      row.TotalKudos,
			Class:      class,
		})
	}
	return board
}

// characterLabel maps a stored numeric character id to its display name.
func characterLabel(charID string) string {
	id, err := strconv.Atoi(charID)
	if err != nil {
		return charID
	}
	return ranking.CharacterName(id)
}
