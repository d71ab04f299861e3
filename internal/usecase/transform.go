package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fightstreet/cfn-stats/external/buckler"
	"github.com/fightstreet/cfn-stats/internal/domain/club"
	"github.com/fightstreet/cfn-stats/internal/domain/historic"
	"github.com/fightstreet/cfn-stats/internal/domain/ranking"
)

// BuildRankingRows extracts one ranking snapshot per character with league
// points from a verified overview document. Characters the player never took
// into ranked are omitted entirely; absence means unranked, not zero.
func BuildRankingRows(doc *buckler.Document, playerID string, date time.Time) ([]ranking.Snapshot, error) {
	play := doc.PageProps.Play
	banner := doc.PageProps.FighterBannerInfo
	if play == nil || banner == nil || play.CurrentSeasonID == nil {
		return nil, fmt.Errorf("%w: overview document is missing play data", ErrInvalidInput)
	}

	phase := *play.CurrentSeasonID
	playerName := banner.PersonalInfo.FighterID

	rows := make([]ranking.Snapshot, 0, len(play.CharacterLeagueInfos))
	for _, char := range play.CharacterLeagueInfos {
		if char.LeagueInfo.LeaguePoint <= 0 {
			continue
		}
		rows = append(rows, ranking.Snapshot{
			Date:         date,
			PlayerID:     playerID,
			PlayerName:   playerName,
			CharID:       strconv.Itoa(char.CharacterID),
			LeaguePoints: char.LeagueInfo.LeaguePoint,
			MasterRating: char.LeagueInfo.MasterRating,
			Phase:        phase,
		})
	}
	return rows, nil
}

// BuildHistoricRow flattens one overview document into the per-player daily
// summary row.
func BuildHistoricRow(doc *buckler.Document, playerID string, date time.Time, zone *time.Location) (historic.Stats, error) {
	play := doc.PageProps.Play
	banner := doc.PageProps.FighterBannerInfo
	if play == nil || banner == nil || play.BaseInfo == nil || play.BattleStats == nil {
		return historic.Stats{}, fmt.Errorf("%w: overview document is missing play data", ErrInvalidInput)
	}

	row := historic.Stats{
		Date:         date,
		PlayerID:     playerID,
		PlayerName:   banner.PersonalInfo.FighterID,
		SelectedChar: strconv.Itoa(banner.FavoriteCharacterID),
		LeaguePoints: banner.FavoriteCharacterLeagueInfo.LeaguePoint,
		MasterRating: banner.FavoriteCharacterLeagueInfo.MasterRating,

		HubMatches:    play.BattleStats.BattleHubMatchPlayCount,
		RankedMatches: play.BattleStats.RankMatchPlayCount,
		CasualMatches: play.BattleStats.CasualMatchPlayCount,
		CustomMatches: play.BattleStats.CustomRoomMatchPlayCount,

		TotalKudos: play.BattleStats.TotalAllCharacterPlayPoint,
		Thumbs:     play.BaseInfo.EnjoyTotalPoint,
		LastPlayed: time.Unix(banner.LastPlayAt, 0).In(zone),
		TitleText:  banner.TitleData.TitleDataVal,
		TitlePlate: banner.TitleData.TitleDataPlateName,
		Tagline: strings.ReplaceAll(
			banner.ProfileComment.ProfileTagName,
			"{{message1}}",
			banner.ProfileComment.ProfileTagOption,
		),
	}

	for _, entry := range play.BaseInfo.ContentPlayTimeList {
		switch entry.ContentTypeName {
		case "World Tour":
			row.WorldTourTime = entry.PlayTime
		case "Ranked Matches":
			row.RankedTime = entry.PlayTime
		case "Casual Matches":
			row.CasualTime = entry.PlayTime
		case "Custom Room Matches":
			row.CustomTime = entry.PlayTime
		case "Battle Hub":
			row.HubTime = entry.PlayTime
		case "Offline Matches":
			row.VersusTime = entry.PlayTime
		case "Arcade":
			row.ArcadeTime = entry.PlayTime
		case "Practice":
			row.PracticeTime = entry.PlayTime
		case "Extreme":
			row.ExtremeTime = entry.PlayTime
		}
	}

	return row, nil
}

// BuildClubMembers converts a club roster document into member rows. Ids in
// hidden keep their stats captured but never show on a public board.
func BuildClubMembers(doc *buckler.Document, clubID string, hidden map[string]struct{}, zone *time.Location) ([]club.Member, error) {
	if doc.PageProps.CircleMemberList == nil {
		return nil, fmt.Errorf("%w: club document is missing member list", ErrInvalidInput)
	}

	members := make([]club.Member, 0, len(doc.PageProps.CircleMemberList))
	for _, entry := range doc.PageProps.CircleMemberList {
		playerID := strconv.FormatInt(entry.FighterBannerInfo.PersonalInfo.ShortID, 10)
		_, isHidden := hidden[playerID]
		members = append(members, club.Member{
			ClubID:     clubID,
			PlayerID:   playerID,
			PlayerName: entry.FighterBannerInfo.PersonalInfo.FighterID,
			JoinedAt:   time.Unix(entry.JoinedAt, 0).In(zone),
			Position:   entry.Position,
			Hidden:     isHidden,
		})
	}
	return members, nil
}
