package buckler

import (
	"encoding/json"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

// Document is one parsed response from the Buckler profile endpoints. Raw
// holds the exact bytes received so a verified document can be cached without
// re-encoding.
type Document struct {
	Raw       []byte
	PageProps PageProps
}

type documentEnvelope struct {
	PageProps PageProps `json:"pageProps"`
}

// PageProps carries every section any subject can return. Sections absent
// from the response stay nil, which is what verification keys off.
type PageProps struct {
	FighterBannerInfo *FighterBannerInfo `json:"fighter_banner_info"`
	Play              *PlayData          `json:"play"`

	CircleBaseInfo     json.RawMessage `json:"circle_base_info"`
	CircleMemberList   []CircleMember  `json:"circle_member_list"`
	CircleTimelineList json.RawMessage `json:"circle_timeline_list"`

	Avatar *AvatarData `json:"avatar"`

	ReplayList *[]Replay `json:"replay_list"`
}

type FighterBannerInfo struct {
	PersonalInfo                PersonalInfo    `json:"personal_info"`
	FavoriteCharacterID         int             `json:"favorite_character_id"`
	FavoriteCharacterLeagueInfo LeagueInfo      `json:"favorite_character_league_info"`
	LastPlayAt                  int64           `json:"last_play_at"`
	TitleData                   TitleData       `json:"title_data"`
	ProfileComment              ProfileComment  `json:"profile_comment"`
	AllowCrossPlay              bool            `json:"allow_cross_play"`
	HomeInfo                    json.RawMessage `json:"home_info"`
}

type PersonalInfo struct {
	FighterID string `json:"fighter_id"`
	ShortID   int64  `json:"short_id"`
}

type LeagueInfo struct {
	LeaguePoint  int `json:"league_point"`
	MasterRating int `json:"master_rating"`
	LeagueRank   int `json:"league_rank"`
}

type TitleData struct {
	TitleDataVal       string `json:"title_data_val"`
	TitleDataPlateName string `json:"title_data_plate_name"`
}

type ProfileComment struct {
	ProfileTagName   string `json:"profile_tag_name"`
	ProfileTagOption string `json:"profile_tag_option"`
}

type PlayData struct {
	BaseInfo                 *BaseInfo             `json:"base_info"`
	BattleStats              *BattleStats          `json:"battle_stats"`
	CharacterLeagueInfos     []CharacterLeagueInfo `json:"character_league_infos"`
	CharacterPlayPointInfos  json.RawMessage       `json:"character_play_point_infos"`
	CharacterWinRates        json.RawMessage       `json:"character_win_rates"`
	CharacterWinRatesByRival json.RawMessage       `json:"character_win_rates_by_rival_character"`
	CurrentSeasonID          *int                  `json:"current_season_id"`
	SeasonIDs                json.RawMessage       `json:"season_ids"`
}

type BaseInfo struct {
	ContentPlayTimeList []ContentPlayTime `json:"content_play_time_list"`
	EnjoyTotalPoint     int               `json:"enjoy_total_point"`
}

type ContentPlayTime struct {
	ContentTypeName string `json:"content_type_name"`
	PlayTime        int    `json:"play_time"`
}

type BattleStats struct {
	BattleHubMatchPlayCount    int `json:"battle_hub_match_play_count"`
	RankMatchPlayCount         int `json:"rank_match_play_count"`
	CasualMatchPlayCount       int `json:"casual_match_play_count"`
	CustomRoomMatchPlayCount   int `json:"custom_room_match_play_count"`
	TotalAllCharacterPlayPoint int `json:"total_all_character_play_point"`
}

type CharacterLeagueInfo struct {
	CharacterID int        `json:"character_id"`
	LeagueInfo  LeagueInfo `json:"league_info"`
}

type CircleMember struct {
	FighterBannerInfo FighterBannerInfo `json:"fighter_banner_info"`
	JoinedAt          int64             `json:"joined_at"`
	Position          int               `json:"position"`
}

type AvatarData struct {
	EquipedStyle     json.RawMessage `json:"equiped_style"`
	Equipments       json.RawMessage `json:"equipments"`
	Gender           json.RawMessage `json:"gender"`
	ShishoCharacters json.RawMessage `json:"shisho_characters"`
	Status           json.RawMessage `json:"status"`
	StyleList        json.RawMessage `json:"style_list"`
}

type Replay struct {
	ReplayID   string `json:"replay_id"`
	UploadedAt int64  `json:"uploaded_at"`
}

// ParseDocument decodes raw endpoint bytes, keeping them attached for the
// cache write.
func ParseDocument(raw []byte) (*Document, error) {
	var envelope documentEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, crerr.Wrap(err, "decode buckler document")
	}
	return &Document{Raw: raw, PageProps: envelope.PageProps}, nil
}

// Replays returns the replay list of a battlelog document, nil when the
// section was absent entirely.
func (d *Document) Replays() []Replay {
	if d.PageProps.ReplayList == nil {
		return nil
	}
	return *d.PageProps.ReplayList
}

// UploadedTime converts the replay's epoch timestamp into the given zone.
func (r Replay) UploadedTime(loc *time.Location) time.Time {
	return time.Unix(r.UploadedAt, 0).In(loc)
}
