package buckler

import (
	"fmt"
	"path/filepath"
	"time"

	crerr "github.com/cockroachdb/errors"
)

var errMissingSection = crerr.New("document missing required section")

// Subject identifies one kind of remote resource. Each variant owns its cache
// slot layout, its URL shape, and its structural verification rules, so adding
// a resource kind is one new type rather than edits across the fetch engine.
type Subject interface {
	Name() string
	// CachePath maps (owner, date, page) to the durable cache leaf for this
	// subject. Page is ignored by single-page subjects.
	CachePath(root, ownerID string, date time.Time, page int) string
	// RequestURL builds the remote URL. The build token is the opaque
	// deployment version segment the endpoint embeds in its data routes.
	RequestURL(baseURL, buildToken, ownerID string, page int) string
	// Verify rejects structurally incomplete documents. A failure is fatal
	// to the run; incomplete documents are never cached.
	Verify(doc *Document) error
}

// PaginatedSubject adds the page-iteration signals the fetch loop needs.
type PaginatedSubject interface {
	Subject
	// Empty reports whether the page carries no records, terminating
	// pagination in every mode.
	Empty(doc *Document) bool
	// Stale reports whether every record on the page predates the cutoff,
	// terminating pagination in delta mode.
	Stale(doc *Document, cutoff time.Time) bool
}

func cacheLeaf(root, dir, ownerID, file string, date time.Time) string {
	return filepath.Join(
		root,
		dir,
		fmt.Sprintf("%d", date.Year()),
		fmt.Sprintf("%d", int(date.Month())),
		fmt.Sprintf("%d", date.Day()),
		ownerID,
		file,
	)
}

// Overview is the player profile summary: banner, battle stats, and the
// per-character league standings the ingestion transform feeds on.
type Overview struct{}

func (Overview) Name() string { return "overview" }

func (Overview) CachePath(root, ownerID string, date time.Time, _ int) string {
	return cacheLeaf(root, "cfn_stats", ownerID, ownerID+"_overview.json", date)
}

func (Overview) RequestURL(baseURL, buildToken, ownerID string, _ int) string {
	return fmt.Sprintf("%s/_next/data/%s/en/profile/%s.json?sid=%s", baseURL, buildToken, ownerID, ownerID)
}

func (Overview) Verify(doc *Document) error {
	if doc.PageProps.FighterBannerInfo == nil {
		return crerr.Wrap(errMissingSection, "overview: fighter_banner_info")
	}
	play := doc.PageProps.Play
	if play == nil {
		return crerr.Wrap(errMissingSection, "overview: play")
	}
	switch {
	case play.BaseInfo == nil:
		return crerr.Wrap(errMissingSection, "overview: play.base_info")
	case play.BattleStats == nil:
		return crerr.Wrap(errMissingSection, "overview: play.battle_stats")
	case play.CharacterLeagueInfos == nil:
		return crerr.Wrap(errMissingSection, "overview: play.character_league_infos")
	case len(play.CharacterPlayPointInfos) == 0:
		return crerr.Wrap(errMissingSection, "overview: play.character_play_point_infos")
	case len(play.CharacterWinRates) == 0:
		return crerr.Wrap(errMissingSection, "overview: play.character_win_rates")
	case len(play.CharacterWinRatesByRival) == 0:
		return crerr.Wrap(errMissingSection, "overview: play.character_win_rates_by_rival_character")
	case play.CurrentSeasonID == nil:
		return crerr.Wrap(errMissingSection, "overview: play.current_season_id")
	case len(play.SeasonIDs) == 0:
		return crerr.Wrap(errMissingSection, "overview: play.season_ids")
	}
	return nil
}

// Avatar is the player's world-tour avatar loadout.
type Avatar struct{}

func (Avatar) Name() string { return "avatar" }

func (Avatar) CachePath(root, ownerID string, date time.Time, _ int) string {
	return cacheLeaf(root, "cfn_stats", ownerID, ownerID+"_avatar.json", date)
}

func (Avatar) RequestURL(baseURL, buildToken, ownerID string, _ int) string {
	return fmt.Sprintf("%s/_next/data/%s/en/profile/%s/avatar.json?sid=%s", baseURL, buildToken, ownerID, ownerID)
}

func (Avatar) Verify(doc *Document) error {
	if doc.PageProps.FighterBannerInfo == nil {
		return crerr.Wrap(errMissingSection, "avatar: fighter_banner_info")
	}
	avatar := doc.PageProps.Avatar
	if avatar == nil {
		return crerr.Wrap(errMissingSection, "avatar: avatar")
	}
	switch {
	case len(avatar.EquipedStyle) == 0:
		return crerr.Wrap(errMissingSection, "avatar: avatar.equiped_style")
	case len(avatar.Equipments) == 0:
		return crerr.Wrap(errMissingSection, "avatar: avatar.equipments")
	case len(avatar.Gender) == 0:
		return crerr.Wrap(errMissingSection, "avatar: avatar.gender")
	case len(avatar.ShishoCharacters) == 0:
		return crerr.Wrap(errMissingSection, "avatar: avatar.shisho_characters")
	case len(avatar.Status) == 0:
		return crerr.Wrap(errMissingSection, "avatar: avatar.status")
	case len(avatar.StyleList) == 0:
		return crerr.Wrap(errMissingSection, "avatar: avatar.style_list")
	}
	return nil
}

// Club is a club roster page. The owner id in its fetch key is the club id.
type Club struct{}

func (Club) Name() string { return "club" }

func (Club) CachePath(root, clubID string, date time.Time, _ int) string {
	return cacheLeaf(root, "cfn_stats", clubID, clubID+".json", date)
}

func (Club) RequestURL(baseURL, buildToken, clubID string, _ int) string {
	return fmt.Sprintf("%s/_next/data/%s/en/club/%s.json?clubid=%s", baseURL, buildToken, clubID, clubID)
}

func (Club) Verify(doc *Document) error {
	switch {
	case len(doc.PageProps.CircleBaseInfo) == 0:
		return crerr.Wrap(errMissingSection, "club: circle_base_info")
	case doc.PageProps.CircleMemberList == nil:
		return crerr.Wrap(errMissingSection, "club: circle_member_list")
	case len(doc.PageProps.CircleTimelineList) == 0:
		return crerr.Wrap(errMissingSection, "club: circle_timeline_list")
	}
	return nil
}

// MatchCategory selects one battlelog feed.
type MatchCategory string

const (
	AllMatches    MatchCategory = "battlelog"
	RankedMatches MatchCategory = "rank"
	CasualMatches MatchCategory = "casual"
	CustomMatches MatchCategory = "custom"
	HubMatches    MatchCategory = "hub"
)

// MatchCategories lists every battlelog feed in capture order.
var MatchCategories = []MatchCategory{AllMatches, RankedMatches, CasualMatches, CustomMatches, HubMatches}

// Battlelog is a paginated replay feed for one category.
type Battlelog struct {
	Category MatchCategory
}

func (b Battlelog) Name() string {
	if b.Category == AllMatches {
		return "battlelog"
	}
	return "battlelog_" + string(b.Category)
}

func (b Battlelog) CachePath(root, ownerID string, date time.Time, page int) string {
	file := fmt.Sprintf("%s_%s_%02d.json", ownerID, b.Name(), page)
	return cacheLeaf(root, "cfn_stats", ownerID, file, date)
}

func (b Battlelog) RequestURL(baseURL, buildToken, ownerID string, page int) string {
	segment := "battlelog"
	if b.Category != AllMatches {
		segment = "battlelog/" + string(b.Category)
	}
	return fmt.Sprintf("%s/_next/data/%s/en/profile/%s/%s.json?page=%d&sid=%s",
		baseURL, buildToken, ownerID, segment, page, ownerID)
}

func (b Battlelog) Verify(doc *Document) error {
	if doc.PageProps.ReplayList == nil {
		return crerr.Wrap(errMissingSection, b.Name()+": replay_list")
	}
	return nil
}

func (b Battlelog) Empty(doc *Document) bool {
	return len(doc.Replays()) == 0
}

// Stale reports whether every replay on the page was uploaded strictly
// before the cutoff. An empty page is not stale, it is empty.
func (b Battlelog) Stale(doc *Document, cutoff time.Time) bool {
	replays := doc.Replays()
	if len(replays) == 0 {
		return false
	}
	for _, replay := range replays {
		if !replay.UploadedTime(cutoff.Location()).Before(cutoff) {
			return false
		}
	}
	return true
}
