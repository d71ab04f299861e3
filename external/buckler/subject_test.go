package buckler

import (
	"path/filepath"
	"testing"
	"time"
)

func TestSubjectCachePaths(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		subject Subject
		owner   string
		page    int
		want    string
	}{
		{
			name:    "overview",
			subject: Overview{},
			owner:   "2222222222",
			want:    filepath.Join("root", "cfn_stats", "2024", "6", "5", "2222222222", "2222222222_overview.json"),
		},
		{
			name:    "avatar",
			subject: Avatar{},
			owner:   "2222222222",
			want:    filepath.Join("root", "cfn_stats", "2024", "6", "5", "2222222222", "2222222222_avatar.json"),
		},
		{
			name:    "club",
			subject: Club{},
			owner:   "c984cc7ce8cd44b9a209e984a73d0c9e",
			want:    filepath.Join("root", "cfn_stats", "2024", "6", "5", "c984cc7ce8cd44b9a209e984a73d0c9e", "c984cc7ce8cd44b9a209e984a73d0c9e.json"),
		},
		{
			name:    "battlelog page zero padded",
			subject: Battlelog{Category: RankedMatches},
			owner:   "2222222222",
			page:    3,
			want:    filepath.Join("root", "cfn_stats", "2024", "6", "5", "2222222222", "2222222222_battlelog_rank_03.json"),
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tc.subject.CachePath("root", tc.owner, date, tc.page)
			if got != tc.want {
				t.Fatalf("cache path mismatch\n got=%s\nwant=%s", got, tc.want)
			}
		})
	}
}

func TestSubjectRequestURLs(t *testing.T) {
	t.Parallel()

	base := "https://www.streetfighter.com/6/buckler"
	token := "abc123"

	if got, want := (Overview{}).RequestURL(base, token, "2222222222", 1),
		base+"/_next/data/abc123/en/profile/2222222222.json?sid=2222222222"; got != want {
		t.Fatalf("overview url\n got=%s\nwant=%s", got, want)
	}
	if got, want := (Avatar{}).RequestURL(base, token, "2222222222", 1),
		base+"/_next/data/abc123/en/profile/2222222222/avatar.json?sid=2222222222"; got != want {
		t.Fatalf("avatar url\n got=%s\nwant=%s", got, want)
	}
	if got, want := (Club{}).RequestURL(base, token, "club42", 1),
		base+"/_next/data/abc123/en/club/club42.json?clubid=club42"; got != want {
		t.Fatalf("club url\n got=%s\nwant=%s", got, want)
	}
	if got, want := (Battlelog{Category: AllMatches}).RequestURL(base, token, "2222222222", 2),
		base+"/_next/data/abc123/en/profile/2222222222/battlelog.json?page=2&sid=2222222222"; got != want {
		t.Fatalf("all-matches url\n got=%s\nwant=%s", got, want)
	}
	if got, want := (Battlelog{Category: HubMatches}).RequestURL(base, token, "2222222222", 4),
		base+"/_next/data/abc123/en/profile/2222222222/battlelog/hub.json?page=4&sid=2222222222"; got != want {
		t.Fatalf("hub url\n got=%s\nwant=%s", got, want)
	}
}

func TestOverviewVerify_RequiresEverySection(t *testing.T) {
	t.Parallel()

	doc, err := ParseDocument([]byte(overviewBody()))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if err := (Overview{}).Verify(doc); err != nil {
		t.Fatalf("complete overview should verify: %v", err)
	}

	missingPlay, err := ParseDocument([]byte(`{"pageProps":{"fighter_banner_info":{"personal_info":{"fighter_id":"x"}}}}`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if err := (Overview{}).Verify(missingPlay); err == nil {
		t.Fatalf("overview without play section must fail verification")
	}
}

func TestAvatarVerify(t *testing.T) {
	t.Parallel()

	sections := map[string]string{
		"equiped_style":     `{"style":"01"}`,
		"equipments":        `[{"equipment_id":1}]`,
		"gender":            `{"gender":"1"}`,
		"shisho_characters": `[{"character_id":1}]`,
		"status":            `{"level":12}`,
		"style_list":        `[{"style":"01"}]`,
	}

	body := func(omit string) string {
		avatar := "{"
		first := true
		for key, value := range sections {
			if key == omit {
				continue
			}
			if !first {
				avatar += ","
			}
			avatar += `"` + key + `":` + value
			first = false
		}
		avatar += "}"
		return `{"pageProps":{
			"fighter_banner_info":{"personal_info":{"fighter_id":"x"}},
			"avatar":` + avatar + `
		}}`
	}

	complete, err := ParseDocument([]byte(body("")))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if err := (Avatar{}).Verify(complete); err != nil {
		t.Fatalf("complete avatar doc should verify: %v", err)
	}

	for section := range sections {
		section := section
		t.Run("missing "+section, func(t *testing.T) {
			t.Parallel()
			doc, err := ParseDocument([]byte(body(section)))
			if err != nil {
				t.Fatalf("parse fixture: %v", err)
			}
			if err := (Avatar{}).Verify(doc); err == nil {
				t.Fatalf("avatar doc without %s must fail verification", section)
			}
		})
	}

	noBanner, err := ParseDocument([]byte(`{"pageProps":{"avatar":` + `{
		"equiped_style":{},"equipments":[1],"gender":{},
		"shisho_characters":[1],"status":{},"style_list":[1]
	}}}`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if err := (Avatar{}).Verify(noBanner); err == nil {
		t.Fatalf("avatar doc without fighter_banner_info must fail verification")
	}
}

func TestClubVerify(t *testing.T) {
	t.Parallel()

	complete, err := ParseDocument([]byte(`{"pageProps":{
		"circle_base_info":{"circle_id":"club42"},
		"circle_member_list":[],
		"circle_timeline_list":[]
	}}`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if err := (Club{}).Verify(complete); err != nil {
		t.Fatalf("complete club doc should verify: %v", err)
	}

	missingMembers, err := ParseDocument([]byte(`{"pageProps":{
		"circle_base_info":{"circle_id":"club42"},
		"circle_timeline_list":[]
	}}`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if err := (Club{}).Verify(missingMembers); err == nil {
		t.Fatalf("club doc without member list must fail verification")
	}
}

func TestBattlelogVerify_EmptyListIsValid(t *testing.T) {
	t.Parallel()

	subject := Battlelog{Category: RankedMatches}

	empty, err := ParseDocument([]byte(battlelogBody()))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if err := subject.Verify(empty); err != nil {
		t.Fatalf("empty replay list is a terminator, not an error: %v", err)
	}
	if !subject.Empty(empty) {
		t.Fatalf("expected Empty for zero replays")
	}

	missing, err := ParseDocument([]byte(`{"pageProps":{}}`))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if err := subject.Verify(missing); err == nil {
		t.Fatalf("absent replay_list must fail verification")
	}
}

func TestBattlelogStale(t *testing.T) {
	t.Parallel()

	subject := Battlelog{Category: RankedMatches}
	cutoff := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	allOld, _ := ParseDocument([]byte(battlelogBody(
		cutoff.Add(-time.Hour).Unix(),
		cutoff.Add(-48*time.Hour).Unix(),
	)))
	if !subject.Stale(allOld, cutoff) {
		t.Fatalf("page with only pre-cutoff replays must be stale")
	}

	mixed, _ := ParseDocument([]byte(battlelogBody(
		cutoff.Add(-time.Hour).Unix(),
		cutoff.Add(time.Hour).Unix(),
	)))
	if subject.Stale(mixed, cutoff) {
		t.Fatalf("page with one post-cutoff replay must not be stale")
	}

	boundary, _ := ParseDocument([]byte(battlelogBody(cutoff.Unix())))
	if subject.Stale(boundary, cutoff) {
		t.Fatalf("a replay exactly at the cutoff is not stale")
	}

	empty, _ := ParseDocument([]byte(battlelogBody()))
	if subject.Stale(empty, cutoff) {
		t.Fatalf("an empty page is empty, not stale")
	}
}
