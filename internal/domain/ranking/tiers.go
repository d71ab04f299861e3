package ranking

import "strconv"

// Tier is one display bucket: the minimum metric value that earns it, the
// label shown on boards, and the style class the front end keys off.
type Tier struct {
	Threshold int
	Name      string
	Class     string
}

// Unranked is the sentinel for metric values below every table entry.
var Unranked = Tier{Threshold: -1, Name: "New Challenger", Class: "new"}

// leagueTiers maps league points to league names, highest first. The lookup
// is boundary inclusive: a value exactly at a threshold earns that tier.
var leagueTiers = []Tier{
	{25000, "Master", "m"},
	{23800, "Diamond 5", "d-5"},
	{22600, "Diamond 4", "d-4"},
	{21400, "Diamond 3", "d-3"},
	{20200, "Diamond 2", "d-2"},
	{19000, "Diamond 1", "d-1"},
	{17800, "Platinum 5", "p-5"},
	{16600, "Platinum 4", "p-4"},
	{15400, "Platinum 3", "p-3"},
	{14200, "Platinum 2", "p-2"},
	{13000, "Platinum 1", "p-1"},
	{12200, "Gold 5", "g-5"},
	{11400, "Gold 4", "g-4"},
	{10600, "Gold 3", "g-3"},
	{9800, "Gold 2", "g-2"},
	{9000, "Gold 1", "g-1"},
	{8200, "Silver 5", "s-5"},
	{7400, "Silver 4", "s-4"},
	{6600, "Silver 3", "s-3"},
	{5800, "Silver 2", "s-2"},
	{5000, "Silver 1", "s-1"},
	{4600, "Bronze 5", "b-5"},
	{4200, "Bronze 4", "b-4"},
	{3800, "Bronze 3", "b-3"},
	{3400, "Bronze 2", "b-2"},
	{3000, "Bronze 1", "b-1"},
	{2600, "Iron 5", "i-5"},
	{2200, "Iron 4", "i-4"},
	{1800, "Iron 3", "i-3"},
	{1400, "Iron 2", "i-2"},
	{1000, "Iron 1", "i-1"},
	{800, "Rookie 5", "r-5"},
	{600, "Rookie 4", "r-4"},
	{400, "Rookie 3", "r-3"},
	{200, "Rookie 2", "r-2"},
	{0, "Rookie 1", "r-1"},
}

var masterTiers = []Tier{
	{1800, "MR 1800+", "mr-high"},
	{1700, "MR 1700-1799", "mr-18"},
	{1600, "MR 1600-1699", "mr-17"},
	{1501, "MR 1501-1599", "mr-16"},
	{1500, "MR 1500", "mr-15"},
	{0, "MR below 1500", "mr-low"},
}

var kudosTiers = []Tier{
	{102540, "Kudos 5", "kud-5"},
	{39940, "Kudos 4", "kud-4"},
	{11120, "Kudos 3", "kud-3"},
	{1540, "Kudos 2", "kud-2"},
	{0, "Kudos 1", "kud-1"},
}

func lookupTier(table []Tier, value int) Tier {
	for _, tier := range table {
		if value >= tier.Threshold {
			return tier
		}
	}
	return Unranked
}

// LeagueTier buckets a league-points value.
func LeagueTier(leaguePoints int) Tier {
	return lookupTier(leagueTiers, leaguePoints)
}

// MasterTier buckets a master-rating value.
func MasterTier(masterRating int) Tier {
	return lookupTier(masterTiers, masterRating)
}

// KudosTier buckets a kudos total. Thresholds apply to the halved total; the
// raw total roughly double counts kudos given and received.
func KudosTier(kudos int) Tier {
	return lookupTier(kudosTiers, kudos/2)
}

// characterNames maps the endpoint's numeric character ids to roster names.
// Ids the game has reserved but not shipped fall back to the bare number.
var characterNames = map[int]string{
	1:  "Ryu",
	2:  "Luke",
	3:  "Kimberly",
	4:  "Chun-Li",
	5:  "Manon",
	6:  "Zangief",
	7:  "JP",
	8:  "Dhalsim",
	9:  "Cammy",
	10: "Ken",
	11: "Dee Jay",
	12: "Lily",
	13: "A.K.I.",
	14: "Rashid",
	15: "Blanka",
	16: "Juri",
	17: "Marisa",
	18: "Guile",
	19: "Ed",
	20: "E. Honda",
	21: "Jamie",
	22: "Akuma",
	26: "M. Bison",
}

// CharacterName resolves a numeric character id to its display name.
func CharacterName(id int) string {
	if name, ok := characterNames[id]; ok {
		return name
	}
	return strconv.Itoa(id)
}
