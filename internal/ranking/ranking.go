// Package ranking orders ranked-queue standings.
//
// The ladder is versioned: leaderboard readers that persist comparisons should
// record Version next to them, and any change to the tables below must bump it.
package ranking

import (
	"fmt"
	"strings"
)

const Version = 1

type Tier int

// Ordered from lowest to highest. TierUnknown sorts below every real tier.
const (
	TierUnknown Tier = iota
	TierIron
	TierBronze
	TierSilver
	TierGold
	TierPlatinum
	TierEmerald
	TierDiamond
	TierMaster
	TierGrandmaster
	TierChallenger
)

var tierNames = map[string]Tier{
	"iron":        TierIron,
	"bronze":      TierBronze,
	"silver":      TierSilver,
	"gold":        TierGold,
	"platinum":    TierPlatinum,
	"emerald":     TierEmerald,
	"diamond":     TierDiamond,
	"master":      TierMaster,
	"grandmaster": TierGrandmaster,
	"challenger":  TierChallenger,
}

// ParseTier accepts any casing ("GOLD", "Gold", "gold").
func ParseTier(s string) Tier {
	return tierNames[strings.ToLower(strings.TrimSpace(s))]
}

// NormalizeTier is the persisted form of a tier name.
func NormalizeTier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Apex tiers have no divisions.
func (t Tier) Apex() bool {
	return t >= TierMaster
}

// divisionRank maps I..IV to 4..1. An absent division ranks above IV so that
// apex entries never lose to a divisioned entry of the same tier value.
func divisionRank(d string) int {
	switch strings.ToUpper(strings.TrimSpace(d)) {
	case "I":
		return 4
	case "II":
		return 3
	case "III":
		return 2
	case "IV":
		return 1
	case "":
		return 5
	}
	return 0
}

type Standing struct {
	Tier     string
	Division string
	LP       int
}

func (s Standing) String() string {
	tier := NormalizeTier(s.Tier)
	if s.Division == "" {
		return fmt.Sprintf("%s %d LP", tier, s.LP)
	}
	return fmt.Sprintf("%s %s %d LP", tier, s.Division, s.LP)
}

// Compare returns -1 if a is below b, 1 if above and 0 when equal.
func Compare(a, b Standing) int {
	if c := cmpInt(int(ParseTier(a.Tier)), int(ParseTier(b.Tier))); c != 0 {
		return c
	}
	if c := cmpInt(divisionRank(a.Division), divisionRank(b.Division)); c != 0 {
		return c
	}
	return cmpInt(a.LP, b.LP)
}

// Direction labels a move from previous to current.
func Direction(previous, current Standing) string {
	switch Compare(current, previous) {
	case 1:
		return "up"
	case -1:
		return "down"
	}
	return "same"
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
