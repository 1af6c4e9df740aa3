package ranking_test

import (
	"testing"

	"roster-sync/internal/ranking"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompare(t *testing.T) {
	Convey("Given standings on the ranked ladder", t, func() {
		gold2 := ranking.Standing{Tier: "gold", Division: "II", LP: 40}

		Convey("Higher tiers win regardless of division and LP", func() {
			So(ranking.Compare(ranking.Standing{Tier: "platinum", Division: "IV", LP: 0}, gold2), ShouldEqual, 1)
			So(ranking.Compare(ranking.Standing{Tier: "silver", Division: "I", LP: 99}, gold2), ShouldEqual, -1)
		})

		Convey("Within a tier, division I beats division IV", func() {
			So(ranking.Compare(ranking.Standing{Tier: "gold", Division: "I", LP: 0}, gold2), ShouldEqual, 1)
			So(ranking.Compare(ranking.Standing{Tier: "gold", Division: "IV", LP: 99}, gold2), ShouldEqual, -1)
		})

		Convey("Within a division, LP decides", func() {
			So(ranking.Compare(ranking.Standing{Tier: "GOLD", Division: "II", LP: 41}, gold2), ShouldEqual, 1)
			So(ranking.Compare(ranking.Standing{Tier: "Gold", Division: "II", LP: 40}, gold2), ShouldEqual, 0)
		})

		Convey("Apex tiers order by tier then LP", func() {
			master := ranking.Standing{Tier: "master", LP: 400}
			grandmaster := ranking.Standing{Tier: "grandmaster", LP: 10}
			So(ranking.Compare(grandmaster, master), ShouldEqual, 1)
			So(ranking.Compare(master, ranking.Standing{Tier: "diamond", Division: "I", LP: 100}), ShouldEqual, 1)
		})

		Convey("Unknown tiers sort below iron", func() {
			So(ranking.Compare(ranking.Standing{Tier: "wood"}, ranking.Standing{Tier: "iron", Division: "IV"}), ShouldEqual, -1)
		})
	})
}

func TestDirection(t *testing.T) {
	Convey("Direction labels promotions and demotions", t, func() {
		prev := ranking.Standing{Tier: "gold", Division: "I", LP: 90}
		So(ranking.Direction(prev, ranking.Standing{Tier: "platinum", Division: "IV", LP: 0}), ShouldEqual, "up")
		So(ranking.Direction(prev, ranking.Standing{Tier: "gold", Division: "I", LP: 70}), ShouldEqual, "down")
		So(ranking.Direction(prev, prev), ShouldEqual, "same")
	})
}

func TestTierHelpers(t *testing.T) {
	Convey("Tier parsing and normalization", t, func() {
		So(ranking.ParseTier("GRANDMASTER"), ShouldEqual, ranking.TierGrandmaster)
		So(ranking.ParseTier("GRANDMASTER").Apex(), ShouldBeTrue)
		So(ranking.ParseTier("diamond").Apex(), ShouldBeFalse)
		So(ranking.NormalizeTier(" GOLD "), ShouldEqual, "gold")
		So(ranking.Standing{Tier: "GOLD", Division: "II", LP: 12}.String(), ShouldEqual, "gold II 12 LP")
		So(ranking.Standing{Tier: "CHALLENGER", LP: 900}.String(), ShouldEqual, "challenger 900 LP")
	})
}
