package catalog

import (
	"testing"

	"aquacore/pkg/domain"
)

func TestClassifyBehavior(t *testing.T) {
	cases := []struct {
		text string
		want domain.SocialBehavior
	}{
		// Canonical values pass straight through.
		{"solitary", domain.BehaviorSolitary},
		{"  Schooling ", domain.BehaviorSchooling},
		{"community", domain.BehaviorCommunity},

		// Free text classifies by keyword, first match winning.
		{"Solitary hunter, keep alone", domain.BehaviorSolitary},
		{"highly territorial towards conspecifics", domain.BehaviorTerritorial},
		{"ambush predator", domain.BehaviorPredatory},
		{"best kept as a bonded pair", domain.BehaviorPair},
		{"Schooling fish, needs groups of 6+", domain.BehaviorSchooling},
		{"shoaling species", domain.BehaviorSchooling},
		{"colony dweller", domain.BehaviorSchooling},

		// A pair mention inside a grouping descriptor stays schooling.
		{"schooling, happiest in pairs of six", domain.BehaviorSchooling},

		// Anything unrecognized is community.
		{"peaceful and sociable", domain.BehaviorCommunity},
		{"", domain.BehaviorCommunity},
	}
	for _, tc := range cases {
		if got := ClassifyBehavior(tc.text); got != tc.want {
			t.Fatalf("ClassifyBehavior(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}
