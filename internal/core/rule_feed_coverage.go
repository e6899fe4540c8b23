package core

import (
	"context"
	"fmt"
	"strings"

	"aquacore/internal/stocking"
	"aquacore/pkg/domain"
)

// NewFeedCoverageRule returns the in-transaction rule warning when a planned
// species has no matching feed in inventory. Coverage gaps never block: a
// keeper can stock first and shop later.
func NewFeedCoverageRule() domain.Rule {
	return feedCoverageRule{}
}

type feedCoverageRule struct{}

func (feedCoverageRule) Name() string { return "feed_coverage" }

func (feedCoverageRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	feeds := view.ListFeedItems()
	res := domain.Result{}
	for _, plan := range view.ListStockingPlans() {
		for _, line := range planLines(view, plan) {
			// Species without a stated food preference have nothing to check.
			if strings.TrimSpace(line.PreferredFood) == "" {
				continue
			}
			if feedCovered(line.Species, feeds) {
				continue
			}
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "feed_coverage",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("plan %s: no feed in inventory matches %s (prefers %q)", plan.Name, line.Name, line.PreferredFood),
				Entity:   domain.EntityStockingPlan,
				EntityID: plan.ID,
			})
		}
	}
	return res, nil
}

func feedCovered(sp domain.Species, feeds []domain.FeedItem) bool {
	for _, feed := range feeds {
		if feed.GramsOnHand <= 0 {
			continue
		}
		if stocking.MatchesFeed(sp.PreferredFood, feed.FeedType) {
			return true
		}
	}
	return false
}
