package core

import (
	"aquacore/internal/infra/persistence/memory"
	"aquacore/pkg/domain"
)

// Aliases keep service call sites terse while the canonical definitions live
// in pkg/domain.
type (
	Species      = domain.Species
	Tank         = domain.Tank
	StockingPlan = domain.StockingPlan
	FeedItem     = domain.FeedItem

	EntityType      = domain.EntityType
	Action          = domain.Action
	Severity        = domain.Severity
	Change          = domain.Change
	Violation       = domain.Violation
	Result          = domain.Result
	Rule            = domain.Rule
	RuleView        = domain.RuleView
	RulesEngine     = domain.RulesEngine
	Transaction     = domain.Transaction
	TransactionView = domain.TransactionView
	PersistentStore = domain.PersistentStore
)

const (
	EntitySpecies      = domain.EntitySpecies
	EntityTank         = domain.EntityTank
	EntityStockingPlan = domain.EntityStockingPlan
	EntityFeedItem     = domain.EntityFeedItem

	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete

	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

// MemoryStore is the canonical in-memory persistence backend.
type MemoryStore = memory.Store

// NewMemoryStore constructs an in-memory store bound to the given rules
// engine. A nil engine gets a fresh empty one.
func NewMemoryStore(engine *RulesEngine) *MemoryStore {
	return memory.NewStore(engine)
}
