package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateSpecies(Species) (Species, error)
	UpdateSpecies(id string, mutator func(*Species) error) (Species, error)
	DeleteSpecies(id string) error
	CreateTank(Tank) (Tank, error)
	UpdateTank(id string, mutator func(*Tank) error) (Tank, error)
	DeleteTank(id string) error
	CreateStockingPlan(StockingPlan) (StockingPlan, error)
	UpdateStockingPlan(id string, mutator func(*StockingPlan) error) (StockingPlan, error)
	DeleteStockingPlan(id string) error
	CreateFeedItem(FeedItem) (FeedItem, error)
	UpdateFeedItem(id string, mutator func(*FeedItem) error) (FeedItem, error)
	DeleteFeedItem(id string) error
	FindTank(id string) (Tank, bool)
	FindSpeciesByName(commonName string) (Species, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView interface {
	ListSpecies() []Species
	ListTanks() []Tank
	ListStockingPlans() []StockingPlan
	ListFeedItems() []FeedItem
	FindSpecies(id string) (Species, bool)
	FindSpeciesByName(commonName string) (Species, bool)
	FindTank(id string) (Tank, bool)
	FindStockingPlan(id string) (StockingPlan, bool)
	FindFeedItem(id string) (FeedItem, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetSpecies(id string) (Species, bool)
	ListSpecies() []Species
	GetTank(id string) (Tank, bool)
	ListTanks() []Tank
	GetStockingPlan(id string) (StockingPlan, bool)
	ListStockingPlans() []StockingPlan
	GetFeedItem(id string) (FeedItem, bool)
	ListFeedItems() []FeedItem
}
