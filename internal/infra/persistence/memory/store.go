// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"aquacore/pkg/domain"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Species aliases domain.Species for in-memory persistence operations.
	Species = domain.Species
	// Tank aliases domain.Tank.
	Tank = domain.Tank
	// StockingPlan aliases domain.StockingPlan.
	StockingPlan = domain.StockingPlan
	// FeedItem aliases domain.FeedItem.
	FeedItem = domain.FeedItem
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

type memoryState struct {
	species map[string]Species
	tanks   map[string]Tank
	plans   map[string]StockingPlan
	feeds   map[string]FeedItem
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Species map[string]Species      `json:"species"`
	Tanks   map[string]Tank         `json:"tanks"`
	Plans   map[string]StockingPlan `json:"stocking_plans"`
	Feeds   map[string]FeedItem     `json:"feed_items"`
}

func newMemoryState() memoryState {
	return memoryState{
		species: make(map[string]Species),
		tanks:   make(map[string]Tank),
		plans:   make(map[string]StockingPlan),
		feeds:   make(map[string]FeedItem),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Species: make(map[string]Species, len(state.species)),
		Tanks:   make(map[string]Tank, len(state.tanks)),
		Plans:   make(map[string]StockingPlan, len(state.plans)),
		Feeds:   make(map[string]FeedItem, len(state.feeds)),
	}
	for k, v := range state.species {
		s.Species[k] = cloneSpecies(v)
	}
	for k, v := range state.tanks {
		s.Tanks[k] = cloneTank(v)
	}
	for k, v := range state.plans {
		s.Plans[k] = clonePlan(v)
	}
	for k, v := range state.feeds {
		s.Feeds[k] = cloneFeedItem(v)
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Species {
		state.species[k] = cloneSpecies(v)
	}
	for k, v := range s.Tanks {
		state.tanks[k] = cloneTank(v)
	}
	for k, v := range s.Plans {
		state.plans[k] = clonePlan(v)
	}
	for k, v := range s.Feeds {
		state.feeds[k] = cloneFeedItem(v)
	}
	return state
}

// migrateSnapshot repairs snapshots loaded from durable backends: nil maps are
// initialized, non-positive bioloads reset to the neutral factor, and stocking
// plans whose tank no longer exists are dropped.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Species == nil {
		snapshot.Species = map[string]Species{}
	}
	if snapshot.Tanks == nil {
		snapshot.Tanks = map[string]Tank{}
	}
	if snapshot.Plans == nil {
		snapshot.Plans = map[string]StockingPlan{}
	}
	if snapshot.Feeds == nil {
		snapshot.Feeds = map[string]FeedItem{}
	}

	tankExists := func(id string) bool {
		_, ok := snapshot.Tanks[id]
		return ok
	}

	for id, sp := range snapshot.Species {
		if sp.Bioload <= 0 {
			sp.Bioload = 1
		}
		snapshot.Species[id] = sp
	}

	for id, plan := range snapshot.Plans {
		if plan.TankID == "" || !tankExists(plan.TankID) {
			delete(snapshot.Plans, id)
			continue
		}
		if plan.Selection == nil {
			plan.Selection = map[string]int{}
			snapshot.Plans[id] = plan
		}
	}

	return snapshot
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.species {
		cloned.species[k] = cloneSpecies(v)
	}
	for k, v := range s.tanks {
		cloned.tanks[k] = cloneTank(v)
	}
	for k, v := range s.plans {
		cloned.plans[k] = clonePlan(v)
	}
	for k, v := range s.feeds {
		cloned.feeds[k] = cloneFeedItem(v)
	}
	return cloned
}

func cloneSpecies(sp Species) Species {
	cp := sp
	if sp.ScientificName != nil {
		v := *sp.ScientificName
		cp.ScientificName = &v
	}
	if sp.MinTankLiters != nil {
		v := *sp.MinTankLiters
		cp.MinTankLiters = &v
	}
	return cp
}

func cloneTank(t Tank) Tank { return t }

func clonePlan(p StockingPlan) StockingPlan {
	cp := p
	if p.Selection != nil {
		cp.Selection = make(map[string]int, len(p.Selection))
		for name, qty := range p.Selection {
			cp.Selection[name] = qty
		}
	}
	if p.Notes != nil {
		v := *p.Notes
		cp.Notes = &v
	}
	return cp
}

func cloneFeedItem(f FeedItem) FeedItem { return f }

func speciesNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine exposes the currently configured engine for integration points like plugins.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListSpecies returns all species records within the snapshot.
func (v transactionView) ListSpecies() []Species {
	out := make([]Species, 0, len(v.state.species))
	for _, sp := range v.state.species {
		out = append(out, cloneSpecies(sp))
	}
	return out
}

// ListTanks returns all tanks within the snapshot.
func (v transactionView) ListTanks() []Tank {
	out := make([]Tank, 0, len(v.state.tanks))
	for _, t := range v.state.tanks {
		out = append(out, cloneTank(t))
	}
	return out
}

// ListStockingPlans returns all stocking plans within the snapshot.
func (v transactionView) ListStockingPlans() []StockingPlan {
	out := make([]StockingPlan, 0, len(v.state.plans))
	for _, p := range v.state.plans {
		out = append(out, clonePlan(p))
	}
	return out
}

// ListFeedItems returns all feed inventory records within the snapshot.
func (v transactionView) ListFeedItems() []FeedItem {
	out := make([]FeedItem, 0, len(v.state.feeds))
	for _, f := range v.state.feeds {
		out = append(out, cloneFeedItem(f))
	}
	return out
}

// FindSpecies retrieves a species record by ID.
func (v transactionView) FindSpecies(id string) (Species, bool) {
	sp, ok := v.state.species[id]
	if !ok {
		return Species{}, false
	}
	return cloneSpecies(sp), true
}

// FindSpeciesByName retrieves a species record by case-insensitive common name.
func (v transactionView) FindSpeciesByName(commonName string) (Species, bool) {
	return findSpeciesByName(v.state, commonName)
}

// FindTank retrieves a tank by ID.
func (v transactionView) FindTank(id string) (Tank, bool) {
	t, ok := v.state.tanks[id]
	if !ok {
		return Tank{}, false
	}
	return cloneTank(t), true
}

// FindStockingPlan retrieves a stocking plan by ID.
func (v transactionView) FindStockingPlan(id string) (StockingPlan, bool) {
	p, ok := v.state.plans[id]
	if !ok {
		return StockingPlan{}, false
	}
	return clonePlan(p), true
}

// FindFeedItem retrieves a feed record by ID.
func (v transactionView) FindFeedItem(id string) (FeedItem, bool) {
	f, ok := v.state.feeds[id]
	if !ok {
		return FeedItem{}, false
	}
	return cloneFeedItem(f), true
}

func findSpeciesByName(state *memoryState, commonName string) (Species, bool) {
	key := speciesNameKey(commonName)
	if key == "" {
		return Species{}, false
	}
	for _, sp := range state.species {
		if speciesNameKey(sp.CommonName) == key {
			return cloneSpecies(sp), true
		}
	}
	return Species{}, false
}

// RunInTransaction clones the state, applies fn, evaluates registered rules,
// and commits only when no blocking violations are present.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindTank exposes tank lookup within the transaction scope.
func (tx *transaction) FindTank(id string) (Tank, bool) {
	t, ok := tx.state.tanks[id]
	if !ok {
		return Tank{}, false
	}
	return cloneTank(t), true
}

// FindSpeciesByName exposes name-keyed species lookup within the transaction scope.
func (tx *transaction) FindSpeciesByName(commonName string) (Species, bool) {
	return findSpeciesByName(&tx.state, commonName)
}

// CreateSpecies stores a new species record within the transaction. Common
// names must be unique because engine lookups are keyed by them.
func (tx *transaction) CreateSpecies(sp Species) (Species, error) {
	if sp.ID == "" {
		sp.ID = tx.store.newID()
	}
	if _, exists := tx.state.species[sp.ID]; exists {
		return Species{}, fmt.Errorf("species %q already exists", sp.ID)
	}
	key := speciesNameKey(sp.CommonName)
	if key == "" {
		return Species{}, fmt.Errorf("species common name must not be empty")
	}
	for _, existing := range tx.state.species {
		if speciesNameKey(existing.CommonName) == key {
			return Species{}, fmt.Errorf("species name %q already taken by %q", sp.CommonName, existing.ID)
		}
	}
	sp.CreatedAt = tx.now
	sp.UpdatedAt = tx.now
	tx.state.species[sp.ID] = cloneSpecies(sp)
	tx.recordChange(Change{Entity: domain.EntitySpecies, Action: domain.ActionCreate, After: cloneSpecies(sp)})
	return cloneSpecies(sp), nil
}

// UpdateSpecies mutates a species record using the provided mutator function.
func (tx *transaction) UpdateSpecies(id string, mutator func(*Species) error) (Species, error) {
	current, ok := tx.state.species[id]
	if !ok {
		return Species{}, domain.ErrNotFound{Entity: domain.EntitySpecies, ID: id}
	}
	before := cloneSpecies(current)
	if err := mutator(&current); err != nil {
		return Species{}, err
	}
	current.ID = id
	key := speciesNameKey(current.CommonName)
	if key == "" {
		return Species{}, fmt.Errorf("species common name must not be empty")
	}
	if key != speciesNameKey(before.CommonName) {
		for otherID, existing := range tx.state.species {
			if otherID != id && speciesNameKey(existing.CommonName) == key {
				return Species{}, fmt.Errorf("species name %q already taken by %q", current.CommonName, otherID)
			}
		}
	}
	current.UpdatedAt = tx.now
	tx.state.species[id] = cloneSpecies(current)
	tx.recordChange(Change{Entity: domain.EntitySpecies, Action: domain.ActionUpdate, Before: before, After: cloneSpecies(current)})
	return cloneSpecies(current), nil
}

// DeleteSpecies removes a species record unless a stocking plan still selects it.
func (tx *transaction) DeleteSpecies(id string) error {
	current, ok := tx.state.species[id]
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntitySpecies, ID: id}
	}
	key := speciesNameKey(current.CommonName)
	for _, plan := range tx.state.plans {
		for name := range plan.Selection {
			if speciesNameKey(name) == key {
				return fmt.Errorf("species %q still referenced by stocking plan %q", id, plan.ID)
			}
		}
	}
	delete(tx.state.species, id)
	tx.recordChange(Change{Entity: domain.EntitySpecies, Action: domain.ActionDelete, Before: cloneSpecies(current)})
	return nil
}

// CreateTank stores a new tank within the transaction.
func (tx *transaction) CreateTank(t Tank) (Tank, error) {
	if t.ID == "" {
		t.ID = tx.store.newID()
	}
	if _, exists := tx.state.tanks[t.ID]; exists {
		return Tank{}, fmt.Errorf("tank %q already exists", t.ID)
	}
	t.CreatedAt = tx.now
	t.UpdatedAt = tx.now
	tx.state.tanks[t.ID] = cloneTank(t)
	tx.recordChange(Change{Entity: domain.EntityTank, Action: domain.ActionCreate, After: cloneTank(t)})
	return cloneTank(t), nil
}

// UpdateTank mutates a tank using the provided mutator function.
func (tx *transaction) UpdateTank(id string, mutator func(*Tank) error) (Tank, error) {
	current, ok := tx.state.tanks[id]
	if !ok {
		return Tank{}, domain.ErrNotFound{Entity: domain.EntityTank, ID: id}
	}
	before := cloneTank(current)
	if err := mutator(&current); err != nil {
		return Tank{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.tanks[id] = cloneTank(current)
	tx.recordChange(Change{Entity: domain.EntityTank, Action: domain.ActionUpdate, Before: before, After: cloneTank(current)})
	return cloneTank(current), nil
}

// DeleteTank removes a tank unless a stocking plan still references it.
func (tx *transaction) DeleteTank(id string) error {
	current, ok := tx.state.tanks[id]
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityTank, ID: id}
	}
	for _, plan := range tx.state.plans {
		if plan.TankID == id {
			return fmt.Errorf("tank %q still referenced by stocking plan %q", id, plan.ID)
		}
	}
	delete(tx.state.tanks, id)
	tx.recordChange(Change{Entity: domain.EntityTank, Action: domain.ActionDelete, Before: cloneTank(current)})
	return nil
}

// CreateStockingPlan stores a new plan; the referenced tank must exist.
func (tx *transaction) CreateStockingPlan(p StockingPlan) (StockingPlan, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.plans[p.ID]; exists {
		return StockingPlan{}, fmt.Errorf("stocking plan %q already exists", p.ID)
	}
	if _, ok := tx.state.tanks[p.TankID]; !ok {
		return StockingPlan{}, domain.ErrNotFound{Entity: domain.EntityTank, ID: p.TankID}
	}
	if p.Selection == nil {
		p.Selection = map[string]int{}
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.plans[p.ID] = clonePlan(p)
	tx.recordChange(Change{Entity: domain.EntityStockingPlan, Action: domain.ActionCreate, After: clonePlan(p)})
	return clonePlan(p), nil
}

// UpdateStockingPlan mutates a plan using the provided mutator function.
func (tx *transaction) UpdateStockingPlan(id string, mutator func(*StockingPlan) error) (StockingPlan, error) {
	current, ok := tx.state.plans[id]
	if !ok {
		return StockingPlan{}, domain.ErrNotFound{Entity: domain.EntityStockingPlan, ID: id}
	}
	before := clonePlan(current)
	if err := mutator(&current); err != nil {
		return StockingPlan{}, err
	}
	current.ID = id
	if _, ok := tx.state.tanks[current.TankID]; !ok {
		return StockingPlan{}, domain.ErrNotFound{Entity: domain.EntityTank, ID: current.TankID}
	}
	if current.Selection == nil {
		current.Selection = map[string]int{}
	}
	current.UpdatedAt = tx.now
	tx.state.plans[id] = clonePlan(current)
	tx.recordChange(Change{Entity: domain.EntityStockingPlan, Action: domain.ActionUpdate, Before: before, After: clonePlan(current)})
	return clonePlan(current), nil
}

// DeleteStockingPlan removes a plan from the transaction state.
func (tx *transaction) DeleteStockingPlan(id string) error {
	current, ok := tx.state.plans[id]
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityStockingPlan, ID: id}
	}
	delete(tx.state.plans, id)
	tx.recordChange(Change{Entity: domain.EntityStockingPlan, Action: domain.ActionDelete, Before: clonePlan(current)})
	return nil
}

// CreateFeedItem stores a new feed inventory record within the transaction.
func (tx *transaction) CreateFeedItem(f FeedItem) (FeedItem, error) {
	if f.ID == "" {
		f.ID = tx.store.newID()
	}
	if _, exists := tx.state.feeds[f.ID]; exists {
		return FeedItem{}, fmt.Errorf("feed item %q already exists", f.ID)
	}
	if strings.TrimSpace(f.FeedType) == "" {
		return FeedItem{}, fmt.Errorf("feed type must not be empty")
	}
	f.CreatedAt = tx.now
	f.UpdatedAt = tx.now
	tx.state.feeds[f.ID] = cloneFeedItem(f)
	tx.recordChange(Change{Entity: domain.EntityFeedItem, Action: domain.ActionCreate, After: cloneFeedItem(f)})
	return cloneFeedItem(f), nil
}

// UpdateFeedItem mutates a feed record using the provided mutator function.
func (tx *transaction) UpdateFeedItem(id string, mutator func(*FeedItem) error) (FeedItem, error) {
	current, ok := tx.state.feeds[id]
	if !ok {
		return FeedItem{}, domain.ErrNotFound{Entity: domain.EntityFeedItem, ID: id}
	}
	before := cloneFeedItem(current)
	if err := mutator(&current); err != nil {
		return FeedItem{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.feeds[id] = cloneFeedItem(current)
	tx.recordChange(Change{Entity: domain.EntityFeedItem, Action: domain.ActionUpdate, Before: before, After: cloneFeedItem(current)})
	return cloneFeedItem(current), nil
}

// DeleteFeedItem removes a feed record from the transaction state.
func (tx *transaction) DeleteFeedItem(id string) error {
	current, ok := tx.state.feeds[id]
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityFeedItem, ID: id}
	}
	delete(tx.state.feeds, id)
	tx.recordChange(Change{Entity: domain.EntityFeedItem, Action: domain.ActionDelete, Before: cloneFeedItem(current)})
	return nil
}

// GetSpecies retrieves a species record by ID.
func (s *Store) GetSpecies(id string) (Species, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.state.species[id]
	if !ok {
		return Species{}, false
	}
	return cloneSpecies(sp), true
}

// ListSpecies returns all species records.
func (s *Store) ListSpecies() []Species {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Species, 0, len(s.state.species))
	for _, sp := range s.state.species {
		out = append(out, cloneSpecies(sp))
	}
	return out
}

// GetTank retrieves a tank by ID.
func (s *Store) GetTank(id string) (Tank, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.state.tanks[id]
	if !ok {
		return Tank{}, false
	}
	return cloneTank(t), true
}

// ListTanks returns all tanks.
func (s *Store) ListTanks() []Tank {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Tank, 0, len(s.state.tanks))
	for _, t := range s.state.tanks {
		out = append(out, cloneTank(t))
	}
	return out
}

// GetStockingPlan retrieves a stocking plan by ID.
func (s *Store) GetStockingPlan(id string) (StockingPlan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.plans[id]
	if !ok {
		return StockingPlan{}, false
	}
	return clonePlan(p), true
}

// ListStockingPlans returns all stocking plans.
func (s *Store) ListStockingPlans() []StockingPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StockingPlan, 0, len(s.state.plans))
	for _, p := range s.state.plans {
		out = append(out, clonePlan(p))
	}
	return out
}

// GetFeedItem retrieves a feed record by ID.
func (s *Store) GetFeedItem(id string) (FeedItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.state.feeds[id]
	if !ok {
		return FeedItem{}, false
	}
	return cloneFeedItem(f), true
}

// ListFeedItems returns all feed records.
func (s *Store) ListFeedItems() []FeedItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]FeedItem, 0, len(s.state.feeds))
	for _, f := range s.state.feeds {
		out = append(out, cloneFeedItem(f))
	}
	return out
}
