// Package core hosts the reference-data service: transactional CRUD over the
// aquarium entities, rule evaluation on every commit, stocking evaluation, and
// plugin installation. Persistence is delegated to a domain.PersistentStore so
// the same service runs over the memory, sqlite, and postgres backends.
package core

import (
	"context"
	"sort"
	"time"

	"aquacore/internal/catalog"
	"aquacore/internal/stocking"
	"aquacore/pkg/domain"
)

// Clock supplies the service's notion of now.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to the Clock interface. A nil ClockFunc
// falls back to the system clock; either way the result is UTC.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	if f == nil {
		return time.Now().UTC()
	}
	return f().UTC()
}

// Logger is the minimal leveled logging surface the service emits to. The
// default is a no-op; internal/logging provides the production implementation.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type serviceOptions struct {
	clock    Clock
	logger   Logger
	audit    AuditRecorder
	metrics  MetricsRecorder
	tracer   Tracer
	stocking StockingConfig
	catalog  *catalog.Catalog
	sources  []stocking.SpeciesSource
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		clock:   ClockFunc(nil),
		logger:  noopLogger{},
		audit:   noopAuditRecorder{},
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
	}
}

// ServiceOption customizes service construction.
type ServiceOption func(*serviceOptions)

// WithClock overrides the service clock.
func WithClock(clock Clock) ServiceOption {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger overrides the service logger.
func WithLogger(logger Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAuditRecorder overrides the audit sink.
func WithAuditRecorder(recorder AuditRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.audit = recorder
		}
	}
}

// WithMetricsRecorder overrides the metrics sink.
func WithMetricsRecorder(recorder MetricsRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// WithTracer overrides the tracer.
func WithTracer(tracer Tracer) ServiceOption {
	return func(o *serviceOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithStockingConfig overrides the stocking policy knobs used by evaluation
// and by the capacity and feed rules. Zero fields keep their defaults.
func WithStockingConfig(cfg StockingConfig) ServiceOption {
	return func(o *serviceOptions) { o.stocking = cfg }
}

// WithSpeciesSource appends a read-only species source consulted after the
// store and the plugin catalog during evaluation. Serve mode registers its
// pack-directory catalog here so watcher reloads swap pack records without
// touching plugin contributions.
func WithSpeciesSource(src stocking.SpeciesSource) ServiceOption {
	return func(o *serviceOptions) {
		if src != nil {
			o.sources = append(o.sources, src)
		}
	}
}

// Service coordinates transactional mutations, rule evaluation, stocking
// evaluation, and plugin installation over a persistent store.
type Service struct {
	store    domain.PersistentStore
	plugins  map[string]PluginMetadata
	catalog  pluginCatalog
	sources  []stocking.SpeciesSource
	clock    Clock
	logger   Logger
	audit    AuditRecorder
	metrics  MetricsRecorder
	tracer   Tracer
	stocking StockingConfig
	nowFn    func() time.Time
}

// NewService constructs a Service over the given store.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	options := defaultServiceOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	svc := &Service{
		store:    store,
		plugins:  make(map[string]PluginMetadata),
		catalog:  newPluginCatalog(),
		sources:  options.sources,
		clock:    options.clock,
		logger:   options.logger,
		audit:    options.audit,
		metrics:  options.metrics,
		tracer:   options.tracer,
		stocking: options.stocking,
		nowFn:    selectNowFunc(store, options.clock),
	}
	if options.catalog != nil {
		svc.catalog.species = options.catalog
	}
	return svc
}

// NewInMemoryService wires a Service over a fresh in-memory store. A nil
// engine gets an empty rules engine.
func NewInMemoryService(engine *domain.RulesEngine, opts ...ServiceOption) *Service {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return NewService(NewMemoryStore(engine), opts...)
}

// extractRulesEngine returns the store's rules engine when the backend
// exposes one, nil otherwise.
func extractRulesEngine(store domain.PersistentStore) *domain.RulesEngine {
	type engineProvider interface {
		RulesEngine() *domain.RulesEngine
	}
	if provider, ok := store.(engineProvider); ok {
		return provider.RulesEngine()
	}
	return nil
}

// selectNowFunc prefers the store's own time provider, then the configured
// clock, then the system clock in UTC.
func selectNowFunc(store domain.PersistentStore, clock Clock) func() time.Time {
	type nowProvider interface {
		NowFunc() func() time.Time
	}
	if provider, ok := store.(nowProvider); ok {
		if fn := provider.NowFunc(); fn != nil {
			return fn
		}
	}
	if clock != nil {
		return clock.Now
	}
	return func() time.Time { return time.Now().UTC() }
}

// Store exposes the underlying persistent store.
func (s *Service) Store() domain.PersistentStore { return s.store }

// RulesEngine exposes the store's rules engine, nil when the backend has none.
func (s *Service) RulesEngine() *domain.RulesEngine { return extractRulesEngine(s.store) }

// Now reports the service's current time.
func (s *Service) Now() time.Time { return s.nowFn() }

// Operation names as they appear in audit entries, metrics, and spans.
const (
	opCreateSpecies      = "create_species"
	opUpdateSpecies      = "update_species"
	opDeleteSpecies      = "delete_species"
	opCreateTank         = "create_tank"
	opUpdateTank         = "update_tank"
	opDeleteTank         = "delete_tank"
	opCreateStockingPlan = "create_stocking_plan"
	opUpdateStockingPlan = "update_stocking_plan"
	opDeleteStockingPlan = "delete_stocking_plan"
	opCreateFeedItem     = "create_feed_item"
	opUpdateFeedItem     = "update_feed_item"
	opDeleteFeedItem     = "delete_feed_item"
	opEvaluateStocking   = "evaluate_stocking"
	opEvaluatePlan       = "evaluate_plan"
)

type auditOperation struct {
	entity domain.EntityType
	action domain.Action
}

// auditOperations maps operation names onto the entity and action recorded in
// audit entries. Operations absent from the map are not audited.
var auditOperations = map[string]auditOperation{
	opCreateSpecies:      {entity: domain.EntitySpecies, action: domain.ActionCreate},
	opUpdateSpecies:      {entity: domain.EntitySpecies, action: domain.ActionUpdate},
	opDeleteSpecies:      {entity: domain.EntitySpecies, action: domain.ActionDelete},
	opCreateTank:         {entity: domain.EntityTank, action: domain.ActionCreate},
	opUpdateTank:         {entity: domain.EntityTank, action: domain.ActionUpdate},
	opDeleteTank:         {entity: domain.EntityTank, action: domain.ActionDelete},
	opCreateStockingPlan: {entity: domain.EntityStockingPlan, action: domain.ActionCreate},
	opUpdateStockingPlan: {entity: domain.EntityStockingPlan, action: domain.ActionUpdate},
	opDeleteStockingPlan: {entity: domain.EntityStockingPlan, action: domain.ActionDelete},
	opCreateFeedItem:     {entity: domain.EntityFeedItem, action: domain.ActionCreate},
	opUpdateFeedItem:     {entity: domain.EntityFeedItem, action: domain.ActionUpdate},
	opDeleteFeedItem:     {entity: domain.EntityFeedItem, action: domain.ActionDelete},
}

func (s *Service) recordAuditSuccess(ctx context.Context, operation, entityID string, duration time.Duration) {
	s.recordAudit(ctx, operation, entityID, AuditStatusSuccess, duration)
}

func (s *Service) recordAuditError(ctx context.Context, operation, entityID string, duration time.Duration) {
	s.recordAudit(ctx, operation, entityID, AuditStatusError, duration)
}

func (s *Service) recordAudit(ctx context.Context, operation, entityID string, status AuditStatus, duration time.Duration) {
	meta, ok := auditOperations[operation]
	if !ok {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		Operation: operation,
		Entity:    meta.entity,
		Action:    meta.action,
		EntityID:  entityID,
		Status:    status,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	})
}

// runInTransaction executes one mutation under full observability: span,
// latency metric, audit entry, and debug/error logs. entityID is read after
// fn so create operations report their generated ID.
func (s *Service) runInTransaction(ctx context.Context, operation string, entityID *string, fn func(domain.Transaction) error) (domain.Result, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, operation)
	res, err := s.store.RunInTransaction(ctx, fn)
	duration := time.Since(start)
	span.End(err)
	s.metrics.Observe(ctx, operation, err == nil, duration)

	id := ""
	if entityID != nil {
		id = *entityID
	}
	sortViolations(res.Violations)
	s.observeViolations(ctx, res.Violations)
	if err != nil {
		s.logger.Error("operation failed", "operation", operation, "entity_id", id, "error", err)
		s.recordAuditError(ctx, operation, id, duration)
		return res, err
	}
	if len(res.Violations) > 0 {
		s.logger.Warn("operation committed with warnings", "operation", operation, "entity_id", id, "violations", len(res.Violations))
	} else {
		s.logger.Debug("operation committed", "operation", operation, "entity_id", id)
	}
	s.recordAuditSuccess(ctx, operation, id, duration)
	return res, nil
}

// sortViolations orders rule violations deterministically: blocking first,
// then by rule name, entity id, and message.
func sortViolations(violations []domain.Violation) {
	rank := map[domain.Severity]int{
		domain.SeverityBlock: 0,
		domain.SeverityWarn:  1,
		domain.SeverityLog:   2,
	}
	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if rank[a.Severity] != rank[b.Severity] {
			return rank[a.Severity] < rank[b.Severity]
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		if a.EntityID != b.EntityID {
			return a.EntityID < b.EntityID
		}
		return a.Message < b.Message
	})
}

// CreateSpecies stores a new species record.
func (s *Service) CreateSpecies(ctx context.Context, input domain.Species) (domain.Species, domain.Result, error) {
	var created domain.Species
	res, err := s.runInTransaction(ctx, opCreateSpecies, &created.ID, func(tx domain.Transaction) error {
		var txErr error
		created, txErr = tx.CreateSpecies(input)
		return txErr
	})
	return created, res, err
}

// UpdateSpecies applies the mutator to an existing species record.
func (s *Service) UpdateSpecies(ctx context.Context, id string, mutator func(*domain.Species) error) (domain.Species, domain.Result, error) {
	var updated domain.Species
	res, err := s.runInTransaction(ctx, opUpdateSpecies, &id, func(tx domain.Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateSpecies(id, mutator)
		return txErr
	})
	return updated, res, err
}

// DeleteSpecies removes a species record.
func (s *Service) DeleteSpecies(ctx context.Context, id string) (domain.Result, error) {
	return s.runInTransaction(ctx, opDeleteSpecies, &id, func(tx domain.Transaction) error {
		return tx.DeleteSpecies(id)
	})
}

// CreateTank stores a new tank record.
func (s *Service) CreateTank(ctx context.Context, input domain.Tank) (domain.Tank, domain.Result, error) {
	var created domain.Tank
	res, err := s.runInTransaction(ctx, opCreateTank, &created.ID, func(tx domain.Transaction) error {
		var txErr error
		created, txErr = tx.CreateTank(input)
		return txErr
	})
	return created, res, err
}

// UpdateTank applies the mutator to an existing tank record.
func (s *Service) UpdateTank(ctx context.Context, id string, mutator func(*domain.Tank) error) (domain.Tank, domain.Result, error) {
	var updated domain.Tank
	res, err := s.runInTransaction(ctx, opUpdateTank, &id, func(tx domain.Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateTank(id, mutator)
		return txErr
	})
	return updated, res, err
}

// DeleteTank removes a tank record.
func (s *Service) DeleteTank(ctx context.Context, id string) (domain.Result, error) {
	return s.runInTransaction(ctx, opDeleteTank, &id, func(tx domain.Transaction) error {
		return tx.DeleteTank(id)
	})
}

// CreateStockingPlan stores a new stocking plan.
func (s *Service) CreateStockingPlan(ctx context.Context, input domain.StockingPlan) (domain.StockingPlan, domain.Result, error) {
	var created domain.StockingPlan
	res, err := s.runInTransaction(ctx, opCreateStockingPlan, &created.ID, func(tx domain.Transaction) error {
		var txErr error
		created, txErr = tx.CreateStockingPlan(input)
		return txErr
	})
	return created, res, err
}

// UpdateStockingPlan applies the mutator to an existing stocking plan.
func (s *Service) UpdateStockingPlan(ctx context.Context, id string, mutator func(*domain.StockingPlan) error) (domain.StockingPlan, domain.Result, error) {
	var updated domain.StockingPlan
	res, err := s.runInTransaction(ctx, opUpdateStockingPlan, &id, func(tx domain.Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateStockingPlan(id, mutator)
		return txErr
	})
	return updated, res, err
}

// DeleteStockingPlan removes a stocking plan.
func (s *Service) DeleteStockingPlan(ctx context.Context, id string) (domain.Result, error) {
	return s.runInTransaction(ctx, opDeleteStockingPlan, &id, func(tx domain.Transaction) error {
		return tx.DeleteStockingPlan(id)
	})
}

// CreateFeedItem stores a new feed inventory item.
func (s *Service) CreateFeedItem(ctx context.Context, input domain.FeedItem) (domain.FeedItem, domain.Result, error) {
	var created domain.FeedItem
	res, err := s.runInTransaction(ctx, opCreateFeedItem, &created.ID, func(tx domain.Transaction) error {
		var txErr error
		created, txErr = tx.CreateFeedItem(input)
		return txErr
	})
	return created, res, err
}

// UpdateFeedItem applies the mutator to an existing feed inventory item.
func (s *Service) UpdateFeedItem(ctx context.Context, id string, mutator func(*domain.FeedItem) error) (domain.FeedItem, domain.Result, error) {
	var updated domain.FeedItem
	res, err := s.runInTransaction(ctx, opUpdateFeedItem, &id, func(tx domain.Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateFeedItem(id, mutator)
		return txErr
	})
	return updated, res, err
}

// DeleteFeedItem removes a feed inventory item.
func (s *Service) DeleteFeedItem(ctx context.Context, id string) (domain.Result, error) {
	return s.runInTransaction(ctx, opDeleteFeedItem, &id, func(tx domain.Transaction) error {
		return tx.DeleteFeedItem(id)
	})
}

// GetSpecies returns a species record by id.
func (s *Service) GetSpecies(id string) (domain.Species, bool) { return s.store.GetSpecies(id) }

// ListSpecies returns all species records.
func (s *Service) ListSpecies() []domain.Species { return s.store.ListSpecies() }

// GetTank returns a tank record by id.
func (s *Service) GetTank(id string) (domain.Tank, bool) { return s.store.GetTank(id) }

// ListTanks returns all tank records.
func (s *Service) ListTanks() []domain.Tank { return s.store.ListTanks() }

// GetStockingPlan returns a stocking plan by id.
func (s *Service) GetStockingPlan(id string) (domain.StockingPlan, bool) {
	return s.store.GetStockingPlan(id)
}

// ListStockingPlans returns all stocking plans.
func (s *Service) ListStockingPlans() []domain.StockingPlan { return s.store.ListStockingPlans() }

// GetFeedItem returns a feed inventory item by id.
func (s *Service) GetFeedItem(id string) (domain.FeedItem, bool) { return s.store.GetFeedItem(id) }

// ListFeedItems returns all feed inventory items.
func (s *Service) ListFeedItems() []domain.FeedItem { return s.store.ListFeedItems() }
