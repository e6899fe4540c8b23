// Package reports renders stocking evaluations into downloadable JSON and
// CSV artifacts through an asynchronous worker queue backed by the blob
// store.
package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"aquacore/internal/blob"
	"aquacore/internal/stocking"
)

// Status describes the lifecycle stage of a report job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Format selects an artifact rendering.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat normalizes a caller-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported report format %q", s)
	}
}

// Extension returns the artifact file extension for the format.
func (f Format) Extension() string {
	if f == FormatCSV {
		return "csv"
	}
	return "json"
}

func (f Format) contentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

func (f Format) valid() bool {
	return f == FormatJSON || f == FormatCSV
}

// Artifact describes one stored rendering of a report.
type Artifact struct {
	ID          string    `json:"id"`
	Format      Format    `json:"format"`
	Key         string    `json:"key,omitempty"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Record tracks a report job from enqueue through completion.
type Record struct {
	ID          string            `json:"id"`
	PlanID      string            `json:"plan_id,omitempty"`
	Request     *stocking.Request `json:"request,omitempty"`
	Formats     []Format          `json:"formats"`
	Status      Status            `json:"status"`
	Error       string            `json:"error,omitempty"`
	Report      *stocking.Report  `json:"report,omitempty"`
	Artifacts   []Artifact        `json:"artifacts,omitempty"`
	RequestedBy string            `json:"requested_by,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
}

// Input is an enqueue request. Exactly one of PlanID or Request selects what
// gets evaluated: a stored stocking plan or an inline evaluation request.
type Input struct {
	PlanID      string
	Request     *stocking.Request
	Formats     []Format
	RequestedBy string
}

// Scheduler queues report jobs and exposes their status and artifacts.
type Scheduler interface {
	Enqueue(ctx context.Context, input Input) (Record, error)
	Get(id string) (Record, bool)
	List() []Record
	OpenArtifact(ctx context.Context, reportID, artifactID string) (Artifact, io.ReadCloser, error)
}

// Evaluator runs stocking evaluations. *core.Service satisfies it.
type Evaluator interface {
	EvaluateStocking(ctx context.Context, req stocking.Request) (stocking.Report, error)
	EvaluatePlan(ctx context.Context, planID string) (stocking.Report, error)
}

// Logger receives job lifecycle transitions. core.Logger satisfies it.
type Logger interface {
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Worker executes report jobs asynchronously. Artifacts are written through
// the blob store; a nil store keeps rendered artifact metadata on the record
// without a downloadable payload.
type Worker struct {
	evaluator Evaluator
	store     blob.Store
	logger    Logger

	queue chan task
	mu    sync.RWMutex
	jobs  map[string]*Record

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type task struct {
	id    string
	input Input
}

type rendered struct {
	artifact Artifact
	payload  []byte
}

// NewWorker constructs a report worker.
func NewWorker(evaluator Evaluator, store blob.Store, logger Logger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		evaluator: evaluator,
		store:     store,
		logger:    logger,
		queue:     make(chan task, 32),
		jobs:      make(map[string]*Record),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins processing queued jobs.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for the loop to drain.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case t := <-w.queue:
			w.process(t)
		}
	}
}

// Enqueue schedules a report job and returns its queued record.
func (w *Worker) Enqueue(_ context.Context, input Input) (Record, error) {
	if w.evaluator == nil {
		return Record{}, fmt.Errorf("report evaluator not configured")
	}
	if input.PlanID == "" && input.Request == nil {
		return Record{}, fmt.Errorf("plan id or evaluation request required")
	}
	if input.PlanID != "" && input.Request != nil {
		return Record{}, fmt.Errorf("plan id and evaluation request are mutually exclusive")
	}

	formats := input.Formats
	if len(formats) == 0 {
		formats = []Format{FormatJSON, FormatCSV}
	}
	uniq := make([]Format, 0, len(formats))
	seen := make(map[Format]struct{}, len(formats))
	for _, format := range formats {
		if !format.valid() {
			return Record{}, fmt.Errorf("unsupported report format %q", format)
		}
		if _, duplicate := seen[format]; duplicate {
			continue
		}
		uniq = append(uniq, format)
		seen[format] = struct{}{}
	}

	if input.Request != nil {
		req := cloneRequest(*input.Request)
		input.Request = &req
	}

	id := newReportID()
	now := time.Now().UTC()
	record := Record{
		ID:          id,
		PlanID:      input.PlanID,
		Request:     input.Request,
		Formats:     uniq,
		Status:      StatusQueued,
		RequestedBy: input.RequestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.mu.Lock()
	w.jobs[id] = &record
	queued := record.copy()
	w.mu.Unlock()

	select {
	case w.queue <- task{id: id, input: input}:
	default:
		w.mu.Lock()
		delete(w.jobs, id)
		w.mu.Unlock()
		return Record{}, fmt.Errorf("report queue full")
	}

	if w.logger != nil {
		w.logger.Info("report queued", "report_id", id, "plan_id", input.PlanID, "formats", len(uniq))
	}
	return queued, nil
}

// Get returns a snapshot of the report record.
func (w *Worker) Get(id string) (Record, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return Record{}, false
	}
	return record.copy(), true
}

// List returns snapshots of all report records, newest first.
func (w *Worker) List() []Record {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Record, 0, len(w.jobs))
	for _, record := range w.jobs {
		out = append(out, record.copy())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// OpenArtifact returns a stored artifact's metadata and payload stream.
func (w *Worker) OpenArtifact(ctx context.Context, reportID, artifactID string) (Artifact, io.ReadCloser, error) {
	record, ok := w.Get(reportID)
	if !ok {
		return Artifact{}, nil, fmt.Errorf("report %s not found", reportID)
	}
	for _, artifact := range record.Artifacts {
		if artifact.ID != artifactID {
			continue
		}
		if w.store == nil || artifact.Key == "" {
			return Artifact{}, nil, fmt.Errorf("artifact %s has no stored payload", artifactID)
		}
		_, body, err := w.store.Get(ctx, artifact.Key)
		if err != nil {
			return Artifact{}, nil, fmt.Errorf("open artifact %s: %w", artifactID, err)
		}
		return artifact, body, nil
	}
	return Artifact{}, nil, fmt.Errorf("artifact %s not found", artifactID)
}

func (w *Worker) process(t task) {
	record, ok := w.Get(t.id)
	if !ok {
		return
	}

	w.setRunning(t.id)

	var (
		report stocking.Report
		err    error
	)
	if t.input.PlanID != "" {
		report, err = w.evaluator.EvaluatePlan(w.ctx, t.input.PlanID)
		if err != nil {
			w.fail(t.id, fmt.Sprintf("plan evaluation failed: %v", err))
			return
		}
	} else {
		report, err = w.evaluator.EvaluateStocking(w.ctx, *t.input.Request)
		if err != nil {
			w.fail(t.id, fmt.Sprintf("stocking evaluation failed: %v", err))
			return
		}
	}

	artifacts := make([]Artifact, 0, len(record.Formats))
	for _, format := range record.Formats {
		art, err := w.render(t.id, format, report)
		if err != nil {
			w.fail(t.id, err.Error())
			return
		}
		if w.store != nil {
			key := fmt.Sprintf("reports/%s/%s.%s", t.id, art.artifact.ID, format.Extension())
			info, err := w.store.Put(w.ctx, key, bytes.NewReader(art.payload), blob.PutOptions{
				ContentType: art.artifact.ContentType,
				Metadata:    map[string]string{"report_id": t.id, "format": string(format)},
			})
			if err != nil {
				w.fail(t.id, fmt.Sprintf("store artifact failed: %v", err))
				return
			}
			art.artifact.Key = info.Key
			art.artifact.URL = info.URL
			if info.Size > 0 {
				art.artifact.SizeBytes = info.Size
			}
			if !info.LastModified.IsZero() {
				art.artifact.CreatedAt = info.LastModified
			}
		}
		artifacts = append(artifacts, art.artifact)
	}

	w.complete(t.id, report, artifacts)
}

func (w *Worker) setRunning(id string) {
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = StatusRunning
		record.UpdatedAt = time.Now().UTC()
	}
	w.mu.Unlock()
}

func (w *Worker) complete(id string, report stocking.Report, artifacts []Artifact) {
	now := time.Now().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = StatusSucceeded
		record.Error = ""
		record.Report = &report
		record.Artifacts = artifacts
		record.UpdatedAt = now
		record.CompletedAt = &now
	}
	w.mu.Unlock()
	if w.logger != nil {
		w.logger.Info("report completed", "report_id", id, "artifacts", len(artifacts))
	}
}

func (w *Worker) fail(id, reason string) {
	now := time.Now().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = StatusFailed
		record.Error = reason
		record.UpdatedAt = now
		record.CompletedAt = &now
	}
	w.mu.Unlock()
	if w.logger != nil {
		w.logger.Error("report failed", "report_id", id, "reason", reason)
	}
}

func (w *Worker) render(reportID string, format Format, report stocking.Report) (rendered, error) {
	var (
		payload []byte
		err     error
	)
	switch format {
	case FormatJSON:
		payload, err = json.Marshal(report)
		if err != nil {
			return rendered{}, fmt.Errorf("marshal json: %w", err)
		}
	case FormatCSV:
		payload, err = renderCSV(report)
		if err != nil {
			return rendered{}, fmt.Errorf("render csv: %w", err)
		}
	default:
		return rendered{}, fmt.Errorf("unsupported report format %q", format)
	}
	return rendered{
		artifact: Artifact{
			ID:          newArtifactID(),
			Format:      format,
			ContentType: format.contentType(),
			SizeBytes:   int64(len(payload)),
			CreatedAt:   time.Now().UTC(),
		},
		payload: payload,
	}, nil
}

// renderCSV projects the per-species stocking recommendations into a single
// table; the JSON artifact carries the full report.
func renderCSV(report stocking.Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write([]string{"name", "recommended_quantity", "stocking_warning"}); err != nil {
		return nil, err
	}
	for _, detail := range report.FishDetails {
		row := []string{detail.Name, strconv.Itoa(detail.RecommendedQuantity), detail.StockingWarning}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// The report pointer is written once on completion and never mutated after,
// so snapshots may share it.
func (r Record) copy() Record {
	dup := r
	dup.Formats = append([]Format(nil), r.Formats...)
	if len(r.Artifacts) > 0 {
		dup.Artifacts = append([]Artifact(nil), r.Artifacts...)
	}
	if r.Request != nil {
		req := cloneRequest(*r.Request)
		dup.Request = &req
	}
	return dup
}

func cloneRequest(req stocking.Request) stocking.Request {
	dup := req
	if req.FishSelections != nil {
		dup.FishSelections = make(map[string]int, len(req.FishSelections))
		for name, quantity := range req.FishSelections {
			dup.FishSelections[name] = quantity
		}
	}
	if req.FeedInventory != nil {
		dup.FeedInventory = make(map[string]float64, len(req.FeedInventory))
		for feed, grams := range req.FeedInventory {
			dup.FeedInventory[feed] = grams
		}
	}
	return dup
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func newReportID() string {
	return "rep_" + gonanoid.MustGenerate(idAlphabet, 12)
}

func newArtifactID() string {
	return "art_" + gonanoid.MustGenerate(idAlphabet, 12)
}
