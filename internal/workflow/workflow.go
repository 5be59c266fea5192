/*
 * Copyright 2026 The metaharbor Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package workflow

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/metaharbor/ingest/internal/catalog"
	"github.com/metaharbor/ingest/internal/config"
	"github.com/metaharbor/ingest/internal/sink"
	"github.com/metaharbor/ingest/internal/source"
)

const defaultWorkers = 4

// Runner drives one ingestion workflow: source introspection, record
// delivery, and optional catalog bookkeeping (pipeline service, lineage).
type Runner struct {
	cfg      *config.Config
	src      source.Connector
	out      sink.Sink
	client   *catalog.Client // nil when no metadata store is configured
	logger   *zap.Logger
	progress func(Summary)
}

// TableFailure records one table that could not be ingested.
type TableFailure struct {
	Table string `json:"table"`
	Error string `json:"error"`
}

// Summary is the outcome of one ingestion run.
type Summary struct {
	RunID      string         `json:"runId"`
	Service    string         `json:"service"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Tables     int            `json:"tables"`
	Columns    int            `json:"columns"`
	Failures   []TableFailure `json:"failures,omitempty"`
}

// New wires a runner from configuration.
func New(cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	var client *catalog.Client
	if cfg.Catalog.ServerURL != "" {
		var err error
		client, err = catalog.NewClient(catalog.Config{
			BaseURL:  cfg.Catalog.ServerURL,
			APIToken: cfg.Catalog.APIToken,
			Timeout:  cfg.Catalog.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
	}

	src, err := source.New(cfg.Source, logger)
	if err != nil {
		return nil, err
	}

	out, err := sink.New(cfg.Sink, client, logger)
	if err != nil {
		src.Close()
		return nil, err
	}

	return &Runner{cfg: cfg, src: src, out: out, client: client, logger: logger}, nil
}

// OnProgress installs a callback invoked with a summary snapshot after each
// table finishes, successful or not. Must be set before Run.
func (r *Runner) OnProgress(fn func(Summary)) {
	r.progress = fn
}

// Run executes the workflow. Per-table failures are collected in the summary
// rather than aborting the run; Run itself fails only on setup errors
// (prepare, table listing) or context cancellation.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	started := time.Now()
	summary := &Summary{
		RunID:     uuid.NewString(),
		Service:   r.cfg.Source.ServiceName,
		StartedAt: started,
	}
	logger := r.logger.With(zap.String("runId", summary.RunID))
	logger.Info("starting ingestion run", zap.String("service", summary.Service))

	if err := r.registerPipelineService(ctx); err != nil {
		return nil, err
	}

	if err := r.src.Prepare(ctx); err != nil {
		return nil, fmt.Errorf("preparing source: %w", err)
	}

	tables, err := r.src.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	tables = filterTables(tables, r.cfg.Workflow.IncludeTables, r.cfg.Workflow.ExcludeTables)
	if len(tables) == 0 {
		logger.Info("no tables match the configured filters")
	}

	workers := r.cfg.Workflow.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		queue = make(chan string)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for table := range queue {
				columns, err := r.ingestTable(ctx, table)
				mu.Lock()
				if err != nil {
					logger.Error("table ingestion failed", zap.String("table", table), zap.Error(err))
					summary.Failures = append(summary.Failures, TableFailure{Table: table, Error: err.Error()})
					tableFailures.Inc()
				} else {
					summary.Tables++
					summary.Columns += columns
					tablesIngested.Inc()
					columnsIngested.Add(float64(columns))
				}
				snapshot := *summary
				snapshot.Failures = append([]TableFailure(nil), summary.Failures...)
				mu.Unlock()
				if r.progress != nil {
					r.progress(snapshot)
				}
			}
		}()
	}

feed:
	for _, table := range tables {
		select {
		case <-ctx.Done():
			break feed
		case queue <- table:
		}
	}
	close(queue)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.submitLineage(ctx); err != nil {
		// Lineage is additive metadata; a failed edge should not void the
		// tables already ingested.
		logger.Warn("lineage submission failed", zap.Error(err))
	}

	summary.FinishedAt = time.Now()
	runDuration.Observe(summary.FinishedAt.Sub(started).Seconds())
	logger.Info("ingestion run finished",
		zap.Int("tables", summary.Tables),
		zap.Int("columns", summary.Columns),
		zap.Int("failures", len(summary.Failures)),
		zap.Duration("duration", summary.FinishedAt.Sub(started)))
	return summary, nil
}

func (r *Runner) ingestTable(ctx context.Context, table string) (int, error) {
	columns, err := r.src.DescribeTable(ctx, table)
	if err != nil {
		return 0, err
	}
	rec := catalog.TableRecord{
		Service:  r.cfg.Source.ServiceName,
		Database: r.cfg.Source.Connection.DatabaseName(),
		Name:     table,
		Columns:  columns,
	}
	if err := r.out.WriteTable(ctx, rec); err != nil {
		return 0, err
	}
	return len(columns), nil
}

// registerPipelineService upserts this workflow's pipeline-service entity on
// the catalog, when one is configured.
func (r *Runner) registerPipelineService(ctx context.Context) error {
	ps := r.cfg.Catalog.PipelineService
	if ps == nil {
		return nil
	}
	if r.client == nil {
		return fmt.Errorf("pipelineService is configured but catalog.serverURL is not")
	}

	req := catalog.UpdatePipelineServiceRequest{}
	if ps.Description != "" {
		req.Description = &ps.Description
	}
	if ps.URL != "" {
		req.PipelineURL = &ps.URL
	}
	if ps.StartDate != "" || ps.RepeatFrequency != "" {
		sched := &catalog.Schedule{}
		if ps.StartDate != "" {
			sched.StartDate = &ps.StartDate
		}
		if ps.RepeatFrequency != "" {
			sched.RepeatFrequency = &ps.RepeatFrequency
		}
		req.IngestionSchedule = sched
	}
	if err := r.client.UpdatePipelineService(ctx, ps.Name, req); err != nil {
		return fmt.Errorf("registering pipeline service %s: %w", ps.Name, err)
	}
	return nil
}

// submitLineage pushes the config-declared table lineage edges.
func (r *Runner) submitLineage(ctx context.Context) error {
	edges := r.cfg.Workflow.Lineage
	if len(edges) == 0 {
		return nil
	}
	if r.client == nil {
		return fmt.Errorf("workflow.lineage is configured but catalog.serverURL is not")
	}

	for _, edge := range edges {
		req := catalog.AddLineageRequest{
			Edge: &catalog.EntitiesEdge{
				FromEntity: catalog.EntityReference{Type: "table", Name: edge.From},
				ToEntity:   catalog.EntityReference{Type: "table", Name: edge.To},
			},
		}
		if edge.Description != "" {
			req.Description = &edge.Description
		}
		if err := r.client.AddLineage(ctx, req); err != nil {
			return fmt.Errorf("edge %s -> %s: %w", edge.From, edge.To, err)
		}
	}
	return nil
}

// Close releases the source and sink.
func (r *Runner) Close() error {
	var firstErr error
	if err := r.out.Close(); err != nil {
		firstErr = err
	}
	if err := r.src.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// filterTables applies include globs then exclude globs. An empty include
// list admits every table.
func filterTables(tables, include, exclude []string) []string {
	matchAny := func(patterns []string, name string) bool {
		for _, p := range patterns {
			if ok, err := path.Match(p, name); err == nil && ok {
				return true
			}
		}
		return false
	}

	var kept []string
	for _, table := range tables {
		if len(include) > 0 && !matchAny(include, table) {
			continue
		}
		if matchAny(exclude, table) {
			continue
		}
		kept = append(kept, table)
	}
	return kept
}
