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
package source

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/metaharbor/ingest/internal/catalog"
	"github.com/metaharbor/ingest/internal/config"
)

// Connector is the lifecycle every source connector implements. Prepare runs
// once before any introspection; DescribeTable returns columns in the
// engine's declared order.
type Connector interface {
	Prepare(ctx context.Context) error
	ListTables(ctx context.Context) ([]string, error)
	DescribeTable(ctx context.Context, tableName string) ([]catalog.ColumnDescriptor, error)
	Ping(ctx context.Context) error
	Close() error
}

// Factory builds a connector from a validated source configuration. A
// factory must reject configurations whose connection payload is not its
// own kind (config.InvalidSourceError).
type Factory func(cfg config.SourceConfig, logger *zap.Logger) (Connector, error)

var (
	factories = make(map[config.ConnectionKind]Factory)
	mu        sync.RWMutex
)

// Register installs the factory for a connection kind. Connector packages
// call this from init(); import them for side effect to make them available.
func Register(kind config.ConnectionKind, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[kind]; exists {
		zap.L().Warn("connector factory is being overwritten", zap.String("kind", string(kind)))
	}
	factories[kind] = factory
}

// New constructs the connector registered for the configuration's connection
// kind.
func New(cfg config.SourceConfig, logger *zap.Logger) (Connector, error) {
	mu.RLock()
	factory, ok := factories[cfg.Connection.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no connector registered for connection kind %q", cfg.Connection.Kind)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return factory(cfg, logger)
}

// Kinds returns the registered connection kinds.
func Kinds() []config.ConnectionKind {
	mu.RLock()
	defer mu.RUnlock()
	kinds := make([]config.ConnectionKind, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	return kinds
}
