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
package sink

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/metaharbor/ingest/internal/catalog"
	"github.com/metaharbor/ingest/internal/config"
)

// Sink receives the normalized table records an ingestion run produces.
type Sink interface {
	WriteTable(ctx context.Context, rec catalog.TableRecord) error
	Close() error
}

// New builds the sink selected by the configuration. The catalog sink needs
// a non-nil client.
func New(cfg config.SinkConfig, client *catalog.Client, logger *zap.Logger) (Sink, error) {
	switch cfg.Type {
	case "", "console":
		format := cfg.Console.Format
		if format == "" {
			format = "json"
		}
		return NewConsole(os.Stdout, format)
	case "catalog":
		if client == nil {
			return nil, fmt.Errorf("catalog sink requires a metadata store client")
		}
		return NewCatalog(client), nil
	case "kafka":
		return NewKafka(cfg.Kafka, logger)
	default:
		return nil, fmt.Errorf("unsupported sink type %q", cfg.Type)
	}
}
