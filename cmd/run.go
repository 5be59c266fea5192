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
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/metaharbor/ingest/internal/status"
	"github.com/metaharbor/ingest/internal/workflow"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ingestion workflow",
	Long: `Connects to the configured source, introspects every table that matches
the workflow filters, and delivers the normalized records to the configured
sink. Per-table failures are reported in the run summary without aborting
the rest of the run.`,
	Example: `ingest run --config workflow.yaml`,
	RunE:    runWorkflow,
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	runner, err := workflow.New(cfg, logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	var statusSrv *status.Server
	if addr := cfg.Workflow.StatusAddr; addr != "" {
		statusSrv = status.NewServer(addr, logger)
		statusSrv.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			statusSrv.Shutdown(ctx)
		}()
		// /status reflects the run as it happens, not only after the fact.
		runner.OnProgress(func(s workflow.Summary) {
			statusSrv.SetSummary(&s)
		})
	}

	summary, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}
	if statusSrv != nil {
		statusSrv.SetSummary(summary)
	}

	if n := len(summary.Failures); n > 0 {
		logger.Warn("run finished with failures", zap.Int("failures", n))
		return fmt.Errorf("%d of %d tables failed to ingest", n, n+summary.Tables)
	}
	return nil
}
