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
	"os"

	"github.com/spf13/cobra"

	"github.com/metaharbor/ingest/internal/catalog"
	"github.com/metaharbor/ingest/internal/sink"
	"github.com/metaharbor/ingest/internal/source"
)

var describeOutput string

var describeCmd = &cobra.Command{
	Use:     "describe TABLE",
	Short:   "Print the normalized column metadata of one table",
	Example: `ingest describe orders --config workflow.yaml --output yaml`,
	Args:    cobra.ExactArgs(1),
	RunE:    runDescribe,
}

func runDescribe(cmd *cobra.Command, args []string) error {
	src, err := source.New(cfg.Source, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	ctx := cmd.Context()
	if err := src.Prepare(ctx); err != nil {
		return err
	}
	columns, err := src.DescribeTable(ctx, args[0])
	if err != nil {
		return err
	}

	out, err := sink.NewConsole(os.Stdout, describeOutput)
	if err != nil {
		return err
	}
	return out.WriteTable(ctx, catalog.TableRecord{
		Service:  cfg.Source.ServiceName,
		Database: cfg.Source.Connection.DatabaseName(),
		Name:     args[0],
		Columns:  columns,
	})
}

func init() {
	describeCmd.Flags().StringVarP(&describeOutput, "output", "o", "json", "Output format (json or yaml)")
}
