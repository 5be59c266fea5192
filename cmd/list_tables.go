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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metaharbor/ingest/internal/source"
)

var listTablesCmd = &cobra.Command{
	Use:   "list-tables",
	Short: "List the tables the configured source exposes",
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := source.New(cfg.Source, logger)
		if err != nil {
			return err
		}
		defer src.Close()

		ctx := cmd.Context()
		if err := src.Prepare(ctx); err != nil {
			return err
		}
		tables, err := src.ListTables(ctx)
		if err != nil {
			return err
		}
		for _, table := range tables {
			fmt.Fprintln(cmd.OutOrStdout(), table)
		}
		return nil
	},
}
