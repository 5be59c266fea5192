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

	"github.com/metaharbor/ingest/internal/catalog"
	"github.com/metaharbor/ingest/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and verify source and catalog connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		src, err := source.New(cfg.Source, logger)
		if err != nil {
			return err
		}
		defer src.Close()
		if err := src.Ping(ctx); err != nil {
			return fmt.Errorf("source unreachable: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "source: ok")

		if cfg.Catalog.ServerURL != "" {
			client, err := catalog.NewClient(catalog.Config{
				BaseURL:  cfg.Catalog.ServerURL,
				APIToken: cfg.Catalog.APIToken,
				Timeout:  cfg.Catalog.Timeout,
			}, logger)
			if err != nil {
				return err
			}
			if err := client.Health(ctx); err != nil {
				return fmt.Errorf("metadata store unreachable: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "catalog: ok")
		}
		return nil
	},
}
