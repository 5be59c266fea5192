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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/metaharbor/ingest/internal/config"
	_ "github.com/metaharbor/ingest/internal/source/hive"
	_ "github.com/metaharbor/ingest/internal/source/mysql"
	_ "github.com/metaharbor/ingest/internal/source/postgres"
	_ "github.com/metaharbor/ingest/internal/source/sqlserver"
)

var (
	configPath string
	debug      bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest database metadata into a catalog",
	Long: `ingest introspects source databases (Hive, MySQL, PostgreSQL, SQL Server),
normalizes their table and column metadata into a uniform shape, and delivers
the records to a metadata catalog, Kafka topic, or the console.`,
	PersistentPreRunE: initConfigAndLogger,
	SilenceUsage:      true,
}

// initConfigAndLogger loads the workflow configuration and builds the logger
// before any subcommand runs.
func initConfigAndLogger(cmd *cobra.Command, args []string) error {
	var err error
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	return nil
}

// ExecuteContext runs the root command under ctx.
func ExecuteContext(ctx context.Context) error {
	defer func() {
		if logger != nil {
			logger.Sync()
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the workflow configuration file - MANDATORY")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.MarkPersistentFlagRequired("config")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(listTablesCmd)
	rootCmd.AddCommand(checkCmd)
}
