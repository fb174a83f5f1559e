// Copyright 2025 Relevano Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/relevano/semsearch"
	"github.com/relevano/semsearch/ai"
	"github.com/relevano/semsearch/core"
	"github.com/relevano/semsearch/reembed"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "semsearch",
		Usage: "Semantic similarity search over company embeddings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Embed and store a company record",
				ArgsUsage: "<source text>",
				Action:    addCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Company name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "owner",
						Usage:    "Owner user ID",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "meta",
						Usage: "Metadata entry as key=value (repeatable)",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Find records semantically similar to a query",
				ArgsUsage: "<query text>",
				Action:    searchCommand,
				Flags: append(storeFlags(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum similarity score",
						Value: 0.5,
					},
					&cli.StringFlag{
						Name:  "exclude-owner",
						Usage: "Skip records owned by this user ID",
					},
				),
			},
			{
				Name:   "recommend",
				Usage:  "Recommend records based on a user's recent activity",
				Action: recommendCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:     "owner",
						Usage:    "Owner user ID",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
				),
			},
			{
				Name:   "list",
				Usage:  "List a user's records, newest first",
				Action: listCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:     "owner",
						Usage:    "Owner user ID",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "per-page",
						Usage: "Records per page",
						Value: 20,
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number (1-based)",
						Value: 1,
					},
				),
			},
			{
				Name:      "find",
				Usage:     "Find records by company name substring",
				ArgsUsage: "<pattern>",
				Action:    findCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:  "owner",
						Usage: "Restrict matches to this owner",
					},
				),
			},
			{
				Name:      "delete",
				Usage:     "Delete a record by ID",
				ArgsUsage: "<record id>",
				Action:    deleteCommand,
				Flags:     storeFlags(),
			},
			{
				Name:   "reembed",
				Usage:  "Regenerate every stored vector with the configured model",
				Action: reembedCommand,
				Flags: append(storeFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// storeFlags are the flags shared by every command that opens the store.
func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB store directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "text-embedding-3-small",
		},
		&cli.IntFlag{
			Name:  "dimensions",
			Usage: "Expected embedding dimensionality (0 disables the check)",
			Value: 0,
		},
	}
}

// openEngine builds an engine from the common flags.
func openEngine(c *cli.Context) (*semsearch.Engine, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithDimensions(c.Int("dimensions")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	engine, err := semsearch.New(c.String("db"), semsearch.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return engine, nil
}

func addCommand(c *cli.Context) error {
	sourceText := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if sourceText == "" {
		return fmt.Errorf("source text is required")
	}

	metadata := map[string]string{}
	for _, entry := range c.StringSlice("meta") {
		key, value, found := strings.Cut(entry, "=")
		if !found {
			return fmt.Errorf("invalid metadata entry %q: expected key=value", entry)
		}
		metadata[key] = value
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	record, err := engine.StoreEmbedding(context.Background(), c.String("name"), sourceText, c.String("owner"), metadata)
	if err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}

	fmt.Printf("Stored record %d (%s) for owner %s\n", record.Id, record.CompanyName, record.OwnerId)
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query text is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	results, err := engine.Search(context.Background(), query,
		c.Int("limit"), float32(c.Float64("threshold")), c.String("exclude-owner"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printResults(results)
	return nil
}

// printResults prints ranked results in the same column style as
// listCommand and findCommand.
func printResults(results []*core.SearchResult) {
	for _, result := range results {
		fmt.Printf("%8d  %-30s  owner=%-20s  score=%.4f\n",
			result.Record.Id, result.Record.CompanyName, result.Record.OwnerId, result.Score)
	}
	fmt.Printf("%d results\n", len(results))
}

func recommendCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	results, err := engine.Recommend(context.Background(), c.String("owner"), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("recommendation failed: %w", err)
	}

	printResults(results)
	return nil
}

func listCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	records, page, err := engine.ListByOwner(context.Background(),
		c.String("owner"), c.Int("per-page"), c.Int("page"))
	if err != nil {
		return fmt.Errorf("listing failed: %w", err)
	}

	fmt.Printf("Page %d/%d (%d records total)\n", page.Page, page.TotalPages, page.Total)
	for _, record := range records {
		fmt.Printf("%8d  %-30s  %s\n", record.Id, record.CompanyName,
			record.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func findCommand(c *cli.Context) error {
	pattern := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if pattern == "" {
		return fmt.Errorf("name pattern is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	records, err := engine.SearchByName(context.Background(), pattern, c.String("owner"))
	if err != nil {
		return fmt.Errorf("name search failed: %w", err)
	}

	for _, record := range records {
		fmt.Printf("%8d  %-30s  owner=%s\n", record.Id, record.CompanyName, record.OwnerId)
	}
	fmt.Printf("%d records matched\n", len(records))
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("exactly one record id is required")
	}

	var id uint64
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &id); err != nil {
		return fmt.Errorf("invalid record id %q", c.Args().First())
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	deleted, err := engine.DeleteEmbedding(context.Background(), core.ID(id))
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	if deleted {
		fmt.Printf("Deleted record %d\n", id)
	} else {
		fmt.Printf("Record %d not found\n", id)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	fmt.Fprintf(os.Stderr, "Store: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	reembedder := engine.NewReembedder(reembedConfig, os.Stderr)
	if err := reembedder.Run(context.Background()); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
