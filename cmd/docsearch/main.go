// Copyright 2025 Poiesic Systems
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
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poiesic/docsearch"
	"github.com/poiesic/docsearch/ai"
	"github.com/poiesic/docsearch/core"
	"github.com/poiesic/docsearch/ingestion"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "docsearch",
		Usage: "Hybrid semantic and lexical search over local documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Ingest files into the search database",
				ArgsUsage: "FILE [FILE...]",
				Action:    addCommand,
				Flags: append(databaseFlags(),
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Target chunk size in words",
						Value: 200,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Words shared between consecutive chunks",
						Value: 40,
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search stored documents",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: append(databaseFlags(),
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   10,
					},
				),
			},
			{
				Name:   "list",
				Usage:  "List stored documents",
				Action: listCommand,
				Flags:  databaseFlags(),
			},
			{
				Name:      "delete",
				Usage:     "Delete a document and its chunks",
				ArgsUsage: "DOCUMENT_ID",
				Action:    deleteCommand,
				Flags:     databaseFlags(),
			},
		},
	}
}

// databaseFlags are shared by every command that opens the database.
func databaseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			EnvVars: []string{"DOCSEARCH_DB"},
			Value:   "./docsearch_db",
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			EnvVars: []string{"DOCSEARCH_EMBEDDING_HOST"},
			Value:   "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			EnvVars: []string{"DOCSEARCH_EMBEDDING_MODEL"},
			Value:   "embeddinggemma",
		},
		&cli.BoolFlag{
			Name:    "no-embeddings",
			Usage:   "Disable the embedding provider; search lexically only",
			EnvVars: []string{"DOCSEARCH_NO_EMBEDDINGS"},
		},
	}
}

func setup(c *cli.Context) error {
	// Optional .env file feeds the EnvVars-backed flags
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("error loading .env file", "err", err)
	}

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

// openDatabase builds a Database from the shared command flags.
func openDatabase(c *cli.Context) (*docsearch.Database, error) {
	opts := []docsearch.DatabaseOption{}
	if c.Bool("no-embeddings") {
		opts = append(opts, docsearch.WithoutEmbeddings())
	} else {
		aiConfig := ai.NewConfig(
			ai.WithEmbeddingHost(c.String("embedding-host")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
		)
		if err := aiConfig.Validate(); err != nil {
			return nil, fmt.Errorf("invalid embedding configuration: %w", err)
		}
		opts = append(opts, docsearch.WithAIConfig(aiConfig))
	}

	db, err := docsearch.NewDatabase(c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func addCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(
		ingestion.WithChunking(c.Int("chunk-size"), c.Int("chunk-overlap")),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	ctx := context.Background()
	for _, path := range c.Args().Slice() {
		contents, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		document, err := pipeline.Ingest(ctx, path, string(contents), nil)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}
		if document == nil {
			fmt.Fprintf(os.Stderr, "%s: no indexable text, skipped\n", path)
			continue
		}
		fmt.Printf("%s: document %d\n", path, document.Id)
	}

	// Wait for embedding jobs before the database closes
	pipeline.Flush()
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a query is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.Search(context.Background(), query, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}

	for i, result := range results {
		fmt.Printf("%d. [%s %.3f] %s\n   %s\n", i+1, modeName(result.Mode), result.Score, result.Filename, result.Excerpt)
	}
	return nil
}

func listCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	documents, err := db.DocumentRepository().ListDocuments(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	for _, document := range documents {
		fmt.Printf("%d\t%s\t%s\n", document.Id, document.CreatedAt.Format("2006-01-02 15:04"), document.Filename)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one document ID is required")
	}
	id, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid document ID %q: %w", c.Args().First(), err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RemoveDocument(context.Background(), core.ID(id)); err != nil {
		return fmt.Errorf("failed to delete document %d: %w", id, err)
	}
	fmt.Printf("deleted document %d\n", id)
	return nil
}

func modeName(mode core.SearchMode) string {
	switch mode {
	case core.ModeSemantic:
		return "sem"
	case core.ModeLexical:
		return "lex"
	default:
		return "?"
	}
}
