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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "ragserve",
		Usage: "Document question answering over local collections",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				Value:   "ragserve-data/db",
			},
			&cli.StringFlag{
				Name:  "vectors",
				Usage: "Path to vector index file",
				Value: "ragserve-data/vectors",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "OpenAI-compatible service host URL for embeddings and chat",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "embeddinggemma",
			},
			&cli.StringFlag{
				Name:  "chat-model",
				Usage: "Chat model name for augmentation and answer generation",
				Value: "qwen2.5:3b",
			},
			&cli.StringFlag{
				Name:  "api-key",
				Usage: "Bearer token for the backing services",
				Value: "none",
			},
			&cli.Float64Flag{
				Name:  "temperature",
				Usage: "Sampling temperature for chat completions",
				Value: 0.7,
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:  "collection",
				Usage: "Manage collections",
				Subcommands: []*cli.Command{
					{
						Name:   "create",
						Usage:  "Create a new collection",
						Action: collectionCreateCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "name",
								Aliases:  []string{"n"},
								Usage:    "Collection name (case-insensitive, unique)",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "description",
								Usage: "Collection description",
							},
						},
					},
					{
						Name:   "list",
						Usage:  "List all collections",
						Action: collectionListCommand,
					},
					{
						Name:   "delete",
						Usage:  "Delete a collection and everything it owns",
						Action: collectionDeleteCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "name",
								Aliases:  []string{"n"},
								Usage:    "Collection name",
								Required: true,
							},
						},
					},
				},
			},
			{
				Name:  "document",
				Usage: "Manage documents",
				Subcommands: []*cli.Command{
					{
						Name:   "upload",
						Usage:  "Upload a document and ingest it into a collection",
						Action: documentUploadCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "collection",
								Aliases:  []string{"c"},
								Usage:    "Target collection name",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "file",
								Aliases:  []string{"f"},
								Usage:    "Path to the document file",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "name",
								Usage: "Display name (defaults to the file name)",
							},
							&cli.StringFlag{
								Name:  "description",
								Usage: "Document description, included in passage provenance",
							},
							&cli.IntFlag{
								Name:  "chunk-size",
								Usage: "Chunk size in runes",
								Value: 1000,
							},
							&cli.IntFlag{
								Name:  "chunk-overlap",
								Usage: "Chunk overlap in runes",
								Value: 100,
							},
						},
					},
					{
						Name:   "list",
						Usage:  "List the documents of a collection",
						Action: documentListCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "collection",
								Aliases:  []string{"c"},
								Usage:    "Collection name",
								Required: true,
							},
						},
					},
					{
						Name:   "resubmit",
						Usage:  "Run ingestion again for a document",
						Action: documentResubmitCommand,
						Flags:  documentIDFlags(),
					},
					{
						Name:   "recover",
						Usage:  "Mark a document stuck in processing as failed so it can be resubmitted",
						Action: documentRecoverCommand,
						Flags:  documentIDFlags(),
					},
					{
						Name:   "archive",
						Usage:  "Archive a document, keeping its passages searchable",
						Action: documentArchiveCommand,
						Flags:  documentIDFlags(),
					},
					{
						Name:   "delete",
						Usage:  "Delete a document and remove its passages from the index",
						Action: documentDeleteCommand,
						Flags:  documentIDFlags(),
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Ask a question against a collection",
				Action:    askCommand,
				ArgsUsage: "QUESTION",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "collection",
						Aliases:  []string{"c"},
						Usage:    "Collection to answer from",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "session",
						Aliases: []string{"s"},
						Usage:   "Session identifier for conversational follow-ups",
					},
					&cli.BoolFlag{
						Name:  "augment",
						Usage: "Expand the question into paraphrases before retrieval",
					},
					&cli.BoolFlag{
						Name:  "html",
						Usage: "Request HTML-formatted output",
					},
					&cli.BoolFlag{
						Name:  "stream",
						Usage: "Stream the answer as it is generated",
					},
				},
			},
			{
				Name:  "history",
				Usage: "Inspect and clear recorded question history",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List the recorded questions of a collection",
						Action: historyListCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "collection",
								Aliases:  []string{"c"},
								Usage:    "Collection name",
								Required: true,
							},
						},
					},
					{
						Name:   "clear",
						Usage:  "Clear recorded questions",
						Action: historyClearCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    "collection",
								Aliases: []string{"c"},
								Usage:   "Collection name (omit with --all to clear everything)",
							},
							&cli.BoolFlag{
								Name:  "all",
								Usage: "Clear the history of every collection",
							},
						},
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search a collection's passages directly",
				Action:    searchCommand,
				ArgsUsage: "QUERY",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "collection",
						Aliases:  []string{"c"},
						Usage:    "Collection to search",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum number of passages to return",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  "min-score",
						Usage: "Similarity floor for semantic hits",
						Value: 0.60,
					},
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Print each search stage as it happens",
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Re-ingest documents after an embedding model change",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "collection",
						Aliases: []string{"c"},
						Usage:   "Collection name (omit with --all to reindex everything)",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Reindex every collection",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts per document",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func documentIDFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "id",
			Usage:    "Document identifier",
			Required: true,
		},
	}
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
