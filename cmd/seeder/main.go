package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/ragserve"
	"github.com/poiesic/ragserve/core"
	"github.com/poiesic/ragserve/storage"
)

// Sample documents for exercising a fresh installation.
var samples = map[string]string{
	"onboarding.txt": `Welcome to the company.

Your first week is dedicated to onboarding. You will receive your laptop
and badge on day one, meet your team on day two, and complete security
training before the end of the week. Your manager schedules a thirty day
check-in to review how the onboarding went.

All new hires are assigned an onboarding buddy. The buddy answers
day-to-day questions and introduces you to the tools the team uses.`,

	"vacation.txt": `Vacation policy.

Full-time employees accrue twenty vacation days per year, earned
monthly. Unused days carry over up to a maximum of five days into the
next calendar year. Vacation requests go through the HR portal and need
manager approval at least two weeks in advance for absences longer than
three days.

Sick leave is separate from vacation and does not accrue. A doctor's
note is required for absences longer than three consecutive days.`,

	"expenses.txt": `Expense reporting.

Business expenses are reimbursed when submitted within sixty days of
purchase. Attach receipts for every item over ten dollars. Travel
bookings go through the travel desk; self-booked travel needs prior
written approval from your department head.

Meal allowances apply during business travel only. Alcohol is never
reimbursable.`,

	"equipment.txt": `Equipment and remote work.

The company provides a laptop, a monitor, and peripherals for every
employee. Additional equipment for a home office can be requested once
per year up to a fixed budget. Remote work is allowed up to three days
per week with manager approval; fully remote arrangements require a
signed addendum to the employment contract.`,
}

var (
	dataDir    = flag.String("data", "./ragserve-data", "data directory for the record store and vector index")
	collection = flag.String("collection", "handbook", "collection to seed")
	srcDir     = flag.String("src", "", "directory of text files to seed instead of the built-in samples")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// sourceFiles returns the files to ingest: either the contents of -src,
// or the built-in samples written into the data directory.
func sourceFiles(dataDir string) (map[string]string, error) {
	if *srcDir != "" {
		entries, err := os.ReadDir(*srcDir)
		if err != nil {
			return nil, err
		}

		files := make(map[string]string)
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			files[entry.Name()] = filepath.Join(*srcDir, entry.Name())
		}
		return files, nil
	}

	seedDir := filepath.Join(dataDir, "seed")
	if err := os.MkdirAll(seedDir, 0o755); err != nil {
		return nil, err
	}

	files := make(map[string]string)
	for name, content := range samples {
		path := filepath.Join(seedDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, err
		}
		files[name] = path
	}
	return files, nil
}

func main() {
	db, err := ragserve.NewDatabase(*dataDir)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	collections, err := db.NewCollectionService()
	if err != nil {
		panic(err)
	}

	col, err := collections.Create(ctx, *collection, "seed data")
	if errors.Is(err, storage.ErrDuplicateKey) {
		col, err = collections.GetByName(ctx, *collection)
	}
	if err != nil {
		panic(err)
	}

	files, err := sourceFiles(*dataDir)
	if err != nil {
		panic(err)
	}

	documents := db.DocumentRepository()

	for name, path := range files {
		doc, err := documents.AddDocument(ctx, &core.Document{
			CollectionID: col.ID,
			Name:         name,
			FilePath:     path,
		})
		if err != nil {
			panic(err)
		}
		// Ingest synchronously so the seeder exits with a fully built
		// index.
		if err := pipeline.Ingest(ctx, doc.ID); err != nil {
			slog.Warn("seed ingestion failed", "document", name, "err", err)
			continue
		}
		fmt.Printf("Seeded %s into %s\n", name, col.Name)
	}
}
