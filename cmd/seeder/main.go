package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/docsearch"
	"github.com/poiesic/docsearch/ingestion"
)

// sampleDocuments gives the database something to search without needing a
// corpus on disk. Each entry becomes one document.
var sampleDocuments = map[string]string{
	"foxes.txt": "The quick brown fox jumps over the lazy dog. Foxes are " +
		"small omnivorous mammals found across the northern hemisphere. A " +
		"silver fox slipped past the fences into the twilight.",
	"weather.txt": "Rain drummed on the rooftop, creating a soothing rhythm. " +
		"A sudden thunderclap shattered the silence of the forest. A gentle " +
		"snowfall blanketed the city in quiet white.",
	"sea.txt": "Beneath the waves, coral gardens shimmered in colors unseen. " +
		"The lighthouse beam cut through fog, guiding sailors safely. She " +
		"collected seashells along the rocky shore.",
	"music.txt": "He composed a melody that echoed through the valleys. She " +
		"hummed a tune she learned from her grandmother. They sang songs " +
		"under the open sky during summer nights.",
}

var (
	dbPath       = flag.String("db", "./docsearch_db", "database directory")
	seedDirName  = flag.String("dir", "", "directory of text files to seed instead of the samples")
	noEmbeddings = flag.Bool("no-embeddings", false, "skip embedding generation")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

// ingestDirectory feeds every regular file in dir through the pipeline.
func ingestDirectory(ctx context.Context, pipeline *ingestion.Pipeline, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		contents, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := pipeline.Ingest(ctx, entry.Name(), string(contents), nil); err != nil {
			return err
		}
	}
	return nil
}

func ingestSamples(ctx context.Context, pipeline *ingestion.Pipeline) error {
	for filename, contents := range sampleDocuments {
		if _, err := pipeline.Ingest(ctx, filename, contents, nil); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	flag.Parse()

	opts := []docsearch.DatabaseOption{}
	if *noEmbeddings {
		opts = append(opts, docsearch.WithoutEmbeddings())
	}

	db, err := docsearch.NewDatabase(*dbPath, opts...)
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
	if *seedDirName != "" {
		err = ingestDirectory(ctx, pipeline, *seedDirName)
	} else {
		err = ingestSamples(ctx, pipeline)
	}
	if err != nil {
		panic(err)
	}

	// Wait for embedding jobs before closing
	pipeline.Flush()
}
