package main

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/getluma/emissions-extraction-service/internal/dedup"
	"github.com/getluma/emissions-extraction-service/internal/logger"
	"github.com/getluma/emissions-extraction-service/internal/models"
)

var batchCmd = &cobra.Command{
	Use:   "batch [directory]",
	Short: "Parse every supported document in a directory",
	Long: `Walk a directory tree, parse every file with a supported extension
(pdf, csv, xlsx, xls, txt) and print a summary envelope with all extracted
records as JSON.

Documents are independent of each other, so files are parsed concurrently
by a pool of workers. With --dedup-index, the SHA-1 fingerprint of each
document's extracted text is checked against a persistent index and repeat
uploads of the same invoice are flagged as duplicates.`,
	Example: `  # Parse an upload batch with 4 workers
  extract batch ./uploads --workers 4

  # Track duplicates across runs
  extract batch ./uploads --dedup-index seen.db -o batch.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

// fileResult is the per-file entry of the batch summary.
type fileResult struct {
	FileID      string            `json:"file_id"`
	File        string            `json:"file"`
	SourceType  models.SourceType `json:"source_type"`
	Duplicate   bool              `json:"duplicate,omitempty"`
	DuplicateOf string            `json:"duplicate_of,omitempty"`
	Records     []recordResult    `json:"records"`
}

// batchEnvelope is the JSON output of the batch command.
type batchEnvelope struct {
	Directory  string                      `json:"directory"`
	Duration   string                      `json:"duration"`
	Files      int                         `json:"files"`
	Records    int                         `json:"records"`
	Statuses   map[models.UploadStatus]int `json:"statuses"`
	Duplicates int                         `json:"duplicates,omitempty"`
	Results    []fileResult                `json:"results"`
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntP("workers", "w", 4, "number of concurrent parser workers")
	batchCmd.Flags().String("dedup-index", "", "path to a BoltDB file tracking seen document fingerprints")
	batchCmd.Flags().StringP("output", "o", "", "output file path (default: stdout)")
	batchCmd.Flags().Bool("pretty", false, "indent the JSON output")
}

func runBatch(cmd *cobra.Command, args []string) error {
	workers, _ := cmd.Flags().GetInt("workers")
	indexPath, _ := cmd.Flags().GetString("dedup-index")
	outputPath, _ := cmd.Flags().GetString("output")
	pretty, _ := cmd.Flags().GetBool("pretty")

	if workers < 1 {
		workers = 1
	}

	dir := args[0]
	files, err := collectFiles(dir)
	if err != nil {
		return err
	}

	var index *dedup.Index
	if indexPath != "" {
		index, err = dedup.Open(indexPath)
		if err != nil {
			return err
		}
		defer index.Close()
	}

	p, closer := newPipeline(cmd.Context())
	if closer != nil {
		defer closer.Close()
	}

	log := logger.WithComponent("batch")
	log.Info().Str("directory", dir).Int("files", len(files)).Int("workers", workers).Msg("starting batch")

	start := time.Now()

	// Fan the file list out to the workers. Each file is an independent
	// parse, so the only shared state is the results slice, written by
	// index.
	results := make([]fileResult, len(files))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = parseOne(cmd.Context(), p, index, files[i])
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	envelope := batchEnvelope{
		Directory: dir,
		Duration:  time.Since(start).Round(time.Millisecond).String(),
		Files:     len(files),
		Statuses:  map[models.UploadStatus]int{},
		Results:   results,
	}
	for _, fr := range results {
		envelope.Records += len(fr.Records)
		if fr.Duplicate {
			envelope.Duplicates++
		}
		for _, rec := range fr.Records {
			envelope.Statuses[rec.Status]++
		}
	}

	log.Info().
		Int("files", envelope.Files).
		Int("records", envelope.Records).
		Int("duplicates", envelope.Duplicates).
		Dur("duration", time.Since(start)).
		Msg("batch finished")

	return writeJSON(envelope, outputPath, pretty)
}

// collectFiles lists the supported documents under dir in stable order.
func collectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if models.DetectSourceType(path) != models.SourceOther {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func parseOne(ctx context.Context, p documentParser, index *dedup.Index, path string) fileResult {
	sourceType := models.DetectSourceType(path)
	records := p.ParseDocument(ctx, path, sourceType)

	fr := fileResult{
		FileID:     uuid.NewString(),
		File:       path,
		SourceType: sourceType,
		Records:    annotateRecords(records),
	}

	if index != nil {
		// Only text documents carry a fingerprint; tabular rows have no
		// raw_text_hash to index.
		for _, rec := range records {
			hash, ok := rec.Meta["raw_text_hash"].(string)
			if !ok || hash == "" {
				continue
			}
			prior, err := index.Check(hash, path)
			if err != nil {
				log := logger.WithComponent("batch")
				log.Warn().Err(err).Str("file", path).Msg("dedup check failed")
				break
			}
			if prior != nil && prior.File != path {
				fr.Duplicate = true
				fr.DuplicateOf = prior.File
			}
			break
		}
	}

	return fr
}

// documentParser is the slice of the parser the batch worker needs.
type documentParser interface {
	ParseDocument(ctx context.Context, path string, sourceType models.SourceType) []models.NormalizedRecord
}
