// Package ingest discovers the files of a request bundle and fingerprints
// them with SHA-256.
package ingest

import "context"

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath string
	Name       string
	FileExt    string
	HashHex    string
	Size       int64
	// Deduplicated marks content already seen earlier in the same batch.
	Deduplicated bool
	Err          string
}

// OK reports whether the file can be evaluated.
func (r IngestionResult) OK() bool { return r.Err == "" }

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor is the behavior the batch front end depends on.
type Ingestor interface {
	// IngestPath fingerprints a single file.
	IngestPath(ctx context.Context, path string) (IngestionResult, error)
	// IngestDirectory ingests all matching files under root.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error)
}
