package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joseph-ayodele/refund-checklist/constants"
	"github.com/joseph-ayodele/refund-checklist/internal/common"
)

// FSIngestor reads from the local filesystem. One FSIngestor tracks the
// hashes of a single batch.
type FSIngestor struct {
	AllowedExts map[string]struct{} // lowercased sans '.'; nil -> default set

	logger *slog.Logger
	mu     sync.Mutex
	seen   map[string]string // hash -> first path
}

func NewFSIngestor(logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{logger: logger, seen: make(map[string]string)}
}

func (i *FSIngestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	var out IngestionResult
	if err := ctx.Err(); err != nil {
		return out, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("abs path: %w", err)
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext, i.AllowedExts) {
		i.logger.Warn("unsupported or missing extension", "file", abs, "ext", ext)
		return out, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}

	sum, size, err := hashFile(abs)
	if err != nil {
		return out, err
	}
	hashHex := hex.EncodeToString(sum)

	i.mu.Lock()
	first, dup := i.seen[hashHex]
	if !dup {
		i.seen[hashHex] = abs
	}
	i.mu.Unlock()
	if dup {
		i.logger.Info("duplicate content in batch", "file", abs, "same_as", first)
	}

	return IngestionResult{
		SourcePath:   abs,
		Name:         filepath.Base(abs),
		FileExt:      ext,
		HashHex:      hashHex,
		Size:         size,
		Deduplicated: dup,
	}, nil
}

// IngestDirectory walks root, skips hidden if requested,
// and calls IngestPath for each file. Returns per-file results + aggregate stats.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, common.NewAppError("INVALID_INPUT", "root path is required", common.ErrInvalidInput)
	}

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			results = append(results, IngestionResult{SourcePath: path, Name: filepath.Base(path), Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path), i.AllowedExts) {
			return nil
		}
		stats.Matched++
		i.record(ctx, path, &results, &stats)
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk %s: %w", root, err)
	}
	return results, stats, nil
}

// Collect ingests root (when set) and then the explicit files, in that
// order.
func (i *FSIngestor) Collect(ctx context.Context, root string, files []string) ([]IngestionResult, DirStats, error) {
	var (
		results []IngestionResult
		stats   DirStats
	)
	if root != "" {
		r, s, err := i.IngestDirectory(ctx, root, true)
		if err != nil {
			return nil, s, err
		}
		results, stats = r, s
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return results, stats, err
		}
		stats.Scanned++
		stats.Matched++
		i.record(ctx, f, &results, &stats)
	}
	if len(results) == 0 {
		return nil, stats, common.NewAppError("NOT_FOUND", "no bundle files found", common.ErrNotFound)
	}
	return results, stats, nil
}

func (i *FSIngestor) record(ctx context.Context, path string, results *[]IngestionResult, stats *DirStats) {
	r, err := i.IngestPath(ctx, path)
	if err != nil {
		*results = append(*results, IngestionResult{SourcePath: path, Name: filepath.Base(path), Err: err.Error()})
		stats.Failed++
		return
	}
	*results = append(*results, r)
	stats.Succeeded++
	if r.Deduplicated {
		stats.Deduplicated++
	}
}

func hashFile(path string) ([]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%s: %w", path, common.ErrNotFound)
		}
		return nil, 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return nil, 0, fmt.Errorf("hash %s: %w", path, err)
	}
	return h.Sum(nil), n, nil
}
