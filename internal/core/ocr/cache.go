package ocr

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/joseph-ayodele/refund-checklist/internal/entity"
)

const cacheVersion = 1

type cacheEntry struct {
	Version int               `msgpack:"v"`
	Pages   []entity.PageScan `msgpack:"p"`
}

// pageCache persists scan results as {dir}/{sha256}.pages so unchanged
// files are not rendered and recognized again.
type pageCache struct {
	dir    string
	logger *slog.Logger
}

func newPageCache(dir string, logger *slog.Logger) *pageCache {
	if dir == "" {
		return nil
	}
	return &pageCache{dir: dir, logger: logger}
}

func (c *pageCache) path(hashHex string) string {
	return filepath.Join(c.dir, hashHex+".pages")
}

// load returns cached pages for hashHex. Unreadable or stale entries are
// treated as misses.
func (c *pageCache) load(hashHex string) ([]entity.PageScan, bool) {
	if c == nil || hashHex == "" {
		return nil, false
	}
	data, err := os.ReadFile(c.path(hashHex))
	if err != nil {
		return nil, false
	}
	var entry cacheEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil || entry.Version != cacheVersion {
		c.logger.Warn("ignoring unreadable page cache entry", "hash", hashHex, "error", err)
		return nil, false
	}
	c.logger.Debug("page cache hit", "hash", hashHex, "pages", len(entry.Pages))
	return entry.Pages, true
}

// store writes through a temp file and renames it into place, so a
// concurrent reader never sees a partial entry.
func (c *pageCache) store(hashHex string, pages []entity.PageScan) error {
	if c == nil || hashHex == "" {
		return nil
	}
	data, err := msgpack.Marshal(cacheEntry{Version: cacheVersion, Pages: pages})
	if err != nil {
		return fmt.Errorf("encode page cache: %w", err)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, hashHex+".*.tmp")
	if err != nil {
		return fmt.Errorf("create cache temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close cache temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(hashHex)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("persist cache entry: %w", err)
	}
	return nil
}
