// =============================================================================
// Incidencias Export - Lookup Cache
// =============================================================================
//
// Lookup indexes are cached keyed by (path, content hash), so a reload after
// an unchanged workbook is a map hit while any byte change forces a rebuild.
// Sentinel hashes (missing or unreadable file) are never cached: those
// lookups rebuild on every call and stay empty until the file comes back.
//
// =============================================================================

package lookup

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/ginjaninja78/incidencias-export/internal/maestros"
)

// CacheKey identifies one cached index build.
type CacheKey struct {
	Path string
	Hash string
}

// Cache builds and memoizes lookup indexes per workbook content.
type Cache struct {
	loader *maestros.Loader
	lru    *lru.Cache[CacheKey, *Index]
	log    *zap.Logger
}

// NewCache builds a Cache over the given loader holding at most entries
// indexes. A nil logger is replaced with a no-op one.
func NewCache(loader *maestros.Loader, entries int, log *zap.Logger) (*Cache, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if entries < 1 {
		entries = 1
	}
	c, err := lru.New[CacheKey, *Index](entries)
	if err != nil {
		return nil, err
	}
	return &Cache{loader: loader, lru: c, log: log}, nil
}

// Get returns the lookup index for the workbook at path, rebuilding it only
// when the file content has changed since the cached build.
func (c *Cache) Get(path string) *Index {
	hash := maestros.FileHash(path)
	key := CacheKey{Path: path, Hash: hash}

	if !maestros.IsSentinelHash(hash) {
		if idx, ok := c.lru.Get(key); ok {
			c.log.Debug("lookup cache hit", zap.String("path", path))
			return idx
		}
	}

	idx := Build(c.loader.Load(path))

	if !maestros.IsSentinelHash(idx.Hash()) {
		c.lru.Add(CacheKey{Path: path, Hash: idx.Hash()}, idx)
	}
	c.log.Debug("lookup cache rebuild",
		zap.String("path", path),
		zap.Bool("sentinel", maestros.IsSentinelHash(idx.Hash())))

	return idx
}

// Purge drops every cached index.
func (c *Cache) Purge() {
	c.lru.Purge()
}
