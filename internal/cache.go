package internal

import (
	"bytes"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vmihailenco/msgpack/v5"

	tt "github.com/gnolang/plint/internal/types"
	"github.com/gnolang/plint/internal/version"
)

const cacheFile = "plint_cache.db"

const cacheSchema = `
CREATE TABLE IF NOT EXISTS results (
  path          TEXT PRIMARY KEY,
  content_hash  TEXT NOT NULL,
  rules_hash    TEXT NOT NULL,
  version       TEXT NOT NULL,
  issues        BLOB NOT NULL,
  created_at    INTEGER NOT NULL,
  last_accessed INTEGER NOT NULL
);
`

// CacheKey identifies one lint result: the file contents, the rule set it
// was computed with and the engine that computed it.
type CacheKey struct {
	Content string
	Rules   string
	Version string
}

// NewCacheKey hashes content and the rule set. Map keys are sorted before
// encoding so equal rule sets always hash alike.
func NewCacheKey(content []byte, set tt.RuleSet) (CacheKey, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(set); err != nil {
		return CacheKey{}, fmt.Errorf("failed to encode rule set: %w", err)
	}
	return CacheKey{
		Content: hashBytes(content),
		Rules:   hashBytes(buf.Bytes()),
		Version: version.Version,
	}, nil
}

func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Cache persists lint results in a sqlite database under CacheDir. It is
// safe for concurrent use.
type Cache struct {
	CacheDir string
	db       *sql.DB
	mutex    sync.RWMutex
	maxAge   time.Duration
}

// NewCache opens, creating it if needed, the cache database in cacheDir.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dsn := filepath.Join(cacheDir, cacheFile) + "?_journal_mode=WAL&_busy_timeout=30000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate cache: %w", err)
	}
	return &Cache{CacheDir: cacheDir, db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the issues cached for path when they were computed for key
// and are not older than the configured max age.
func (c *Cache) Get(path string, key CacheKey) ([]tt.Issue, bool) {
	var (
		content, rules, ver string
		payload             []byte
		created             int64
	)
	row := c.db.QueryRow(
		`SELECT content_hash, rules_hash, version, issues, created_at FROM results WHERE path = ?`, path)
	if err := row.Scan(&content, &rules, &ver, &payload, &created); err != nil {
		return nil, false
	}
	if (CacheKey{Content: content, Rules: rules, Version: ver}) != key || c.expired(created) {
		return nil, false
	}

	var issues []tt.Issue
	if err := msgpack.Unmarshal(payload, &issues); err != nil {
		return nil, false
	}
	_, _ = c.db.Exec(`UPDATE results SET last_accessed = ? WHERE path = ?`, time.Now().Unix(), path)
	return issues, true
}

func (c *Cache) expired(created int64) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.maxAge <= 0 {
		return false
	}
	return time.Since(time.Unix(created, 0)) > c.maxAge
}

// Set stores the issues of path under key, replacing any older entry.
func (c *Cache) Set(path string, key CacheKey, issues []tt.Issue) error {
	payload, err := msgpack.Marshal(issues)
	if err != nil {
		return fmt.Errorf("failed to encode issues: %w", err)
	}
	now := time.Now().Unix()
	_, err = c.db.Exec(`INSERT OR REPLACE INTO results
		(path, content_hash, rules_hash, version, issues, created_at, last_accessed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		path, key.Content, key.Rules, key.Version, payload, now, now)
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", path, err)
	}
	return nil
}

// SetMaxAge bounds the age of reusable entries. Zero disables expiry.
func (c *Cache) SetMaxAge(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = duration
}

// Invalidate drops the entry of path.
func (c *Cache) Invalidate(path string) error {
	if _, err := c.db.Exec(`DELETE FROM results WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", path, err)
	}
	return nil
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() error {
	if _, err := c.db.Exec(`DELETE FROM results`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM results`).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return n, nil
}
