// Package rules ships the routing rule sources and loads overrides from disk.
//
// Rule text is the only thing cached between probes. The cache key includes the
// file's modification time and size, so an edited file is re-read on the next probe.
package rules

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"intentrouter/internal/logging"
)

// Embedded rule file names.
const (
	DictFile    = "router.pl"          // SWI-Prolog dict syntax
	ListFile    = "router_standard.pl" // ISO association-list syntax
	DatalogFile = "router.mg"          // Mangle Datalog
)

//go:embed router.pl router_standard.pl router.mg
var embedded embed.FS

// Embedded returns the built-in source for one of the embedded rule files.
func Embedded(name string) (string, error) {
	data, err := embedded.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("no embedded rule file %q: %w", name, err)
	}
	return string(data), nil
}

// Loader reads rule sources, caching text by path, mtime and size.
type Loader struct {
	cache *lru.Cache[string, string]
}

// NewLoader creates a loader holding at most size sources.
func NewLoader(size int) (*Loader, error) {
	if size <= 0 {
		size = 16
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create rule cache: %w", err)
	}
	return &Loader{cache: cache}, nil
}

// Load returns the source at path, or the embedded file named fallback when path is empty.
func (l *Loader) Load(path, fallback string) (string, error) {
	if path == "" {
		return Embedded(fallback)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat rule file %s: %w", path, err)
	}
	key := fmt.Sprintf("%s@%d:%d", path, info.ModTime().UnixNano(), info.Size())
	if src, ok := l.cache.Get(key); ok {
		return src, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read rule file %s: %w", path, err)
	}
	src := string(data)
	l.cache.Add(key, src)
	logging.EngineDebug("loaded rule file %s (%d bytes)", path, len(data))
	return src, nil
}

// Len reports how many sources are cached.
func (l *Loader) Len() int {
	return l.cache.Len()
}

// Purge drops every cached source.
func (l *Loader) Purge() {
	l.cache.Purge()
}

// Materialize writes src to a content-addressed file under dir and returns its path.
// Engines that only accept a file path use it for embedded sources. Existing files
// with the same content are reused.
func Materialize(dir, name, src string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	sum := sha256.Sum256([]byte(src))
	path := filepath.Join(dir, fmt.Sprintf("intentrouter-%s-%s", hex.EncodeToString(sum[:6]), name))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	tmp, err := os.CreateTemp(dir, "rules-*")
	if err != nil {
		return "", fmt.Errorf("failed to create rule file: %w", err)
	}
	if _, err := tmp.WriteString(src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write rule file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write rule file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to place rule file: %w", err)
	}
	return path, nil
}
