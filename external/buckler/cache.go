package buckler

import (
	"os"
	"path/filepath"
	"time"

	crerr "github.com/cockroachdb/errors"
)

// FileCache stores verified documents as UTF-8 JSON leaf files under a root
// directory. A missing directory or leaf is a miss, never an error. Layout is
// owned by each Subject's CachePath.
type FileCache struct {
	root string
}

func NewFileCache(root string) *FileCache {
	return &FileCache{root: root}
}

func (c *FileCache) Root() string { return c.root }

// Load returns the cached document for the key, or (nil, false, nil) on miss.
// Cached bytes were verified before being written, so they are trusted as-is.
func (c *FileCache) Load(subject Subject, ownerID string, date time.Time, page int) (*Document, bool, error) {
	path := subject.CachePath(c.root, ownerID, date, page)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, crerr.Wrapf(err, "read cache leaf %s", path)
	}
	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, false, crerr.Wrapf(err, "parse cache leaf %s", path)
	}
	return doc, true, nil
}

// Store writes the document's raw bytes to the subject's cache slot,
// creating intermediate directories as needed.
func (c *FileCache) Store(subject Subject, ownerID string, date time.Time, page int, doc *Document) error {
	path := subject.CachePath(c.root, ownerID, date, page)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return crerr.Wrapf(err, "create cache dir for %s", path)
	}
	if err := os.WriteFile(path, doc.Raw, 0o644); err != nil {
		return crerr.Wrapf(err, "write cache leaf %s", path)
	}
	return nil
}
