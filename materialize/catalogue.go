// Package materialize implements the profile-based materialization
// planner of spec.md §4.4: a cache catalogue mapping lineage signatures
// to storage URIs, a load-already-cached bottom-up pass, and an
// insert-new-materializations top-down pass driven by the markov cost
// model.
package materialize

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/dianpeng/piglet/fsutil"
	"github.com/dianpeng/piglet/perr"
)

// CatalogueEntry records where a materialized lineage signature's
// output is stored and the schema it was stored with.
type CatalogueEntry struct {
	LineageSignature string `json:"lineage_signature"`
	URI              string `json:"uri"`
	SchemaJSON       string `json:"schema_json"`
}

// Catalogue is the persistent record of every materialization written
// so far, keyed by lineage signature (spec.md §4.9). It is safe for
// concurrent use since the compiler may consult it from multiple
// goroutines when compiling independent plans against the same cache
// directory.
type Catalogue struct {
	mu      sync.RWMutex
	path    string
	entries map[string]CatalogueEntry
}

func NewCatalogue(path string) *Catalogue {
	return &Catalogue{path: path, entries: map[string]CatalogueEntry{}}
}

// LoadCatalogue reads the catalogue file at path, or returns an empty
// catalogue if it does not exist yet.
func LoadCatalogue(path string) (*Catalogue, error) {
	c := NewCatalogue(path)
	if !fsutil.Exists(path) {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.New("materialize", perr.CacheCorrupt, "read catalogue %s: %v", path, err)
	}
	var list []CatalogueEntry
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, perr.New("materialize", perr.CacheCorrupt, "decode catalogue %s: %v", path, err)
	}
	for _, e := range list {
		c.entries[e.LineageSignature] = e
	}
	return c, nil
}

// Lookup returns the entry for sig, if any.
func (c *Catalogue) Lookup(sig string) (CatalogueEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[sig]
	return e, ok
}

// Put records or replaces sig's entry and persists the catalogue
// atomically (spec.md §4.5/§6).
func (c *Catalogue) Put(e CatalogueEntry) error {
	c.mu.Lock()
	c.entries[e.LineageSignature] = e
	list := make([]CatalogueEntry, 0, len(c.entries))
	for _, v := range c.entries {
		list = append(list, v)
	}
	c.mu.Unlock()

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return perr.New("materialize", perr.CacheCorrupt, "marshal catalogue: %v", err)
	}
	if err := fsutil.AtomicWriteFile(c.path, data, 0o644); err != nil {
		return perr.New("materialize", perr.CacheCorrupt, "persist catalogue to %s: %v", c.path, err)
	}
	return nil
}
