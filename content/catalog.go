package content

import (
	"sync"

	"github.com/wfunc/quizroom/logger"
)

// Catalog caches loaded sets and knows the process-wide default.
type Catalog struct {
	loader    Loader
	defaultID string
	mu        sync.RWMutex
	sets      map[string]*Set
}

func NewCatalog(loader Loader, defaultID string) *Catalog {
	return &Catalog{
		loader:    loader,
		defaultID: defaultID,
		sets:      make(map[string]*Set),
	}
}

// Get returns the set for id, loading it on first use.
func (c *Catalog) Get(id string) (*Set, error) {
	c.mu.RLock()
	set, ok := c.sets[id]
	c.mu.RUnlock()
	if ok {
		return set, nil
	}

	set, err := c.loader.Load(id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.sets[id]; ok {
		return cached, nil
	}
	c.sets[id] = set
	logger.Log.Infof("Loaded content set %s (%d questions, %ds rounds)", id, set.Len(), set.RoundDurationSeconds)
	return set, nil
}

// Default returns the process-wide default set, or ErrUnknownContent when none is configured.
func (c *Catalog) Default() (*Set, error) {
	if c.defaultID == "" {
		return nil, ErrUnknownContent
	}
	return c.Get(c.defaultID)
}

// Put registers an already-built set, replacing any cached one.
func (c *Catalog) Put(set *Set) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets[set.ID] = set
}
