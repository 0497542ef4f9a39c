package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/conneroisu/mdindex/internal/types"
)

// PageRegistry manages all discovered index pages
type PageRegistry struct {
	pages    map[string]*types.IndexPage
	mutex    sync.RWMutex
	watchers []chan types.PageEvent
}

// NewPageRegistry creates a new page registry
func NewPageRegistry() *PageRegistry {
	return &PageRegistry{
		pages:    make(map[string]*types.IndexPage),
		watchers: make([]chan types.PageEvent, 0),
	}
}

// Register adds or updates a page in the registry, keyed by file path
func (r *PageRegistry) Register(page *types.IndexPage) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	eventType := types.EventTypeAdded
	if _, exists := r.pages[page.FilePath]; exists {
		eventType = types.EventTypeUpdated
	}

	r.pages[page.FilePath] = page

	r.notify(types.PageEvent{
		Type:      eventType,
		Page:      page,
		Timestamp: time.Now(),
	})
}

// Get retrieves a page by file path
func (r *PageRegistry) Get(path string) (*types.IndexPage, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	page, exists := r.pages[path]
	return page, exists
}

// GetByName retrieves a page by its name (base file name without extension)
func (r *PageRegistry) GetByName(name string) (*types.IndexPage, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, page := range r.pages {
		if page.Name() == name {
			return page, true
		}
	}
	return nil, false
}

// GetAll returns all registered pages sorted by file path for stable output
func (r *PageRegistry) GetAll() []*types.IndexPage {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*types.IndexPage, 0, len(r.pages))
	for _, page := range r.pages {
		result = append(result, page)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].FilePath < result[j].FilePath
	})
	return result
}

// Entries returns every entry of every page, page order first, source order
// within a page.
func (r *PageRegistry) Entries() []*types.IndexEntry {
	pages := r.GetAll()

	var entries []*types.IndexEntry
	for _, page := range pages {
		entries = append(entries, page.Entries...)
	}
	return entries
}

// Remove removes a page from the registry
func (r *PageRegistry) Remove(path string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	page, exists := r.pages[path]
	if !exists {
		return
	}

	delete(r.pages, path)

	r.notify(types.PageEvent{
		Type:      types.EventTypeRemoved,
		Page:      page,
		Timestamp: time.Now(),
	})
}

// Watch returns a channel that receives page events
func (r *PageRegistry) Watch() <-chan types.PageEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan types.PageEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *PageRegistry) UnWatch(ch <-chan types.PageEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of registered pages
func (r *PageRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.pages)
}

// EntryCount returns the total number of entries across all pages
func (r *PageRegistry) EntryCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	n := 0
	for _, page := range r.pages {
		n += len(page.Entries)
	}
	return n
}

// notify sends an event to all watchers without blocking. Callers must hold
// the write lock.
func (r *PageRegistry) notify(event types.PageEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}
