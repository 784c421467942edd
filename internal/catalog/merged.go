package catalog

import (
	"sort"
	"sync"

	"storefront/catalogsync/internal/domain"
)

// Merged folds fetched items into one collection keyed by item ID. Merging
// the same item again replaces the stored value, so overlapping or
// out-of-order fetches never produce duplicates. Nothing is ever removed by
// a merge; pruning is left to the owner. Safe for concurrent use.
type Merged struct {
	mu    sync.RWMutex
	items map[string]domain.CatalogItem
}

func NewMerged() *Merged {
	return &Merged{
		items: make(map[string]domain.CatalogItem),
	}
}

// Merge applies items in order with last-write-wins per ID and returns how
// many IDs were new to the collection. Items without an ID are skipped.
func (m *Merged) Merge(items ...domain.CatalogItem) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	added := 0
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		if _, exists := m.items[item.ID]; !exists {
			added++
		}
		m.items[item.ID] = item
	}
	return added
}

// MergePage merges every item of page.
func (m *Merged) MergePage(page *domain.CatalogPage) int {
	if page == nil {
		return 0
	}
	return m.Merge(page.Items...)
}

func (m *Merged) Get(id string) (domain.CatalogItem, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	return item, ok
}

func (m *Merged) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.items)
}

// Items returns the merged items ordered by ID.
func (m *Merged) Items() []domain.CatalogItem {
	m.mu.RLock()
	items := make([]domain.CatalogItem, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	m.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
	return items
}

// Snapshot returns a copy of the id -> item mapping.
func (m *Merged) Snapshot() map[string]domain.CatalogItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make(map[string]domain.CatalogItem, len(m.items))
	for id, item := range m.items {
		snapshot[id] = item
	}
	return snapshot
}

// Retain drops every item whose ID is not in keep and returns how many were
// removed. Callers that treat a fetch as the complete set use it to prune.
func (m *Merged) Retain(keep map[string]struct{}) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id := range m.items {
		if _, ok := keep[id]; !ok {
			delete(m.items, id)
			removed++
		}
	}
	return removed
}
