package providerRepo

import (
	"context"
	"sort"
	"sync"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"
)

// MemoryProviderRepo is an in-process catalog, seeded through Put.
type MemoryProviderRepo struct {
	mu        sync.RWMutex
	providers map[string]models.ProviderCatalogEntry
}

func NewMemoryProviderRepo(entries ...models.ProviderCatalogEntry) *MemoryProviderRepo {
	r := &MemoryProviderRepo{providers: make(map[string]models.ProviderCatalogEntry)}
	for _, e := range entries {
		r.Put(e)
	}
	return r
}

// Put inserts or replaces a catalog entry.
func (r *MemoryProviderRepo) Put(entry models.ProviderCatalogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[entry.ID] = entry
}

func (r *MemoryProviderRepo) GetByID(_ context.Context, id string) (*models.ProviderCatalogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, ErrProviderNotFound
	}
	return &p, nil
}

func (r *MemoryProviderRepo) FindActiveByService(_ context.Context, serviceName string) ([]models.ProviderCatalogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.ProviderCatalogEntry
	for _, p := range r.providers {
		if p.Active && p.Offers(serviceName) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
