package residentRepo

import (
	"context"
	"sync"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"
)

type MemoryResidentRepo struct {
	mu        sync.RWMutex
	residents map[string]models.Resident
}

func NewMemoryResidentRepo(residents ...models.Resident) *MemoryResidentRepo {
	r := &MemoryResidentRepo{residents: make(map[string]models.Resident)}
	for _, res := range residents {
		r.residents[res.ID] = res
	}
	return r
}

func (r *MemoryResidentRepo) Put(resident models.Resident) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.residents[resident.ID] = resident
}

func (r *MemoryResidentRepo) GetByID(_ context.Context, id string) (*models.Resident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.residents[id]
	if !ok {
		return nil, ErrResidentNotFound
	}
	return &res, nil
}
