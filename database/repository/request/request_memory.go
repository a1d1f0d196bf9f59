package requestRepo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"
)

type MemoryRequestRepo struct {
	mu        sync.Mutex
	requests  map[string]*models.ResidentRequest
	byBooking map[string]string
}

func NewMemoryRequestRepo() *MemoryRequestRepo {
	return &MemoryRequestRepo{
		requests:  make(map[string]*models.ResidentRequest),
		byBooking: make(map[string]string),
	}
}

func (r *MemoryRequestRepo) Create(_ context.Context, req *models.ResidentRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.requests[req.ID]; exists {
		return fmt.Errorf("error creating resident request: duplicate id %s", req.ID)
	}
	if _, exists := r.byBooking[req.BookingID]; exists {
		return fmt.Errorf("error creating resident request: booking %s already mirrored", req.BookingID)
	}
	r.requests[req.ID] = cloneRequest(req)
	r.byBooking[req.BookingID] = req.ID
	return nil
}

func (r *MemoryRequestRepo) GetByID(_ context.Context, id string) (*models.ResidentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	return cloneRequest(req), nil
}

func (r *MemoryRequestRepo) GetByBookingID(_ context.Context, bookingID string) (*models.ResidentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byBooking[bookingID]
	if !ok {
		return nil, ErrRequestNotFound
	}
	return cloneRequest(r.requests[id]), nil
}

func (r *MemoryRequestRepo) UpdateStatus(_ context.Context, id string, update StatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return ErrRequestNotFound
	}
	if update.Status != "" {
		req.Status = update.Status
	}
	if update.ScheduledFor != "" {
		req.ScheduledFor = update.ScheduledFor
	}
	if update.ProviderID != "" {
		req.ProviderID = update.ProviderID
	}
	if update.ProviderName != "" {
		req.ProviderName = update.ProviderName
	}
	req.UpdatedAt = update.At
	return nil
}

func (r *MemoryRequestRepo) SetNegotiation(_ context.Context, id string, n *models.Negotiation, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return ErrRequestNotFound
	}
	if n == nil {
		req.Negotiation = nil
	} else {
		c := *n
		req.Negotiation = &c
	}
	req.UpdatedAt = at
	return nil
}

func cloneRequest(req *models.ResidentRequest) *models.ResidentRequest {
	c := *req
	if req.Negotiation != nil {
		n := *req.Negotiation
		c.Negotiation = &n
	}
	return &c
}
