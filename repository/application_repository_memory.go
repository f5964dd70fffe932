package repository

import (
	"context"
	"sync"

	"loan-advisor/domain"
)

// ApplicationRepositoryMemory is an in-memory implementation of ApplicationRepository.
type ApplicationRepositoryMemory struct {
	mu   sync.RWMutex
	data map[string]domain.Application
}

// NewApplicationRepositoryMemory creates a new in-memory application repository.
func NewApplicationRepositoryMemory() *ApplicationRepositoryMemory {
	return &ApplicationRepositoryMemory{
		data: make(map[string]domain.Application),
	}
}

// Create stores a copy of the application.
func (r *ApplicationRepositoryMemory) Create(_ context.Context, app *domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[app.ID] = copyApplication(app)
	return nil
}

func (r *ApplicationRepositoryMemory) Get(_ context.Context, id string) (*domain.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyApplication(&app)
	return &out, nil
}

func (r *ApplicationRepositoryMemory) Update(_ context.Context, app *domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[app.ID]; !ok {
		return ErrNotFound
	}
	r.data[app.ID] = copyApplication(app)
	return nil
}

func (r *ApplicationRepositoryMemory) UpdateIfOpen(_ context.Context, app *domain.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.data[app.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != domain.StatusOpen {
		return ErrNotOpen
	}
	r.data[app.ID] = copyApplication(app)
	return nil
}

func copyApplication(app *domain.Application) domain.Application {
	out := *app
	out.Payload = app.Payload.Clone()
	return out
}
