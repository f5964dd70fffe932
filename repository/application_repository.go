package repository

import (
	"context"
	"errors"

	"loan-advisor/domain"
)

var (
	ErrNotFound = errors.New("application not found")
	ErrNotOpen  = errors.New("application is no longer open")
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	Get(ctx context.Context, id string) (*domain.Application, error)
	Update(ctx context.Context, app *domain.Application) error
	// UpdateIfOpen stores app only while the stored record is still OPEN and
	// returns ErrNotOpen otherwise.
	UpdateIfOpen(ctx context.Context, app *domain.Application) error
}
