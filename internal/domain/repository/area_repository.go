package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// AreaRepository puerto de lectura de áreas. GetByID devuelve (nil, nil) si no existe.
type AreaRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Area, error)
}
