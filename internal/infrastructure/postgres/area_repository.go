package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.AreaRepository = (*AreaRepo)(nil)

// AreaRepo lectura de áreas sobre PostgreSQL.
type AreaRepo struct {
	q Querier
}

// NewAreaRepository construye el adaptador de áreas.
func NewAreaRepository(q Querier) *AreaRepo {
	return &AreaRepo{q: q}
}

// GetByID obtiene un área por ID.
func (r *AreaRepo) GetByID(ctx context.Context, id string) (*entity.Area, error) {
	var (
		a   entity.Area
		typ string
	)
	err := r.q.QueryRow(ctx,
		`SELECT id, business_id, name, type, created_at, updated_at FROM areas WHERE id = $1`, id,
	).Scan(&a.ID, &a.BusinessID, &a.Name, &typ, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get area: %w", err)
	}
	a.Type = entity.AreaType(typ)
	return &a, nil
}
