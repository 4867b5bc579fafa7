package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/farmabit/magistral-api/internal/domain/entity"
	"github.com/farmabit/magistral-api/internal/domain/repository"
)

var _ repository.FormulaRepository = (*FormulaRepo)(nil)

// FormulaRepo consulta del catálogo de fórmulas magistrales. Los componentes se
// guardan como JSONB junto a la fórmula: siempre se leen completos.
type FormulaRepo struct {
	q Querier
}

// NewFormulaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFormulaRepository(q Querier) *FormulaRepo {
	return &FormulaRepo{q: q}
}

// GetByID obtiene una fórmula con sus componentes. Devuelve nil, nil si no existe.
func (r *FormulaRepo) GetByID(id string) (*entity.Formula, error) {
	query := `
		SELECT id, name, description, shelf_life_days, components, active, created_at, updated_at
		FROM formulas WHERE id = $1`
	var f entity.Formula
	var components []byte
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&f.ID, &f.Name, &f.Description, &f.ShelfLifeDays, &components,
		&f.Active, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get formula: %w", err)
	}
	if err := json.Unmarshal(components, &f.Components); err != nil {
		return nil, fmt.Errorf("decode formula components: %w", err)
	}
	return &f, nil
}
