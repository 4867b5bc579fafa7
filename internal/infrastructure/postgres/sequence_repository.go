package postgres

import (
	"context"
	"fmt"

	"github.com/farmabit/magistral-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contadores monotónicos por alcance (ej. "OM-20260901"). El upsert
// con RETURNING hace el incremento atómico: dos transacciones concurrentes sobre el
// mismo alcance nunca reciben el mismo valor.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next devuelve el siguiente valor del contador del alcance dado, empezando en 1.
func (r *SequenceRepo) Next(scope string) (int, error) {
	query := `
		INSERT INTO sequences (scope, value) VALUES ($1, 1)
		ON CONFLICT (scope) DO UPDATE SET value = sequences.value + 1
		RETURNING value`
	var value int
	if err := r.q.QueryRow(context.Background(), query, scope).Scan(&value); err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", scope, err)
	}
	return value, nil
}
