package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/farmabit/magistral-api/internal/domain"
	"github.com/farmabit/magistral-api/internal/domain/entity"
	"github.com/farmabit/magistral-api/internal/domain/repository"
)

var _ repository.ManipulationStepRepository = (*ManipulationStepRepo)(nil)

const stepColumns = `id, order_id, type, payload, passed_intermediate_check, checked_by, notes, performed_by, created_at`

// ManipulationStepRepo implementación de ManipulationStepRepository sobre PostgreSQL.
// El payload tipado de cada etapa se guarda como JSONB y se reconstruye con
// DecodeStepPayload al leer.
type ManipulationStepRepo struct {
	q Querier
}

// NewManipulationStepRepository construye el adaptador. Pasar pool o tx (Querier).
func NewManipulationStepRepository(q Querier) *ManipulationStepRepo {
	return &ManipulationStepRepo{q: q}
}

// Create persiste una etapa ejecutada.
func (r *ManipulationStepRepo) Create(s *entity.ManipulationStep) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	payload, err := json.Marshal(s.Payload)
	if err != nil {
		return fmt.Errorf("marshal step payload: %w", err)
	}
	query := `
		INSERT INTO manipulation_steps (id, order_id, type, payload, passed_intermediate_check, checked_by, notes, performed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.q.Exec(context.Background(), query,
		s.ID, s.OrderID, s.Type, payload, s.PassedIntermediateCheck,
		nullable(s.CheckedBy), s.Notes, s.PerformedBy, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create manipulation step: %w", err)
	}
	return nil
}

// GetByID obtiene una etapa por ID. Devuelve nil, nil si no existe.
func (r *ManipulationStepRepo) GetByID(id string) (*entity.ManipulationStep, error) {
	query := `SELECT ` + stepColumns + ` FROM manipulation_steps WHERE id = $1`
	row := r.q.QueryRow(context.Background(), query, id)
	s, err := scanStepRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get manipulation step: %w", err)
	}
	return s, nil
}

// ListByOrder devuelve las etapas de una orden en orden de ejecución.
func (r *ManipulationStepRepo) ListByOrder(orderID string) ([]*entity.ManipulationStep, error) {
	query := `SELECT ` + stepColumns + `
		FROM manipulation_steps WHERE order_id = $1
		ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list steps by order: %w", err)
	}
	defer rows.Close()
	var list []*entity.ManipulationStep
	for rows.Next() {
		s, err := scanStepRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan manipulation step: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// LatestByType devuelve la etapa más reciente de un tipo para la orden (nil si no hay).
func (r *ManipulationStepRepo) LatestByType(orderID, stepType string) (*entity.ManipulationStep, error) {
	query := `SELECT ` + stepColumns + `
		FROM manipulation_steps WHERE order_id = $1 AND type = $2
		ORDER BY created_at DESC, id DESC LIMIT 1`
	row := r.q.QueryRow(context.Background(), query, orderID, stepType)
	s, err := scanStepRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest step by type: %w", err)
	}
	return s, nil
}

// SetIntermediateCheck asienta el resultado del punto de control sobre una etapa.
// Es la única mutación permitida sobre etapas ya creadas.
func (r *ManipulationStepRepo) SetIntermediateCheck(stepID string, passed bool, checkedBy, notes string) error {
	query := `
		UPDATE manipulation_steps
		SET passed_intermediate_check = $2, checked_by = $3, notes = $4
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, stepID, passed, checkedBy, notes)
	if err != nil {
		return fmt.Errorf("set intermediate check: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanStepRow(row pgx.Row) (*entity.ManipulationStep, error) {
	var s entity.ManipulationStep
	var payload []byte
	var checkedBy *string
	err := row.Scan(&s.ID, &s.OrderID, &s.Type, &payload, &s.PassedIntermediateCheck,
		&checkedBy, &s.Notes, &s.PerformedBy, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.CheckedBy = deref(checkedBy)
	s.Payload, err = entity.DecodeStepPayload(s.Type, payload)
	if err != nil {
		return nil, fmt.Errorf("decode step payload: %w", err)
	}
	return &s, nil
}
