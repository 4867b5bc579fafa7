package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/farmabit/magistral-api/internal/domain"
	"github.com/farmabit/magistral-api/internal/domain/entity"
	"github.com/farmabit/magistral-api/internal/domain/repository"
)

var _ repository.RawMaterialRepository = (*RawMaterialRepo)(nil)

const rawMaterialColumns = `id, name, unit_measure, current_stock, minimum_stock, maximum_stock, control_class, active, created_at, updated_at`

// RawMaterialRepo implementación de RawMaterialRepository sobre PostgreSQL (usable con pool o tx).
type RawMaterialRepo struct {
	q Querier
}

// NewRawMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRawMaterialRepository(q Querier) *RawMaterialRepo {
	return &RawMaterialRepo{q: q}
}

// Create persiste una nueva materia prima. El stock agregado nace en 0.
func (r *RawMaterialRepo) Create(m *entity.RawMaterial) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO raw_materials (id, name, unit_measure, current_stock, minimum_stock, maximum_stock, control_class, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.Name, m.UnitMeasure, m.CurrentStock, m.MinimumStock, m.MaximumStock,
		m.ControlClass, m.Active, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrInvalidInput
		}
		return fmt.Errorf("create raw material: %w", err)
	}
	return nil
}

// GetByID obtiene una materia prima por ID. Devuelve nil, nil si no existe.
func (r *RawMaterialRepo) GetByID(id string) (*entity.RawMaterial, error) {
	return r.get(id, false)
}

// GetForUpdate obtiene la materia prima bloqueando la fila (SELECT FOR UPDATE).
func (r *RawMaterialRepo) GetForUpdate(id string) (*entity.RawMaterial, error) {
	return r.get(id, true)
}

func (r *RawMaterialRepo) get(id string, forUpdate bool) (*entity.RawMaterial, error) {
	query := `SELECT ` + rawMaterialColumns + ` FROM raw_materials WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var m entity.RawMaterial
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&m.ID, &m.Name, &m.UnitMeasure, &m.CurrentStock, &m.MinimumStock, &m.MaximumStock,
		&m.ControlClass, &m.Active, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get raw material: %w", err)
	}
	return &m, nil
}

// Update actualiza los datos maestros de la materia prima. No toca current_stock.
func (r *RawMaterialRepo) Update(m *entity.RawMaterial) error {
	query := `
		UPDATE raw_materials
		SET name = $2, unit_measure = $3, minimum_stock = $4, maximum_stock = $5,
		    control_class = $6, active = $7, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		m.ID, m.Name, m.UnitMeasure, m.MinimumStock, m.MaximumStock, m.ControlClass, m.Active,
	)
	if err != nil {
		return fmt.Errorf("update raw material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock fija el agregado materializado. Solo lo invoca el libro de movimientos
// dentro de la transacción que inserta el movimiento.
func (r *RawMaterialRepo) UpdateStock(id string, newStock decimal.Decimal) error {
	query := `UPDATE raw_materials SET current_stock = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, newStock)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista materias primas, opcionalmente solo activas.
func (r *RawMaterialRepo) List(activeOnly bool, limit, offset int) ([]*entity.RawMaterial, error) {
	query := `SELECT ` + rawMaterialColumns + ` FROM raw_materials`
	if activeOnly {
		query += " WHERE active"
	}
	query += " ORDER BY name LIMIT $1 OFFSET $2"
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list raw materials: %w", err)
	}
	defer rows.Close()
	return scanRawMaterials(rows)
}

// ListBelowMinimum lista materias primas activas con stock bajo el mínimo.
func (r *RawMaterialRepo) ListBelowMinimum() ([]*entity.RawMaterial, error) {
	query := `SELECT ` + rawMaterialColumns + `
		FROM raw_materials
		WHERE active AND current_stock < minimum_stock
		ORDER BY name`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list below minimum: %w", err)
	}
	defer rows.Close()
	return scanRawMaterials(rows)
}

func scanRawMaterials(rows pgx.Rows) ([]*entity.RawMaterial, error) {
	var list []*entity.RawMaterial
	for rows.Next() {
		var m entity.RawMaterial
		if err := rows.Scan(&m.ID, &m.Name, &m.UnitMeasure, &m.CurrentStock, &m.MinimumStock,
			&m.MaximumStock, &m.ControlClass, &m.Active, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan raw material: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
