package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/farmabit/magistral-api/internal/domain"
	"github.com/farmabit/magistral-api/internal/domain/entity"
	"github.com/farmabit/magistral-api/internal/domain/repository"
)

var _ repository.ManipulationOrderRepository = (*ManipulationOrderRepo)(nil)

const orderColumns = `id, order_number, formula_id, customer_name, prescription_number, prescriber_name, quantity_to_produce, unit_measure, status, ordered_at, expected_at, start_date, completion_date, product_expiry_date, product_batch_number, requested_by, manipulated_by, checked_by, pharmacist_id, passed_quality_control, instructions, created_at, updated_at`

// ManipulationOrderRepo implementación de ManipulationOrderRepository sobre PostgreSQL.
type ManipulationOrderRepo struct {
	q Querier
}

// NewManipulationOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewManipulationOrderRepository(q Querier) *ManipulationOrderRepo {
	return &ManipulationOrderRepo{q: q}
}

// Create persiste una orden nueva. La unicidad de order_number la garantiza el índice.
func (r *ManipulationOrderRepo) Create(o *entity.ManipulationOrder) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	query := `
		INSERT INTO manipulation_orders (id, order_number, formula_id, customer_name, prescription_number, prescriber_name, quantity_to_produce, unit_measure, status, ordered_at, expected_at, start_date, completion_date, product_expiry_date, product_batch_number, requested_by, manipulated_by, checked_by, pharmacist_id, passed_quality_control, instructions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err := r.q.Exec(context.Background(), query,
		o.ID, o.OrderNumber, nullable(o.FormulaID), o.CustomerName, o.PrescriptionNumber,
		o.PrescriberName, o.QuantityToProduce, o.UnitMeasure, o.Status, o.OrderedAt,
		o.ExpectedAt, o.StartDate, o.CompletionDate, o.ProductExpiryDate,
		nullable(o.ProductBatchNumber), o.RequestedBy, nullable(o.ManipulatedBy),
		nullable(o.CheckedBy), nullable(o.PharmacistID), o.PassedQualityControl,
		o.Instructions, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConcurrencyConflict
		}
		return fmt.Errorf("create manipulation order: %w", err)
	}
	return nil
}

// GetByID obtiene una orden por ID. Devuelve nil, nil si no existe.
func (r *ManipulationOrderRepo) GetByID(id string) (*entity.ManipulationOrder, error) {
	return r.get(id, false)
}

// GetForUpdate obtiene la orden bloqueando la fila: serializa las transiciones de etapa.
func (r *ManipulationOrderRepo) GetForUpdate(id string) (*entity.ManipulationOrder, error) {
	return r.get(id, true)
}

func (r *ManipulationOrderRepo) get(id string, forUpdate bool) (*entity.ManipulationOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM manipulation_orders WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	row := r.q.QueryRow(context.Background(), query, id)
	o, err := scanOrderRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get manipulation order: %w", err)
	}
	return o, nil
}

// Update persiste estado, fechas y trazas de la orden.
func (r *ManipulationOrderRepo) Update(o *entity.ManipulationOrder) error {
	query := `
		UPDATE manipulation_orders
		SET status = $2, start_date = $3, completion_date = $4, product_expiry_date = $5,
		    product_batch_number = $6, manipulated_by = $7, checked_by = $8,
		    pharmacist_id = $9, passed_quality_control = $10, instructions = $11,
		    updated_at = $12
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		o.ID, o.Status, o.StartDate, o.CompletionDate, o.ProductExpiryDate,
		nullable(o.ProductBatchNumber), nullable(o.ManipulatedBy), nullable(o.CheckedBy),
		nullable(o.PharmacistID), o.PassedQualityControl, o.Instructions, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update manipulation order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista órdenes, opcionalmente filtradas por estado, más recientes primero.
func (r *ManipulationOrderRepo) List(status string, limit, offset int) ([]*entity.ManipulationOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM manipulation_orders`
	args := []any{}
	pos := 1
	if status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY ordered_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list manipulation orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.ManipulationOrder
	for rows.Next() {
		o, err := scanOrderRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan manipulation order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func scanOrderRow(row pgx.Row) (*entity.ManipulationOrder, error) {
	var o entity.ManipulationOrder
	var formulaID, productBatchNumber, manipulatedBy, checkedBy, pharmacistID *string
	err := row.Scan(
		&o.ID, &o.OrderNumber, &formulaID, &o.CustomerName, &o.PrescriptionNumber,
		&o.PrescriberName, &o.QuantityToProduce, &o.UnitMeasure, &o.Status, &o.OrderedAt,
		&o.ExpectedAt, &o.StartDate, &o.CompletionDate, &o.ProductExpiryDate,
		&productBatchNumber, &o.RequestedBy, &manipulatedBy, &checkedBy, &pharmacistID,
		&o.PassedQualityControl, &o.Instructions, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.FormulaID = deref(formulaID)
	o.ProductBatchNumber = deref(productBatchNumber)
	o.ManipulatedBy = deref(manipulatedBy)
	o.CheckedBy = deref(checkedBy)
	o.PharmacistID = deref(pharmacistID)
	return &o, nil
}
