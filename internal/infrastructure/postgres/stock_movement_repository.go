package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/farmabit/magistral-api/internal/domain/entity"
	"github.com/farmabit/magistral-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, material_id, batch_id, type, loss_type, quantity, stock_before, stock_after, reason, order_id, supplier_id, document_number, authorized_by, created_by, created_at`

// StockMovementRepo implementación del libro de movimientos sobre PostgreSQL.
// La tabla es append-only: no hay UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento.
func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, material_id, batch_id, type, loss_type, quantity, stock_before, stock_after, reason, order_id, supplier_id, document_number, authorized_by, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.MaterialID, nullable(m.BatchID), m.Type, nullable(m.LossType),
		m.Quantity, m.StockBefore, m.StockAfter, m.Reason, nullable(m.OrderID),
		nullable(m.SupplierID), nullable(m.DocumentNumber), nullable(m.AuthorizedBy),
		m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByBatch devuelve la historia completa de un lote en orden cronológico.
func (r *StockMovementRepo) ListByBatch(batchID string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements WHERE batch_id = $1
		ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list by batch: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// ListByMaterial lista el kardex de una materia prima (descendente) en un rango de fechas.
func (r *StockMovementRepo) ListByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE material_id = $1`
	args := []any{materialID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list by material: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// ListByOrder devuelve los movimientos vinculados a una orden, en orden cronológico.
func (r *StockMovementRepo) ListByOrder(orderID string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + `
		FROM stock_movements WHERE order_id = $1
		ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list by order: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// CountByBatch cuenta los movimientos registrados para un lote.
func (r *StockMovementRepo) CountByBatch(batchID string) (int, error) {
	var n int
	err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM stock_movements WHERE batch_id = $1`, batchID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count by batch: %w", err)
	}
	return n, nil
}

func scanMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var batchID, lossType, orderID, supplierID, documentNumber, authorizedBy *string
		if err := rows.Scan(&m.ID, &m.MaterialID, &batchID, &m.Type, &lossType,
			&m.Quantity, &m.StockBefore, &m.StockAfter, &m.Reason, &orderID,
			&supplierID, &documentNumber, &authorizedBy, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.BatchID = deref(batchID)
		m.LossType = deref(lossType)
		m.OrderID = deref(orderID)
		m.SupplierID = deref(supplierID)
		m.DocumentNumber = deref(documentNumber)
		m.AuthorizedBy = deref(authorizedBy)
		list = append(list, &m)
	}
	return list, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
