package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/farmabit/magistral-api/internal/domain"
	"github.com/farmabit/magistral-api/internal/domain/entity"
	"github.com/farmabit/magistral-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

const batchColumns = `id, material_id, supplier_id, batch_number, invoice_number, received_quantity, current_quantity, unit_cost, status, expiry_date, manufacture_date, certificate_number, approved_by, approved_at, notes, created_by, created_at, updated_at`

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Create persiste un lote nuevo. La unicidad (material_id, batch_number) la garantiza
// un índice único; la violación se traduce a ErrDuplicateBatch.
func (r *BatchRepo) Create(b *entity.Batch) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	query := `
		INSERT INTO batches (id, material_id, supplier_id, batch_number, invoice_number, received_quantity, current_quantity, unit_cost, status, expiry_date, manufacture_date, certificate_number, approved_by, approved_at, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(context.Background(), query,
		b.ID, b.MaterialID, b.SupplierID, b.BatchNumber, b.InvoiceNumber,
		b.ReceivedQuantity, b.CurrentQuantity, b.UnitCost, b.Status, b.ExpiryDate,
		b.ManufactureDate, b.CertificateNumber, nullable(b.ApprovedBy), b.ApprovedAt,
		b.Notes, b.CreatedBy, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateBatch
		}
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID. Devuelve nil, nil si no existe.
func (r *BatchRepo) GetByID(id string) (*entity.Batch, error) {
	return r.get(id, false)
}

// GetForUpdate obtiene el lote bloqueando la fila (SELECT FOR UPDATE).
func (r *BatchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	return r.get(id, true)
}

func (r *BatchRepo) get(id string, forUpdate bool) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	row := r.q.QueryRow(context.Background(), query, id)
	b, err := scanBatchRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// ExistsByNumber verifica si ya existe un lote con ese número para la materia prima.
func (r *BatchRepo) ExistsByNumber(materialID, batchNumber string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM batches WHERE material_id = $1 AND batch_number = $2)`
	var exists bool
	if err := r.q.QueryRow(context.Background(), query, materialID, batchNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists by number: %w", err)
	}
	return exists, nil
}

// Update actualiza estado, aprobación y notas del lote. No toca cantidades.
func (r *BatchRepo) Update(b *entity.Batch) error {
	query := `
		UPDATE batches
		SET status = $2, certificate_number = $3, approved_by = $4, approved_at = $5,
		    notes = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		b.ID, b.Status, b.CertificateNumber, nullable(b.ApprovedBy), b.ApprovedAt,
		b.Notes, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateQuantity fija la cantidad remanente. Solo lo invoca el libro de movimientos.
func (r *BatchRepo) UpdateQuantity(id string, newQuantity decimal.Decimal) error {
	query := `UPDATE batches SET current_quantity = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, newQuantity)
	if err != nil {
		return fmt.Errorf("update batch quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un lote. El caso de uso garantiza que nunca tuvo movimientos de uso.
func (r *BatchRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByMaterial lista los lotes de una materia prima, más recientes primero.
func (r *BatchRepo) ListByMaterial(materialID string, limit, offset int) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + `
		FROM batches WHERE material_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, materialID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list by material: %w", err)
	}
	defer rows.Close()
	return scanBatches(rows)
}

// ListByStatus lista lotes por estado, más antiguos primero (cola de liberación).
func (r *BatchRepo) ListByStatus(status string, limit, offset int) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + `
		FROM batches WHERE status = $1
		ORDER BY created_at LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list by status: %w", err)
	}
	defer rows.Close()
	return scanBatches(rows)
}

// ListExpiring lista lotes aprobados con remanente que vencen hasta la fecha dada.
func (r *BatchRepo) ListExpiring(before time.Time) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + `
		FROM batches
		WHERE status = $1 AND current_quantity > 0 AND expiry_date <= $2
		ORDER BY expiry_date`
	rows, err := r.q.Query(context.Background(), query, entity.BatchStatusApproved, before)
	if err != nil {
		return nil, fmt.Errorf("list expiring: %w", err)
	}
	defer rows.Close()
	return scanBatches(rows)
}

func scanBatchRow(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	var approvedBy *string
	err := row.Scan(
		&b.ID, &b.MaterialID, &b.SupplierID, &b.BatchNumber, &b.InvoiceNumber,
		&b.ReceivedQuantity, &b.CurrentQuantity, &b.UnitCost, &b.Status, &b.ExpiryDate,
		&b.ManufactureDate, &b.CertificateNumber, &approvedBy, &b.ApprovedAt,
		&b.Notes, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if approvedBy != nil {
		b.ApprovedBy = *approvedBy
	}
	return &b, nil
}

func scanBatches(rows pgx.Rows) ([]*entity.Batch, error) {
	var list []*entity.Batch
	for rows.Next() {
		b, err := scanBatchRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// nullable convierte "" en NULL para columnas opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
