package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/farmabit/magistral-api/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia para lotes.
// UpdateQuantity solo debe invocarse desde el libro de movimientos, dentro de la misma
// transacción que inserta el movimiento; Update cubre cambios de estado/aprobación.
type BatchRepository interface {
	Create(b *entity.Batch) error
	GetByID(id string) (*entity.Batch, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.Batch, error)
	ExistsByNumber(materialID, batchNumber string) (bool, error)
	Update(b *entity.Batch) error
	UpdateQuantity(id string, newQuantity decimal.Decimal) error
	Delete(id string) error
	ListByMaterial(materialID string, limit, offset int) ([]*entity.Batch, error)
	ListByStatus(status string, limit, offset int) ([]*entity.Batch, error)
	// ListExpiring devuelve lotes aprobados con cantidad remanente cuyo vencimiento
	// es anterior o igual a before.
	ListExpiring(before time.Time) ([]*entity.Batch, error)
}
