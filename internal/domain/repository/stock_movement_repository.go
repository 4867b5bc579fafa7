package repository

import (
	"time"

	"github.com/farmabit/magistral-api/internal/domain/entity"
)

// StockMovementRepository define el puerto para el libro de movimientos.
// Las filas son inmutables: solo Create y lecturas; no existe Update ni Delete.
type StockMovementRepository interface {
	Create(m *entity.StockMovement) error
	// ListByBatch devuelve todos los movimientos del lote en orden ascendente de fecha.
	ListByBatch(batchID string) ([]*entity.StockMovement, error)
	// ListByMaterial lista el kardex de una materia prima en un rango de fechas (desc).
	ListByMaterial(materialID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	// ListByOrder devuelve los movimientos vinculados a una orden de manipulación (asc).
	ListByOrder(orderID string) ([]*entity.StockMovement, error)
	// CountByBatch cuenta los movimientos registrados para un lote.
	CountByBatch(batchID string) (int, error)
}
