package repository

import (
	"github.com/shopspring/decimal"

	"github.com/farmabit/magistral-api/internal/domain/entity"
)

// RawMaterialRepository define el puerto de persistencia para materias primas.
// UpdateStock solo debe invocarse desde el libro de movimientos, dentro de la misma
// transacción que inserta el movimiento y actualiza el lote.
type RawMaterialRepository interface {
	Create(m *entity.RawMaterial) error
	GetByID(id string) (*entity.RawMaterial, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.RawMaterial, error)
	Update(m *entity.RawMaterial) error
	UpdateStock(id string, newStock decimal.Decimal) error
	List(activeOnly bool, limit, offset int) ([]*entity.RawMaterial, error)
	// ListBelowMinimum devuelve materias primas activas con stock bajo el mínimo.
	ListBelowMinimum() ([]*entity.RawMaterial, error)
}
