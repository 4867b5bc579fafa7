package repository

import "github.com/farmabit/magistral-api/internal/domain/entity"

// SupplierRepository define el puerto para proveedores (referenciados, no gestionados aquí).
type SupplierRepository interface {
	Create(s *entity.Supplier) error
	GetByID(id string) (*entity.Supplier, error)
	List(activeOnly bool, limit, offset int) ([]*entity.Supplier, error)
}

// FormulaRepository define el puerto de consulta del catálogo de fórmulas (solo lectura
// desde el núcleo; el catálogo es un colaborador externo).
type FormulaRepository interface {
	GetByID(id string) (*entity.Formula, error)
}

// SequenceRepository entrega contadores monotónicos por alcance (ej. "OM-20260901").
// Next debe ser atómico: dos llamadas concurrentes sobre el mismo alcance nunca
// devuelven el mismo valor.
type SequenceRepository interface {
	Next(scope string) (int, error)
}
