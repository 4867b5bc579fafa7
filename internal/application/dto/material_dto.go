package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMaterialRequest body para POST /api/materials.
type CreateMaterialRequest struct {
	Name         string          `json:"name"`
	UnitMeasure  string          `json:"unit_measure"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	MaximumStock decimal.Decimal `json:"maximum_stock"`
	ControlClass string          `json:"control_class"` // COMUN | CONTROLADO
}

// UpdateMaterialRequest body para PUT /api/materials/:id. Campos nil no se tocan.
// CurrentStock no es editable: solo lo muta el libro de movimientos.
type UpdateMaterialRequest struct {
	Name         *string          `json:"name,omitempty"`
	UnitMeasure  *string          `json:"unit_measure,omitempty"`
	MinimumStock *decimal.Decimal `json:"minimum_stock,omitempty"`
	MaximumStock *decimal.Decimal `json:"maximum_stock,omitempty"`
	ControlClass *string          `json:"control_class,omitempty"`
	Active       *bool            `json:"active,omitempty"`
}

// MaterialResponse representación de una materia prima.
type MaterialResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	UnitMeasure  string          `json:"unit_measure"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	MaximumStock decimal.Decimal `json:"maximum_stock"`
	ControlClass string          `json:"control_class"`
	BelowMinimum bool            `json:"below_minimum"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreateSupplierRequest body para POST /api/suppliers.
type CreateSupplierRequest struct {
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// SupplierResponse representación de un proveedor.
type SupplierResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
