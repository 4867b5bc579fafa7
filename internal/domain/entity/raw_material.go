package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clasificación de control sanitario de una materia prima.
const (
	ControlClassCommon     = "COMUN"      // venta libre / sin lista
	ControlClassControlled = "CONTROLADO" // listas de sustancias controladas
)

// RawMaterial representa una materia prima del laboratorio magistral.
// CurrentStock es un agregado materializado: debe ser siempre igual a la suma de
// CurrentQuantity de sus lotes no rechazados. Solo el libro de movimientos (StockLedger)
// puede mutarlo.
type RawMaterial struct {
	ID           string
	Name         string
	UnitMeasure  string          // g, mg, mL, UI, unidad
	CurrentStock decimal.Decimal // derivado, nunca editable directamente
	MinimumStock decimal.Decimal
	MaximumStock decimal.Decimal
	ControlClass string // COMUN | CONTROLADO
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsControlled indica si la materia prima pertenece a listas de control.
func (m *RawMaterial) IsControlled() bool {
	return m.ControlClass == ControlClassControlled
}

// BelowMinimum indica si el stock actual está por debajo del mínimo configurado.
func (m *RawMaterial) BelowMinimum() bool {
	return m.CurrentStock.LessThan(m.MinimumStock)
}
