package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Formula es la fórmula maestra de una preparación magistral: componentes por unidad
// producida y vida útil del preparado. Proviene del catálogo de fórmulas (colaborador
// externo); el núcleo solo la consulta.
type Formula struct {
	ID            string
	Name          string
	Description   string
	ShelfLifeDays int // vida útil del preparado desde la fecha de producción
	Components    []FormulaComponent
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FormulaComponent es un componente de la fórmula: cantidad de materia prima
// por unidad producida.
type FormulaComponent struct {
	MaterialID      string          `json:"material_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
	UnitMeasure     string          `json:"unit_measure"`
}
