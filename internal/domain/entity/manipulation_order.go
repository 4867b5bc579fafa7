package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de manipulación. El flujo productivo avanza en este orden;
// COMPLETED y CANCELLED son terminales.
const (
	OrderStatusPending      = "PENDING"
	OrderStatusInProduction = "IN_PRODUCTION"
	OrderStatusWeighing     = "WEIGHING"
	OrderStatusMixing       = "MIXING"
	OrderStatusPackaging    = "PACKAGING"
	OrderStatusLabeling     = "LABELING"
	OrderStatusFinalCheck   = "FINAL_CHECK"
	OrderStatusCompleted    = "COMPLETED"
	OrderStatusCancelled    = "CANCELLED"
)

// ManipulationOrder representa una orden de producción de un preparado magistral.
type ManipulationOrder struct {
	ID                   string
	OrderNumber          string // generado: OM-AAAAMMDD-NNNN
	FormulaID            string // opcional: preparados sin fórmula maestra
	CustomerName         string
	PrescriptionNumber   string
	PrescriberName       string
	QuantityToProduce    decimal.Decimal
	UnitMeasure          string
	Status               string
	OrderedAt            time.Time
	ExpectedAt           *time.Time
	StartDate            *time.Time // primera entrada a producción; se estampa una sola vez
	CompletionDate       *time.Time // se estampa una sola vez al aprobar el control final
	ProductExpiryDate    *time.Time // vencimiento del preparado terminado
	ProductBatchNumber   string     // lote del producto terminado, generado al completar
	RequestedBy          string
	ManipulatedBy        string
	CheckedBy            string
	PharmacistID         string // farmacéutico que aprobó el control final
	PassedQualityControl bool
	Instructions         string // bitácora de instrucciones y anotaciones (append-only)
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsTerminal indica si la orden está en un estado final (no admite más transiciones).
func (o *ManipulationOrder) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}
