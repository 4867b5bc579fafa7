package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de stock.
const (
	MovementTypeEntry       = "ENTRY"       // recepción de lote / ingreso
	MovementTypeExit        = "EXIT"        // salida manual (venta, despacho)
	MovementTypeAdjustment  = "ADJUSTMENT"  // corrección autorizada, delta con signo
	MovementTypeLoss        = "LOSS"        // pérdida (vencimiento, derrame, rotura)
	MovementTypeConsumption = "CONSUMPTION" // consumo por orden de manipulación
)

// Subtipos de pérdida para movimientos LOSS.
const (
	LossTypeExpiration = "EXPIRATION"
	LossTypeSpill      = "SPILL"
	LossTypeBreakage   = "BREAKAGE"
	LossTypeOther      = "OTHER"
)

// StockMovement es una fila inmutable del libro de movimientos: nunca se actualiza
// ni se borra después de creada. StockBefore/StockAfter son instantáneas del agregado
// de la materia prima en el instante del commit y cumplen StockAfter = StockBefore + Quantity
// (Quantity negativa para salidas).
type StockMovement struct {
	ID             string
	MaterialID     string
	BatchID        string // vacío para ajustes de agregado sin lote
	Type           string // ENTRY | EXIT | ADJUSTMENT | LOSS | CONSUMPTION
	LossType       string // solo para Type == LOSS
	Quantity       decimal.Decimal
	StockBefore    decimal.Decimal
	StockAfter     decimal.Decimal
	Reason         string
	OrderID        string // orden de manipulación vinculada (CONSUMPTION)
	SupplierID     string // proveedor vinculado (ENTRY)
	DocumentNumber string // factura / remisión / acta
	AuthorizedBy   string
	CreatedBy      string
	CreatedAt      time.Time
}

// IsOutflow indica si el movimiento descuenta stock.
func (m *StockMovement) IsOutflow() bool {
	return m.Quantity.IsNegative()
}
