package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de un lote.
const (
	BatchStatusQuarantine = "QUARANTINE" // recibido, pendiente de liberación de calidad
	BatchStatusApproved   = "APPROVED"   // liberado por el farmacéutico, consumible
	BatchStatusRejected   = "REJECTED"   // rechazado; cantidad congelada para auditoría
	BatchStatusExpired    = "EXPIRED"    // vencido; baja total registrada como pérdida
)

// Batch representa un lote físico de una materia prima recibido de un proveedor.
// ReceivedQuantity es inmutable tras la recepción; CurrentQuantity solo lo muta el
// libro de movimientos y cumple 0 <= CurrentQuantity <= ReceivedQuantity.
type Batch struct {
	ID                string
	MaterialID        string
	SupplierID        string
	BatchNumber       string // número de lote del fabricante, único por materia prima
	InvoiceNumber     string
	ReceivedQuantity  decimal.Decimal
	CurrentQuantity   decimal.Decimal
	UnitCost          decimal.Decimal
	Status            string // QUARANTINE | APPROVED | REJECTED | EXPIRED
	ExpiryDate        time.Time
	ManufactureDate   *time.Time
	CertificateNumber string // certificado de análisis del proveedor
	ApprovedBy        string
	ApprovedAt        *time.Time
	Notes             string
	CreatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsConsumable indica si el lote puede descontarse en una manipulación:
// solo lotes aprobados y con vencimiento vigente.
func (b *Batch) IsConsumable(now time.Time) bool {
	return b.Status == BatchStatusApproved && b.ExpiryDate.After(now)
}

// IsExpiredAt indica si la fecha de vencimiento ya pasó.
func (b *Batch) IsExpiredAt(now time.Time) bool {
	return !b.ExpiryDate.After(now)
}

// NeverMoved indica si el lote nunca tuvo movimientos (cantidad intacta).
// Solo en ese caso se permite eliminarlo.
func (b *Batch) NeverMoved() bool {
	return b.CurrentQuantity.Equal(b.ReceivedQuantity)
}
