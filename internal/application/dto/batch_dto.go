package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveBatchRequest body para POST /api/batches.
type ReceiveBatchRequest struct {
	MaterialID        string          `json:"material_id"`
	SupplierID        string          `json:"supplier_id"`
	BatchNumber       string          `json:"batch_number"`
	InvoiceNumber     string          `json:"invoice_number,omitempty"`
	ReceivedQuantity  decimal.Decimal `json:"received_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	ExpiryDate        time.Time       `json:"expiry_date"`
	ManufactureDate   *time.Time      `json:"manufacture_date,omitempty"`
	CertificateNumber string          `json:"certificate_number,omitempty"`
}

// ApproveBatchRequest body para POST /api/batches/:id/approve.
type ApproveBatchRequest struct {
	CertificateNumber string `json:"certificate_number"`
	Notes             string `json:"notes,omitempty"`
}

// RejectBatchRequest body para POST /api/batches/:id/reject.
type RejectBatchRequest struct {
	Reason string `json:"reason"`
}

// BatchResponse representación de un lote.
type BatchResponse struct {
	ID                string          `json:"id"`
	MaterialID        string          `json:"material_id"`
	SupplierID        string          `json:"supplier_id"`
	BatchNumber       string          `json:"batch_number"`
	InvoiceNumber     string          `json:"invoice_number,omitempty"`
	ReceivedQuantity  decimal.Decimal `json:"received_quantity"`
	CurrentQuantity   decimal.Decimal `json:"current_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	Status            string          `json:"status"`
	ExpiryDate        time.Time       `json:"expiry_date"`
	ManufactureDate   *time.Time      `json:"manufacture_date,omitempty"`
	CertificateNumber string          `json:"certificate_number,omitempty"`
	ApprovedBy        string          `json:"approved_by,omitempty"`
	ApprovedAt        *time.Time      `json:"approved_at,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}
