package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterEntryRequest body para POST /api/stock/entries.
type RegisterEntryRequest struct {
	MaterialID     string          `json:"material_id"`
	BatchID        string          `json:"batch_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	Reason         string          `json:"reason"`
	SupplierID     string          `json:"supplier_id,omitempty"`
	DocumentNumber string          `json:"document_number,omitempty"`
}

// RegisterExitRequest body para POST /api/stock/exits.
type RegisterExitRequest struct {
	MaterialID     string          `json:"material_id"`
	BatchID        string          `json:"batch_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	Reason         string          `json:"reason"`
	AuthorizedBy   string          `json:"authorized_by,omitempty"`
	OrderID        string          `json:"order_id,omitempty"`
	DocumentNumber string          `json:"document_number,omitempty"`
}

// RegisterAdjustmentRequest body para POST /api/stock/adjustments. Delta con signo.
type RegisterAdjustmentRequest struct {
	MaterialID   string          `json:"material_id"`
	BatchID      string          `json:"batch_id"`
	Delta        decimal.Decimal `json:"delta"`
	Reason       string          `json:"reason"`
	AuthorizedBy string          `json:"authorized_by"`
}

// RegisterLossRequest body para POST /api/stock/losses.
type RegisterLossRequest struct {
	MaterialID   string          `json:"material_id"`
	BatchID      string          `json:"batch_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	LossType     string          `json:"loss_type"` // EXPIRATION | SPILL | BREAKAGE | OTHER
	Reason       string          `json:"reason"`
	AuthorizedBy string          `json:"authorized_by"`
}

// MovementResponse representación de un movimiento del libro.
type MovementResponse struct {
	ID             string          `json:"id"`
	MaterialID     string          `json:"material_id"`
	BatchID        string          `json:"batch_id,omitempty"`
	Type           string          `json:"type"`
	LossType       string          `json:"loss_type,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	StockBefore    decimal.Decimal `json:"stock_before"`
	StockAfter     decimal.Decimal `json:"stock_after"`
	Reason         string          `json:"reason,omitempty"`
	OrderID        string          `json:"order_id,omitempty"`
	SupplierID     string          `json:"supplier_id,omitempty"`
	DocumentNumber string          `json:"document_number,omitempty"`
	AuthorizedBy   string          `json:"authorized_by,omitempty"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}
