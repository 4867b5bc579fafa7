package dto

import "github.com/shopspring/decimal"

// ConsumingOrderDTO total consumido de un lote por una orden.
type ConsumingOrderDTO struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// BatchTraceResponse trazabilidad completa de un lote.
type BatchTraceResponse struct {
	Batch           BatchResponse       `json:"batch"`
	Movements       []MovementResponse  `json:"movements"`
	ConsumingOrders []ConsumingOrderDTO `json:"consuming_orders"`
}

// ConsumedBatchDTO lote consumido por una orden con su total.
type ConsumedBatchDTO struct {
	Batch    BatchResponse   `json:"batch"`
	Quantity decimal.Decimal `json:"quantity"`
}

// OrderTraceResponse trazabilidad de una orden de manipulación.
type OrderTraceResponse struct {
	Order           OrderResponse      `json:"order"`
	Movements       []MovementResponse `json:"movements"`
	ConsumedBatches []ConsumedBatchDTO `json:"consumed_batches"`
}
