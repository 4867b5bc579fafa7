package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	FormulaID          string          `json:"formula_id,omitempty"`
	CustomerName       string          `json:"customer_name,omitempty"`
	PrescriptionNumber string          `json:"prescription_number,omitempty"`
	PrescriberName     string          `json:"prescriber_name,omitempty"`
	QuantityToProduce  decimal.Decimal `json:"quantity_to_produce"`
	UnitMeasure        string          `json:"unit_measure"`
	ExpectedAt         *time.Time      `json:"expected_at,omitempty"`
	Instructions       string          `json:"instructions,omitempty"`
}

// WeighingComponentRequest un componente pesado contra un lote concreto.
type WeighingComponentRequest struct {
	MaterialID string          `json:"material_id"`
	BatchID    string          `json:"batch_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Notes      string          `json:"notes,omitempty"`
}

// StartWeighingRequest body para POST /api/orders/:id/weighing.
type StartWeighingRequest struct {
	Components       []WeighingComponentRequest `json:"components"`
	ScaleID          string                     `json:"scale_id"`
	ScaleCalibration string                     `json:"scale_calibration,omitempty"`
}

// IntermediateCheckRequest body para POST /api/orders/:id/weighing/check.
type IntermediateCheckRequest struct {
	Passed bool   `json:"passed"`
	Notes  string `json:"notes,omitempty"`
}

// StartMixingRequest body para POST /api/orders/:id/mixing.
type StartMixingRequest struct {
	Method       string `json:"method"`
	DurationMin  int    `json:"duration_min"`
	Equipment    string `json:"equipment,omitempty"`
	Observations string `json:"observations,omitempty"`
}

// StartPackagingRequest body para POST /api/orders/:id/packaging.
type StartPackagingRequest struct {
	ContainerType string `json:"container_type"`
	UnitsPackaged int    `json:"units_packaged"`
	LotSeal       string `json:"lot_seal,omitempty"`
}

// StartLabelingRequest body para POST /api/orders/:id/labeling.
type StartLabelingRequest struct {
	LabelsPrinted  int    `json:"labels_printed"`
	LabelReference string `json:"label_reference,omitempty"`
}

// FinalCheckRequest body para POST /api/orders/:id/final-check.
type FinalCheckRequest struct {
	InspectionResult string     `json:"inspection_result"`
	AppearanceOK     bool       `json:"appearance_ok"`
	LabelOK          bool       `json:"label_ok"`
	QuantityOK       bool       `json:"quantity_ok"`
	DocumentationOK  bool       `json:"documentation_ok"`
	Approved         bool       `json:"approved"`
	Notes            string     `json:"notes,omitempty"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty"`
}

// CancelOrderRequest body para POST /api/orders/:id/cancel.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// OrderResponse representación de una orden de manipulación.
type OrderResponse struct {
	ID                   string          `json:"id"`
	OrderNumber          string          `json:"order_number"`
	FormulaID            string          `json:"formula_id,omitempty"`
	CustomerName         string          `json:"customer_name,omitempty"`
	PrescriptionNumber   string          `json:"prescription_number,omitempty"`
	QuantityToProduce    decimal.Decimal `json:"quantity_to_produce"`
	UnitMeasure          string          `json:"unit_measure"`
	Status               string          `json:"status"`
	OrderedAt            time.Time       `json:"ordered_at"`
	ExpectedAt           *time.Time      `json:"expected_at,omitempty"`
	StartDate            *time.Time      `json:"start_date,omitempty"`
	CompletionDate       *time.Time      `json:"completion_date,omitempty"`
	ProductExpiryDate    *time.Time      `json:"product_expiry_date,omitempty"`
	ProductBatchNumber   string          `json:"product_batch_number,omitempty"`
	PassedQualityControl bool            `json:"passed_quality_control"`
	PharmacistID         string          `json:"pharmacist_id,omitempty"`
	Instructions         string          `json:"instructions,omitempty"`
}

// StepResponse representación de una etapa ejecutada.
type StepResponse struct {
	ID                      string      `json:"id"`
	OrderID                 string      `json:"order_id"`
	Type                    string      `json:"type"`
	Payload                 interface{} `json:"payload"`
	PassedIntermediateCheck *bool       `json:"passed_intermediate_check,omitempty"`
	CheckedBy               string      `json:"checked_by,omitempty"`
	Notes                   string      `json:"notes,omitempty"`
	PerformedBy             string      `json:"performed_by"`
	CreatedAt               time.Time   `json:"created_at"`
}

// OrderSummaryResponse resumen de flujo de una orden.
type OrderSummaryResponse struct {
	Order       OrderResponse           `json:"order"`
	LatestSteps map[string]StepResponse `json:"latest_steps"`
	CanProceed  bool                    `json:"can_proceed"`
	NextStage   string                  `json:"next_stage,omitempty"`
}
