package http

import (
	"github.com/farmabit/magistral-api/internal/application/dto"
	"github.com/farmabit/magistral-api/internal/application/manipulation"
	"github.com/farmabit/magistral-api/internal/domain/entity"
)

func toBatchResponse(b *entity.Batch) dto.BatchResponse {
	return dto.BatchResponse{
		ID:                b.ID,
		MaterialID:        b.MaterialID,
		SupplierID:        b.SupplierID,
		BatchNumber:       b.BatchNumber,
		InvoiceNumber:     b.InvoiceNumber,
		ReceivedQuantity:  b.ReceivedQuantity,
		CurrentQuantity:   b.CurrentQuantity,
		UnitCost:          b.UnitCost,
		Status:            b.Status,
		ExpiryDate:        b.ExpiryDate,
		ManufactureDate:   b.ManufactureDate,
		CertificateNumber: b.CertificateNumber,
		ApprovedBy:        b.ApprovedBy,
		ApprovedAt:        b.ApprovedAt,
		Notes:             b.Notes,
		CreatedAt:         b.CreatedAt,
	}
}

func toBatchResponses(batches []*entity.Batch) []dto.BatchResponse {
	out := make([]dto.BatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, toBatchResponse(b))
	}
	return out
}

func toMaterialResponse(m *entity.RawMaterial) dto.MaterialResponse {
	return dto.MaterialResponse{
		ID:           m.ID,
		Name:         m.Name,
		UnitMeasure:  m.UnitMeasure,
		CurrentStock: m.CurrentStock,
		MinimumStock: m.MinimumStock,
		MaximumStock: m.MaximumStock,
		ControlClass: m.ControlClass,
		BelowMinimum: m.BelowMinimum(),
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toMaterialResponses(materials []*entity.RawMaterial) []dto.MaterialResponse {
	out := make([]dto.MaterialResponse, 0, len(materials))
	for _, m := range materials {
		out = append(out, toMaterialResponse(m))
	}
	return out
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:             m.ID,
		MaterialID:     m.MaterialID,
		BatchID:        m.BatchID,
		Type:           m.Type,
		LossType:       m.LossType,
		Quantity:       m.Quantity,
		StockBefore:    m.StockBefore,
		StockAfter:     m.StockAfter,
		Reason:         m.Reason,
		OrderID:        m.OrderID,
		SupplierID:     m.SupplierID,
		DocumentNumber: m.DocumentNumber,
		AuthorizedBy:   m.AuthorizedBy,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}

func toMovementResponses(movements []*entity.StockMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	return out
}

func toOrderResponse(o *entity.ManipulationOrder) dto.OrderResponse {
	return dto.OrderResponse{
		ID:                   o.ID,
		OrderNumber:          o.OrderNumber,
		FormulaID:            o.FormulaID,
		CustomerName:         o.CustomerName,
		PrescriptionNumber:   o.PrescriptionNumber,
		QuantityToProduce:    o.QuantityToProduce,
		UnitMeasure:          o.UnitMeasure,
		Status:               o.Status,
		OrderedAt:            o.OrderedAt,
		ExpectedAt:           o.ExpectedAt,
		StartDate:            o.StartDate,
		CompletionDate:       o.CompletionDate,
		ProductExpiryDate:    o.ProductExpiryDate,
		ProductBatchNumber:   o.ProductBatchNumber,
		PassedQualityControl: o.PassedQualityControl,
		PharmacistID:         o.PharmacistID,
		Instructions:         o.Instructions,
	}
}

func toStepResponse(s *entity.ManipulationStep) dto.StepResponse {
	return dto.StepResponse{
		ID:                      s.ID,
		OrderID:                 s.OrderID,
		Type:                    s.Type,
		Payload:                 s.Payload,
		PassedIntermediateCheck: s.PassedIntermediateCheck,
		CheckedBy:               s.CheckedBy,
		Notes:                   s.Notes,
		PerformedBy:             s.PerformedBy,
		CreatedAt:               s.CreatedAt,
	}
}

func toSummaryResponse(sum *manipulation.OrderSummary) dto.OrderSummaryResponse {
	latest := make(map[string]dto.StepResponse, len(sum.LatestSteps))
	for stepType, step := range sum.LatestSteps {
		latest[stepType] = toStepResponse(step)
	}
	return dto.OrderSummaryResponse{
		Order:       toOrderResponse(sum.Order),
		LatestSteps: latest,
		CanProceed:  sum.CanProceed,
		NextStage:   sum.NextStage,
	}
}
