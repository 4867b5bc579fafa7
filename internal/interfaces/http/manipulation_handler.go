package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/farmabit/magistral-api/internal/application/dto"
	"github.com/farmabit/magistral-api/internal/application/manipulation"
	"github.com/farmabit/magistral-api/internal/application/stock"
	"github.com/farmabit/magistral-api/internal/domain/entity"
)

// ManipulationHandler maneja el flujo de órdenes de manipulación.
type ManipulationHandler struct {
	workflow *manipulation.WorkflowUseCase
}

func NewManipulationHandler(workflow *manipulation.WorkflowUseCase) *ManipulationHandler {
	return &ManipulationHandler{workflow: workflow}
}

// Create godoc
// @Summary      Crear una orden de manipulación
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "datos de la orden"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *ManipulationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.workflow.Create(c.Context(), manipulation.CreateOrderInput{
		FormulaID:          in.FormulaID,
		CustomerName:       in.CustomerName,
		PrescriptionNumber: in.PrescriptionNumber,
		PrescriberName:     in.PrescriberName,
		QuantityToProduce:  in.QuantityToProduce,
		UnitMeasure:        in.UnitMeasure,
		ExpectedAt:         in.ExpectedAt,
		Instructions:       in.Instructions,
		ActorID:            GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
}

// StartProduction godoc
// @Summary      Pasar la orden a producción
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/production [post]
func (h *ManipulationHandler) StartProduction(c *fiber.Ctx) error {
	order, err := h.workflow.StartProduction(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// StartWeighing godoc
// @Summary      Registrar la pesada y consumir los componentes
// @Description  La pesada descuenta cada componente de su lote en la misma transacción.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.StartWeighingRequest  true  "componentes pesados"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/weighing [post]
func (h *ManipulationHandler) StartWeighing(c *fiber.Ctx) error {
	var in dto.StartWeighingRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	components := make([]stock.ConsumptionItem, 0, len(in.Components))
	for _, comp := range in.Components {
		components = append(components, stock.ConsumptionItem{
			MaterialID: comp.MaterialID,
			BatchID:    comp.BatchID,
			Quantity:   comp.Quantity,
			Notes:      comp.Notes,
		})
	}
	order, err := h.workflow.StartWeighing(c.Context(), c.Params("id"), manipulation.WeighingInput{
		Components:       components,
		ScaleID:          in.ScaleID,
		ScaleCalibration: in.ScaleCalibration,
		ActorID:          GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// CheckWeighing godoc
// @Summary      Registrar el control intermedio de la pesada
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.IntermediateCheckRequest  true  "resultado del control"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/weighing/check [post]
func (h *ManipulationHandler) CheckWeighing(c *fiber.Ctx) error {
	var in dto.IntermediateCheckRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.workflow.CheckWeighing(c.Context(), c.Params("id"), in.Passed, GetUserID(c), in.Notes); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "control registrado"})
}

// StartMixing godoc
// @Summary      Registrar la etapa de mezclado
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.StartMixingRequest  true  "datos del mezclado"
// @Success      200   {object}  dto.OrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/mixing [post]
func (h *ManipulationHandler) StartMixing(c *fiber.Ctx) error {
	var in dto.StartMixingRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.workflow.StartMixing(c.Context(), c.Params("id"), entity.MixingData{
		Method:       in.Method,
		DurationMin:  in.DurationMin,
		Equipment:    in.Equipment,
		Observations: in.Observations,
	}, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// StartPackaging godoc
// @Summary      Registrar la etapa de envasado
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.StartPackagingRequest  true  "datos del envasado"
// @Success      200   {object}  dto.OrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/packaging [post]
func (h *ManipulationHandler) StartPackaging(c *fiber.Ctx) error {
	var in dto.StartPackagingRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.workflow.StartPackaging(c.Context(), c.Params("id"), entity.PackagingData{
		ContainerType: in.ContainerType,
		UnitsPackaged: in.UnitsPackaged,
		LotSeal:       in.LotSeal,
	}, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// StartLabeling godoc
// @Summary      Registrar la etapa de etiquetado
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.StartLabelingRequest  true  "datos del etiquetado"
// @Success      200   {object}  dto.OrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/labeling [post]
func (h *ManipulationHandler) StartLabeling(c *fiber.Ctx) error {
	var in dto.StartLabelingRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.workflow.StartLabeling(c.Context(), c.Params("id"), entity.LabelingData{
		LabelsPrinted:  in.LabelsPrinted,
		LabelReference: in.LabelReference,
	}, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// FinalCheck godoc
// @Summary      Registrar el control final del farmacéutico
// @Description  La aprobación completa la orden, genera el lote del producto y deriva su vencimiento.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.FinalCheckRequest  true  "resultado del control final"
// @Success      200   {object}  dto.OrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/final-check [post]
func (h *ManipulationHandler) FinalCheck(c *fiber.Ctx) error {
	var in dto.FinalCheckRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.workflow.FinalCheck(c.Context(), c.Params("id"), manipulation.FinalCheckInput{
		Data: entity.FinalCheckData{
			InspectionResult: in.InspectionResult,
			AppearanceOK:     in.AppearanceOK,
			LabelOK:          in.LabelOK,
			QuantityOK:       in.QuantityOK,
			DocumentationOK:  in.DocumentationOK,
		},
		ApprovedByPharmacist: in.Approved,
		PharmacistID:         GetUserID(c),
		Notes:                in.Notes,
		ExpiryDate:           in.ExpiryDate,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// Cancel godoc
// @Summary      Cancelar una orden no terminal
// @Description  El stock ya consumido no se revierte automáticamente.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.CancelOrderRequest  true  "motivo"
// @Success      200   {object}  dto.OrderResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *ManipulationHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.workflow.Cancel(c.Context(), c.Params("id"), in.Reason, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// GetByID godoc
// @Summary      Obtener una orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *ManipulationHandler) GetByID(c *fiber.Ctx) error {
	order, err := h.workflow.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// List godoc
// @Summary      Listar órdenes
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "filtrar por estado"
// @Param        limit   query  int     false  "máximo de resultados"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {array}  dto.OrderResponse
// @Router       /api/orders [get]
func (h *ManipulationHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	orders, err := h.workflow.List(c.Context(), c.Query("status"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return c.JSON(out)
}

// GetSummary godoc
// @Summary      Resumen de flujo de una orden
// @Description  Última etapa de cada tipo, si puede avanzar y cuál sería la siguiente etapa.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/summary [get]
func (h *ManipulationHandler) GetSummary(c *fiber.Ctx) error {
	sum, err := h.workflow.GetSummary(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSummaryResponse(sum))
}
