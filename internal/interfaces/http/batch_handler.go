package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/farmabit/magistral-api/internal/application/batches"
	"github.com/farmabit/magistral-api/internal/application/dto"
)

// BatchHandler maneja las peticiones HTTP del ciclo de vida de lotes (protegido).
type BatchHandler struct {
	registry *batches.RegistryUseCase
}

// NewBatchHandler construye el handler.
func NewBatchHandler(registry *batches.RegistryUseCase) *BatchHandler {
	return &BatchHandler{registry: registry}
}

// Receive godoc
// @Summary      Recepcionar un lote de materia prima
// @Description  Da de alta el lote en cuarentena y asienta el movimiento ENTRY.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveBatchRequest  true  "datos de recepción"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches [post]
func (h *BatchHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	batch, err := h.registry.Receive(c.Context(), batches.ReceiveInput{
		MaterialID:        in.MaterialID,
		SupplierID:        in.SupplierID,
		BatchNumber:       in.BatchNumber,
		InvoiceNumber:     in.InvoiceNumber,
		ReceivedQuantity:  in.ReceivedQuantity,
		UnitCost:          in.UnitCost,
		ExpiryDate:        in.ExpiryDate,
		ManufactureDate:   in.ManufactureDate,
		CertificateNumber: in.CertificateNumber,
		ActorID:           GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toBatchResponse(batch))
}

// Approve godoc
// @Summary      Aprobar un lote en cuarentena
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.ApproveBatchRequest  true  "certificado de análisis"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/approve [post]
func (h *BatchHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.registry.Approve(c.Context(), c.Params("id"), in.CertificateNumber, in.Notes, GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "lote aprobado"})
}

// Reject godoc
// @Summary      Rechazar un lote en cuarentena
// @Description  La cantidad del lote queda congelada para auditoría y el agregado deja de contarla.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.RejectBatchRequest  true  "motivo del rechazo"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/reject [post]
func (h *BatchHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.registry.Reject(c.Context(), c.Params("id"), in.Reason, GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "lote rechazado"})
}

// Expire godoc
// @Summary      Marcar un lote vencido y asentar la pérdida
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del lote"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/expire [post]
func (h *BatchHandler) Expire(c *fiber.Ctx) error {
	if err := h.registry.Expire(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "lote vencido"})
}

// Delete godoc
// @Summary      Eliminar un lote sin historia de uso
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del lote"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [delete]
func (h *BatchHandler) Delete(c *fiber.Ctx) error {
	if err := h.registry.Delete(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "lote eliminado"})
}

// GetByID godoc
// @Summary      Obtener un lote
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del lote"
// @Success      200  {object}  dto.BatchResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [get]
func (h *BatchHandler) GetByID(c *fiber.Ctx) error {
	batch, err := h.registry.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toBatchResponse(batch))
}

// ListByMaterial godoc
// @Summary      Listar lotes de una materia prima
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        material_id  query  string  true   "ID de la materia prima"
// @Param        limit        query  int     false  "máximo de resultados"
// @Param        offset       query  int     false  "desplazamiento"
// @Success      200  {array}   dto.BatchResponse
// @Router       /api/batches [get]
func (h *BatchHandler) ListByMaterial(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	list, err := h.registry.ListByMaterial(c.Context(), c.Query("material_id"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toBatchResponses(list))
}

// ListInQuarantine godoc
// @Summary      Listar lotes pendientes de liberación de calidad
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.BatchResponse
// @Router       /api/batches/quarantine [get]
func (h *BatchHandler) ListInQuarantine(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	list, err := h.registry.ListInQuarantine(c.Context(), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toBatchResponses(list))
}

// ListExpiring godoc
// @Summary      Listar lotes que vencen pronto
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        within_days  query  int  false  "horizonte en días (default 30)"
// @Success      200  {array}  dto.BatchResponse
// @Router       /api/batches/expiring [get]
func (h *BatchHandler) ListExpiring(c *fiber.Ctx) error {
	withinDays, _ := strconv.Atoi(c.Query("within_days", "30"))
	list, err := h.registry.ListExpiring(c.Context(), withinDays)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toBatchResponses(list))
}
