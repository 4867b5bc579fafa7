package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/farmabit/magistral-api/internal/application/dto"
	"github.com/farmabit/magistral-api/internal/application/usecase"
)

// MaterialHandler maneja el catálogo de materias primas y proveedores.
type MaterialHandler struct {
	materials *usecase.MaterialUseCase
	suppliers *usecase.SupplierUseCase
}

func NewMaterialHandler(materials *usecase.MaterialUseCase, suppliers *usecase.SupplierUseCase) *MaterialHandler {
	return &MaterialHandler{materials: materials, suppliers: suppliers}
}

// CreateMaterial godoc
// @Summary      Crear una materia prima
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMaterialRequest  true  "datos de la materia prima"
// @Success      201   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/materials [post]
func (h *MaterialHandler) CreateMaterial(c *fiber.Ctx) error {
	var in dto.CreateMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	material, err := h.materials.Create(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(material)
}

// GetMaterial godoc
// @Summary      Obtener una materia prima
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la materia prima"
// @Success      200  {object}  dto.MaterialResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/materials/{id} [get]
func (h *MaterialHandler) GetMaterial(c *fiber.Ctx) error {
	material, err := h.materials.GetByID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(material)
}

// UpdateMaterial godoc
// @Summary      Actualizar una materia prima
// @Description  El stock actual no es editable: solo lo muta el libro de movimientos.
// @Tags         materials
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la materia prima"
// @Param        body  body  dto.UpdateMaterialRequest  true  "campos a actualizar"
// @Success      200   {object}  dto.MaterialResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/materials/{id} [put]
func (h *MaterialHandler) UpdateMaterial(c *fiber.Ctx) error {
	var in dto.UpdateMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	material, err := h.materials.Update(c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(material)
}

// ListMaterials godoc
// @Summary      Listar materias primas
// @Tags         materials
// @Security     Bearer
// @Produce      json
// @Param        active_only  query  bool  false  "solo activas"
// @Param        limit        query  int   false  "máximo de resultados"
// @Param        offset       query  int   false  "desplazamiento"
// @Success      200  {array}  dto.MaterialResponse
// @Router       /api/materials [get]
func (h *MaterialHandler) ListMaterials(c *fiber.Ctx) error {
	activeOnly := c.Query("active_only") == "true"
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	materials, err := h.materials.List(activeOnly, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(materials)
}

// CreateSupplier godoc
// @Summary      Crear un proveedor
// @Tags         suppliers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSupplierRequest  true  "datos del proveedor"
// @Success      201   {object}  dto.SupplierResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/suppliers [post]
func (h *MaterialHandler) CreateSupplier(c *fiber.Ctx) error {
	var in dto.CreateSupplierRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	supplier, err := h.suppliers.Create(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(supplier)
}

// GetSupplier godoc
// @Summary      Obtener un proveedor
// @Tags         suppliers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del proveedor"
// @Success      200  {object}  dto.SupplierResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/suppliers/{id} [get]
func (h *MaterialHandler) GetSupplier(c *fiber.Ctx) error {
	supplier, err := h.suppliers.GetByID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(supplier)
}

// ListSuppliers godoc
// @Summary      Listar proveedores
// @Tags         suppliers
// @Security     Bearer
// @Produce      json
// @Param        active_only  query  bool  false  "solo activos"
// @Param        limit        query  int   false  "máximo de resultados"
// @Param        offset       query  int   false  "desplazamiento"
// @Success      200  {array}  dto.SupplierResponse
// @Router       /api/suppliers [get]
func (h *MaterialHandler) ListSuppliers(c *fiber.Ctx) error {
	activeOnly := c.Query("active_only") == "true"
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	suppliers, err := h.suppliers.List(activeOnly, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(suppliers)
}
