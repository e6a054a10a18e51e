package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/granja-ventas/internal/application/dto"
	"github.com/tu-usuario/granja-ventas/internal/application/sales"
)

// SaleHandler maneja las peticiones HTTP de ventas.
type SaleHandler struct {
	uc *sales.SaleUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.SaleUseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Create crea una venta descontando inventario atómicamente.
// POST /api/ventas
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	userID := c.Get("X-Usuario", "sistema")
	sale, err := h.uc.CreateSale(c.Context(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromSale(sale))
}

// GetByID obtiene una venta con sus líneas.
// GET /api/ventas/:id
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.uc.GetSale(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromSale(sale))
}

// List lista ventas recientes.
// GET /api/ventas?limit=&offset=
func (h *SaleHandler) List(c *fiber.Ctx) error {
	ventas, err := h.uc.ListSales(c.Context(), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]*dto.SaleResponse, 0, len(ventas))
	for _, s := range ventas {
		out = append(out, dto.FromSale(s))
	}
	return c.JSON(out)
}

// Cancel intenta cancelar una venta. La reversa de inventario no está
// definida, así que hoy siempre responde 501.
// POST /api/ventas/:id/cancelar
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	if err := h.uc.CancelSale(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
