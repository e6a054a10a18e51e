package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/granja-ventas/internal/application/dto"
	"github.com/tu-usuario/granja-ventas/internal/application/sales"
)

// InvoiceHandler maneja las peticiones HTTP de facturas.
type InvoiceHandler struct {
	uc *sales.InvoiceUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *sales.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Generate deriva la factura de una venta confirmada (a lo sumo una por venta).
// POST /api/ventas/:id/factura
func (h *InvoiceHandler) Generate(c *fiber.Ctx) error {
	inv, err := h.uc.Generate(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromInvoice(inv))
}

// GetByID obtiene una factura.
// GET /api/facturas/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	inv, err := h.uc.GetInvoice(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromInvoice(inv))
}
