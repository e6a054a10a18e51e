package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/granja-ventas/internal/domain/repository"
)

// InventoryHandler consultas de solo lectura sobre el inventario vivo.
type InventoryHandler struct {
	lots repository.LotRepository
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(lots repository.LotRepository) *InventoryHandler {
	return &InventoryHandler{lots: lots}
}

// ListLots lista los lotes de un tipo (pollos, cerdos, gallinas).
// GET /api/lotes/:tipo
func (h *InventoryHandler) ListLots(c *fiber.Ctx) error {
	lots, err := h.lots.ListByType(c.Context(), c.Params("tipo"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(lots)
}
