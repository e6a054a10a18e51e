package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tu-usuario/granja-ventas/internal/application/dto"
	"github.com/tu-usuario/granja-ventas/internal/domain/entity"
	"github.com/tu-usuario/granja-ventas/internal/domain/repository"
)

// CustomerHandler alta y consulta de clientes.
type CustomerHandler struct {
	customers repository.CustomerRepository
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(customers repository.CustomerRepository) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

type createCustomerRequest struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Phone    string `json:"phone"`
}

// Create registra un cliente.
// POST /api/clientes
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in createCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION_FAILED", Message: "name es obligatorio"})
	}
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Document:  in.Document,
		Phone:     in.Phone,
		CreatedAt: time.Now(),
	}
	if err := h.customers.Create(c.Context(), customer); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

// List lista los clientes.
// GET /api/clientes
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	customers, err := h.customers.List(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(customers)
}
