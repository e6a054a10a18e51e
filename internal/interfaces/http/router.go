package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tu-usuario/granja-ventas/internal/application/sales"
	"github.com/tu-usuario/granja-ventas/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SaleUC       *sales.SaleUseCase
	InvoiceUC    *sales.InvoiceUseCase
	LotRepo      repository.LotRepository
	CustomerRepo repository.CustomerRepository
	Metrics      *prometheus.Registry
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Ventas
	ventas := api.Group("/ventas")
	saleHandler := NewSaleHandler(deps.SaleUC)
	ventas.Post("/", saleHandler.Create)
	ventas.Get("/", saleHandler.List)
	ventas.Get("/:id", saleHandler.GetByID)
	ventas.Post("/:id/cancelar", saleHandler.Cancel)

	// Facturas (derivadas de ventas confirmadas)
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	ventas.Post("/:id/factura", invoiceHandler.Generate)
	facturas := api.Group("/facturas")
	facturas.Get("/:id", invoiceHandler.GetByID)

	// Inventario (solo lectura)
	inventoryHandler := NewInventoryHandler(deps.LotRepo)
	api.Get("/lotes/:tipo", inventoryHandler.ListLots)

	// Clientes
	clientes := api.Group("/clientes")
	customerHandler := NewCustomerHandler(deps.CustomerRepo)
	clientes.Post("/", customerHandler.Create)
	clientes.Get("/", customerHandler.List)
}
