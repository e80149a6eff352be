package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/factura-simple/internal/application/auth"
	"github.com/tu-usuario/factura-simple/internal/application/billing"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	ClientUC  *billing.ClientUseCase
	Lifecycle *billing.LifecycleUseCase
	ImportUC  *billing.ImportUseCase
	ExportUC  *billing.ExportUseCase
	Documents *billing.DocumentUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Clients (protegido)
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Get("/", clientHandler.List)
	clients.Post("/", clientHandler.Save)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Delete("/:id", clientHandler.Delete)

	// Invoices (protegido). Las rutas fijas van antes que las de :id para que
	// el router de Fiber no las capture como identificadores.
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.Lifecycle, deps.ImportUC, deps.ExportUC, deps.Documents)
	invoices.Get("/export/csv", invoiceHandler.ExportCSV)
	invoices.Post("/import/confirm", invoiceHandler.ImportConfirm)
	invoices.Post("/import", invoiceHandler.Import)
	invoices.Post("/overdue/sweep", invoiceHandler.OverdueSweep)
	invoices.Get("/audit/numbering", invoiceHandler.AuditNumbering)
	invoices.Get("/", invoiceHandler.List)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Put("/:id", invoiceHandler.Update)
	invoices.Delete("/:id", invoiceHandler.Delete)
	invoices.Post("/:id/status", invoiceHandler.SetStatus)
	invoices.Post("/:id/cancel", invoiceHandler.Cancel)
	invoices.Get("/:id/pdf", invoiceHandler.PDF)
	invoices.Get("/:id/facturae", invoiceHandler.Facturae)
}
