package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/factura-simple/internal/application/billing"
	"github.com/tu-usuario/factura-simple/internal/application/dto"
	"github.com/tu-usuario/factura-simple/internal/domain"
)

// InvoiceHandler maneja las peticiones HTTP del libro de facturas.
type InvoiceHandler struct {
	lifecycle *billing.LifecycleUseCase
	importUC  *billing.ImportUseCase
	exportUC  *billing.ExportUseCase
	documents *billing.DocumentUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(
	lifecycle *billing.LifecycleUseCase,
	importUC *billing.ImportUseCase,
	exportUC *billing.ExportUseCase,
	documents *billing.DocumentUseCase,
) *InvoiceHandler {
	return &InvoiceHandler{lifecycle: lifecycle, importUC: importUC, exportUC: exportUC, documents: documents}
}

// Create POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.SaveInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	invoice, err := h.lifecycle.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// List GET /api/invoices
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	list, err := h.lifecycle.List(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// GetByID GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	invoice, err := h.lifecycle.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(invoice)
}

// Update PUT /api/invoices/:id — solo borradores.
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var in dto.SaveInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	invoice, err := h.lifecycle.Save(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(invoice)
}

// SetStatus POST /api/invoices/:id/status
func (h *InvoiceHandler) SetStatus(c *fiber.Ctx) error {
	var in dto.SetStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	invoice, err := h.lifecycle.SetStatus(c.Context(), c.Params("id"), in.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(invoice)
}

// Cancel POST /api/invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	invoice, err := h.lifecycle.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(invoice)
}

// Delete DELETE /api/invoices/:id — solo borradores; 409 si ya fue emitida.
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	deleted, err := h.lifecycle.DeleteDraft(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if !deleted {
		if _, err := h.lifecycle.Get(c.Context(), id); errors.Is(err, domain.ErrNotFound) {
			return respondError(c, domain.ErrNotFound)
		}
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code: "IMMUTABLE", Message: "solo los borradores pueden borrarse",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PDF GET /api/invoices/:id/pdf
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	data, filename, err := h.documents.GeneratePDF(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// Facturae GET /api/invoices/:id/facturae — solo facturas emitidas.
func (h *InvoiceHandler) Facturae(c *fiber.Ctx) error {
	data, filename, err := h.documents.GenerateFacturae(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// ExportCSV GET /api/invoices/export/csv
func (h *InvoiceHandler) ExportCSV(c *fiber.Ctx) error {
	data, err := h.exportUC.ExportCSV()
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="facturas.csv"`)
	return c.Send(data)
}

// Import POST /api/invoices/import — staging: parsea y reporta sin escribir.
func (h *InvoiceHandler) Import(c *fiber.Ctx) error {
	return h.runImport(c, false)
}

// ImportConfirm POST /api/invoices/import/confirm — commit de las importables.
func (h *InvoiceHandler) ImportConfirm(c *fiber.Ctx) error {
	return h.runImport(c, true)
}

// runImport acepta el CSV como cuerpo crudo (text/csv).
func (h *InvoiceHandler) runImport(c *fiber.Ctx, commit bool) error {
	body := c.Body()
	if len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "CSV vacío"})
	}
	result, err := h.importUC.Import(c.Context(), string(body), commit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// OverdueSweep POST /api/invoices/overdue/sweep
func (h *InvoiceHandler) OverdueSweep(c *fiber.Ctx) error {
	marked, err := h.lifecycle.MarkOverdue(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OverdueSweepResponse{Marked: marked})
}

// AuditNumbering GET /api/invoices/audit/numbering
func (h *InvoiceHandler) AuditNumbering(c *fiber.Ctx) error {
	report, err := h.lifecycle.AuditNumbering(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}
