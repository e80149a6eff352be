package repository

import "github.com/tu-usuario/factura-simple/internal/domain/entity"

// InvoiceRepository define el puerto de persistencia del libro de facturas.
// Los métodos Get devuelven (nil, nil) cuando el recurso no existe: "no está"
// es una condición rutinaria, no un error.
type InvoiceRepository interface {
	List() ([]*entity.Invoice, error)
	GetByID(id string) (*entity.Invoice, error)
	// Save hace upsert de cabecera y líneas (las líneas se reemplazan completas).
	Save(invoice *entity.Invoice) error
	Delete(id string) error
	// ListNumbers devuelve solo los números de factura del libro, para el
	// secuenciador y la auditoría de numeración.
	ListNumbers() ([]string, error)
}
