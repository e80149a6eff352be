package repository

import "github.com/tu-usuario/factura-simple/internal/domain/entity"

// ClientRepository define el puerto de persistencia de clientes.
type ClientRepository interface {
	List() ([]*entity.Client, error)
	GetByID(id string) (*entity.Client, error)
	Save(client *entity.Client) error
	// Delete borra solo el cliente; las facturas del cliente se conservan
	// (el nombre va desnormalizado en cada factura).
	Delete(id string) error
}
