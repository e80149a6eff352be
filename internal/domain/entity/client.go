package entity

import "time"

// Client representa un cliente al que se factura.
// Borrar un cliente no borra sus facturas: el nombre queda desnormalizado
// en cada factura para cumplir la retención legal de registros.
type Client struct {
	ID        string
	Name      string
	NIF       string // NIF/CIF (mínimo 5 caracteres)
	Address   string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
