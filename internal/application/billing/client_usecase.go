package billing

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/factura-simple/internal/application/dto"
	"github.com/tu-usuario/factura-simple/internal/domain"
	"github.com/tu-usuario/factura-simple/internal/domain/entity"
	"github.com/tu-usuario/factura-simple/internal/domain/repository"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ClientUseCase casos de uso de clientes.
type ClientUseCase struct {
	repo  repository.ClientRepository
	clock Clock
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository, clock Clock) *ClientUseCase {
	return &ClientUseCase{repo: repo, clock: clock}
}

// Save crea o actualiza un cliente (upsert por ID).
func (uc *ClientUseCase) Save(in dto.SaveClientRequest) (*dto.ClientResponse, error) {
	var issues []domain.FieldIssue
	if in.Name == "" {
		issues = append(issues, domain.FieldIssue{Field: "name", Message: "el nombre es obligatorio"})
	}
	if len(in.NIF) < 5 {
		issues = append(issues, domain.FieldIssue{Field: "nif", Message: "el NIF debe tener al menos 5 caracteres"})
	}
	if in.Email != "" && !emailRe.MatchString(in.Email) {
		issues = append(issues, domain.FieldIssue{Field: "email", Message: "email inválido"})
	}
	if err := domain.NewValidationError(issues); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	client := &entity.Client{
		ID:        in.ID,
		Name:      in.Name,
		NIF:       in.NIF,
		Address:   in.Address,
		Email:     in.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if client.ID == "" {
		client.ID = uuid.New().String()
	} else if existing, err := uc.repo.GetByID(client.ID); err != nil {
		return nil, fmt.Errorf("cargar cliente: %w", err)
	} else if existing != nil {
		client.CreatedAt = existing.CreatedAt
	}
	if err := uc.repo.Save(client); err != nil {
		return nil, fmt.Errorf("guardar cliente: %w", err)
	}
	return toClientResponse(client), nil
}

// List lista todos los clientes.
func (uc *ClientUseCase) List() ([]dto.ClientResponse, error) {
	list, err := uc.repo.List()
	if err != nil {
		return nil, fmt.Errorf("listar clientes: %w", err)
	}
	out := make([]dto.ClientResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toClientResponse(c))
	}
	return out, nil
}

// Get devuelve un cliente por ID.
func (uc *ClientUseCase) Get(id string) (*dto.ClientResponse, error) {
	client, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("cargar cliente: %w", err)
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	return toClientResponse(client), nil
}

// Delete borra el cliente. Las facturas emitidas al cliente NO se borran:
// llevan el nombre desnormalizado y deben conservarse (retención legal).
func (uc *ClientUseCase) Delete(id string) error {
	client, err := uc.repo.GetByID(id)
	if err != nil {
		return fmt.Errorf("cargar cliente: %w", err)
	}
	if client == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(id)
}

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		NIF:       c.NIF,
		Address:   c.Address,
		Email:     c.Email,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
