package billing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/factura-simple/internal/domain/entity"
	"github.com/tu-usuario/factura-simple/internal/domain/repository"
)

// Dobles en memoria para los tests de los casos de uso. El repositorio imita
// el contrato del de postgres: GetByID devuelve (nil, nil) si no existe y Save
// hace upsert por ID.

type fakeInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[string]*entity.Invoice
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: map[string]*entity.Invoice{}}
}

func (r *fakeInvoiceRepo) List() ([]*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		cp := *inv
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvoiceRepo) Save(inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.invoices, id)
	return nil
}

func (r *fakeInvoiceRepo) ListNumbers() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.invoices))
	for _, inv := range r.invoices {
		out = append(out, inv.Number)
	}
	return out, nil
}

type fakeClientRepo struct {
	mu      sync.Mutex
	clients map[string]*entity.Client
}

func newFakeClientRepo(clients ...*entity.Client) *fakeClientRepo {
	r := &fakeClientRepo{clients: map[string]*entity.Client{}}
	for _, c := range clients {
		r.clients[c.ID] = c
	}
	return r
}

func (r *fakeClientRepo) List() ([]*entity.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Client, 0, len(r.clients))
	for _, c := range r.clients {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeClientRepo) GetByID(id string) (*entity.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClientRepo) Save(c *entity.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.clients[c.ID] = &cp
	return nil
}

func (r *fakeClientRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, id)
	return nil
}

// fakeTxRunner serializa con un mutex global, suficiente para el contrato de
// exclusión por (serie, año) que exige la asignación de números.
type fakeTxRunner struct {
	mu   sync.Mutex
	repo repository.InvoiceRepository
}

func (t *fakeTxRunner) RunSerialized(_ context.Context, _ string, _ int, fn func(repo repository.InvoiceRepository) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(t.repo)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// testNow fecha de referencia de los tests: 15/06/2025.
var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func testFiscalConfig() FiscalConfig {
	return FiscalConfig{
		DefaultSeries:      "FS",
		MaxPaymentTermDays: 60,
		SequencePadding:    4,
		DefaultVATRate:     decimal.RequireFromString("0.21"),
		DefaultIRPFRate:    decimal.Zero,
	}
}

func testClient() *entity.Client {
	return &entity.Client{
		ID:        uuid.New().String(),
		Name:      "Acme Consulting SL",
		NIF:       "B12345678",
		Address:   "Calle Mayor 1, Madrid",
		Email:     "facturacion@acme.example",
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
}

type testEnv struct {
	invoiceRepo *fakeInvoiceRepo
	clientRepo  *fakeClientRepo
	client      *entity.Client
	lifecycle   *LifecycleUseCase
}

func newTestEnv() *testEnv {
	invoiceRepo := newFakeInvoiceRepo()
	client := testClient()
	clientRepo := newFakeClientRepo(client)
	lifecycle := NewLifecycleUseCase(
		invoiceRepo,
		clientRepo,
		&fakeTxRunner{repo: invoiceRepo},
		fixedClock{now: testNow},
		testFiscalConfig(),
	)
	return &testEnv{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		client:      client,
		lifecycle:   lifecycle,
	}
}
