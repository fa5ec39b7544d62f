package repository

import (
	"context"

	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
)

// CustomerFilter filtros de listado para clientes.
type CustomerFilter struct {
	Status *int   // nil = sin filtro
	Search string // subcadena contra CompanyName
	Limit  int
	Offset int
}

// CustomerRepository define el puerto de persistencia para Customer y sus
// sub-registros (direcciones y contactos).
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	// GetByID devuelve solo la cabecera; (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	// List ordena por actividad reciente: GREATEST(created_at, updated_at) DESC.
	List(ctx context.Context, f CustomerFilter) ([]*entity.Customer, int, error)
	Update(ctx context.Context, customer *entity.Customer) error
	// Delete elimina la fila. Solo lo usa la compensación de saga sobre un
	// cliente recién creado; el borrado normal es lógico vía Update.
	Delete(ctx context.Context, id string) error

	CreateAddress(ctx context.Context, address *entity.Address) error
	GetAddressByID(ctx context.Context, id string) (*entity.Address, error)
	// ListAddresses ordena por tipo, luego default primero, luego creación.
	ListAddresses(ctx context.Context, customerID string) ([]*entity.Address, error)
	UpdateAddress(ctx context.Context, address *entity.Address) error
	// ClearDefaultAddresses desmarca is_default en todas las direcciones del
	// (cliente, tipo). Debe invocarse ANTES de marcar la nueva default.
	ClearDefaultAddresses(ctx context.Context, customerID, addressType string) error
	DeleteAddress(ctx context.Context, id string) error

	CreateContact(ctx context.Context, contact *entity.Contact) error
	GetContactByID(ctx context.Context, id string) (*entity.Contact, error)
	// ListContacts ordena primario primero, luego creación.
	ListContacts(ctx context.Context, customerID string) ([]*entity.Contact, error)
	UpdateContact(ctx context.Context, contact *entity.Contact) error
	// ClearPrimaryContacts desmarca is_primary en todos los contactos del
	// cliente. Debe invocarse ANTES de marcar el nuevo primario.
	ClearPrimaryContacts(ctx context.Context, customerID string) error
	DeleteContact(ctx context.Context, id string) error
}
