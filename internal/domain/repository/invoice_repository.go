package repository

import (
	"context"

	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
)

// InvoiceFilter filtros de listado para facturas.
type InvoiceFilter struct {
	Status string // ISSUED/PAID/CANCELLED; vacío = sin filtro
	Search string // subcadena contra Number
	Limit  int
	Offset int
}

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	// GetByID devuelve solo la cabecera; (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// List ordena por created_at descendente.
	List(ctx context.Context, f InvoiceFilter) ([]*entity.Invoice, int, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
	// Delete elimina la fila; solo compensación de saga. El borrado normal es
	// lógico (status=CANCELLED) vía Update.
	Delete(ctx context.Context, id string) error

	CreateItem(ctx context.Context, item *entity.InvoiceItem) error
	ListItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceItem, error)
	// DeleteItems borra todas las líneas de la factura (reemplazo de líneas).
	DeleteItems(ctx context.Context, invoiceID string) error
}
