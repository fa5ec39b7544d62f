package repository

import (
	"context"

	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
)

// ItemFilter filtros de listado para items.
type ItemFilter struct {
	Status *int   // nil = sin filtro
	Search string // subcadena contra Name; vacío = sin filtro
	Limit  int
	Offset int
}

// ItemRepository define el puerto de persistencia para Item.
// No hay Delete: el borrado es lógico y pasa por Update (status=0).
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	// GetByID devuelve (nil, nil) si el item no existe.
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	// List devuelve la página y el total de filas que casan con el filtro,
	// ordenadas por created_at descendente.
	List(ctx context.Context, f ItemFilter) ([]*entity.Item, int, error)
	Update(ctx context.Context, item *entity.Item) error
}
