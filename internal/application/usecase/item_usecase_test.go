package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/application/usecase"
	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/authz"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

// fakeItemRepo repositorio en memoria para los tests del caso de uso.
type fakeItemRepo struct {
	items map[string]*entity.Item
	order []string // ids en orden de creación (el más nuevo al final)
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: map[string]*entity.Item{}}
}

func (f *fakeItemRepo) Create(_ context.Context, item *entity.Item) error {
	cp := *item
	f.items[item.ID] = &cp
	f.order = append(f.order, item.ID)
	return nil
}

func (f *fakeItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	it, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (f *fakeItemRepo) List(_ context.Context, filter repository.ItemFilter) ([]*entity.Item, int, error) {
	var matched []*entity.Item
	// created_at DESC: recorremos el orden de inserción al revés
	for i := len(f.order) - 1; i >= 0; i-- {
		it := f.items[f.order[i]]
		if filter.Status != nil && it.Status != *filter.Status {
			continue
		}
		cp := *it
		matched = append(matched, &cp)
	}
	total := len(matched)
	if filter.Offset >= total {
		return nil, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	return matched[filter.Offset:end], total, nil
}

func (f *fakeItemRepo) Update(_ context.Context, item *entity.Item) error {
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func vendedor(id string) *entity.User {
	return &entity.User{ID: id, Role: entity.RoleVendedor, Status: entity.UserStatusActive}
}

func admin(id string) *entity.User {
	return &entity.User{ID: id, Role: entity.RoleAdmin, Status: entity.UserStatusActive}
}

func newItemUC(repo *fakeItemRepo) *usecase.ItemUseCase {
	return usecase.NewItemUseCase(repo, authz.NewEvaluator(authz.DefaultTable()))
}

// Crear estampa propietario, estado activo y categoría validada.
func TestItemCreate_EstampaPropietarioYActivo(t *testing.T) {
	repo := newFakeItemRepo()
	uc := newItemUC(repo)
	actor := vendedor("u-1")

	out, err := uc.Create(context.Background(), actor, dto.CreateItemRequest{
		Name:       "Tornillo M6",
		Category:   entity.ItemCategoryProduct,
		PriceCents: 1250,
	})
	require.NoError(t, err)

	assert.Equal(t, "u-1", out.CreatedBy)
	assert.Equal(t, "u-1", out.UpdatedBy)
	assert.Equal(t, entity.StatusActive, out.Status)
	assert.Equal(t, int64(1250), out.PriceCents)
	assert.Equal(t, "12.50", out.Price)
}

func TestItemCreate_CategoriaInvalida(t *testing.T) {
	uc := newItemUC(newFakeItemRepo())
	_, err := uc.Create(context.Background(), admin("a-1"), dto.CreateItemRequest{
		Name:     "X",
		Category: 9,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Un vendedor no puede actualizar el item de otro vendedor; un admin sí.
func TestItemUpdate_PropiedadDecideEntreVendedores(t *testing.T) {
	repo := newFakeItemRepo()
	uc := newItemUC(repo)
	owner := vendedor("owner")

	created, err := uc.Create(context.Background(), owner, dto.CreateItemRequest{
		Name: "Martillo", Category: entity.ItemCategoryProduct, PriceCents: 5000,
	})
	require.NoError(t, err)

	newName := "Martillo de bola"

	// Otro vendedor: prohibido
	_, err = uc.Update(context.Background(), vendedor("otro"), created.ID, dto.UpdateItemRequest{Name: &newName})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// El propietario: permitido
	out, err := uc.Update(context.Background(), owner, created.ID, dto.UpdateItemRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, newName, out.Name)

	// Admin sobre item ajeno: permitido (update-any)
	other := "Martillo renombrado por admin"
	out, err = uc.Update(context.Background(), admin("a-1"), created.ID, dto.UpdateItemRequest{Name: &other})
	require.NoError(t, err)
	assert.Equal(t, other, out.Name)
	assert.Equal(t, "a-1", out.UpdatedBy)
}

// La actualización parcial no pisa los campos omitidos.
func TestItemUpdate_ParcialConservaCamposOmitidos(t *testing.T) {
	repo := newFakeItemRepo()
	uc := newItemUC(repo)
	owner := vendedor("u-1")

	created, err := uc.Create(context.Background(), owner, dto.CreateItemRequest{
		Name: "Llave inglesa", Description: "ajustable", Category: entity.ItemCategoryProduct, PriceCents: 3000,
	})
	require.NoError(t, err)

	price := int64(3500)
	out, err := uc.Update(context.Background(), owner, created.ID, dto.UpdateItemRequest{PriceCents: &price})
	require.NoError(t, err)

	assert.Equal(t, "Llave inglesa", out.Name)
	assert.Equal(t, "ajustable", out.Description)
	assert.Equal(t, int64(3500), out.PriceCents)
}

// No encontrado se reporta antes que prohibido: sin registro no hay propiedad.
func TestItemUpdate_NoEncontradoAntesQueProhibido(t *testing.T) {
	uc := newItemUC(newFakeItemRepo())
	name := "x"
	_, err := uc.Update(context.Background(), vendedor("u-1"), "no-existe", dto.UpdateItemRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// El borrado es lógico: la fila queda con status=0 y estampas del actuante.
func TestItemDelete_EsLogicoYEstampa(t *testing.T) {
	repo := newFakeItemRepo()
	uc := newItemUC(repo)
	owner := vendedor("u-1")

	created, err := uc.Create(context.Background(), owner, dto.CreateItemRequest{
		Name: "Destornillador", Category: entity.ItemCategoryProduct, PriceCents: 900,
	})
	require.NoError(t, err)

	a := admin("a-9")
	require.NoError(t, uc.Delete(context.Background(), a, created.ID))

	stored := repo.items[created.ID]
	require.NotNil(t, stored, "la fila no debe eliminarse")
	assert.Equal(t, entity.StatusInactive, stored.Status)
	assert.Equal(t, "a-9", stored.UpdatedBy)
	assert.True(t, stored.UpdatedAt.After(created.UpdatedAt) || stored.UpdatedAt.Equal(created.UpdatedAt))
}

func TestItemDelete_VendedorNoBorraItemAjeno(t *testing.T) {
	repo := newFakeItemRepo()
	uc := newItemUC(repo)

	created, err := uc.Create(context.Background(), vendedor("owner"), dto.CreateItemRequest{
		Name: "Sierra", Category: entity.ItemCategoryProduct, PriceCents: 15000,
	})
	require.NoError(t, err)

	err = uc.Delete(context.Background(), vendedor("otro"), created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, entity.StatusActive, repo.items[created.ID].Status)
}

// Paginación 1-based con tamaño fijo 20: 25 filas → página 2 con 5 y metadatos.
func TestItemList_Paginacion25FilasPagina2(t *testing.T) {
	repo := newFakeItemRepo()
	uc := newItemUC(repo)
	actor := admin("a-1")

	for i := 0; i < 25; i++ {
		_, err := uc.Create(context.Background(), actor, dto.CreateItemRequest{
			Name: "Item", Category: entity.ItemCategoryProduct, PriceCents: 100,
		})
		require.NoError(t, err)
	}

	out, err := uc.List(context.Background(), dto.ListQuery{Page: 2}, nil)
	require.NoError(t, err)

	assert.Len(t, out.Items, 5)
	assert.Equal(t, 25, out.Meta.TotalItems)
	assert.Equal(t, 2, out.Meta.TotalPages)
	assert.Equal(t, 2, out.Meta.CurrentPage)
	assert.False(t, out.Meta.HasNext)
	assert.True(t, out.Meta.HasPrev)
}

// Listado vacío: página 1, cero totales, sin anterior ni siguiente.
func TestItemList_Vacio(t *testing.T) {
	uc := newItemUC(newFakeItemRepo())

	out, err := uc.List(context.Background(), dto.ListQuery{}, nil)
	require.NoError(t, err)

	assert.Empty(t, out.Items)
	assert.Equal(t, 0, out.Meta.TotalItems)
	assert.Equal(t, 0, out.Meta.TotalPages)
	assert.Equal(t, 1, out.Meta.CurrentPage)
	assert.False(t, out.Meta.HasNext)
	assert.False(t, out.Meta.HasPrev)
}

// El filtro de status excluye los inactivos del listado y del total.
func TestItemList_FiltroStatus(t *testing.T) {
	repo := newFakeItemRepo()
	uc := newItemUC(repo)
	actor := admin("a-1")

	a, err := uc.Create(context.Background(), actor, dto.CreateItemRequest{
		Name: "Activo", Category: entity.ItemCategoryProduct, PriceCents: 100,
	})
	require.NoError(t, err)
	b, err := uc.Create(context.Background(), actor, dto.CreateItemRequest{
		Name: "Inactivo", Category: entity.ItemCategoryProduct, PriceCents: 100,
	})
	require.NoError(t, err)
	require.NoError(t, uc.Delete(context.Background(), actor, b.ID))

	active := entity.StatusActive
	out, err := uc.List(context.Background(), dto.ListQuery{}, &active)
	require.NoError(t, err)

	require.Len(t, out.Items, 1)
	assert.Equal(t, a.ID, out.Items[0].ID)
	assert.Equal(t, 1, out.Meta.TotalItems)
}
