package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/authz"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
	"github.com/tu-usuario/gestion-pro/pkg/money"
)

// Tamaño de página fijo para listados de items.
const itemPageSize = 20

// ItemUseCase casos de uso CRUD para items. Las mutaciones pasan por la fase 2
// del evaluador con el registro ya cargado; nada se muta sin un permiso final.
type ItemUseCase struct {
	repo repository.ItemRepository
	eval *authz.Evaluator
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(repo repository.ItemRepository, eval *authz.Evaluator) *ItemUseCase {
	return &ItemUseCase{repo: repo, eval: eval}
}

// Create crea un item con el usuario actuante como propietario.
func (uc *ItemUseCase) Create(ctx context.Context, actor *entity.User, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if in.Name == "" || !entity.ValidItemCategory(in.Category) || in.PriceCents < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	item := &entity.Item{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		PriceCents:  in.PriceCents,
		Status:      entity.StatusActive,
		CreatedBy:   actor.ID,
		UpdatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// GetByID obtiene un item por ID.
func (uc *ItemUseCase) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return toItemResponse(item), nil
}

// List lista items paginados (página 1-based, tamaño fijo), con filtros
// opcionales de status exacto y búsqueda por subcadena del nombre.
func (uc *ItemUseCase) List(ctx context.Context, q dto.ListQuery, status *int) (*dto.ItemListResponse, error) {
	q.Normalize()
	list, total, err := uc.repo.List(ctx, repository.ItemFilter{
		Status: status,
		Search: q.Search,
		Limit:  itemPageSize,
		Offset: (q.Page - 1) * itemPageSize,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toItemResponse(it))
	}
	return &dto.ItemListResponse{
		Items: items,
		Meta:  dto.NewPageMeta(q.Page, itemPageSize, total),
	}, nil
}

// Update aplica una actualización parcial. Primero carga el registro, luego
// evalúa la fase 2 (propiedad) y solo entonces muta; not-found se reporta
// antes que forbidden porque la propiedad no puede evaluarse sin el registro.
func (uc *ItemUseCase) Update(ctx context.Context, actor *entity.User, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if !uc.eval.Can(actor, authz.ResourceItems, authz.ActionUpdate, item) {
		return nil, domain.ErrForbidden
	}
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Category != nil {
		if !entity.ValidItemCategory(*in.Category) {
			return nil, domain.ErrInvalidInput
		}
		item.Category = *in.Category
	}
	if in.PriceCents != nil {
		if *in.PriceCents < 0 {
			return nil, domain.ErrInvalidInput
		}
		item.PriceCents = *in.PriceCents
	}
	if in.Status != nil {
		if *in.Status != entity.StatusActive && *in.Status != entity.StatusInactive {
			return nil, domain.ErrInvalidInput
		}
		item.Status = *in.Status
	}
	item.UpdatedBy = actor.ID
	item.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// Delete es lógico: pasa el item a status=0 y estampa updated_by/updated_at.
// La fila nunca se elimina.
func (uc *ItemUseCase) Delete(ctx context.Context, actor *entity.User, id string) error {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	if !uc.eval.Can(actor, authz.ResourceItems, authz.ActionDelete, item) {
		return domain.ErrForbidden
	}
	item.Status = entity.StatusInactive
	item.UpdatedBy = actor.ID
	item.UpdatedAt = time.Now()
	return uc.repo.Update(ctx, item)
}

func toItemResponse(i *entity.Item) *dto.ItemResponse {
	if i == nil {
		return nil
	}
	return &dto.ItemResponse{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Category:    i.Category,
		PriceCents:  i.PriceCents,
		Price:       money.CentsToDisplay(i.PriceCents),
		Status:      i.Status,
		CreatedBy:   i.CreatedBy,
		UpdatedBy:   i.UpdatedBy,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}
