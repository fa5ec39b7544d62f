package dto

import "time"

// CreateItemRequest alta de item.
type CreateItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    int    `json:"category"`    // 1, 2 o 3
	PriceCents  int64  `json:"price_cents"` // >= 0
}

// UpdateItemRequest actualización parcial: solo los campos presentes se
// aplican; los ausentes conservan su valor.
type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *int    `json:"category"`
	PriceCents  *int64  `json:"price_cents"`
	Status      *int    `json:"status"` // 1 activo / 0 inactivo
}

// ItemResponse representación de un item. Price es la forma legible de
// PriceCents ("12.50"); los cálculos usan siempre los centavos.
type ItemResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    int       `json:"category"`
	PriceCents  int64     `json:"price_cents"`
	Price       string    `json:"price"`
	Status      int       `json:"status"`
	CreatedBy   string    `json:"created_by"`
	UpdatedBy   string    `json:"updated_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemListResponse página de items.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Meta  PageMeta       `json:"meta"`
}
