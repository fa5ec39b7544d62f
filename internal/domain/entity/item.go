package entity

import "time"

// Categorías válidas de Item.
const (
	ItemCategoryProduct  = 1
	ItemCategoryService  = 2
	ItemCategoryMaterial = 3
)

// Estados de Item y Customer. El valor 0 cubre tanto "desactivado" como
// "borrado" (soft delete): el origen del sistema nunca distinguió ambos casos
// y aquí se conserva esa ambigüedad de forma deliberada.
const (
	StatusInactive = 0
	StatusActive   = 1
)

// Item representa un producto o servicio facturable.
type Item struct {
	ID          string
	Name        string
	Description string
	Category    int   // 1 producto, 2 servicio, 3 material
	PriceCents  int64 // precio en centavos, nunca float
	Status      int   // StatusActive / StatusInactive
	CreatedBy   string
	UpdatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnerID devuelve el usuario creador (para reglas de propiedad "-own").
func (i *Item) OwnerID() string { return i.CreatedBy }

// ValidItemCategory indica si la categoría pertenece al conjunto cerrado.
func ValidItemCategory(c int) bool {
	return c == ItemCategoryProduct || c == ItemCategoryService || c == ItemCategoryMaterial
}
