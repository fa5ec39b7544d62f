package entity

import "time"

// Tipos de dirección.
const (
	AddressTypeBilling  = "billing"
	AddressTypeShipping = "shipping"
)

// Customer representa un cliente de la empresa.
type Customer struct {
	ID          string
	CompanyName string
	ContactName string
	Email       string
	Phone       string
	Status      int // StatusActive / StatusInactive
	CreatedBy   string
	UpdatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Colecciones anidadas; solo pobladas por GetByID.
	Addresses []*Address
	Contacts  []*Contact
}

// OwnerID devuelve el usuario creador (para reglas de propiedad "-own").
func (c *Customer) OwnerID() string { return c.CreatedBy }

// Address dirección de un cliente. Invariante: exactamente una dirección con
// IsDefault=true por (cliente, tipo); la ruta de escritura desmarca las demás
// antes de marcar la nueva.
type Address struct {
	ID         string
	CustomerID string
	Type       string // billing, shipping
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
	IsDefault  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Contact persona de contacto de un cliente. Invariante: exactamente un
// contacto con IsPrimary=true por cliente.
type Contact struct {
	ID         string
	CustomerID string
	Name       string
	Email      string
	Phone      string
	IsPrimary  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidAddressType indica si el tipo pertenece al conjunto cerrado.
func ValidAddressType(t string) bool {
	return t == AddressTypeBilling || t == AddressTypeShipping
}
