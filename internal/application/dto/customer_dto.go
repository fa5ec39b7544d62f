package dto

import "time"

// AddressRequest alta/actualización de dirección.
type AddressRequest struct {
	Type       string `json:"type"` // billing, shipping
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"is_default"`
}

// UpdateAddressRequest actualización parcial de dirección.
type UpdateAddressRequest struct {
	Line1      *string `json:"line1"`
	Line2      *string `json:"line2"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	PostalCode *string `json:"postal_code"`
	Country    *string `json:"country"`
	IsDefault  *bool   `json:"is_default"`
}

// ContactRequest alta de contacto.
type ContactRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IsPrimary bool   `json:"is_primary"`
}

// UpdateContactRequest actualización parcial de contacto.
type UpdateContactRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	IsPrimary *bool   `json:"is_primary"`
}

// CreateCustomerRequest alta de cliente; Contacts y Addresses son opcionales
// y se insertan en la misma operación (saga con compensaciones).
type CreateCustomerRequest struct {
	CompanyName string           `json:"company_name"`
	ContactName string           `json:"contact_name"`
	Phone       string           `json:"phone"`
	Email       string           `json:"email"`
	Contacts    []ContactRequest `json:"contacts"`
	Addresses   []AddressRequest `json:"addresses"`
}

// UpdateCustomerRequest actualización parcial de cliente.
type UpdateCustomerRequest struct {
	CompanyName *string `json:"company_name"`
	ContactName *string `json:"contact_name"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Status      *int    `json:"status"`
}

// AddressResponse representación de una dirección.
type AddressResponse struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Type       string    `json:"type"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
}

// ContactResponse representación de un contacto.
type ContactResponse struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	IsPrimary  bool      `json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
}

// CustomerResponse cabecera de cliente (listados).
type CustomerResponse struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"company_name"`
	ContactName string    `json:"contact_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Status      int       `json:"status"`
	CreatedBy   string    `json:"created_by"`
	UpdatedBy   string    `json:"updated_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CustomerDetailResponse cliente con direcciones y contactos adjuntos.
type CustomerDetailResponse struct {
	CustomerResponse
	Addresses []AddressResponse `json:"addresses"`
	Contacts  []ContactResponse `json:"contacts"`
}

// CustomerListResponse página de clientes.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Meta  PageMeta           `json:"meta"`
}
