package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItemRequest línea de factura. Si UnitPriceCents es nil se usa el
// precio vigente del item; Description vacía toma el nombre del item.
type InvoiceItemRequest struct {
	ItemID         string `json:"item_id"`
	Description    string `json:"description"`
	Quantity       int64  `json:"quantity"` // >= 1
	UnitPriceCents *int64 `json:"unit_price_cents"`
}

// CreateInvoiceRequest alta de factura; requiere al menos una línea. Los
// campos de facturación/envío vacíos se toman del cliente (snapshot).
type CreateInvoiceRequest struct {
	CustomerID      string               `json:"customer_id"`
	BillingName     string               `json:"billing_name"`
	BillingAddress  string               `json:"billing_address"`
	ShippingName    string               `json:"shipping_name"`
	ShippingAddress string               `json:"shipping_address"`
	DiscountPercent decimal.Decimal      `json:"discount_percent"`
	TaxPercent      decimal.Decimal      `json:"tax_percent"`
	Notes           string               `json:"notes"`
	DueDate         *time.Time           `json:"due_date"`
	Items           []InvoiceItemRequest `json:"items"`
}

// UpdateInvoiceRequest actualización parcial. Items no nil reemplaza el
// conjunto completo de líneas; totales se recalculan si cambian líneas o
// porcentajes.
type UpdateInvoiceRequest struct {
	BillingName     *string               `json:"billing_name"`
	BillingAddress  *string               `json:"billing_address"`
	ShippingName    *string               `json:"shipping_name"`
	ShippingAddress *string               `json:"shipping_address"`
	DiscountPercent *decimal.Decimal      `json:"discount_percent"`
	TaxPercent      *decimal.Decimal      `json:"tax_percent"`
	Notes           *string               `json:"notes"`
	DueDate         *time.Time            `json:"due_date"`
	Status          *string               `json:"status"` // ISSUED, PAID
	Items           *[]InvoiceItemRequest `json:"items"`
}

// InvoiceItemResponse línea de factura.
type InvoiceItemResponse struct {
	ID             string `json:"id"`
	ItemID         string `json:"item_id"`
	Description    string `json:"description"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	TotalCents     int64  `json:"total_cents"`
}

// InvoiceResponse cabecera de factura con totales en centavos y su forma
// legible.
type InvoiceResponse struct {
	ID              string          `json:"id"`
	Number          string          `json:"number"`
	CustomerID      string          `json:"customer_id"`
	BillingName     string          `json:"billing_name"`
	BillingAddress  string          `json:"billing_address"`
	ShippingName    string          `json:"shipping_name"`
	ShippingAddress string          `json:"shipping_address"`
	Status          string          `json:"status"`
	SubtotalCents   int64           `json:"subtotal_cents"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountCents   int64           `json:"discount_cents"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	TaxCents        int64           `json:"tax_cents"`
	TotalCents      int64           `json:"total_cents"`
	Total           string          `json:"total"`
	Notes           string          `json:"notes"`
	DueDate         *time.Time      `json:"due_date"`
	CreatedBy       string          `json:"created_by"`
	UpdatedBy       string          `json:"updated_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Items []InvoiceItemResponse `json:"items,omitempty"`
}

// InvoiceListResponse página de facturas.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Meta  PageMeta          `json:"meta"`
}
