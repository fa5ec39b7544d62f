package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de factura. "Borrar" una factura la pasa a CANCELLED; la fila nunca
// se elimina.
const (
	InvoiceStatusIssued    = "ISSUED"
	InvoiceStatusPaid      = "PAID"
	InvoiceStatusCancelled = "CANCELLED"
)

// Invoice representa la cabecera de una factura. Los montos se guardan en
// centavos (int64); los porcentajes de descuento e impuesto como DECIMAL.
type Invoice struct {
	ID         string
	Number     string // consecutivo legible, ej. INV-3F2A9B1C
	CustomerID string

	// Snapshot de facturación/envío al momento de emitir (no sigue al cliente).
	BillingName     string
	BillingAddress  string
	ShippingName    string
	ShippingAddress string

	Status          string
	SubtotalCents   int64
	DiscountPercent decimal.Decimal
	DiscountCents   int64
	TaxPercent      decimal.Decimal
	TaxCents        int64
	TotalCents      int64
	Notes           string
	DueDate         *time.Time

	CreatedBy string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Líneas; solo pobladas por GetByID.
	Items []*InvoiceItem
}

// OwnerID devuelve el usuario creador (para reglas de propiedad "-own").
func (i *Invoice) OwnerID() string { return i.CreatedBy }

// InvoiceItem representa una línea de la factura.
// TotalCents = Quantity × UnitPriceCents, siempre derivado en la escritura.
type InvoiceItem struct {
	ID             string
	InvoiceID      string
	ItemID         string
	Description    string
	Quantity       int64
	UnitPriceCents int64
	TotalCents     int64
}
