package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, number, customer_id, billing_name, billing_address,
	shipping_name, shipping_address, status, subtotal_cents, discount_percent,
	discount_cents, tax_percent, tax_cents, total_cents, notes, due_date,
	created_by, updated_by, created_at, updated_at`

// Create persiste la cabecera de una factura.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.Number, inv.CustomerID, inv.BillingName, inv.BillingAddress,
		inv.ShippingName, inv.ShippingAddress, inv.Status, inv.SubtotalCents, inv.DiscountPercent,
		inv.DiscountCents, inv.TaxPercent, inv.TaxCents, inv.TotalCents, inv.Notes, inv.DueDate,
		inv.CreatedBy, inv.UpdatedBy, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera de una factura por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	var inv entity.Invoice
	err := r.q.QueryRow(ctx, query, id).Scan(
		&inv.ID, &inv.Number, &inv.CustomerID, &inv.BillingName, &inv.BillingAddress,
		&inv.ShippingName, &inv.ShippingAddress, &inv.Status, &inv.SubtotalCents, &inv.DiscountPercent,
		&inv.DiscountCents, &inv.TaxPercent, &inv.TaxCents, &inv.TotalCents, &inv.Notes, &inv.DueDate,
		&inv.CreatedBy, &inv.UpdatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// List lista facturas (más recientes primero) y el total de filas que casan
// con el filtro.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	n := 0
	if f.Status != "" {
		n++
		where += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, f.Status)
	}
	if f.Search != "" {
		n++
		where += fmt.Sprintf(" AND number ILIKE $%d", n)
		args = append(args, "%"+f.Search+"%")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.Number, &inv.CustomerID, &inv.BillingName, &inv.BillingAddress,
			&inv.ShippingName, &inv.ShippingAddress, &inv.Status, &inv.SubtotalCents, &inv.DiscountPercent,
			&inv.DiscountCents, &inv.TaxPercent, &inv.TaxCents, &inv.TotalCents, &inv.Notes, &inv.DueDate,
			&inv.CreatedBy, &inv.UpdatedBy, &inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, &inv)
	}
	return list, total, rows.Err()
}

// Update actualiza la cabecera completa, totales incluidos.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices SET billing_name = $2, billing_address = $3, shipping_name = $4,
			shipping_address = $5, status = $6, subtotal_cents = $7, discount_percent = $8,
			discount_cents = $9, tax_percent = $10, tax_cents = $11, total_cents = $12,
			notes = $13, due_date = $14, updated_by = $15, updated_at = $16
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.BillingName, inv.BillingAddress, inv.ShippingName,
		inv.ShippingAddress, inv.Status, inv.SubtotalCents, inv.DiscountPercent,
		inv.DiscountCents, inv.TaxPercent, inv.TaxCents, inv.TotalCents,
		inv.Notes, inv.DueDate, inv.UpdatedBy, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// Delete elimina la fila de la factura. Solo compensación de saga.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

// ── Líneas ────────────────────────────────────────────────────────────────────

const invoiceItemColumns = `id, invoice_id, item_id, description, quantity,
	unit_price_cents, total_cents`

// CreateItem persiste una línea de factura.
func (r *InvoiceRepo) CreateItem(ctx context.Context, it *entity.InvoiceItem) error {
	query := `
		INSERT INTO invoice_items (` + invoiceItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.InvoiceID, it.ItemID, it.Description, it.Quantity,
		it.UnitPriceCents, it.TotalCents,
	)
	if err != nil {
		return fmt.Errorf("insert invoice item: %w", err)
	}
	return nil
}

// ListItems lista las líneas de una factura en orden de inserción.
func (r *InvoiceRepo) ListItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceItem, error) {
	query := `SELECT ` + invoiceItemColumns + ` FROM invoice_items
		WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceItem
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.ItemID, &it.Description, &it.Quantity,
			&it.UnitPriceCents, &it.TotalCents); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// DeleteItems borra todas las líneas de la factura (reemplazo de conjunto).
func (r *InvoiceRepo) DeleteItems(ctx context.Context, invoiceID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	return nil
}
