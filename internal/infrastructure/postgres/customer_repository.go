package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `id, company_name, contact_name, phone, email, status,
	created_by, updated_by, created_at, updated_at`

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.CompanyName, c.ContactName, c.Phone, c.Email, c.Status,
		c.CreatedBy, c.UpdatedBy, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera de un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	var c entity.Customer
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.CompanyName, &c.ContactName, &c.Phone, &c.Email, &c.Status,
		&c.CreatedBy, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// List lista clientes por actividad reciente: GREATEST(created_at, updated_at)
// descendente.
func (r *CustomerRepo) List(ctx context.Context, f repository.CustomerFilter) ([]*entity.Customer, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	n := 0
	if f.Status != nil {
		n++
		where += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, *f.Status)
	}
	if f.Search != "" {
		n++
		where += fmt.Sprintf(" AND company_name ILIKE $%d", n)
		args = append(args, "%"+f.Search+"%")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM customers`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	query := `SELECT ` + customerColumns + ` FROM customers` + where +
		fmt.Sprintf(` ORDER BY GREATEST(created_at, updated_at) DESC LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		var c entity.Customer
		if err := rows.Scan(&c.ID, &c.CompanyName, &c.ContactName, &c.Phone, &c.Email, &c.Status,
			&c.CreatedBy, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, &c)
	}
	return list, total, rows.Err()
}

// Update actualiza un cliente (incluye el borrado lógico vía status).
func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	query := `
		UPDATE customers SET company_name = $2, contact_name = $3, phone = $4,
			email = $5, status = $6, updated_by = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.CompanyName, c.ContactName, c.Phone, c.Email, c.Status,
		c.UpdatedBy, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// Delete elimina la fila del cliente. Solo compensación de saga.
func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

// ── Direcciones ───────────────────────────────────────────────────────────────

const addressColumns = `id, customer_id, type, line1, line2, city, state,
	postal_code, country, is_default, created_at, updated_at`

// CreateAddress persiste una dirección.
func (r *CustomerRepo) CreateAddress(ctx context.Context, a *entity.Address) error {
	query := `
		INSERT INTO customer_addresses (` + addressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.CustomerID, a.Type, a.Line1, a.Line2, a.City, a.State,
		a.PostalCode, a.Country, a.IsDefault, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

// GetAddressByID obtiene una dirección por ID.
func (r *CustomerRepo) GetAddressByID(ctx context.Context, id string) (*entity.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM customer_addresses WHERE id = $1`
	var a entity.Address
	err := r.q.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.CustomerID, &a.Type, &a.Line1, &a.Line2, &a.City, &a.State,
		&a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get address: %w", err)
	}
	return &a, nil
}

// ListAddresses lista direcciones: por tipo, default primero y luego orden de
// creación.
func (r *CustomerRepo) ListAddresses(ctx context.Context, customerID string) ([]*entity.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM customer_addresses
		WHERE customer_id = $1
		ORDER BY type, is_default DESC, created_at`
	rows, err := r.q.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Address
	for rows.Next() {
		var a entity.Address
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.Type, &a.Line1, &a.Line2, &a.City, &a.State,
			&a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// UpdateAddress actualiza una dirección.
func (r *CustomerRepo) UpdateAddress(ctx context.Context, a *entity.Address) error {
	query := `
		UPDATE customer_addresses SET line1 = $2, line2 = $3, city = $4, state = $5,
			postal_code = $6, country = $7, is_default = $8, updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country,
		a.IsDefault, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}
	return nil
}

// ClearDefaultAddresses desmarca is_default en el par (cliente, tipo).
func (r *CustomerRepo) ClearDefaultAddresses(ctx context.Context, customerID, addressType string) error {
	query := `UPDATE customer_addresses SET is_default = FALSE
		WHERE customer_id = $1 AND type = $2 AND is_default = TRUE`
	if _, err := r.q.Exec(ctx, query, customerID, addressType); err != nil {
		return fmt.Errorf("clear default addresses: %w", err)
	}
	return nil
}

// DeleteAddress elimina una dirección. Solo compensación de saga.
func (r *CustomerRepo) DeleteAddress(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM customer_addresses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	return nil
}

// ── Contactos ─────────────────────────────────────────────────────────────────

const contactColumns = `id, customer_id, name, email, phone, is_primary,
	created_at, updated_at`

// CreateContact persiste un contacto.
func (r *CustomerRepo) CreateContact(ctx context.Context, c *entity.Contact) error {
	query := `
		INSERT INTO customer_contacts (` + contactColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.CustomerID, c.Name, c.Email, c.Phone, c.IsPrimary,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// GetContactByID obtiene un contacto por ID.
func (r *CustomerRepo) GetContactByID(ctx context.Context, id string) (*entity.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM customer_contacts WHERE id = $1`
	var c entity.Contact
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.CustomerID, &c.Name, &c.Email, &c.Phone, &c.IsPrimary,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return &c, nil
}

// ListContacts lista contactos: primario primero, luego orden de creación.
func (r *CustomerRepo) ListContacts(ctx context.Context, customerID string) ([]*entity.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM customer_contacts
		WHERE customer_id = $1
		ORDER BY is_primary DESC, created_at`
	rows, err := r.q.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Contact
	for rows.Next() {
		var c entity.Contact
		if err := rows.Scan(&c.ID, &c.CustomerID, &c.Name, &c.Email, &c.Phone, &c.IsPrimary,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// UpdateContact actualiza un contacto.
func (r *CustomerRepo) UpdateContact(ctx context.Context, c *entity.Contact) error {
	query := `
		UPDATE customer_contacts SET name = $2, email = $3, phone = $4,
			is_primary = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.IsPrimary, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return nil
}

// ClearPrimaryContacts desmarca is_primary en todos los contactos del cliente.
func (r *CustomerRepo) ClearPrimaryContacts(ctx context.Context, customerID string) error {
	query := `UPDATE customer_contacts SET is_primary = FALSE
		WHERE customer_id = $1 AND is_primary = TRUE`
	if _, err := r.q.Exec(ctx, query, customerID); err != nil {
		return fmt.Errorf("clear primary contacts: %w", err)
	}
	return nil
}

// DeleteContact elimina un contacto. Solo compensación de saga.
func (r *CustomerRepo) DeleteContact(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM customer_contacts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}
