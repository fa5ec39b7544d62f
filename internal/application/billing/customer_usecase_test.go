package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/gestion-pro/internal/application/billing"
	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/authz"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

// fakeCustomerRepo repositorio en memoria con inyección de fallos para
// provocar compensaciones de saga.
type fakeCustomerRepo struct {
	customers map[string]*entity.Customer
	addresses map[string]*entity.Address
	contacts  map[string]*entity.Contact
	addrOrder []string
	contOrder []string

	// failContactOn provoca error en la N-ésima llamada a CreateContact (1-based).
	failContactOn int
	contactCalls  int
	// failAddressOn igual para CreateAddress.
	failAddressOn int
	addressCalls  int
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{
		customers: map[string]*entity.Customer{},
		addresses: map[string]*entity.Address{},
		contacts:  map[string]*entity.Contact{},
	}
}

var errInyectado = errors.New("fallo inyectado")

func (f *fakeCustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	cp := *c
	f.customers[c.ID] = &cp
	return nil
}

func (f *fakeCustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomerRepo) List(_ context.Context, filter repository.CustomerFilter) ([]*entity.Customer, int, error) {
	var out []*entity.Customer
	for _, c := range f.customers {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeCustomerRepo) Update(_ context.Context, c *entity.Customer) error {
	cp := *c
	f.customers[c.ID] = &cp
	return nil
}

func (f *fakeCustomerRepo) Delete(_ context.Context, id string) error {
	delete(f.customers, id)
	return nil
}

func (f *fakeCustomerRepo) CreateAddress(_ context.Context, a *entity.Address) error {
	f.addressCalls++
	if f.failAddressOn > 0 && f.addressCalls == f.failAddressOn {
		return errInyectado
	}
	cp := *a
	f.addresses[a.ID] = &cp
	f.addrOrder = append(f.addrOrder, a.ID)
	return nil
}

func (f *fakeCustomerRepo) GetAddressByID(_ context.Context, id string) (*entity.Address, error) {
	a, ok := f.addresses[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeCustomerRepo) ListAddresses(_ context.Context, customerID string) ([]*entity.Address, error) {
	var out []*entity.Address
	for _, id := range f.addrOrder {
		a, ok := f.addresses[id]
		if !ok || a.CustomerID != customerID {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeCustomerRepo) UpdateAddress(_ context.Context, a *entity.Address) error {
	cp := *a
	f.addresses[a.ID] = &cp
	return nil
}

func (f *fakeCustomerRepo) ClearDefaultAddresses(_ context.Context, customerID, addressType string) error {
	for _, a := range f.addresses {
		if a.CustomerID == customerID && a.Type == addressType {
			a.IsDefault = false
		}
	}
	return nil
}

func (f *fakeCustomerRepo) DeleteAddress(_ context.Context, id string) error {
	delete(f.addresses, id)
	return nil
}

func (f *fakeCustomerRepo) CreateContact(_ context.Context, c *entity.Contact) error {
	f.contactCalls++
	if f.failContactOn > 0 && f.contactCalls == f.failContactOn {
		return errInyectado
	}
	cp := *c
	f.contacts[c.ID] = &cp
	f.contOrder = append(f.contOrder, c.ID)
	return nil
}

func (f *fakeCustomerRepo) GetContactByID(_ context.Context, id string) (*entity.Contact, error) {
	c, ok := f.contacts[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomerRepo) ListContacts(_ context.Context, customerID string) ([]*entity.Contact, error) {
	var out []*entity.Contact
	for _, id := range f.contOrder {
		c, ok := f.contacts[id]
		if !ok || c.CustomerID != customerID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeCustomerRepo) UpdateContact(_ context.Context, c *entity.Contact) error {
	cp := *c
	f.contacts[c.ID] = &cp
	return nil
}

func (f *fakeCustomerRepo) ClearPrimaryContacts(_ context.Context, customerID string) error {
	for _, c := range f.contacts {
		if c.CustomerID == customerID {
			c.IsPrimary = false
		}
	}
	return nil
}

func (f *fakeCustomerRepo) DeleteContact(_ context.Context, id string) error {
	delete(f.contacts, id)
	return nil
}

func testVendedor(id string) *entity.User {
	return &entity.User{ID: id, Role: entity.RoleVendedor, Status: entity.UserStatusActive}
}

func testAdmin(id string) *entity.User {
	return &entity.User{ID: id, Role: entity.RoleAdmin, Status: entity.UserStatusActive}
}

func newCustomerUC(repo *fakeCustomerRepo) *billing.CustomerUseCase {
	return billing.NewCustomerUseCase(repo, authz.NewEvaluator(authz.DefaultTable()), zerolog.Nop())
}

func baseCustomerRequest() dto.CreateCustomerRequest {
	return dto.CreateCustomerRequest{
		CompanyName: "Ferretería El Tornillo",
		ContactName: "María Gómez",
		Phone:       "+57 300 123 4567",
		Email:       "ventas@tornillo.co",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Alta con detalles (saga)
// ──────────────────────────────────────────────────────────────────────────────

// Alta completa: exactamente un contacto primario (el marcado) y exactamente
// una dirección default por tipo.
func TestCustomerCreate_PrimarioYDefaultsUnicos(t *testing.T) {
	repo := newFakeCustomerRepo()
	uc := newCustomerUC(repo)

	in := baseCustomerRequest()
	in.Contacts = []dto.ContactRequest{
		{Name: "Contacto A"},
		{Name: "Contacto B", IsPrimary: true},
		{Name: "Contacto C", IsPrimary: true}, // el segundo marcado pierde
	}
	in.Addresses = []dto.AddressRequest{
		{Type: entity.AddressTypeBilling, Line1: "Calle 1"},
		{Type: entity.AddressTypeBilling, Line1: "Calle 2", IsDefault: true},
		{Type: entity.AddressTypeShipping, Line1: "Carrera 9"}, // única de su tipo
	}

	out, err := uc.Create(context.Background(), testAdmin("a-1"), in)
	require.NoError(t, err)

	primaries := 0
	for _, c := range out.Contacts {
		if c.IsPrimary {
			primaries++
			assert.Equal(t, "Contacto B", c.Name, "el primer contacto marcado debe ser el primario")
		}
	}
	assert.Equal(t, 1, primaries, "debe haber exactamente un contacto primario")

	defaults := map[string]int{}
	for _, a := range out.Addresses {
		if a.IsDefault {
			defaults[a.Type]++
			if a.Type == entity.AddressTypeBilling {
				assert.Equal(t, "Calle 2", a.Line1)
			}
		}
	}
	assert.Equal(t, 1, defaults[entity.AddressTypeBilling])
	assert.Equal(t, 1, defaults[entity.AddressTypeShipping],
		"la única dirección de un tipo queda default aunque no se marque")
}

// Sin contactos marcados, el primero queda primario.
func TestCustomerCreate_SinMarcado_PrimerContactoEsPrimario(t *testing.T) {
	repo := newFakeCustomerRepo()
	uc := newCustomerUC(repo)

	in := baseCustomerRequest()
	in.Contacts = []dto.ContactRequest{{Name: "Primero"}, {Name: "Segundo"}}

	out, err := uc.Create(context.Background(), testAdmin("a-1"), in)
	require.NoError(t, err)

	require.Len(t, out.Contacts, 2)
	for _, c := range out.Contacts {
		assert.Equal(t, c.Name == "Primero", c.IsPrimary)
	}
}

// Si falla un paso intermedio, todo lo anterior se compensa: no queda ni el
// cliente ni los contactos ya insertados. Nunca hay éxito parcial.
func TestCustomerCreate_FalloIntermedioCompensaTodo(t *testing.T) {
	repo := newFakeCustomerRepo()
	repo.failContactOn = 2
	uc := newCustomerUC(repo)

	in := baseCustomerRequest()
	in.Contacts = []dto.ContactRequest{{Name: "A"}, {Name: "B"}, {Name: "C"}}

	_, err := uc.Create(context.Background(), testAdmin("a-1"), in)
	require.Error(t, err)
	assert.ErrorIs(t, err, errInyectado)

	assert.Empty(t, repo.customers, "el cliente debe haberse compensado")
	assert.Empty(t, repo.contacts, "los contactos previos deben haberse compensado")
}

// Fallo al insertar una dirección: se compensan direcciones previas, contactos
// y cliente.
func TestCustomerCreate_FalloEnDireccionCompensaContactosYCliente(t *testing.T) {
	repo := newFakeCustomerRepo()
	repo.failAddressOn = 2
	uc := newCustomerUC(repo)

	in := baseCustomerRequest()
	in.Contacts = []dto.ContactRequest{{Name: "A"}}
	in.Addresses = []dto.AddressRequest{
		{Type: entity.AddressTypeBilling, Line1: "Calle 1"},
		{Type: entity.AddressTypeShipping, Line1: "Calle 2"},
	}

	_, err := uc.Create(context.Background(), testAdmin("a-1"), in)
	require.Error(t, err)

	assert.Empty(t, repo.customers)
	assert.Empty(t, repo.contacts)
	assert.Empty(t, repo.addresses)
}

func TestCustomerCreate_CamposRequeridos(t *testing.T) {
	uc := newCustomerUC(newFakeCustomerRepo())

	in := baseCustomerRequest()
	in.Phone = ""
	_, err := uc.Create(context.Background(), testAdmin("a-1"), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = baseCustomerRequest()
	in.Addresses = []dto.AddressRequest{{Type: "bodega", Line1: "x"}}
	_, err = uc.Create(context.Background(), testAdmin("a-1"), in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "tipo de dirección fuera del conjunto cerrado")
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedad y borrado lógico
// ──────────────────────────────────────────────────────────────────────────────

func TestCustomerUpdate_VendedorNoTocaClienteAjeno(t *testing.T) {
	repo := newFakeCustomerRepo()
	uc := newCustomerUC(repo)

	created, err := uc.Create(context.Background(), testVendedor("owner"), baseCustomerRequest())
	require.NoError(t, err)

	name := "Otro nombre"
	_, err = uc.Update(context.Background(), testVendedor("otro"), created.ID, dto.UpdateCustomerRequest{CompanyName: &name})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := uc.Update(context.Background(), testVendedor("owner"), created.ID, dto.UpdateCustomerRequest{CompanyName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, out.CompanyName)
}

func TestCustomerDelete_EsLogico(t *testing.T) {
	repo := newFakeCustomerRepo()
	uc := newCustomerUC(repo)

	created, err := uc.Create(context.Background(), testVendedor("u-1"), baseCustomerRequest())
	require.NoError(t, err)

	require.NoError(t, uc.Delete(context.Background(), testVendedor("u-1"), created.ID))

	stored := repo.customers[created.ID]
	require.NotNil(t, stored, "el borrado no elimina la fila")
	assert.Equal(t, entity.StatusInactive, stored.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Direcciones y contactos sobre un cliente existente
// ──────────────────────────────────────────────────────────────────────────────

// La primera dirección de su tipo queda default aunque no se pida; agregar una
// nueva default desmarca la vigente del mismo tipo sin tocar el otro tipo.
func TestAddAddress_DefaultPorTipo(t *testing.T) {
	repo := newFakeCustomerRepo()
	uc := newCustomerUC(repo)
	actor := testAdmin("a-1")

	created, err := uc.Create(context.Background(), actor, baseCustomerRequest())
	require.NoError(t, err)

	first, err := uc.AddAddress(context.Background(), actor, created.ID, dto.AddressRequest{
		Type: entity.AddressTypeBilling, Line1: "Calle 1",
	})
	require.NoError(t, err)
	assert.True(t, first.IsDefault, "la primera dirección de su tipo debe quedar default")

	second, err := uc.AddAddress(context.Background(), actor, created.ID, dto.AddressRequest{
		Type: entity.AddressTypeBilling, Line1: "Calle 2", IsDefault: true,
	})
	require.NoError(t, err)
	assert.True(t, second.IsDefault)

	shipping, err := uc.AddAddress(context.Background(), actor, created.ID, dto.AddressRequest{
		Type: entity.AddressTypeShipping, Line1: "Carrera 9",
	})
	require.NoError(t, err)
	assert.True(t, shipping.IsDefault)

	all, err := uc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	defaults := map[string]int{}
	for _, a := range all.Addresses {
		if a.IsDefault {
			defaults[a.Type]++
		}
	}
	assert.Equal(t, 1, defaults[entity.AddressTypeBilling])
	assert.Equal(t, 1, defaults[entity.AddressTypeShipping])
}

// Quitar el default de la dirección default se rechaza con conflicto; marcarla
// de nuevo es idempotente.
func TestUpdateAddress_DesmarcarDefaultEsConflicto(t *testing.T) {
	repo := newFakeCustomerRepo()
	uc := newCustomerUC(repo)
	actor := testAdmin("a-1")

	created, err := uc.Create(context.Background(), actor, baseCustomerRequest())
	require.NoError(t, err)

	addr, err := uc.AddAddress(context.Background(), actor, created.ID, dto.AddressRequest{
		Type: entity.AddressTypeBilling, Line1: "Calle 1",
	})
	require.NoError(t, err)
	require.True(t, addr.IsDefault)

	noDefault := false
	_, err = uc.UpdateAddress(context.Background(), actor, created.ID, addr.ID, dto.UpdateAddressRequest{IsDefault: &noDefault})
	assert.ErrorIs(t, err, domain.ErrConflict)

	yesDefault := true
	out, err := uc.UpdateAddress(context.Background(), actor, created.ID, addr.ID, dto.UpdateAddressRequest{IsDefault: &yesDefault})
	require.NoError(t, err)
	assert.True(t, out.IsDefault, "marcar de nuevo al default vigente es idempotente")
}

// Mismo contrato para contactos: primero auto-primario, nuevo primario
// desmarca al vigente, desmarcar al vigente es conflicto.
func TestContacts_UnicoPrimario(t *testing.T) {
	repo := newFakeCustomerRepo()
	uc := newCustomerUC(repo)
	actor := testAdmin("a-1")

	created, err := uc.Create(context.Background(), actor, baseCustomerRequest())
	require.NoError(t, err)

	first, err := uc.AddContact(context.Background(), actor, created.ID, dto.ContactRequest{Name: "Primero"})
	require.NoError(t, err)
	assert.True(t, first.IsPrimary, "el primer contacto queda primario siempre")

	second, err := uc.AddContact(context.Background(), actor, created.ID, dto.ContactRequest{Name: "Segundo", IsPrimary: true})
	require.NoError(t, err)
	assert.True(t, second.IsPrimary)

	// el anterior quedó desmarcado
	firstStored, err := repo.GetContactByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.False(t, firstStored.IsPrimary)

	noPrimary := false
	_, err = uc.UpdateContact(context.Background(), actor, created.ID, second.ID, dto.UpdateContactRequest{IsPrimary: &noPrimary})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// Una dirección de otro cliente no es visible desde este: not-found.
func TestUpdateAddress_DireccionDeOtroClienteEsNotFound(t *testing.T) {
	repo := newFakeCustomerRepo()
	uc := newCustomerUC(repo)
	actor := testAdmin("a-1")

	c1, err := uc.Create(context.Background(), actor, baseCustomerRequest())
	require.NoError(t, err)
	in2 := baseCustomerRequest()
	in2.CompanyName = "Otra Empresa"
	c2, err := uc.Create(context.Background(), actor, in2)
	require.NoError(t, err)

	addr, err := uc.AddAddress(context.Background(), actor, c1.ID, dto.AddressRequest{
		Type: entity.AddressTypeBilling, Line1: "Calle 1",
	})
	require.NoError(t, err)

	line := "Hackeada"
	_, err = uc.UpdateAddress(context.Background(), actor, c2.ID, addr.ID, dto.UpdateAddressRequest{Line1: &line})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
