package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/application/saga"
	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/authz"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

// Tamaño de página fijo para listados de clientes.
const customerPageSize = 20

// CustomerUseCase casos de uso para clientes y sus sub-registros (direcciones
// y contactos). El alta con detalles corre como saga: sin transacción real,
// cada paso completado apila su compensación.
type CustomerUseCase struct {
	repo repository.CustomerRepository
	eval *authz.Evaluator
	log  zerolog.Logger
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository, eval *authz.Evaluator, log zerolog.Logger) *CustomerUseCase {
	return &CustomerUseCase{repo: repo, eval: eval, log: log}
}

// Create crea un cliente y, opcionalmente, sus contactos y direcciones en la
// misma operación lógica. Si un paso falla, los anteriores se compensan en
// orden inverso y el error compuesto se propaga; nunca hay éxito parcial.
func (uc *CustomerUseCase) Create(ctx context.Context, actor *entity.User, in dto.CreateCustomerRequest) (*dto.CustomerDetailResponse, error) {
	if in.CompanyName == "" || in.Phone == "" || in.ContactName == "" {
		return nil, domain.ErrInvalidInput
	}
	for _, a := range in.Addresses {
		if !entity.ValidAddressType(a.Type) || a.Line1 == "" {
			return nil, domain.ErrInvalidInput
		}
	}
	for _, c := range in.Contacts {
		if c.Name == "" {
			return nil, domain.ErrInvalidInput
		}
	}

	now := time.Now()
	customer := &entity.Customer{
		ID:          uuid.New().String(),
		CompanyName: in.CompanyName,
		ContactName: in.ContactName,
		Phone:       in.Phone,
		Email:       in.Email,
		Status:      entity.StatusActive,
		CreatedBy:   actor.ID,
		UpdatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	sg := saga.New("alta-cliente", uc.log)
	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	sg.Push("crear-cliente", func(ctx context.Context) error {
		return uc.repo.Delete(ctx, customer.ID)
	})

	// Exactamente un primario: el primero marcado, o el primero a secas.
	primaryIdx := 0
	for i, c := range in.Contacts {
		if c.IsPrimary {
			primaryIdx = i
			break
		}
	}
	for i, c := range in.Contacts {
		contact := &entity.Contact{
			ID:         uuid.New().String(),
			CustomerID: customer.ID,
			Name:       c.Name,
			Email:      c.Email,
			Phone:      c.Phone,
			IsPrimary:  i == primaryIdx,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := uc.repo.CreateContact(ctx, contact); err != nil {
			return nil, sg.Compensate(ctx, err)
		}
		id := contact.ID
		sg.Push("crear-contacto", func(ctx context.Context) error {
			return uc.repo.DeleteContact(ctx, id)
		})
	}

	// Exactamente una default por (cliente, tipo): la primera marcada, o la
	// primera del tipo a secas.
	defaultByType := map[string]int{}
	for i, a := range in.Addresses {
		if a.IsDefault {
			if _, marked := defaultByType[a.Type]; !marked {
				defaultByType[a.Type] = i
			}
		}
	}
	for i, a := range in.Addresses {
		if _, seen := defaultByType[a.Type]; !seen {
			defaultByType[a.Type] = i
		}
	}
	for i, a := range in.Addresses {
		address := &entity.Address{
			ID:         uuid.New().String(),
			CustomerID: customer.ID,
			Type:       a.Type,
			Line1:      a.Line1,
			Line2:      a.Line2,
			City:       a.City,
			State:      a.State,
			PostalCode: a.PostalCode,
			Country:    a.Country,
			IsDefault:  defaultByType[a.Type] == i,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := uc.repo.CreateAddress(ctx, address); err != nil {
			return nil, sg.Compensate(ctx, err)
		}
		id := address.ID
		sg.Push("crear-direccion", func(ctx context.Context) error {
			return uc.repo.DeleteAddress(ctx, id)
		})
	}

	return uc.detail(ctx, customer)
}

// GetByID devuelve el cliente con sus direcciones (tipo, default primero,
// orden de creación) y contactos (primario primero, orden de creación).
func (uc *CustomerUseCase) GetByID(ctx context.Context, id string) (*dto.CustomerDetailResponse, error) {
	customer, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	return uc.detail(ctx, customer)
}

// List lista clientes ordenados por actividad reciente
// (GREATEST(created_at, updated_at) DESC).
func (uc *CustomerUseCase) List(ctx context.Context, q dto.ListQuery, status *int) (*dto.CustomerListResponse, error) {
	q.Normalize()
	list, total, err := uc.repo.List(ctx, repository.CustomerFilter{
		Status: status,
		Search: q.Search,
		Limit:  customerPageSize,
		Offset: (q.Page - 1) * customerPageSize,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		items = append(items, toCustomerResponse(c))
	}
	return &dto.CustomerListResponse{
		Items: items,
		Meta:  dto.NewPageMeta(q.Page, customerPageSize, total),
	}, nil
}

// Update aplica una actualización parcial tras la fase 2 del evaluador.
func (uc *CustomerUseCase) Update(ctx context.Context, actor *entity.User, id string, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	customer, err := uc.authorizedFetch(ctx, actor, id, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if in.CompanyName != nil {
		customer.CompanyName = *in.CompanyName
	}
	if in.ContactName != nil {
		customer.ContactName = *in.ContactName
	}
	if in.Phone != nil {
		customer.Phone = *in.Phone
	}
	if in.Email != nil {
		customer.Email = *in.Email
	}
	if in.Status != nil {
		if *in.Status != entity.StatusActive && *in.Status != entity.StatusInactive {
			return nil, domain.ErrInvalidInput
		}
		customer.Status = *in.Status
	}
	customer.UpdatedBy = actor.ID
	customer.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	out := toCustomerResponse(customer)
	return &out, nil
}

// Delete es lógico: status=0 y estampa de auditoría; la fila permanece.
func (uc *CustomerUseCase) Delete(ctx context.Context, actor *entity.User, id string) error {
	customer, err := uc.authorizedFetch(ctx, actor, id, authz.ActionDelete)
	if err != nil {
		return err
	}
	customer.Status = entity.StatusInactive
	customer.UpdatedBy = actor.ID
	customer.UpdatedAt = time.Now()
	return uc.repo.Update(ctx, customer)
}

// AddAddress agrega una dirección. Si viene marcada default, primero se
// desmarcan las competidoras del mismo (cliente, tipo) y después se inserta:
// ese orden evita un estado transitorio con dos defaults. Si es la primera
// dirección de su tipo, queda default aunque no se pida.
func (uc *CustomerUseCase) AddAddress(ctx context.Context, actor *entity.User, customerID string, in dto.AddressRequest) (*dto.AddressResponse, error) {
	if !entity.ValidAddressType(in.Type) || in.Line1 == "" {
		return nil, domain.ErrInvalidInput
	}
	customer, err := uc.authorizedFetch(ctx, actor, customerID, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}

	isDefault := in.IsDefault
	if !isDefault {
		existing, err := uc.repo.ListAddresses(ctx, customer.ID)
		if err != nil {
			return nil, err
		}
		hasType := false
		for _, a := range existing {
			if a.Type == in.Type {
				hasType = true
				break
			}
		}
		isDefault = !hasType
	}
	if isDefault {
		if err := uc.repo.ClearDefaultAddresses(ctx, customer.ID, in.Type); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	address := &entity.Address{
		ID:         uuid.New().String(),
		CustomerID: customer.ID,
		Type:       in.Type,
		Line1:      in.Line1,
		Line2:      in.Line2,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
		IsDefault:  isDefault,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.CreateAddress(ctx, address); err != nil {
		return nil, err
	}
	out := toAddressResponse(address)
	return &out, nil
}

// UpdateAddress actualización parcial de una dirección. is_default=true
// desmarca antes las demás del mismo tipo (idempotente sobre la ya default);
// quitar el default a la dirección default se rechaza: dejaría el par
// (cliente, tipo) sin default.
func (uc *CustomerUseCase) UpdateAddress(ctx context.Context, actor *entity.User, customerID, addressID string, in dto.UpdateAddressRequest) (*dto.AddressResponse, error) {
	customer, err := uc.authorizedFetch(ctx, actor, customerID, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}
	address, err := uc.repo.GetAddressByID(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if address == nil || address.CustomerID != customer.ID {
		return nil, domain.ErrNotFound
	}
	if in.Line1 != nil {
		if *in.Line1 == "" {
			return nil, domain.ErrInvalidInput
		}
		address.Line1 = *in.Line1
	}
	if in.Line2 != nil {
		address.Line2 = *in.Line2
	}
	if in.City != nil {
		address.City = *in.City
	}
	if in.State != nil {
		address.State = *in.State
	}
	if in.PostalCode != nil {
		address.PostalCode = *in.PostalCode
	}
	if in.Country != nil {
		address.Country = *in.Country
	}
	if in.IsDefault != nil {
		if !*in.IsDefault && address.IsDefault {
			return nil, domain.ErrConflict
		}
		if *in.IsDefault {
			if err := uc.repo.ClearDefaultAddresses(ctx, customer.ID, address.Type); err != nil {
				return nil, err
			}
			address.IsDefault = true
		}
	}
	address.UpdatedAt = time.Now()
	if err := uc.repo.UpdateAddress(ctx, address); err != nil {
		return nil, err
	}
	out := toAddressResponse(address)
	return &out, nil
}

// AddContact agrega un contacto. Mismo contrato de orden que AddAddress:
// desmarcar el primario vigente ANTES de insertar el nuevo. El primer contacto
// del cliente queda primario siempre.
func (uc *CustomerUseCase) AddContact(ctx context.Context, actor *entity.User, customerID string, in dto.ContactRequest) (*dto.ContactResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	customer, err := uc.authorizedFetch(ctx, actor, customerID, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}

	isPrimary := in.IsPrimary
	if !isPrimary {
		existing, err := uc.repo.ListContacts(ctx, customer.ID)
		if err != nil {
			return nil, err
		}
		isPrimary = len(existing) == 0
	}
	if isPrimary {
		if err := uc.repo.ClearPrimaryContacts(ctx, customer.ID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	contact := &entity.Contact{
		ID:         uuid.New().String(),
		CustomerID: customer.ID,
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		IsPrimary:  isPrimary,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.CreateContact(ctx, contact); err != nil {
		return nil, err
	}
	out := toContactResponse(contact)
	return &out, nil
}

// UpdateContact actualización parcial de un contacto. Marcar primario al que
// ya lo es vuelve a desmarcar-y-marcar: el resultado sigue siendo exactamente
// un primario. Quitarle el primario al vigente se rechaza.
func (uc *CustomerUseCase) UpdateContact(ctx context.Context, actor *entity.User, customerID, contactID string, in dto.UpdateContactRequest) (*dto.ContactResponse, error) {
	customer, err := uc.authorizedFetch(ctx, actor, customerID, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}
	contact, err := uc.repo.GetContactByID(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if contact == nil || contact.CustomerID != customer.ID {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, domain.ErrInvalidInput
		}
		contact.Name = *in.Name
	}
	if in.Email != nil {
		contact.Email = *in.Email
	}
	if in.Phone != nil {
		contact.Phone = *in.Phone
	}
	if in.IsPrimary != nil {
		if !*in.IsPrimary && contact.IsPrimary {
			return nil, domain.ErrConflict
		}
		if *in.IsPrimary {
			if err := uc.repo.ClearPrimaryContacts(ctx, customer.ID); err != nil {
				return nil, err
			}
			contact.IsPrimary = true
		}
	}
	contact.UpdatedAt = time.Now()
	if err := uc.repo.UpdateContact(ctx, contact); err != nil {
		return nil, err
	}
	out := toContactResponse(contact)
	return &out, nil
}

// authorizedFetch carga el cliente y corre la fase 2 del evaluador: not-found
// antes que forbidden, porque sin el registro la propiedad no se puede
// evaluar.
func (uc *CustomerUseCase) authorizedFetch(ctx context.Context, actor *entity.User, id string, action authz.Action) (*entity.Customer, error) {
	customer, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	if !uc.eval.Can(actor, authz.ResourceCustomers, action, customer) {
		return nil, domain.ErrForbidden
	}
	return customer, nil
}

func (uc *CustomerUseCase) detail(ctx context.Context, customer *entity.Customer) (*dto.CustomerDetailResponse, error) {
	addresses, err := uc.repo.ListAddresses(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	contacts, err := uc.repo.ListContacts(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	out := &dto.CustomerDetailResponse{
		CustomerResponse: toCustomerResponse(customer),
		Addresses:        make([]dto.AddressResponse, 0, len(addresses)),
		Contacts:         make([]dto.ContactResponse, 0, len(contacts)),
	}
	for _, a := range addresses {
		out.Addresses = append(out.Addresses, toAddressResponse(a))
	}
	for _, c := range contacts {
		out.Contacts = append(out.Contacts, toContactResponse(c))
	}
	return out, nil
}

func toCustomerResponse(c *entity.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:          c.ID,
		CompanyName: c.CompanyName,
		ContactName: c.ContactName,
		Phone:       c.Phone,
		Email:       c.Email,
		Status:      c.Status,
		CreatedBy:   c.CreatedBy,
		UpdatedBy:   c.UpdatedBy,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toAddressResponse(a *entity.Address) dto.AddressResponse {
	return dto.AddressResponse{
		ID:         a.ID,
		CustomerID: a.CustomerID,
		Type:       a.Type,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		IsDefault:  a.IsDefault,
		CreatedAt:  a.CreatedAt,
	}
}

func toContactResponse(c *entity.Contact) dto.ContactResponse {
	return dto.ContactResponse{
		ID:         c.ID,
		CustomerID: c.CustomerID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		IsPrimary:  c.IsPrimary,
		CreatedAt:  c.CreatedAt,
	}
}
