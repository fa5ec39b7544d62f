package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/application/saga"
	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/authz"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
	"github.com/tu-usuario/gestion-pro/pkg/money"
)

// Tamaño de página fijo para listados de facturas.
const invoicePageSize = 10

var hundred = decimal.New(100, 0)

// InvoiceUseCase casos de uso para facturas. Los totales nunca quedan
// desactualizados: toda escritura que toque líneas o porcentajes los
// rederiva de las líneas.
type InvoiceUseCase struct {
	repo         repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	itemRepo     repository.ItemRepository
	eval         *authz.Evaluator
	log          zerolog.Logger
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	repo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	itemRepo repository.ItemRepository,
	eval *authz.Evaluator,
	log zerolog.Logger,
) *InvoiceUseCase {
	return &InvoiceUseCase{repo: repo, customerRepo: customerRepo, itemRepo: itemRepo, eval: eval, log: log}
}

// Create crea una factura con al menos una línea. Cabecera y líneas se
// insertan como saga: si una línea falla, las anteriores y la cabecera se
// compensan en orden inverso.
func (uc *InvoiceUseCase) Create(ctx context.Context, actor *entity.User, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.CustomerID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.DiscountPercent.IsNegative() || in.TaxPercent.IsNegative() ||
		in.DiscountPercent.GreaterThan(hundred) || in.TaxPercent.GreaterThan(hundred) {
		return nil, domain.ErrInvalidInput
	}
	customer, err := uc.customerRepo.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	invoiceID := uuid.New().String()
	lines, err := uc.buildLines(ctx, invoiceID, in.Items)
	if err != nil {
		return nil, err
	}

	invoice := &entity.Invoice{
		ID:              invoiceID,
		Number:          newInvoiceNumber(invoiceID),
		CustomerID:      customer.ID,
		BillingName:     in.BillingName,
		BillingAddress:  in.BillingAddress,
		ShippingName:    in.ShippingName,
		ShippingAddress: in.ShippingAddress,
		Status:          entity.InvoiceStatusIssued,
		DiscountPercent: in.DiscountPercent,
		TaxPercent:      in.TaxPercent,
		Notes:           in.Notes,
		DueDate:         in.DueDate,
		CreatedBy:       actor.ID,
		UpdatedBy:       actor.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	uc.snapshotFromCustomer(ctx, invoice, customer)
	recomputeTotals(invoice, lines)

	sg := saga.New("alta-factura", uc.log)
	if err := uc.repo.Create(ctx, invoice); err != nil {
		return nil, err
	}
	sg.Push("crear-cabecera", func(ctx context.Context) error {
		return uc.repo.Delete(ctx, invoice.ID)
	})
	// Una sola compensación cubre todas las líneas: borra las que hayan
	// alcanzado a insertarse.
	sg.Push("crear-lineas", func(ctx context.Context) error {
		return uc.repo.DeleteItems(ctx, invoice.ID)
	})
	for _, line := range lines {
		if err := uc.repo.CreateItem(ctx, line); err != nil {
			return nil, sg.Compensate(ctx, err)
		}
	}

	invoice.Items = lines
	out := toInvoiceResponse(invoice, true)
	return &out, nil
}

// GetByID devuelve la factura con sus líneas.
func (uc *InvoiceUseCase) GetByID(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	invoice, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.repo.ListItems(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	invoice.Items = items
	out := toInvoiceResponse(invoice, true)
	return &out, nil
}

// List lista facturas, más recientes primero.
func (uc *InvoiceUseCase) List(ctx context.Context, q dto.ListQuery) (*dto.InvoiceListResponse, error) {
	q.Normalize()
	status := strings.ToUpper(q.Status)
	if status != "" && status != entity.InvoiceStatusIssued &&
		status != entity.InvoiceStatusPaid && status != entity.InvoiceStatusCancelled {
		return nil, domain.ErrInvalidInput
	}
	list, total, err := uc.repo.List(ctx, repository.InvoiceFilter{
		Status: status,
		Search: q.Search,
		Limit:  invoicePageSize,
		Offset: (q.Page - 1) * invoicePageSize,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, toInvoiceResponse(inv, false))
	}
	return &dto.InvoiceListResponse{
		Items: items,
		Meta:  dto.NewPageMeta(q.Page, invoicePageSize, total),
	}, nil
}

// Update aplica una actualización parcial tras la fase 2 del evaluador.
// Items no nil reemplaza el conjunto completo de líneas; si cambian líneas o
// porcentajes, los totales se recalculan antes de persistir la cabecera.
func (uc *InvoiceUseCase) Update(ctx context.Context, actor *entity.User, id string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	invoice, err := uc.authorizedFetch(ctx, actor, id, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if in.BillingName != nil {
		invoice.BillingName = *in.BillingName
	}
	if in.BillingAddress != nil {
		invoice.BillingAddress = *in.BillingAddress
	}
	if in.ShippingName != nil {
		invoice.ShippingName = *in.ShippingName
	}
	if in.ShippingAddress != nil {
		invoice.ShippingAddress = *in.ShippingAddress
	}
	if in.Notes != nil {
		invoice.Notes = *in.Notes
	}
	if in.DueDate != nil {
		invoice.DueDate = in.DueDate
	}
	if in.Status != nil {
		s := strings.ToUpper(*in.Status)
		if s != entity.InvoiceStatusIssued && s != entity.InvoiceStatusPaid {
			return nil, domain.ErrInvalidInput
		}
		invoice.Status = s
	}

	dirtyTotals := false
	if in.DiscountPercent != nil {
		if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(hundred) {
			return nil, domain.ErrInvalidInput
		}
		invoice.DiscountPercent = *in.DiscountPercent
		dirtyTotals = true
	}
	if in.TaxPercent != nil {
		if in.TaxPercent.IsNegative() || in.TaxPercent.GreaterThan(hundred) {
			return nil, domain.ErrInvalidInput
		}
		invoice.TaxPercent = *in.TaxPercent
		dirtyTotals = true
	}

	lines, err := uc.repo.ListItems(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	if in.Items != nil {
		if len(*in.Items) == 0 {
			return nil, domain.ErrInvalidInput
		}
		newLines, err := uc.buildLines(ctx, invoice.ID, *in.Items)
		if err != nil {
			return nil, err
		}
		// Reemplazo del conjunto: borrar e insertar. Si una inserción falla,
		// la compensación limpia lo parcial y reinstala las líneas previas.
		sg := saga.New("reemplazo-lineas", uc.log)
		old := lines
		if err := uc.repo.DeleteItems(ctx, invoice.ID); err != nil {
			return nil, err
		}
		sg.Push("borrar-lineas", func(ctx context.Context) error {
			if err := uc.repo.DeleteItems(ctx, invoice.ID); err != nil {
				return err
			}
			for _, l := range old {
				if err := uc.repo.CreateItem(ctx, l); err != nil {
					return err
				}
			}
			return nil
		})
		for _, line := range newLines {
			if err := uc.repo.CreateItem(ctx, line); err != nil {
				return nil, sg.Compensate(ctx, err)
			}
		}
		lines = newLines
		dirtyTotals = true
	}

	if dirtyTotals {
		recomputeTotals(invoice, lines)
	}
	invoice.UpdatedBy = actor.ID
	invoice.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	invoice.Items = lines
	out := toInvoiceResponse(invoice, true)
	return &out, nil
}

// Delete es lógico: la factura pasa a CANCELLED; la fila y sus líneas
// permanecen.
func (uc *InvoiceUseCase) Delete(ctx context.Context, actor *entity.User, id string) error {
	invoice, err := uc.authorizedFetch(ctx, actor, id, authz.ActionDelete)
	if err != nil {
		return err
	}
	invoice.Status = entity.InvoiceStatusCancelled
	invoice.UpdatedBy = actor.ID
	invoice.UpdatedAt = time.Now()
	return uc.repo.Update(ctx, invoice)
}

func (uc *InvoiceUseCase) authorizedFetch(ctx context.Context, actor *entity.User, id string, action authz.Action) (*entity.Invoice, error) {
	invoice, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	if !uc.eval.Can(actor, authz.ResourceInvoices, action, invoice) {
		return nil, domain.ErrForbidden
	}
	return invoice, nil
}

// buildLines valida cada línea contra el catálogo y deriva su total.
// Precio nil toma el precio vigente del item; descripción vacía, su nombre.
func (uc *InvoiceUseCase) buildLines(ctx context.Context, invoiceID string, in []dto.InvoiceItemRequest) ([]*entity.InvoiceItem, error) {
	lines := make([]*entity.InvoiceItem, 0, len(in))
	for _, req := range in {
		if req.ItemID == "" || req.Quantity < 1 {
			return nil, domain.ErrInvalidInput
		}
		item, err := uc.itemRepo.GetByID(ctx, req.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.ErrNotFound
		}
		unitPrice := item.PriceCents
		if req.UnitPriceCents != nil {
			if *req.UnitPriceCents < 0 {
				return nil, domain.ErrInvalidInput
			}
			unitPrice = *req.UnitPriceCents
		}
		description := req.Description
		if description == "" {
			description = item.Name
		}
		lines = append(lines, &entity.InvoiceItem{
			ID:             uuid.New().String(),
			InvoiceID:      invoiceID,
			ItemID:         item.ID,
			Description:    description,
			Quantity:       req.Quantity,
			UnitPriceCents: unitPrice,
			TotalCents:     req.Quantity * unitPrice,
		})
	}
	return lines, nil
}

// snapshotFromCustomer completa los campos de facturación/envío vacíos con los
// datos del cliente y sus direcciones default al momento de emitir.
func (uc *InvoiceUseCase) snapshotFromCustomer(ctx context.Context, invoice *entity.Invoice, customer *entity.Customer) {
	if invoice.BillingName == "" {
		invoice.BillingName = customer.CompanyName
	}
	if invoice.ShippingName == "" {
		invoice.ShippingName = customer.CompanyName
	}
	if invoice.BillingAddress != "" && invoice.ShippingAddress != "" {
		return
	}
	addresses, err := uc.customerRepo.ListAddresses(ctx, customer.ID)
	if err != nil {
		// El snapshot de dirección es opcional; la factura sigue siendo válida
		// sin él.
		uc.log.Warn().Err(err).Str("customer_id", customer.ID).
			Msg("no se pudieron cargar direcciones para el snapshot")
		return
	}
	for _, a := range addresses {
		if !a.IsDefault {
			continue
		}
		switch {
		case a.Type == entity.AddressTypeBilling && invoice.BillingAddress == "":
			invoice.BillingAddress = formatAddress(a)
		case a.Type == entity.AddressTypeShipping && invoice.ShippingAddress == "":
			invoice.ShippingAddress = formatAddress(a)
		}
	}
}

func formatAddress(a *entity.Address) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Line1, a.Line2, a.City, a.State, a.PostalCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// recomputeTotals rederiva todos los totales desde las líneas:
// subtotal = Σ líneas; descuento = subtotal × pct; base = subtotal − descuento;
// impuesto = base × pct; total = base + impuesto.
func recomputeTotals(invoice *entity.Invoice, lines []*entity.InvoiceItem) {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.TotalCents
	}
	discount := money.PercentOf(subtotal, invoice.DiscountPercent)
	taxable := subtotal - discount
	tax := money.PercentOf(taxable, invoice.TaxPercent)

	invoice.SubtotalCents = subtotal
	invoice.DiscountCents = discount
	invoice.TaxCents = tax
	invoice.TotalCents = taxable + tax
}

// newInvoiceNumber deriva el consecutivo legible a partir del ID.
func newInvoiceNumber(id string) string {
	return "INV-" + strings.ToUpper(strings.ReplaceAll(id, "-", ""))[:8]
}

func toInvoiceResponse(inv *entity.Invoice, withItems bool) dto.InvoiceResponse {
	out := dto.InvoiceResponse{
		ID:              inv.ID,
		Number:          inv.Number,
		CustomerID:      inv.CustomerID,
		BillingName:     inv.BillingName,
		BillingAddress:  inv.BillingAddress,
		ShippingName:    inv.ShippingName,
		ShippingAddress: inv.ShippingAddress,
		Status:          inv.Status,
		SubtotalCents:   inv.SubtotalCents,
		DiscountPercent: inv.DiscountPercent,
		DiscountCents:   inv.DiscountCents,
		TaxPercent:      inv.TaxPercent,
		TaxCents:        inv.TaxCents,
		TotalCents:      inv.TotalCents,
		Total:           money.CentsToDisplay(inv.TotalCents),
		Notes:           inv.Notes,
		DueDate:         inv.DueDate,
		CreatedBy:       inv.CreatedBy,
		UpdatedBy:       inv.UpdatedBy,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
	if withItems {
		out.Items = make([]dto.InvoiceItemResponse, 0, len(inv.Items))
		for _, l := range inv.Items {
			out.Items = append(out.Items, dto.InvoiceItemResponse{
				ID:             l.ID,
				ItemID:         l.ItemID,
				Description:    l.Description,
				Quantity:       l.Quantity,
				UnitPriceCents: l.UnitPriceCents,
				TotalCents:     l.TotalCents,
			})
		}
	}
	return out
}
