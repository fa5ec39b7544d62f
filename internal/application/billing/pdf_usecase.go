package billing

import (
	"context"

	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

// PDFUseCase genera la representación PDF de una factura emitida.
type PDFUseCase struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	generator    InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	generator InvoicePDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{invoiceRepo: invoiceRepo, customerRepo: customerRepo, generator: generator}
}

// GenerateInvoicePDF carga factura, líneas y cliente y delega en el generador.
// Devuelve además el nombre de archivo sugerido.
func (uc *PDFUseCase) GenerateInvoicePDF(ctx context.Context, invoiceID string) ([]byte, string, error) {
	invoice, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", err
	}
	if invoice == nil {
		return nil, "", domain.ErrNotFound
	}
	items, err := uc.invoiceRepo.ListItems(ctx, invoice.ID)
	if err != nil {
		return nil, "", err
	}
	invoice.Items = items

	customer, err := uc.customerRepo.GetByID(ctx, invoice.CustomerID)
	if err != nil {
		return nil, "", err
	}
	if customer == nil {
		return nil, "", domain.ErrNotFound
	}

	pdf, err := uc.generator.GenerateInvoicePDF(ctx, invoice, customer)
	if err != nil {
		return nil, "", err
	}
	return pdf, invoice.Number + ".pdf", nil
}
