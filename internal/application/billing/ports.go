package billing

import (
	"context"

	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
)

// InvoicePDFGenerator puerto de generación de la representación gráfica de
// una factura. Lo implementa infrastructure/pdf con Maroto v2.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(
		ctx context.Context,
		invoice *entity.Invoice,
		customer *entity.Customer,
	) ([]byte, error)
}
