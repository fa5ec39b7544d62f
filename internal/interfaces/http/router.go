package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/gestion-pro/internal/application/auth"
	"github.com/tu-usuario/gestion-pro/internal/application/billing"
	"github.com/tu-usuario/gestion-pro/internal/application/usecase"
	"github.com/tu-usuario/gestion-pro/internal/domain/authz"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	ItemUC     *usecase.ItemUseCase
	CustomerUC *billing.CustomerUseCase
	InvoiceUC  *billing.InvoiceUseCase
	PDFUC      *billing.PDFUseCase
	UserRepo   repository.UserRepository
	Evaluator  *authz.Evaluator
	JWTSecret  string
}

// Router registra las rutas de la API. Toda ruta protegida pasa por el
// middleware de auth (token + usuario vivo) y por la fase estática de
// permisos; la fase de propiedad se resuelve en los casos de uso.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.UserRepo))

	protected.Get("/auth/me", authHandler.Me)

	eval := deps.Evaluator
	can := func(res authz.Resource, a authz.Action) fiber.Handler {
		return RequirePermission(eval, res, a)
	}

	// Items (protegido)
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	items.Post("/", can(authz.ResourceItems, authz.ActionCreate), itemHandler.Create)
	items.Get("/", can(authz.ResourceItems, authz.ActionRead), itemHandler.List)
	items.Get("/:id", can(authz.ResourceItems, authz.ActionRead), itemHandler.GetByID)
	items.Put("/:id", can(authz.ResourceItems, authz.ActionUpdate), itemHandler.Update)
	items.Delete("/:id", can(authz.ResourceItems, authz.ActionDelete), itemHandler.Delete)

	// Customers (protegido), con direcciones y contactos anidados. Las
	// colecciones anidadas cuentan como update del cliente.
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", can(authz.ResourceCustomers, authz.ActionCreate), customerHandler.Create)
	customers.Get("/", can(authz.ResourceCustomers, authz.ActionRead), customerHandler.List)
	customers.Get("/:id", can(authz.ResourceCustomers, authz.ActionRead), customerHandler.GetByID)
	customers.Put("/:id", can(authz.ResourceCustomers, authz.ActionUpdate), customerHandler.Update)
	customers.Delete("/:id", can(authz.ResourceCustomers, authz.ActionDelete), customerHandler.Delete)
	customers.Post("/:id/addresses", can(authz.ResourceCustomers, authz.ActionUpdate), customerHandler.AddAddress)
	customers.Put("/:id/addresses/:address_id", can(authz.ResourceCustomers, authz.ActionUpdate), customerHandler.UpdateAddress)
	customers.Post("/:id/contacts", can(authz.ResourceCustomers, authz.ActionUpdate), customerHandler.AddContact)
	customers.Put("/:id/contacts/:contact_id", can(authz.ResourceCustomers, authz.ActionUpdate), customerHandler.UpdateContact)

	// Invoices (protegido)
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.PDFUC)
	invoices.Post("/", can(authz.ResourceInvoices, authz.ActionCreate), invoiceHandler.Create)
	invoices.Get("/", can(authz.ResourceInvoices, authz.ActionRead), invoiceHandler.List)
	invoices.Get("/:id", can(authz.ResourceInvoices, authz.ActionRead), invoiceHandler.GetByID)
	invoices.Get("/:id/pdf", can(authz.ResourceInvoices, authz.ActionRead), invoiceHandler.PDF)
	invoices.Put("/:id", can(authz.ResourceInvoices, authz.ActionUpdate), invoiceHandler.Update)
	invoices.Delete("/:id", can(authz.ResourceInvoices, authz.ActionDelete), invoiceHandler.Delete)
}
