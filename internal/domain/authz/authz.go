// Package authz implementa el núcleo de autorización: tabla rol→recurso→acciones
// y evaluador en dos fases (estática y con propietario).
package authz

import "github.com/tu-usuario/gestion-pro/internal/domain/entity"

// Action acciones sobre recursos. Las variantes "-own"/"-any" distinguen
// entre mutar solo registros propios o cualquiera.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	// Genéricas: el evaluador las resuelve a la variante -own/-any.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"

	ActionUpdateOwn Action = "update-own"
	ActionUpdateAny Action = "update-any"
	ActionDeleteOwn Action = "delete-own"
	ActionDeleteAny Action = "delete-any"
)

// Resource tipos de recurso protegidos.
type Resource string

const (
	ResourceItems     Resource = "items"
	ResourceCustomers Resource = "customers"
	ResourceInvoices  Resource = "invoices"
	ResourceUsers     Resource = "users"
)

// Owned lo implementa cualquier registro con usuario creador.
type Owned interface {
	OwnerID() string
}

// Table mapea rol → recurso → acciones permitidas. Es un valor inmutable que
// se construye una vez y se inyecta en el evaluador; nunca una global oculta.
// Una entrada ausente equivale a conjunto vacío, jamás a un error.
type Table struct {
	grants map[string]map[Resource]map[Action]struct{}
}

// NewTable construye la tabla a partir de un mapa literal. El mapa de entrada
// se copia; mutaciones posteriores del argumento no afectan la tabla.
func NewTable(grants map[string]map[Resource][]Action) Table {
	t := Table{grants: make(map[string]map[Resource]map[Action]struct{}, len(grants))}
	for role, byResource := range grants {
		t.grants[role] = make(map[Resource]map[Action]struct{}, len(byResource))
		for res, actions := range byResource {
			set := make(map[Action]struct{}, len(actions))
			for _, a := range actions {
				set[a] = struct{}{}
			}
			t.grants[role][res] = set
		}
	}
	return t
}

// Has indica si la acción está concedida de forma directa para (rol, recurso).
func (t Table) Has(role string, res Resource, a Action) bool {
	byResource, ok := t.grants[role]
	if !ok {
		return false // rol desconocido: cero permisos
	}
	set, ok := byResource[res]
	if !ok {
		return false
	}
	_, ok = set[a]
	return ok
}

// DefaultTable devuelve la tabla de permisos de producción:
//
//	admin    → todo sobre todos los recursos (variantes -any)
//	vendedor → CRUD sobre items/customers/invoices, limitado a lo propio
//	auditor  → solo lectura sobre items/customers/invoices
func DefaultTable() Table {
	all := []Action{ActionCreate, ActionRead, ActionUpdateAny, ActionDeleteAny}
	own := []Action{ActionCreate, ActionRead, ActionUpdateOwn, ActionDeleteOwn}
	readOnly := []Action{ActionRead}
	return NewTable(map[string]map[Resource][]Action{
		entity.RoleAdmin: {
			ResourceItems:     all,
			ResourceCustomers: all,
			ResourceInvoices:  all,
			ResourceUsers:     all,
		},
		entity.RoleVendedor: {
			ResourceItems:     own,
			ResourceCustomers: own,
			ResourceInvoices:  own,
			ResourceUsers:     {},
		},
		entity.RoleAuditor: {
			ResourceItems:     readOnly,
			ResourceCustomers: readOnly,
			ResourceInvoices:  readOnly,
			ResourceUsers:     {},
		},
	})
}

// Evaluator decide permitir/denegar según la tabla inyectada. Sin efectos
// secundarios; determinista dado (rol, recurso, acción, target.OwnerID()).
type Evaluator struct {
	table Table
}

// NewEvaluator construye el evaluador con una tabla explícita.
func NewEvaluator(table Table) *Evaluator {
	return &Evaluator{table: table}
}

// CanStatic es la fase 1: decide sin registro objetivo. Para update/delete
// genéricos pasa si cualquiera de las variantes -own/-any está concedida;
// determina si vale la pena siquiera buscar el registro. La decisión final
// sobre registros propios queda en manos de Can con el target ya cargado.
func (e *Evaluator) CanStatic(role string, res Resource, a Action) bool {
	switch a {
	case ActionUpdate:
		return e.table.Has(role, res, ActionUpdateAny) || e.table.Has(role, res, ActionUpdateOwn)
	case ActionDelete:
		return e.table.Has(role, res, ActionDeleteAny) || e.table.Has(role, res, ActionDeleteOwn)
	default:
		return e.table.Has(role, res, a)
	}
}

// Can es la fase 2: decide con el registro objetivo en mano.
//
//  1. Acción concedida de forma directa → permitir.
//  2. Acción genérica update/delete: variante -any concedida → permitir;
//     variante -own concedida y target.OwnerID() == user.ID → permitir.
//  3. En cualquier otro caso → denegar.
//
// Con target nil solo puede honrarse la rama -any: la propiedad no puede
// afirmarse sin el registro.
func (e *Evaluator) Can(user *entity.User, res Resource, a Action, target Owned) bool {
	if user == nil {
		return false
	}
	if e.table.Has(user.Role, res, a) {
		return true
	}
	var anyVariant, ownVariant Action
	switch a {
	case ActionUpdate:
		anyVariant, ownVariant = ActionUpdateAny, ActionUpdateOwn
	case ActionDelete:
		anyVariant, ownVariant = ActionDeleteAny, ActionDeleteOwn
	default:
		return false
	}
	if e.table.Has(user.Role, res, anyVariant) {
		return true
	}
	if target != nil && e.table.Has(user.Role, res, ownVariant) {
		return target.OwnerID() == user.ID
	}
	return false
}
