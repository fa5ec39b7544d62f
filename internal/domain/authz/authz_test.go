package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/gestion-pro/internal/domain/authz"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
)

func adminUser() *entity.User {
	return &entity.User{ID: "u-admin", Role: entity.RoleAdmin}
}

func vendedorUser() *entity.User {
	return &entity.User{ID: "u-vendedor", Role: entity.RoleVendedor}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tabla de permisos
// ──────────────────────────────────────────────────────────────────────────────

// Toda combinación (rol, recurso, acción) ausente de la tabla debe denegarse.
func TestTable_CombinacionesAusentesDeniegan(t *testing.T) {
	table := authz.NewTable(map[string]map[authz.Resource][]authz.Action{
		entity.RoleVendedor: {
			authz.ResourceItems: {authz.ActionRead},
		},
	})
	eval := authz.NewEvaluator(table)

	cases := []struct {
		name string
		role string
		res  authz.Resource
		act  authz.Action
	}{
		{"rol desconocido", "fantasma", authz.ResourceItems, authz.ActionRead},
		{"recurso sin entrada", entity.RoleVendedor, authz.ResourceInvoices, authz.ActionRead},
		{"acción no concedida", entity.RoleVendedor, authz.ResourceItems, authz.ActionCreate},
		{"rol vacío", "", authz.ResourceItems, authz.ActionRead},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, eval.CanStatic(tc.role, tc.res, tc.act),
				"una entrada ausente equivale a conjunto vacío, nunca a permitir")
		})
	}
}

// La tabla se copia en la construcción: mutar el mapa de entrada después no
// debe alterar las decisiones.
func TestTable_InmutableTrasConstruccion(t *testing.T) {
	grants := map[string]map[authz.Resource][]authz.Action{
		entity.RoleAuditor: {authz.ResourceItems: {authz.ActionRead}},
	}
	table := authz.NewTable(grants)
	eval := authz.NewEvaluator(table)

	grants[entity.RoleAuditor][authz.ResourceItems] = nil
	grants["colado"] = map[authz.Resource][]authz.Action{
		authz.ResourceUsers: {authz.ActionDeleteAny},
	}

	assert.True(t, eval.CanStatic(entity.RoleAuditor, authz.ResourceItems, authz.ActionRead))
	assert.False(t, eval.CanStatic("colado", authz.ResourceUsers, authz.ActionDeleteAny))
}

// ──────────────────────────────────────────────────────────────────────────────
// Fase 1: CanStatic
// ──────────────────────────────────────────────────────────────────────────────

func TestCanStatic_UpdateGenericoPasaConCualquierVariante(t *testing.T) {
	eval := authz.NewEvaluator(authz.DefaultTable())

	// vendedor solo tiene update-own, pero la fase estática debe dejarlo
	// llegar al fetch; la decisión final es de la fase 2.
	assert.True(t, eval.CanStatic(entity.RoleVendedor, authz.ResourceItems, authz.ActionUpdate))
	assert.True(t, eval.CanStatic(entity.RoleAdmin, authz.ResourceItems, authz.ActionUpdate))
	assert.False(t, eval.CanStatic(entity.RoleAuditor, authz.ResourceItems, authz.ActionUpdate))
	assert.False(t, eval.CanStatic(entity.RoleAuditor, authz.ResourceCustomers, authz.ActionDelete))
}

func TestCanStatic_CreateReadDirectos(t *testing.T) {
	eval := authz.NewEvaluator(authz.DefaultTable())

	assert.True(t, eval.CanStatic(entity.RoleAuditor, authz.ResourceInvoices, authz.ActionRead))
	assert.False(t, eval.CanStatic(entity.RoleAuditor, authz.ResourceInvoices, authz.ActionCreate))
	assert.False(t, eval.CanStatic(entity.RoleVendedor, authz.ResourceUsers, authz.ActionRead))
}

// ──────────────────────────────────────────────────────────────────────────────
// Fase 2: Can con target
// ──────────────────────────────────────────────────────────────────────────────

// Con update-own (y sin update-any) el permiso depende exactamente de que
// target.OwnerID() coincida con el usuario.
func TestCan_UpdateOwnDependeDelPropietario(t *testing.T) {
	eval := authz.NewEvaluator(authz.DefaultTable())
	vendedor := vendedorUser()

	propio := &entity.Item{ID: "i1", CreatedBy: vendedor.ID}
	ajeno := &entity.Item{ID: "i2", CreatedBy: "otro-usuario"}

	assert.True(t, eval.Can(vendedor, authz.ResourceItems, authz.ActionUpdate, propio))
	assert.False(t, eval.Can(vendedor, authz.ResourceItems, authz.ActionUpdate, ajeno))
}

// Escenario de la tabla: admin crea un item; un vendedor con solo update-own
// intenta actualizarlo y debe ser denegado.
func TestCan_VendedorNoActualizaItemDeAdmin(t *testing.T) {
	eval := authz.NewEvaluator(authz.DefaultTable())
	admin := adminUser()
	vendedor := vendedorUser()

	item := &entity.Item{ID: "i1", CreatedBy: admin.ID}

	assert.False(t, eval.Can(vendedor, authz.ResourceItems, authz.ActionUpdate, item),
		"created_by es del admin, no del vendedor")
	assert.True(t, eval.Can(admin, authz.ResourceItems, authz.ActionUpdate, item))
}

// update-any ignora al propietario.
func TestCan_UpdateAnyIgnoraPropietario(t *testing.T) {
	eval := authz.NewEvaluator(authz.DefaultTable())
	admin := adminUser()

	ajeno := &entity.Invoice{ID: "f1", CreatedBy: "cualquiera"}
	assert.True(t, eval.Can(admin, authz.ResourceInvoices, authz.ActionUpdate, ajeno))
	assert.True(t, eval.Can(admin, authz.ResourceInvoices, authz.ActionDelete, ajeno))
}

// Sin target solo puede honrarse la rama -any: la propiedad no se puede
// afirmar sin el registro.
func TestCan_TargetNilSoloHonraVarianteAny(t *testing.T) {
	eval := authz.NewEvaluator(authz.DefaultTable())

	assert.True(t, eval.Can(adminUser(), authz.ResourceItems, authz.ActionUpdate, nil))
	assert.False(t, eval.Can(vendedorUser(), authz.ResourceItems, authz.ActionUpdate, nil),
		"update-own sin target no puede resolverse")
}

func TestCan_UsuarioNilYRolDesconocido(t *testing.T) {
	eval := authz.NewEvaluator(authz.DefaultTable())
	item := &entity.Item{ID: "i1", CreatedBy: "x"}

	assert.False(t, eval.Can(nil, authz.ResourceItems, authz.ActionRead, nil))

	desconocido := &entity.User{ID: "x", Role: "super-root"}
	assert.False(t, eval.Can(desconocido, authz.ResourceItems, authz.ActionRead, nil))
	assert.False(t, eval.Can(desconocido, authz.ResourceItems, authz.ActionUpdate, item),
		"rol fuera del conjunto cerrado equivale a cero permisos")
}

// delete-own se comporta igual que update-own respecto al propietario.
func TestCan_DeleteOwnDependeDelPropietario(t *testing.T) {
	eval := authz.NewEvaluator(authz.DefaultTable())
	vendedor := vendedorUser()

	propio := &entity.Customer{ID: "c1", CreatedBy: vendedor.ID}
	ajeno := &entity.Customer{ID: "c2", CreatedBy: "otro"}

	assert.True(t, eval.Can(vendedor, authz.ResourceCustomers, authz.ActionDelete, propio))
	assert.False(t, eval.Can(vendedor, authz.ResourceCustomers, authz.ActionDelete, ajeno))
}

// Las acciones granulares también se aceptan de forma directa.
func TestCan_AccionGranularDirecta(t *testing.T) {
	table := authz.NewTable(map[string]map[authz.Resource][]authz.Action{
		entity.RoleVendedor: {
			authz.ResourceItems: {authz.ActionUpdateOwn},
		},
	})
	eval := authz.NewEvaluator(table)
	vendedor := vendedorUser()

	assert.True(t, eval.Can(vendedor, authz.ResourceItems, authz.ActionUpdateOwn, nil),
		"membresía directa no exige target")
	assert.False(t, eval.Can(vendedor, authz.ResourceItems, authz.ActionUpdateAny, nil))
}
