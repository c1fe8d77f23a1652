package lifecycle_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/presupuestos-api/internal/application/inventory"
	"github.com/jhoicas/presupuestos-api/internal/application/lifecycle"
	"github.com/jhoicas/presupuestos-api/internal/domain"
	"github.com/jhoicas/presupuestos-api/internal/domain/entity"
	"github.com/jhoicas/presupuestos-api/internal/infrastructure/memory"
	"github.com/jhoicas/presupuestos-api/pkg/logger"
)

const (
	productA = "producto-a"
	productB = "producto-b"
	tenantID = "tenant-1"
)

type fixture struct {
	uc         *inventory.UseCase
	dispatcher *lifecycle.Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	uc := inventory.NewUseCase(store.TxRunner(), store.MovementRepository(), store.StockRepository(), nil, log)
	return &fixture{
		uc:         uc,
		dispatcher: lifecycle.NewDispatcher(uc, log),
	}
}

func (f *fixture) seed(t *testing.T, productID string, quantity int64) {
	t.Helper()
	_, err := f.uc.TrackProduct(context.Background(), productID, tenantID, quantity, 0)
	require.NoError(t, err)
}

func (f *fixture) quantity(t *testing.T, productID string) int64 {
	t.Helper()
	stock, err := f.uc.GetStock(context.Background(), productID, tenantID)
	require.NoError(t, err)
	return stock.Quantity
}

func approvedBudget(items ...lifecycle.LineItem) lifecycle.StatusChanged {
	return lifecycle.StatusChanged{
		Kind:       entity.DocumentKindBudget,
		DocumentID: "budget-1",
		TenantID:   tenantID,
		OldStatus:  entity.BudgetStatusPending,
		NewStatus:  entity.BudgetStatusApproved,
		Items:      items,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Presupuestos
// ──────────────────────────────────────────────────────────────────────────────

func TestDispatcher_PresupuestoAprobado_ConsumeItems(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, 100)

	err := f.dispatcher.OnStatusChanged(context.Background(), approvedBudget(
		lifecycle.LineItem{ItemID: "item-1", ProductID: productA, Quantity: 20},
	))
	require.NoError(t, err)

	assert.Equal(t, int64(80), f.quantity(t, productA), "aprobar debe consumir el item")
}

func TestDispatcher_PresupuestoCanceladoTrasAprobar_DevuelveItems(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, 100)

	require.NoError(t, f.dispatcher.OnStatusChanged(context.Background(), approvedBudget(
		lifecycle.LineItem{ItemID: "item-1", ProductID: productA, Quantity: 20},
	)))
	require.Equal(t, int64(80), f.quantity(t, productA))

	err := f.dispatcher.OnStatusChanged(context.Background(), lifecycle.StatusChanged{
		Kind:       entity.DocumentKindBudget,
		DocumentID: "budget-1",
		TenantID:   tenantID,
		OldStatus:  entity.BudgetStatusApproved,
		NewStatus:  entity.BudgetStatusCancelled,
		Items: []lifecycle.LineItem{
			{ItemID: "item-1", ProductID: productA, Quantity: 20},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(100), f.quantity(t, productA), "cancelar tras aprobar debe reponer el stock")
}

func TestDispatcher_ReentregaDelMismoEvento_NoDuplicaConsumo(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, 100)

	ev := approvedBudget(lifecycle.LineItem{ItemID: "item-1", ProductID: productA, Quantity: 20})
	require.NoError(t, f.dispatcher.OnStatusChanged(context.Background(), ev))
	require.NoError(t, f.dispatcher.OnStatusChanged(context.Background(), ev))

	assert.Equal(t, int64(80), f.quantity(t, productA), "la reentrega no debe volver a descontar")

	balance, err := f.uc.LedgerBalance(context.Background(), productA, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(-20), balance, "una sola salida en el libro")
}

func TestDispatcher_TransicionSinEfecto_Ignorada(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, 100)

	// DRAFT -> PENDING no toca inventario.
	err := f.dispatcher.OnStatusChanged(context.Background(), lifecycle.StatusChanged{
		Kind:       entity.DocumentKindBudget,
		DocumentID: "budget-1",
		TenantID:   tenantID,
		OldStatus:  entity.BudgetStatusDraft,
		NewStatus:  entity.BudgetStatusPending,
		Items: []lifecycle.LineItem{
			{ItemID: "item-1", ProductID: productA, Quantity: 20},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), f.quantity(t, productA))
}

func TestDispatcher_StatusSinCambio_NoHaceNada(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, 100)

	ev := approvedBudget(lifecycle.LineItem{ItemID: "item-1", ProductID: productA, Quantity: 20})
	ev.OldStatus = entity.BudgetStatusApproved // mismo estado a ambos lados

	require.NoError(t, f.dispatcher.OnStatusChanged(context.Background(), ev))
	assert.Equal(t, int64(100), f.quantity(t, productA), "sin cambio de status no hay consumo")
}

func TestDispatcher_KindDesconocido_Ignorado(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, 100)

	err := f.dispatcher.OnStatusChanged(context.Background(), lifecycle.StatusChanged{
		Kind:       "purchase_order",
		DocumentID: "po-1",
		TenantID:   tenantID,
		OldStatus:  "OPEN",
		NewStatus:  "CLOSED",
		Items: []lifecycle.LineItem{
			{ItemID: "item-1", ProductID: productA, Quantity: 20},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), f.quantity(t, productA))
}

func TestDispatcher_ItemSinProducto_SeSalta(t *testing.T) {
	// Items de mano de obra o servicios puros no llevan producto.
	f := newFixture(t)
	f.seed(t, productA, 100)

	err := f.dispatcher.OnStatusChanged(context.Background(), approvedBudget(
		lifecycle.LineItem{ItemID: "item-1", ProductID: "", Quantity: 8},
		lifecycle.LineItem{ItemID: "item-2", ProductID: productA, Quantity: 20},
	))
	require.NoError(t, err)
	assert.Equal(t, int64(80), f.quantity(t, productA), "solo el item con producto descuenta")
}

func TestDispatcher_FalloEnUnItem_NoDetieneLosDemas(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, 5)   // insuficiente para 20
	f.seed(t, productB, 100) // suficiente

	err := f.dispatcher.OnStatusChanged(context.Background(), approvedBudget(
		lifecycle.LineItem{ItemID: "item-1", ProductID: productA, Quantity: 20},
		lifecycle.LineItem{ItemID: "item-2", ProductID: productB, Quantity: 10},
	))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "debe reportar el fallo del primer item")

	assert.Equal(t, int64(5), f.quantity(t, productA), "el item fallido no descuenta")
	assert.Equal(t, int64(90), f.quantity(t, productB), "los demás items sí se procesan")
}

// ──────────────────────────────────────────────────────────────────────────────
// Servicios
// ──────────────────────────────────────────────────────────────────────────────

func TestDispatcher_ServicioCompletado_ConsumeItems(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, 100)

	err := f.dispatcher.OnStatusChanged(context.Background(), lifecycle.StatusChanged{
		Kind:       entity.DocumentKindService,
		DocumentID: "service-1",
		TenantID:   tenantID,
		OldStatus:  entity.ServiceStatusPending,
		NewStatus:  entity.ServiceStatusCompleted,
		Items: []lifecycle.LineItem{
			{ItemID: "item-1", ProductID: productA, Quantity: 15},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(85), f.quantity(t, productA))
}

func TestDispatcher_ServicioCanceladoTrasCompletar_DevuelveItems(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, 100)

	base := lifecycle.StatusChanged{
		Kind:       entity.DocumentKindService,
		DocumentID: "service-1",
		TenantID:   tenantID,
		Items: []lifecycle.LineItem{
			{ItemID: "item-1", ProductID: productA, Quantity: 15},
		},
	}

	completed := base
	completed.OldStatus = entity.ServiceStatusPending
	completed.NewStatus = entity.ServiceStatusCompleted
	require.NoError(t, f.dispatcher.OnStatusChanged(context.Background(), completed))

	cancelled := base
	cancelled.OldStatus = entity.ServiceStatusCompleted
	cancelled.NewStatus = entity.ServiceStatusCancelled
	require.NoError(t, f.dispatcher.OnStatusChanged(context.Background(), cancelled))

	assert.Equal(t, int64(100), f.quantity(t, productA))
}

// ──────────────────────────────────────────────────────────────────────────────
// Items eliminados
// ──────────────────────────────────────────────────────────────────────────────

func TestDispatcher_ItemDeServicioCompletadoEliminado_DevuelveStock(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, 100)

	// El servicio completó y consumió 15.
	require.NoError(t, f.dispatcher.OnStatusChanged(context.Background(), lifecycle.StatusChanged{
		Kind:       entity.DocumentKindService,
		DocumentID: "service-1",
		TenantID:   tenantID,
		OldStatus:  entity.ServiceStatusPending,
		NewStatus:  entity.ServiceStatusCompleted,
		Items: []lifecycle.LineItem{
			{ItemID: "item-1", ProductID: productA, Quantity: 15},
		},
	}))
	require.Equal(t, int64(85), f.quantity(t, productA))

	err := f.dispatcher.OnItemDeleted(context.Background(), lifecycle.ItemDeleted{
		Kind:         entity.DocumentKindServiceItem,
		ItemID:       "item-1",
		ParentID:     "service-1",
		ParentStatus: entity.ServiceStatusCompleted,
		TenantID:     tenantID,
		ProductID:    productA,
		Quantity:     15,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), f.quantity(t, productA), "borrar el item repone lo consumido")
}

func TestDispatcher_ItemDePresupuestoNoAprobadoEliminado_SinEfecto(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, 100)

	err := f.dispatcher.OnItemDeleted(context.Background(), lifecycle.ItemDeleted{
		Kind:         entity.DocumentKindBudgetItem,
		ItemID:       "item-1",
		ParentID:     "budget-1",
		ParentStatus: entity.BudgetStatusPending, // nunca consumió
		TenantID:     tenantID,
		ProductID:    productA,
		Quantity:     15,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), f.quantity(t, productA))
}

func TestDispatcher_ItemEliminadoSinProducto_SinEfecto(t *testing.T) {
	f := newFixture(t)

	err := f.dispatcher.OnItemDeleted(context.Background(), lifecycle.ItemDeleted{
		Kind:         entity.DocumentKindBudgetItem,
		ItemID:       "item-1",
		ParentID:     "budget-1",
		ParentStatus: entity.BudgetStatusApproved,
		TenantID:     tenantID,
		Quantity:     15,
	})
	require.NoError(t, err)
}

func TestDispatcher_ItemEliminadoDosVeces_DevuelveUnaSolaVez(t *testing.T) {
	f := newFixture(t)
	f.seed(t, productA, 85)

	ev := lifecycle.ItemDeleted{
		Kind:         entity.DocumentKindBudgetItem,
		ItemID:       "item-1",
		ParentID:     "budget-1",
		ParentStatus: entity.BudgetStatusApproved,
		TenantID:     tenantID,
		ProductID:    productA,
		Quantity:     15,
	}
	require.NoError(t, f.dispatcher.OnItemDeleted(context.Background(), ev))
	require.NoError(t, f.dispatcher.OnItemDeleted(context.Background(), ev))

	assert.Equal(t, int64(100), f.quantity(t, productA), "la segunda entrega no repone de nuevo")
}
