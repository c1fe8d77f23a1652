package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/presupuestos-api/internal/application/inventory"
	"github.com/jhoicas/presupuestos-api/internal/application/lifecycle"
	"github.com/jhoicas/presupuestos-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/presupuestos-api/internal/interfaces/http"
	"github.com/jhoicas/presupuestos-api/pkg/jwt"
	"github.com/jhoicas/presupuestos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testTenantID  = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "presupuestos-api-test"
	testExpMin    = 60
	testProductID = "producto-1"
)

type testEnv struct {
	app *fiber.App
	uc  *inventory.UseCase
}

// buildTestApp arma la API completa sobre el store en memoria.
func buildTestApp(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	uc := inventory.NewUseCase(store.TxRunner(), store.MovementRepository(), store.StockRepository(), nil, log)
	dispatcher := lifecycle.NewDispatcher(uc, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		InventoryUC: uc,
		Dispatcher:  dispatcher,
		JWTSecret:   testJWTSecret,
	})
	return &testEnv{app: app, uc: uc}
}

func bearerToken(t *testing.T) string {
	t.Helper()
	tok, err := jwt.Generate(testJWTSecret, testUserID, testTenantID, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// doJSON lanza una petición con body JSON y Authorization opcional.
func doJSON(t *testing.T, app *fiber.App, method, path, authHeader string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func seedProduct(t *testing.T, env *testEnv, quantity, minQuantity int64) {
	t.Helper()
	_, err := env.uc.TrackProduct(context.Background(), testProductID, testTenantID, quantity, minQuantity)
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_SinToken_Retorna401(t *testing.T) {
	env := buildTestApp(t)

	resp := doJSON(t, env.app, http.MethodGet, "/api/v1/stock/"+testProductID, "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestAPI_TokenInvalido_Retorna401(t *testing.T) {
	env := buildTestApp(t)

	resp := doJSON(t, env.app, http.MethodGet, "/api/v1/stock/"+testProductID, "Bearer token.invalido.aqui", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_Health_EsPublico(t *testing.T) {
	env := buildTestApp(t)

	resp := doJSON(t, env.app, http.MethodGet, "/health", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_TrackProduct_YConsulta(t *testing.T) {
	env := buildTestApp(t)
	auth := bearerToken(t)

	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/stock", auth, fiber.Map{
		"product_id":   testProductID,
		"quantity":     100,
		"min_quantity": 10,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var stock map[string]any
	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/stock/"+testProductID, auth, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &stock)
	assert.Equal(t, float64(100), stock["quantity"])
	assert.Equal(t, float64(10), stock["min_quantity"])
}

func TestAPI_GetStock_NoExiste_Retorna404(t *testing.T) {
	env := buildTestApp(t)

	resp := doJSON(t, env.app, http.MethodGet, "/api/v1/stock/no-existe", bearerToken(t), nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "NOT_FOUND")
}

func TestAPI_SetMinQuantity(t *testing.T) {
	env := buildTestApp(t)
	seedProduct(t, env, 100, 0)
	auth := bearerToken(t)

	resp := doJSON(t, env.app, http.MethodPut, "/api/v1/stock/"+testProductID+"/min-quantity", auth, fiber.Map{
		"min_quantity": 25,
	})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	var stock map[string]any
	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/stock/"+testProductID, auth, nil)
	decodeBody(t, resp, &stock)
	assert.Equal(t, float64(25), stock["min_quantity"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_Consume_YReplay(t *testing.T) {
	env := buildTestApp(t)
	seedProduct(t, env, 100, 0)
	auth := bearerToken(t)

	payload := fiber.Map{
		"product_id":     testProductID,
		"quantity":       20,
		"reason":         "Aprobación de presupuesto - budget-1",
		"reference_type": "budget",
		"reference_id":   "budget-1",
	}

	var first map[string]any
	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/inventory/consume", auth, payload)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &first)
	require.NotEmpty(t, first["id"])

	// Replay: misma referencia, mismo movimiento, sin segundo descuento.
	var second map[string]any
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/inventory/consume", auth, payload)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &second)
	assert.Equal(t, first["id"], second["id"])

	var stock map[string]any
	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/stock/"+testProductID, auth, nil)
	decodeBody(t, resp, &stock)
	assert.Equal(t, float64(80), stock["quantity"])
}

func TestAPI_Consume_StockInsuficiente_Retorna409(t *testing.T) {
	env := buildTestApp(t)
	seedProduct(t, env, 5, 0)

	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/inventory/consume", bearerToken(t), fiber.Map{
		"product_id":     testProductID,
		"quantity":       20,
		"reference_type": "budget",
		"reference_id":   "budget-1",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INSUFFICIENT_STOCK")
}

func TestAPI_Consume_SinCantidad_Retorna400(t *testing.T) {
	env := buildTestApp(t)
	seedProduct(t, env, 100, 0)

	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/inventory/consume", bearerToken(t), fiber.Map{
		"product_id":     testProductID,
		"reference_type": "budget",
		"reference_id":   "budget-1",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_MovimientosYBalance(t *testing.T) {
	env := buildTestApp(t)
	seedProduct(t, env, 100, 0)
	auth := bearerToken(t)

	doJSON(t, env.app, http.MethodPost, "/api/v1/inventory/consume", auth, fiber.Map{
		"product_id": testProductID, "quantity": 20,
		"reference_type": "budget", "reference_id": "budget-1",
	}).Body.Close()
	doJSON(t, env.app, http.MethodPost, "/api/v1/inventory/return", auth, fiber.Map{
		"product_id": testProductID, "quantity": 5,
		"reference_type": "budget_item", "reference_id": "item-1",
	}).Body.Close()

	var listing map[string]any
	resp := doJSON(t, env.app, http.MethodGet, "/api/v1/inventory/"+testProductID+"/movements", auth, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &listing)
	assert.Equal(t, float64(2), listing["total"])

	var balance map[string]any
	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/inventory/"+testProductID+"/balance", auth, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &balance)
	assert.Equal(t, float64(-15), balance["balance"], "-20 + 5 = -15")
}

// ──────────────────────────────────────────────────────────────────────────────
// Eventos de ciclo de vida
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_StatusChanged_ConsumePorItems(t *testing.T) {
	env := buildTestApp(t)
	seedProduct(t, env, 100, 0)
	auth := bearerToken(t)

	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/lifecycle/status-changed", auth, fiber.Map{
		"kind":        "budget",
		"document_id": "budget-1",
		"old_status":  "PENDING",
		"new_status":  "APPROVED",
		"items": []fiber.Map{
			{"item_id": "item-1", "product_id": testProductID, "quantity": 20},
		},
	})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	var stock map[string]any
	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/stock/"+testProductID, auth, nil)
	decodeBody(t, resp, &stock)
	assert.Equal(t, float64(80), stock["quantity"])
}

func TestAPI_ItemDeleted_DevuelveStock(t *testing.T) {
	env := buildTestApp(t)
	seedProduct(t, env, 85, 0)
	auth := bearerToken(t)

	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/lifecycle/item-deleted", auth, fiber.Map{
		"kind":          "service_item",
		"item_id":       "item-1",
		"parent_id":     "service-1",
		"parent_status": "COMPLETED",
		"product_id":    testProductID,
		"quantity":      15,
	})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	var stock map[string]any
	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/stock/"+testProductID, auth, nil)
	decodeBody(t, resp, &stock)
	assert.Equal(t, float64(100), stock["quantity"])
}
