package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-backoffice/internal/application/dto"
	"github.com/jhoicas/pos-backoffice/internal/application/inventory"
	"github.com/jhoicas/pos-backoffice/internal/application/transfer"
	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
	"github.com/jhoicas/pos-backoffice/internal/infrastructure/memory"
	"github.com/jhoicas/pos-backoffice/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/pos-backoffice/internal/interfaces/http"
	"github.com/jhoicas/pos-backoffice/pkg/metrics"
)

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
	repos memory.Repositories
}

// newAPI levanta el router completo sobre el store en memoria con dos sucursales y una bodega.
func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	store.SeedLocation(entity.LocationDetail{Location: entity.Branch{ID: "b1"}, Name: "Centro", Address: "Calle 1 # 2-3"})
	store.SeedLocation(entity.LocationDetail{Location: entity.Branch{ID: "b2"}, Name: "Norte"})
	store.SeedLocation(entity.LocationDetail{Location: entity.Warehouse{ID: "w1"}, Name: "Bodega Principal"})
	repos := store.Repositories()

	reg := prometheus.NewRegistry()
	m := metrics.NewTransferMetrics(reg)
	transferUC := transfer.NewTransferUseCase(
		store,
		transfer.NewLedgerManager(repos.Ledgers, repos.Invoices),
		transfer.NewInvoiceBuilder(repos.Locations, transfer.NewNumberGenerator(nil)),
		transfer.NewMovementCoordinator(m),
		repos.Invoices,
		repos.Locations,
		pdf.NewTransferSlipGenerator(),
		nil,
		m,
	)
	stockUC := inventory.NewStockUseCase(store, repos.Records, repos.Movements, repos.Locations, nil)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		TransferUC:  transferUC,
		StockUC:     stockUC,
		JWTSecret:   testJWTSecret,
		JWTIssuer:   testIssuer,
		ServiceName: "pos-backoffice",
		Gatherer:    reg,
	})
	return &apiFixture{app: app, store: store, repos: repos}
}

func (f *apiFixture) seed(t *testing.T, productID string, loc entity.Location, qty int64) {
	t.Helper()
	require.NoError(t, f.repos.Records.Upsert(context.Background(), &entity.InventoryRecord{ProductID: productID, Location: loc, Quantity: qty, UpdatedAt: time.Now()}))
}

func (f *apiFixture) qty(t *testing.T, productID string, loc entity.Location) int64 {
	t.Helper()
	rec, err := f.repos.Records.Get(context.Background(), productID, loc)
	require.NoError(t, err)
	if rec == nil {
		return 0
	}
	return rec.Quantity
}

func (f *apiFixture) do(t *testing.T, method, path, role string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func branchToBranch(items ...dto.TransferItemRequest) dto.TransferRequest {
	return dto.TransferRequest{
		Items:       items,
		Source:      dto.LocationRef{Kind: "branch", ID: "b1"},
		Destination: dto.LocationRef{Kind: "branch", ID: "b2"},
	}
}

func TestHealthYMetrics(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	f.seed(t, "p1", entity.Branch{ID: "b1"}, 5)
	resp = f.do(t, http.MethodPost, "/api/transfers", "admin", branchToBranch(dto.TransferItemRequest{ProductID: "p1", Quantity: 1}))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/metrics", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), `inventory_transfers_total{outcome="completed"} 1`)
}

func TestCreateTransfer_SucursalASucursal(t *testing.T) {
	f := newAPI(t)
	f.seed(t, "p1", entity.Branch{ID: "b1"}, 10)
	f.seed(t, "p2", entity.Branch{ID: "b1"}, 4)

	resp := f.do(t, http.MethodPost, "/api/transfers", "vendedor", branchToBranch(
		dto.TransferItemRequest{ProductID: "p1", Quantity: 3},
		dto.TransferItemRequest{ProductID: "p2", Quantity: 4},
	))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[dto.TransferResponse](t, resp)

	assert.Equal(t, "COMPLETED", out.State)
	assert.Nil(t, out.AbortedAt)
	assert.NotEmpty(t, out.InvoiceID)
	assert.True(t, strings.HasPrefix(out.InvoiceNumber, "TRF-"))
	assert.NotEmpty(t, out.LedgerID)
	require.Len(t, out.Items, 2)
	assert.True(t, out.Items[0].Applied)
	assert.True(t, out.Items[1].Applied)

	assert.Equal(t, int64(7), f.qty(t, "p1", entity.Branch{ID: "b1"}))
	assert.Equal(t, int64(3), f.qty(t, "p1", entity.Branch{ID: "b2"}))
	assert.Equal(t, int64(0), f.qty(t, "p2", entity.Branch{ID: "b1"}))
	assert.Equal(t, int64(4), f.qty(t, "p2", entity.Branch{ID: "b2"}))

	// detalle
	resp = f.do(t, http.MethodGet, "/api/transfers/"+out.InvoiceID, "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[dto.TransferDetailResponse](t, resp)
	assert.Equal(t, out.InvoiceNumber, detail.Number)
	assert.Equal(t, "[TRANSFER] Centro → Norte", detail.Notes)
	assert.Equal(t, "0.00", detail.GrandTotal)
	assert.Equal(t, 2, detail.ItemCount)
	assert.Equal(t, "Centro", detail.Source.Name)
	assert.Equal(t, "branch", detail.Destination.Kind)
	require.Len(t, detail.Lines, 2)
	assert.Equal(t, "p1", detail.Lines[0].ProductID)

	// rastro: salida + entrada por ítem
	resp = f.do(t, http.MethodGet, "/api/transfers/"+out.InvoiceID+"/movements", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	movs := decode[[]dto.MovementResponse](t, resp)
	require.Len(t, movs, 4)
	assert.Equal(t, "TRANSFER_OUT", movs[0].Type)
	assert.Equal(t, int64(-3), movs[0].Quantity)
	assert.Equal(t, "TRANSFER_IN", movs[1].Type)
	assert.Equal(t, int64(3), movs[1].After)
}

func TestCreateTransfer_AbortaConStockInsuficiente(t *testing.T) {
	f := newAPI(t)
	f.seed(t, "p1", entity.Branch{ID: "b1"}, 10)
	f.seed(t, "p2", entity.Branch{ID: "b1"}, 1)

	resp := f.do(t, http.MethodPost, "/api/transfers", "admin", branchToBranch(
		dto.TransferItemRequest{ProductID: "p1", Quantity: 2},
		dto.TransferItemRequest{ProductID: "p2", Quantity: 5},
	))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	out := decode[dto.TransferResponse](t, resp)

	assert.Equal(t, "ABORTED", out.State)
	require.NotNil(t, out.AbortedAt)
	assert.Equal(t, 1, *out.AbortedAt)
	assert.True(t, out.Items[0].Applied)
	assert.False(t, out.Items[1].Applied)
	assert.Equal(t, "atomic-transfer", out.Items[1].Stage)
	assert.Contains(t, out.Message, "p2")

	// el primer ítem queda aplicado, el segundo intacto
	assert.Equal(t, int64(8), f.qty(t, "p1", entity.Branch{ID: "b1"}))
	assert.Equal(t, int64(2), f.qty(t, "p1", entity.Branch{ID: "b2"}))
	assert.Equal(t, int64(1), f.qty(t, "p2", entity.Branch{ID: "b1"}))

	// con stock repuesto se reanuda el mismo carrito
	f.seed(t, "p2", entity.Branch{ID: "b1"}, 5)
	cart := dto.TransferResumeRequest{Items: []dto.TransferItemRequest{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 5},
	}}
	resp = f.do(t, http.MethodPost, "/api/transfers/"+out.InvoiceID+"/resume", "bodeguero", cart)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resumed := decode[dto.TransferResponse](t, resp)
	assert.Equal(t, "COMPLETED", resumed.State)
	assert.Equal(t, out.InvoiceID, resumed.InvoiceID)
	assert.Equal(t, int64(8), f.qty(t, "p1", entity.Branch{ID: "b1"}))
	assert.Equal(t, int64(5), f.qty(t, "p2", entity.Branch{ID: "b2"}))

	// completo: no se reabre ni con un carrito más largo
	cart.Items = append(cart.Items, dto.TransferItemRequest{ProductID: "p1", Quantity: 1})
	resp = f.do(t, http.MethodPost, "/api/transfers/"+out.InvoiceID+"/resume", "bodeguero", cart)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", decode[dto.ErrorResponse](t, resp).Code)
	assert.Equal(t, int64(8), f.qty(t, "p1", entity.Branch{ID: "b1"}))

	resp = f.do(t, http.MethodPost, "/api/transfers/"+out.InvoiceID+"/resume", "bodeguero", dto.TransferResumeRequest{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateTransfer_Validacion(t *testing.T) {
	tests := []struct {
		name string
		body any
		code string
	}{
		{"json inválido", `{"items":`, "INVALID_BODY"},
		{"carrito vacío", branchToBranch(), "VALIDATION"},
		{"cantidad cero", branchToBranch(dto.TransferItemRequest{ProductID: "p1", Quantity: 0}), "VALIDATION"},
		{"kind desconocido", dto.TransferRequest{
			Items:       []dto.TransferItemRequest{{ProductID: "p1", Quantity: 1}},
			Source:      dto.LocationRef{Kind: "tienda", ID: "b1"},
			Destination: dto.LocationRef{Kind: "branch", ID: "b2"},
		}, "VALIDATION"},
		{"misma ubicación", dto.TransferRequest{
			Items:       []dto.TransferItemRequest{{ProductID: "p1", Quantity: 1}},
			Source:      dto.LocationRef{Kind: "branch", ID: "b1"},
			Destination: dto.LocationRef{Kind: "branch", ID: "b1"},
		}, "VALIDATION"},
		{"producto repetido", branchToBranch(
			dto.TransferItemRequest{ProductID: "p1", Quantity: 1},
			dto.TransferItemRequest{ProductID: "p1", Quantity: 2},
		), "VALIDATION"},
		{"ubicación inexistente", dto.TransferRequest{
			Items:       []dto.TransferItemRequest{{ProductID: "p1", Quantity: 1}},
			Source:      dto.LocationRef{Kind: "branch", ID: "b1"},
			Destination: dto.LocationRef{Kind: "warehouse", ID: "w-nada"},
		}, "VALIDATION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPI(t)
			resp := f.do(t, http.MethodPost, "/api/transfers", "admin", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			out := decode[dto.ErrorResponse](t, resp)
			assert.Equal(t, tt.code, out.Code)

			invoices, lines, _, movements := f.store.Counts()
			assert.Zero(t, invoices)
			assert.Zero(t, lines)
			assert.Zero(t, movements)
		})
	}
}

func TestCreateTransfer_SinToken(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodPost, "/api/transfers", "", branchToBranch(dto.TransferItemRequest{ProductID: "p1", Quantity: 1}))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetTransfer_NoEncontrado(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodGet, "/api/transfers/no-existe", "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	out := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "NOT_FOUND", out.Code)
}

func TestTransferSlip_PDF(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodPost, "/api/transfers", "admin", dto.TransferRequest{
		Items:       []dto.TransferItemRequest{{ProductID: "p1", Quantity: 6}},
		Source:      dto.LocationRef{Kind: "warehouse", ID: "w1"},
		Destination: dto.LocationRef{Kind: "branch", ID: "b1"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[dto.TransferResponse](t, resp)
	assert.Equal(t, int64(6), f.qty(t, "p1", entity.Branch{ID: "b1"}))

	resp = f.do(t, http.MethodGet, "/api/transfers/"+out.InvoiceID+"/slip", "vendedor", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), out.InvoiceNumber+".pdf")
	raw, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestLinkOrphans_SoloAdmin(t *testing.T) {
	f := newAPI(t)
	ctx := context.Background()
	require.NoError(t, f.repos.Invoices.Create(ctx, &entity.TransferInvoice{
		ID:          "huerfano-1",
		Number:      "TRF-LEGACY-1",
		Source:      entity.Warehouse{ID: "w1"},
		Destination: entity.Branch{ID: "b1"},
		Notes:       entity.TransferNotes("Bodega Principal", "Centro"),
		CreatedAt:   time.Now(),
	}))

	resp := f.do(t, http.MethodPost, "/api/transfers/ledger/link-orphans", "bodeguero", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/transfers/ledger/link-orphans", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.LinkOrphansResponse](t, resp)
	assert.Equal(t, int64(1), out.Linked)

	resp = f.do(t, http.MethodPost, "/api/transfers/ledger/link-orphans", "admin", nil)
	again := decode[dto.LinkOrphansResponse](t, resp)
	assert.Zero(t, again.Linked)
}

func TestInventory_ListarYAjustar(t *testing.T) {
	f := newAPI(t)
	f.seed(t, "p2", entity.Branch{ID: "b1"}, 3)

	resp := f.do(t, http.MethodPut, "/api/inventory/branch/b1/products/p1", "vendedor", map[string]int64{"quantity": 12})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(t, http.MethodPut, "/api/inventory/branch/b1/products/p1", "bodeguero", map[string]int64{"quantity": 12})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decode[dto.InventoryRecordResponse](t, resp)
	assert.Equal(t, int64(12), rec.Quantity)

	resp = f.do(t, http.MethodGet, "/api/inventory/branch/b1", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stock := decode[dto.LocationStockResponse](t, resp)
	assert.Equal(t, "Centro", stock.Location.Name)
	require.Equal(t, 2, stock.Total)
	assert.Equal(t, "p1", stock.Records[0].ProductID)
	assert.Equal(t, int64(12), stock.Records[0].Quantity)
	assert.Equal(t, "p2", stock.Records[1].ProductID)
}

func TestInventory_Errores(t *testing.T) {
	f := newAPI(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"bodega no ajustable", http.MethodPut, "/api/inventory/warehouse/w1/products/p1", map[string]int64{"quantity": 1}, http.StatusBadRequest},
		{"cantidad negativa", http.MethodPut, "/api/inventory/branch/b1/products/p1", map[string]int64{"quantity": -1}, http.StatusBadRequest},
		{"sin cantidad", http.MethodPut, "/api/inventory/branch/b1/products/p1", map[string]string{}, http.StatusBadRequest},
		{"kind inválido", http.MethodGet, "/api/inventory/tienda/b1", nil, http.StatusBadRequest},
		{"ubicación inexistente", http.MethodGet, "/api/inventory/branch/zz", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, tt.method, tt.path, "admin", tt.body)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
