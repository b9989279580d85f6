package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegatran/GaraManager-sub003/internal/audit"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/ledger"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/repository"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/sequence"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/usecase/command"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/usecase/query"
	"github.com/vegatran/GaraManager-sub003/internal/testutil"
	"github.com/vegatran/GaraManager-sub003/pkg/auth"
	"github.com/vegatran/GaraManager-sub003/pkg/lock"
)

const testSecret = "test-secret"

type silentBroadcaster struct{}

func (silentBroadcaster) AlertCountChanged(context.Context, int64) error { return nil }

func (silentBroadcaster) StockAdjusted(context.Context, *domain.Adjustment, []domain.StockTransaction) error {
	return nil
}

type server struct {
	handler http.Handler
	store   *repository.GormStore
	token   string
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := testutil.OpenDB(t, repository.AutoMigrate, audit.AutoMigrate)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	store := repository.NewGormStore(db)
	gen := sequence.NewGenerator()
	applier := ledger.NewApplier()
	locker := lock.NewLocal()
	recorder := audit.NewRecorder(db, 64)
	t.Cleanup(recorder.Close)
	notifier := command.NewNotifier(store, silentBroadcaster{})
	t.Cleanup(notifier.Wait)
	limit := command.BulkLimit(10)

	commands := &Commands{
		CreateCheck:               command.NewCreateCheckHandler(store, gen, recorder),
		StartCheck:                command.NewStartCheckHandler(store, recorder),
		CompleteCheck:             command.NewCompleteCheckHandler(store, recorder),
		CancelCheck:               command.NewCancelCheckHandler(store, recorder),
		UpdateCheck:               command.NewUpdateCheckHandler(store, recorder),
		DeleteCheck:               command.NewDeleteCheckHandler(store, recorder),
		AddCheckItem:              command.NewAddCheckItemHandler(store, recorder),
		UpdateCheckItem:           command.NewUpdateCheckItemHandler(store, recorder),
		DeleteCheckItem:           command.NewDeleteCheckItemHandler(store, recorder),
		BulkAddCheckItems:         command.NewBulkAddCheckItemsHandler(store, recorder, limit),
		BulkUpdateCheckItems:      command.NewBulkUpdateCheckItemsHandler(store, recorder, limit),
		AddCheckComment:           command.NewAddCheckCommentHandler(store, recorder),
		DeleteCheckComment:        command.NewDeleteCheckCommentHandler(store, recorder),
		CreateAdjustmentFromCheck: command.NewCreateAdjustmentFromCheckHandler(store, gen, recorder),
		CreateManualAdjustment:    command.NewCreateManualAdjustmentHandler(store, gen, recorder),
		ApproveAdjustment:         command.NewApproveAdjustmentHandler(store, gen, applier, locker, recorder, notifier),
		RejectAdjustment:          command.NewRejectAdjustmentHandler(store, applier, recorder),
		DeleteAdjustment:          command.NewDeleteAdjustmentHandler(store, recorder),
		BulkApprove:               command.NewBulkApproveHandler(store, gen, applier, locker, recorder, notifier, limit),
		BulkReject:                command.NewBulkRejectHandler(store, applier, recorder, limit),
		AddComment:                command.NewAddCommentHandler(store, recorder),
		DeleteComment:             command.NewDeleteCommentHandler(store, recorder),
	}
	queries := &Queries{
		GetCheck:              query.NewGetCheckHandler(store),
		ListChecks:            query.NewListChecksHandler(store),
		CheckHistory:          query.NewGetCheckHistoryHandler(store, audit.NewReader(db)),
		ListCheckComments:     query.NewListCheckCommentsHandler(store),
		GetAdjustment:         query.NewGetAdjustmentHandler(store),
		ListAdjustments:       query.NewListAdjustmentsHandler(store),
		AdjustmentHistory:     query.NewGetAdjustmentHistoryHandler(store, audit.NewReader(db)),
		ListComments:          query.NewListCommentsHandler(store),
		ListStockTransactions: query.NewListStockTransactionsHandler(store),
	}

	validator := auth.NewValidator(testSecret, "garage", time.Hour)
	employee := uint(7)
	token, err := validator.GenerateToken(auth.Claims{UserID: 3, EmployeeID: &employee, Username: "linh", Roles: []string{"Manager"}})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	router := NewRouter(NewInventoryHandler(commands, queries), RouterConfig{
		Middleware: DefaultMiddlewareConfig(nil, 5*time.Second),
		Validator:  validator,
		Metrics:    NewMetrics(reg),
		Gatherer:   reg,
		DB:         sqlDB,
	})

	return &server{handler: router, store: store, token: token}
}

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	Retryable bool            `json:"retryable"`
}

func (s *server) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (s *server) part(t *testing.T, number string, qty int) *domain.Part {
	t.Helper()
	p := &domain.Part{
		PartNumber:      number,
		PartName:        "Part " + number,
		CostPrice:       decimal.RequireFromString("10.00"),
		SellPrice:       decimal.RequireFromString("18.00"),
		QuantityInStock: qty,
		IsActive:        true,
	}
	require.NoError(t, s.store.Parts().Create(context.Background(), p))
	return p
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestRequiresBearerToken(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory-adjustments", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/inventory-adjustments", nil)
	req.Header.Set("Authorization", "Bearer forged.token.value")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCountToLedgerFlow(t *testing.T) {
	s := newServer(t)
	p := s.part(t, "BRK-001", 100)

	rec, env := s.do(t, http.MethodPost, "/api/v1/inventory-checks", map[string]any{
		"items": []map[string]any{{"part_id": p.ID, "actual_quantity": 90}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, env.Error)
	check := decode[domain.Check](t, env)
	assert.Equal(t, domain.CheckDraft, check.Status)
	require.Len(t, check.Items, 1)
	assert.Equal(t, -10, check.Items[0].DiscrepancyQuantity)

	rec, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/inventory-checks/%d/complete", check.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, env.Error)

	rec, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/inventory-checks/%d/adjustments", check.ID), nil)
	require.Equal(t, http.StatusCreated, rec.Code, env.Error)
	adj := decode[domain.Adjustment](t, env)
	assert.Equal(t, domain.AdjustmentPending, adj.Status)

	rec, env = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/inventory-adjustments/%d/approve", adj.ID), map[string]any{"notes": "verified"})
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	adj = decode[domain.Adjustment](t, env)
	assert.Equal(t, domain.AdjustmentApproved, adj.Status)

	rec, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/stock-transactions?part_id=%d", p.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	page := decode[query.PageResult[domain.StockTransaction]](t, env)
	require.Equal(t, int64(1), page.Total)
	entry := page.Items[0]
	assert.Equal(t, 100, entry.QuantityBefore)
	assert.Equal(t, 90, entry.QuantityAfter)
	assert.Equal(t, adj.Code, entry.ReferenceNumber)

	rec, env = s.do(t, http.MethodGet, "/api/v1/inventory-adjustments?status=Approved", nil)
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	list := decode[query.PageResult[domain.Adjustment]](t, env)
	assert.Equal(t, int64(1), list.Total)
}

func TestErrorMapping(t *testing.T) {
	s := newServer(t)
	p := s.part(t, "FLT-002", 20)

	rec, env := s.do(t, http.MethodGet, "/api/v1/inventory-adjustments/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/inventory-adjustments", map[string]any{
		"items": []map[string]any{{"part_id": p.ID, "quantity_change": 1, "system_quantity_before": 20, "system_quantity_after": 21}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = s.do(t, http.MethodPost, "/api/v1/inventory-adjustments", map[string]any{
		"reason": "found in back room",
		"items":  []map[string]any{{"part_id": p.ID, "quantity_change": 1, "system_quantity_before": 20, "system_quantity_after": 21}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, env.Error)
	adj := decode[domain.Adjustment](t, env)

	path := fmt.Sprintf("/api/v1/inventory-adjustments/%d/approve", adj.ID)
	rec, env = s.do(t, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	rec, env = s.do(t, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Retryable)

	rec, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/inventory-adjustments/%d/reject", adj.ID), map[string]any{"reason": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/inventory-adjustments/bulk-approve", map[string]any{"adjustment_ids": []uint{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/inventory-checks", map[string]any{"unknown": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/stock-transactions?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkReportsPerTicketOutcome(t *testing.T) {
	s := newServer(t)
	p := s.part(t, "OIL-003", 10)

	rec, env := s.do(t, http.MethodPost, "/api/v1/inventory-adjustments", map[string]any{
		"reason": "damaged",
		"items":  []map[string]any{{"part_id": p.ID, "quantity_change": -2, "system_quantity_before": 10, "system_quantity_after": 8}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, env.Error)
	adj := decode[domain.Adjustment](t, env)

	rec, env = s.do(t, http.MethodPost, "/api/v1/inventory-adjustments/bulk-approve", map[string]any{
		"adjustment_ids": []uint{adj.ID, 4242},
	})
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	result := decode[command.BulkResult](t, env)
	assert.Equal(t, []uint{adj.ID}, result.SuccessIDs)
	assert.Equal(t, []uint{4242}, result.FailedIDs)
	assert.Equal(t, 1, result.FailureCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "#4242")
}

func TestCommentsRoundTrip(t *testing.T) {
	s := newServer(t)
	p := s.part(t, "SPK-004", 4)

	_, env := s.do(t, http.MethodPost, "/api/v1/inventory-adjustments", map[string]any{
		"reason": "recount",
		"items":  []map[string]any{{"part_id": p.ID, "quantity_change": 1, "system_quantity_before": 4, "system_quantity_after": 5}},
	})
	adj := decode[domain.Adjustment](t, env)
	base := fmt.Sprintf("/api/v1/inventory-adjustments/%d/comments", adj.ID)

	rec, env := s.do(t, http.MethodPost, base, map[string]any{"text": "  please double check bin B2  "})
	require.Equal(t, http.StatusCreated, rec.Code, env.Error)
	comment := decode[domain.AdjustmentComment](t, env)
	assert.Equal(t, "please double check bin B2", comment.Text)

	rec, env = s.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.AdjustmentComment](t, env), 1)

	rec, _ = s.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", base, comment.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.AdjustmentComment](t, env))
}

func TestCheckHeaderAndListing(t *testing.T) {
	s := newServer(t)

	rec, env := s.do(t, http.MethodPost, "/api/v1/inventory-checks", map[string]any{"name": "Front shelf"})
	require.Equal(t, http.StatusCreated, rec.Code, env.Error)
	first := decode[domain.Check](t, env)
	_, env = s.do(t, http.MethodPost, "/api/v1/inventory-checks", map[string]any{"name": "Back room"})
	second := decode[domain.Check](t, env)

	rec, env = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/inventory-checks/%d", first.ID), map[string]any{
		"name":  "Front shelf, aisle 2",
		"notes": "night shift",
	})
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	updated := decode[domain.Check](t, env)
	assert.Equal(t, "Front shelf, aisle 2", updated.Name)
	assert.Equal(t, "night shift", updated.Notes)
	assert.Equal(t, first.Code, updated.Code)

	rec, env = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/inventory-checks/%d", first.ID), map[string]any{"code": "IK-2025-0001"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, env.Error)

	rec, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/inventory-checks/%d/start", second.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/api/v1/inventory-checks?status=InProgress", nil)
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	page := decode[query.PageResult[domain.Check]](t, env)
	assert.EqualValues(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, second.ID, page.Items[0].ID)

	rec, env = s.do(t, http.MethodGet, "/api/v1/inventory-checks?page_size=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	page = decode[query.PageResult[domain.Check]](t, env)
	assert.EqualValues(t, 2, page.Total)
	assert.Len(t, page.Items, 1)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/inventory-checks?status=Open", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/inventory-checks/%d/history", first.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	rec, _ = s.do(t, http.MethodGet, "/api/v1/inventory-checks/4242/history", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkCheckItems(t *testing.T) {
	s := newServer(t)
	pad := s.part(t, "PAD-010", 12)
	belt := s.part(t, "BLT-011", 3)

	_, env := s.do(t, http.MethodPost, "/api/v1/inventory-checks", map[string]any{"name": "Brakes"})
	check := decode[domain.Check](t, env)
	base := fmt.Sprintf("/api/v1/inventory-checks/%d/items", check.ID)

	rec, env := s.do(t, http.MethodPost, base+"/bulk-add", map[string]any{
		"items": []map[string]any{
			{"part_id": pad.ID, "actual_quantity": 10},
			{"part_id": belt.ID, "actual_quantity": 3},
			{"part_id": 4242, "actual_quantity": 1},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	assert.True(t, env.Success)
	assert.Equal(t, "Some check items could not be added", env.Message)
	added := decode[command.BulkResult](t, env)
	assert.Equal(t, 2, added.SuccessCount)
	assert.Empty(t, added.FailedIDs)
	require.Len(t, added.Errors, 1)
	assert.Contains(t, added.Errors[0], "Part #4242")

	rec, env = s.do(t, http.MethodPost, base+"/bulk-update", map[string]any{
		"item_ids":        added.SuccessIDs,
		"actual_quantity": 0,
	})
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	assert.Equal(t, "All check items updated", env.Message)

	_, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/inventory-checks/%d", check.ID), nil)
	for _, it := range decode[domain.Check](t, env).Items {
		assert.Zero(t, it.ActualQuantity)
		assert.Equal(t, -it.SystemQuantity, it.DiscrepancyQuantity)
	}

	rec, _ = s.do(t, http.MethodPost, base+"/bulk-update", map[string]any{"item_ids": added.SuccessIDs})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckCommentsRoundTrip(t *testing.T) {
	s := newServer(t)

	_, env := s.do(t, http.MethodPost, "/api/v1/inventory-checks", map[string]any{"name": "Tyres"})
	check := decode[domain.Check](t, env)
	base := fmt.Sprintf("/api/v1/inventory-checks/%d/comments", check.ID)

	rec, env := s.do(t, http.MethodPost, base, map[string]any{"text": " recount rack 3 "})
	require.Equal(t, http.StatusCreated, rec.Code, env.Error)
	comment := decode[domain.CheckComment](t, env)
	assert.Equal(t, "recount rack 3", comment.Text)
	assert.Equal(t, check.ID, comment.CheckID)

	rec, env = s.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.CheckComment](t, env), 1)

	rec, _ = s.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", base, comment.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, fmt.Sprintf("%s/%d", base, comment.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = s.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.CheckComment](t, env))
}

func TestHealthMetricsAndRequestID(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	s.do(t, http.MethodGet, "/api/v1/inventory-adjustments", nil)

	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `inventory_http_requests_total{method="GET",route="/api/v1/inventory-adjustments",status="200"} 1`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestSwaggerDocsServeGetOnly(t *testing.T) {
	router := mux.NewRouter()
	RegisterSwaggerDocs(router, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
